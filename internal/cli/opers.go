/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


package cli

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/cloudwego/gentree/internal/ir"
)

// NewOpersCommand creates the opers command.
func NewOpersCommand(_ *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "opers",
		Short: "Print the operator table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := renderOpers()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write([]byte(out))
			return err
		},
	}
	return cmd
}

func operTable() pterm.TableData {
	ret := pterm.TableData{{"#", "Operator", "Kind", "Size"}}
	for op := ir.Oper(0); op < ir.OperCount; op++ {
		ret = append(ret, []string{strconv.Itoa(int(op)), op.String(), op.Kind().String(), op.Size().String()})
	}
	return ret
}

func renderOpers() (string, error) {
	return pterm.DefaultTable.WithHasHeader().WithData(operTable()).Srender()
}
