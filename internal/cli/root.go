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


// Package cli implements the gtdump developer tool.
package cli

import (
	"github.com/spf13/cobra"
	"tlog.app/go/errors"

	"github.com/cloudwego/gentree"
	"github.com/cloudwego/gentree/internal/abi"
	"github.com/cloudwego/gentree/internal/opts"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Target string
	Config string
}

// NewRootCommand creates the root command of gtdump.
func NewRootCommand() *cobra.Command {
	ro := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "gtdump",
		Short: "Inspect the GenTree IR",
		Long:  "gtdump prints the operator table of the IR and dumps method descriptions after call argument placement.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ro.validate()
		},
		SilenceUsage: true,
	}

	/* global flags */
	cmd.PersistentFlags().StringVarP(&ro.Target, "target", "t", "", "target architecture (amd64|arm64|arm|x86|host)")
	cmd.PersistentFlags().StringVarP(&ro.Config, "config", "c", "", "YAML or TOML options file")

	/* subcommands */
	cmd.AddCommand(NewOpersCommand(ro))
	cmd.AddCommand(NewDumpCommand(ro))
	return cmd
}

func (self *RootOptions) validate() error {
	if self.Target == "" || self.Target == "host" {
		return nil
	} else if _, err := abi.Lookup(self.Target); err != nil {
		return errors.Wrap(err, "invalid --target")
	} else {
		return nil
	}
}

// Options returns the compilation options selected by the flags: the config
// file first, then the target on top of it.
func (self *RootOptions) Options() ([]gentree.Option, error) {
	var ret []gentree.Option
	if self.Config != "" {
		o := opts.GetDefaultOptions()
		if err := opts.LoadFile(self.Config, &o); err != nil {
			return nil, err
		}
		ret = append(ret, func(p *opts.Options) { *p = o })
	}

	/* the flag wins over the file */
	if self.Target != "" {
		ret = append(ret, gentree.WithTarget(self.Target))
	}
	return ret, nil
}
