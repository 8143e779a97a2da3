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
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"tlog.app/go/tlog"

	"github.com/cloudwego/gentree"
	"github.com/cloudwego/gentree/debug"
	"github.com/cloudwego/gentree/internal/ir"
)

// DumpOptions holds the flags of the dump command.
type DumpOptions struct {
	ABI     bool
	Summary bool
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(ro *RootOptions) *cobra.Command {
	do := &DumpOptions{}

	cmd := &cobra.Command{
		Use:   "dump <method.yaml>",
		Short: "Dump a method description after call argument placement",
		Long: `Build the statements of a method description, set their evaluation order,
complete and place the arguments of every call, sequence them, then print
every statement in execution order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := tlog.ContextWithSpan(context.Background(), tlog.Root())
			return runDump(ctx, ro, do, args[0], cmd.OutOrStdout())
		},
	}

	/* dump flags */
	cmd.Flags().BoolVar(&do.ABI, "abi", false, "print the argument placement of every call")
	cmd.Flags().BoolVar(&do.Summary, "summary", false, "print a cost summary of every statement")
	return cmd
}

func runDump(ctx context.Context, ro *RootOptions, do *DumpOptions, path string, w io.Writer) error {
	opt, err := ro.Options()
	if err != nil {
		return err
	}

	/* build the method */
	c, sts, err := gentree.LoadMethod(ctx, path, opt...)
	if err != nil {
		return err
	}

	/* order and place */
	defer c.Close()
	if err = gentree.Prepare(c, sts); err != nil {
		return err
	}

	/* print every statement */
	for _, st := range sts {
		if err = dumpStatement(c, do, st, w); err != nil {
			return err
		}
	}
	return nil
}

func dumpStatement(c *gentree.Compiler, do *DumpOptions, st *gentree.Statement, w io.Writer) error {
	if _, err := io.WriteString(w, ir.DumpStatement(st)); err != nil {
		return err
	}

	/* argument placement */
	if do.ABI {
		for _, n := range st.Nodes() {
			if call, err := n.AsCall(); err == nil {
				fmt.Fprintf(w, "ABI [%06d]\n%s", n.ID(), call.Args().DumpABI(c.Target))
			}
		}
	}

	/* costs */
	if do.Summary {
		if sum, err := debug.Summarize(st.Root()); err != nil {
			return err
		} else {
			fmt.Fprintf(w, "COST nodes=%d total=%g mean=%.2f stddev=%.2f median=%g max=%g\n", sum.Nodes, sum.Total, sum.Mean, sum.StdDev, sum.Median, sum.Max)
		}
	}
	return nil
}
