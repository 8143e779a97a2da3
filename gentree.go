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


// Package gentree is the tree IR of a method JIT: typed expression nodes,
// their operands and effects, call arguments with their ABI placement, and
// the debug info that maps statements back to the IL they came from.
package gentree

import (
	"context"

	"tlog.app/go/errors"

	"github.com/cloudwego/gentree/internal/debuginfo"
	"github.com/cloudwego/gentree/internal/ir"
	"github.com/cloudwego/gentree/internal/irtext"
	"github.com/cloudwego/gentree/internal/opts"
)

type (
	Compiler     = ir.Compiler
	Node         = ir.Node
	Oper         = ir.Oper
	Flags        = ir.Flags
	Statement    = ir.Statement
	Call         = ir.Call
	CallArg      = ir.CallArg
	CallArgs     = ir.CallArgs
	NewCallArg   = ir.NewCallArg
	MethodHandle = debuginfo.MethodHandle
	DebugInfo    = debuginfo.DebugInfo
)

func options(fn []Option) opts.Options {
	o := opts.GetDefaultOptions()
	for _, f := range fn {
		f(&o)
	}
	return o
}

// NewCompiler starts the compilation of a method of ilSize bytes of IL. The
// compilation logs into the span carried by ctx, and must be closed when the
// caller is done with its nodes.
func NewCompiler(ctx context.Context, method MethodHandle, ilSize int, opt ...Option) (*Compiler, error) {
	o := options(opt)
	return ir.NewCompiler(ctx, method, ilSize, &o)
}

// LoadMethod reads a method description file and builds its statements in a
// new compilation. The compilation is closed if building fails.
func LoadMethod(ctx context.Context, path string, opt ...Option) (*Compiler, []*Statement, error) {
	m, err := irtext.ParseFile(path)
	if err != nil {
		return nil, nil, err
	}

	/* the compilation of the described method */
	o := options(opt)
	c, err := m.NewCompiler(ctx, &o)
	if err != nil {
		return nil, nil, err
	}

	/* build the statements */
	sts, err := m.Build(c)
	if err != nil {
		c.Close()
		return nil, nil, errors.Wrap(err, "build %v", path)
	}
	return c, sts, nil
}

// Prepare orders the statements for code generation: costs and evaluation
// order are set, the arguments of every call are completed and placed, and
// the nodes are sequenced.
func Prepare(c *Compiler, sts []*Statement) error {
	for i, st := range sts {
		c.SetEvalOrder(st.Root())

		/* complete the calls, operands first */
		var calls []*Call
		ir.VisitPostOrder(st.Root(), func(n *Node) {
			if call, err := n.AsCall(); err == nil {
				calls = append(calls, call)
			}
		})

		/* temps add stores to the calls and to everything above them */
		for _, call := range calls {
			if err := prepareCall(c, call); err != nil {
				return errors.Wrap(err, "statement %d", i)
			}
			if err := st.PropagateEffects(call.Node()); err != nil {
				return errors.Wrap(err, "statement %d", i)
			}
		}

		/* sequence with the final operands */
		c.SetEvalOrder(st.Root())
		st.Sequence()
	}
	return nil
}

func prepareCall(c *Compiler, call *Call) error {
	if err := c.AddFinalArgsAndDetermineABIInfo(call); err != nil {
		return err
	} else {
		return c.EvalArgsToTemps(call)
	}
}
