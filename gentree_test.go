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


package gentree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudwego/gentree/internal/ir"
	"github.com/cloudwego/gentree/internal/opts"
	"github.com/cloudwego/gentree/internal/types"
)

func TestOptions(t *testing.T) {
	o := options([]Option{
		WithTarget("arm64"),
		WithMaxInlineDepth(4),
		WithMaxInlineILSize(0),
		WithCFGDispatcher(1),
		WithControlFlowGuard(true),
		WithDebugChecks(true),
	})
	require.Equal(t, opts.Options{
		MaxInlineDepth:   4,
		MaxInlineILSize:  0,
		Target:           "arm64",
		CFGUseDispatcher: 1,
		ControlFlowGuard: true,
		DebugChecks:      true,
	}, o)
}

func TestOptions_Invalid(t *testing.T) {
	require.Panics(t, func() { WithTarget("vax") })
	require.Panics(t, func() { WithMaxInlineDepth(-1) })
	require.Panics(t, func() { WithMaxInlineILSize(3) })
	require.Panics(t, func() { WithCFGDispatcher(2) })
	require.NotPanics(t, func() { WithTarget("host") })
}

func TestOptions_Defaults(t *testing.T) {
	old := SetMaxInlineDepth(7)
	defer SetMaxInlineDepth(old)
	require.Equal(t, 7, options(nil).MaxInlineDepth)
	require.Equal(t, 7, SetMaxInlineDepth(old))
}

func TestNewCompiler(t *testing.T) {
	c, err := NewCompiler(context.Background(), 0x1000, 16, WithTarget("x86"))
	require.NoError(t, err)
	defer c.Close()
	require.Equal(t, "x86", c.Target.Name)
	require.Equal(t, 1, c.Inlines.Count())
}

func TestLoadMethod_Prepare(t *testing.T) {
	c, sts, err := LoadMethod(context.Background(), "internal/irtext/testdata/store.yaml", WithTarget("amd64"), WithDebugChecks(true))
	require.NoError(t, err)
	defer c.Close()
	require.Len(t, sts, 2)

	/* every statement is ordered and sequenced */
	require.NoError(t, Prepare(c, sts))
	for _, st := range sts {
		require.True(t, st.IsSequenced())
		require.Equal(t, st.Root(), st.Last())
		require.True(t, st.Root().CostsSet())
	}

	/* and the call is placed */
	store, err := sts[1].Root().AsLclVarCommon()
	require.NoError(t, err)
	call, err := store.Data().AsCall()
	require.NoError(t, err)
	require.True(t, call.Args().IsAbiInformationDetermined())
	require.True(t, call.Args().First().AbiInfo().HasRegs())
}

func TestPrepare_NestedCallEffects(t *testing.T) {
	c, err := NewCompiler(context.Background(), 0x1000, 16, WithTarget("amd64"), WithDebugChecks(true))
	require.NoError(t, err)
	defer c.Close()

	/* NEG(CALL(1, CALL())) */
	inner := c.NewCall(0x2000, types.Int)
	outer := c.NewCall(0x3000, types.Int)
	_, err = outer.Args().PushBack(NewCallArg{Node: c.NewIconNode(1, types.Int)})
	require.NoError(t, err)
	_, err = outer.Args().PushBack(NewCallArg{Node: inner.Node()})
	require.NoError(t, err)
	neg, err := c.NewOperNode(ir.NEG, types.Int, outer.Node())
	require.NoError(t, err)
	st, err := c.NewStatement(neg, DebugInfo{})
	require.NoError(t, err)
	require.Zero(t, neg.Flags()&ir.FlagAsg)

	/* the inner call goes through a temp, the store shows on every user */
	require.NoError(t, Prepare(c, []*Statement{st}))
	require.NotZero(t, outer.Node().Flags()&ir.FlagAsg)
	require.NotZero(t, neg.Flags()&ir.FlagAsg)
	require.NoError(t, ir.CheckEffects(st.Root()))
	require.True(t, st.IsSequenced())
}

func TestLoadMethod_Errors(t *testing.T) {
	_, _, err := LoadMethod(context.Background(), "testdata/missing.yaml")
	require.Error(t, err)
}

func TestErrors(t *testing.T) {
	c, err := NewCompiler(context.Background(), 0x1000, 16, WithTarget("amd64"))
	require.NoError(t, err)
	defer c.Close()

	/* sentinels and typed errors are the IR's own */
	_, err = c.NewPhi(types.Int, c.NewIconNode(1, types.Int))
	require.ErrorIs(t, err, ErrBadOperand)
	_, err = c.NewIconNode(1, types.Int).AsCall()
	var km KindMismatchError
	require.ErrorAs(t, err, &km)
	require.Equal(t, "Call", km.View)
}
