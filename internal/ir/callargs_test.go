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


package ir

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/gentree/internal/abi"
	"github.com/cloudwego/gentree/internal/opts"
	"github.com/cloudwego/gentree/internal/types"
)

func pushArgs(t *testing.T, call *Call, nodes ...*Node) []*CallArg {
	ret := make([]*CallArg, len(nodes))
	for i, n := range nodes {
		arg, err := call.Args().PushBack(NewCallArg{Node: n})
		require.NoError(t, err)
		ret[i] = arg
	}
	return ret
}

func TestCallArgs_Membership(t *testing.T) {
	c := newTestCompiler(t, "amd64")
	call := c.NewCall(0x1000, types.Struct)
	args := call.Args()
	this := c.NewLclVar(0, types.Ref)
	user := c.NewLclVar(1, types.Int)

	/* build the list in a mixed order */
	at, err := args.PushBack(NewCallArg{Node: this, WellKnown: abi.ThisPointer})
	require.NoError(t, err)
	au, err := args.PushBack(NewCallArg{Node: user, SigType: types.Short})
	require.NoError(t, err)
	ai, err := args.InsertInstParam(c.NewIconHandle(0x77, FlagIconClassHdl))
	require.NoError(t, err)
	ar, err := args.PushFront(NewCallArg{Node: c.NewLclAddr(2, 0), WellKnown: abi.RetBuffer})
	require.NoError(t, err)
	require.Equal(t, []*CallArg{ar, at, ai, au}, args.Args())

	/* lookups */
	require.True(t, args.HasThisPointer())
	require.True(t, args.HasRetBuffer())
	require.True(t, call.HasRetBuffer())
	require.Same(t, at, args.GetThisArg())
	require.Same(t, ar, args.GetRetBufferArg())
	require.Same(t, au, args.GetUserArgByIndex(1))
	require.Same(t, ai, args.GetArgByIndex(2))
	require.Nil(t, args.GetArgByIndex(9))
	require.Same(t, au, args.FindByNode(user))
	require.Equal(t, 4, args.CountArgs())
	require.Equal(t, 2, args.CountUserArgs())

	/* signature types */
	require.Equal(t, types.Short, au.SigType())
	require.Equal(t, types.Ref, at.SigType())
	require.Equal(t, "arg ref this", at.String())

	/* removal */
	require.NoError(t, args.Remove(ar))
	require.False(t, args.HasRetBuffer())
	require.ErrorIs(t, args.Remove(ar), ErrNoSuchOperand)
	_, err = args.InsertAfter(ar, NewCallArg{Node: c.NewIconNode(1, types.Int)})
	require.ErrorIs(t, err, ErrNoSuchOperand)
	_, err = args.PushBack(NewCallArg{})
	require.ErrorIs(t, err, ErrBadOperand)
	require.Equal(t, 3, args.CountArgs())
}

func TestCallArgs_EffectsFollowArgs(t *testing.T) {
	c := newTestCompiler(t, "amd64")
	call := c.NewCall(0x1000, types.Void)
	st := c.NewStoreLclVar(0, c.NewIconNode(1, types.Int))

	/* adding a store makes the call store */
	arg, err := call.Args().PushBack(NewCallArg{Node: st})
	require.NoError(t, err)
	require.NotZero(t, call.Node().Flags()&FlagAsg)
	require.NoError(t, CheckEffects(call.Node()))

	/* and removing it takes the flag away */
	require.NoError(t, call.Args().Remove(arg))
	require.Zero(t, call.Node().Flags()&FlagAsg)
	require.Equal(t, FlagCall|FlagExcept, call.Node().Flags()&FlagAllEffect)
}

func TestCallArgs_Frozen(t *testing.T) {
	c := newTestCompiler(t, "amd64")
	call := c.NewCall(0x1000, types.Int)
	args := pushArgs(t, call, c.NewIconNode(1, types.Int))

	/* later phases need the ABI first */
	require.ErrorIs(t, call.Args().ArgsComplete(), ErrArgsNotReady)
	require.ErrorIs(t, c.EvalArgsToTemps(call), ErrArgsNotReady)

	/* membership is frozen once determined */
	require.NoError(t, c.AddFinalArgsAndDetermineABIInfo(call))
	require.True(t, call.Args().IsAbiInformationDetermined())
	_, err := call.Args().PushBack(NewCallArg{Node: c.NewIconNode(2, types.Int)})
	require.ErrorIs(t, err, ErrArgsFrozen)
	require.ErrorIs(t, call.Args().Remove(args[0]), ErrArgsFrozen)

	/* determining twice does not add anything */
	require.NoError(t, c.AddFinalArgsAndDetermineABIInfo(call))
	require.Equal(t, 1, call.Args().CountArgs())
}

func TestCallArgs_LateOrder(t *testing.T) {
	c := newTestCompiler(t, "amd64")
	a := c.NewIconNode(1, types.Int)
	b := c.NewCall(0x3000, types.Int).Node()
	d := c.NewLclVar(c.AddLocal(types.Int), types.Int)
	call := c.NewCall(0x1000, types.Int)
	args := pushArgs(t, call, a, b, d)

	/* every argument fits in a register */
	require.NoError(t, c.AddFinalArgsAndDetermineABIInfo(call))
	require.True(t, call.Args().HasRegArgs())
	require.False(t, call.Args().HasStackArgs())
	require.Zero(t, call.Args().OutgoingArgSpaceSize())
	for i, arg := range args {
		require.Equal(t, c.Target.IntArgRegs[i], arg.AbiInfo().Segments[0].Reg, "#%d: %s", i, spew.Sdump(arg.AbiInfo()))
	}

	/* the inner call needs a temp, the others a placeholder */
	require.NoError(t, c.EvalArgsToTemps(call))
	require.True(t, call.Args().AreArgsComplete())
	require.Equal(t, []*CallArg{args[1], args[2], args[0]}, call.Args().LateArgs())
	require.Equal(t, args, call.Args().Args())
	require.True(t, args[1].NeedsTemp())
	require.True(t, args[0].NeedsPlaceholder())
	require.True(t, args[2].NeedsPlaceholder())

	/* the temp is stored early and read late */
	tmp := args[1]
	require.True(t, tmp.IsTemp())
	require.Equal(t, uint32(1), tmp.TmpNum())
	require.Equal(t, types.Int, c.LocalType(tmp.TmpNum()))
	require.Equal(t, STORE_LCL_VAR, tmp.EarlyNode().Oper())
	require.Same(t, b, tmp.EarlyNode().Child(0))
	lv, err := tmp.LateNode().AsLclVar()
	require.NoError(t, err)
	require.Equal(t, tmp.TmpNum(), lv.LclNum())
	require.NotZero(t, tmp.LateNode().Flags()&FlagLateArg)

	/* the placeholders keep the argument order */
	require.Equal(t, ARGPLACE, args[0].EarlyNode().Oper())
	require.Same(t, a, args[0].LateNode())
	require.Same(t, a, args[0].NodeForABI())
	require.Same(t, args[0], call.Args().FindByNode(a))

	/* the call still carries every effect */
	require.Equal(t, FlagAsg|FlagCall|FlagExcept, call.Node().Flags()&FlagAllEffect)
	require.NoError(t, CheckEffects(call.Node()))

	/* the late list is only built once */
	require.NoError(t, c.EvalArgsToTemps(call))
	require.Len(t, call.Args().LateArgs(), 3)
}

func TestCallArgs_EffectsBeforeCall(t *testing.T) {
	c := newTestCompiler(t, "amd64")
	ind := c.NewIndir(types.Int, c.NewLclVar(0, types.ByRef), 0)
	inner := c.NewHelperCall(0x40, types.Int).Node()
	cns := c.NewIconNode(3, types.Int)
	call := c.NewCall(0x1000, types.Int)
	args := pushArgs(t, call, ind, inner, cns)

	/* the load may not move past the inner call */
	require.NoError(t, c.AddFinalArgsAndDetermineABIInfo(call))
	require.NoError(t, call.Args().ArgsComplete())
	require.True(t, args[0].NeedsTemp())
	require.True(t, args[1].NeedsTemp())
	require.False(t, args[2].NeedsTemp())
	require.True(t, args[2].NeedsPlaceholder())

	/* calls, then temps, then constants */
	require.NoError(t, c.EvalArgsToTemps(call))
	require.Equal(t, []*CallArg{args[1], args[0], args[2]}, call.Args().LateArgs())
	require.NoError(t, CheckEffects(call.Node()))
}

func TestCallArgs_SortLateArgs(t *testing.T) {
	c := newTestCompiler(t, "amd64")
	k := NewCallArg{Node: c.NewIconNode(1, types.Int)}.build()
	l := NewCallArg{Node: c.NewLclVar(0, types.Int)}.build()
	x := NewCallArg{Node: mustOper(t, c, NEG, types.Int, c.NewLclVar(1, types.Int))}.build()
	y := NewCallArg{Node: mustOper(t, c, MUL, types.Int, c.NewLclVar(2, types.Int), c.NewLclVar(3, types.Int))}.build()
	z := NewCallArg{Node: mustOper(t, c, NOT, types.Int, c.NewLclVar(4, types.Int))}.build()

	/* costs come from the evaluation order pass */
	for _, v := range []*CallArg{k, l, x, y, z} {
		c.SetEvalOrder(v.EarlyNode())
	}
	require.Equal(t, 4, x.EarlyNode().CostEx())
	require.Equal(t, 9, y.EarlyNode().CostEx())

	/* costly complex arguments first, equal costs keep their order */
	in := []*CallArg{k, x, l, y, z}
	require.Equal(t, []*CallArg{y, x, z, l, k}, SortLateArgs(in))
	require.Equal(t, []*CallArg{k, x, l, y, z}, in)
}

func TestCallArgs_VirtualStubCell(t *testing.T) {
	c := newTestCompiler(t, "amd64")
	call := c.NewCall(0x1000, types.Int)
	call.AddInfo(abi.CallVirtualStub)
	call.SetEntry(0xbeef)
	pushArgs(t, call, c.NewLclVar(0, types.Ref))

	/* the cell goes in its dedicated register */
	require.NoError(t, c.AddFinalArgsAndDetermineABIInfo(call))
	cell := call.Args().FindWellKnownArg(abi.VirtualStubCell)
	require.NotNil(t, cell)
	require.False(t, cell.IsUserArg())
	require.True(t, cell.EarlyNode().IsIconHandle())
	require.Equal(t, FlagIconIndCell, cell.EarlyNode().GetIconHandleFlag())
	require.True(t, cell.EarlyNode().IsIntegralConstValue(0xbeef))
	reg, ok := c.Target.FixedReg(abi.VirtualStubCell)
	require.True(t, ok)
	require.Equal(t, reg, cell.AbiInfo().Segments[0].Reg, spew.Sdump(cell.AbiInfo()))
	require.Equal(t, 1, call.Args().CountUserArgs())
}

func TestCallArgs_ControlFlowGuard(t *testing.T) {
	c := newTestCompiler(t, "amd64", func(o *opts.Options) {
		o.ControlFlowGuard = true
	})
	addr := c.NewLclVar(0, types.Long)
	call := c.NewIndirectCall(addr, types.Int)

	/* the dispatcher takes the target as an argument */
	require.NoError(t, c.AddFinalArgsAndDetermineABIInfo(call))
	require.Equal(t, abi.Dispatch, call.CFGKind())
	require.Nil(t, call.Addr())
	tgt := call.Args().FindWellKnownArg(abi.DispatchIndirectCallTarget)
	require.NotNil(t, tgt)
	require.Same(t, addr, tgt.EarlyNode())
	require.Equal(t, []*Node{addr}, edgesOf(call.Node()))

	/* the validator leaves the address alone */
	v := newTestCompiler(t, "amd64", func(o *opts.Options) {
		o.ControlFlowGuard = true
		o.CFGUseDispatcher = 0
	})
	addr = v.NewLclVar(0, types.Long)
	call = v.NewIndirectCall(addr, types.Int)
	require.NoError(t, v.AddFinalArgsAndDetermineABIInfo(call))
	require.Equal(t, abi.ValidateAndCall, call.CFGKind())
	require.Same(t, addr, call.Addr())
	require.Zero(t, call.Args().CountArgs())
}

func TestCallArgs_VarArgsCookie(t *testing.T) {
	for _, tc := range []struct {
		target string
		index  int
		stack  int
	}{
		{"x86", 2, 4},
		{"amd64", 1, 0},
	} {
		t.Run(tc.target, func(t *testing.T) {
			c := newTestCompiler(t, tc.target)
			call := c.NewCall(0x1000, types.Void)
			call.AddInfo(abi.CallVarargs)
			_, err := call.Args().PushBack(NewCallArg{Node: c.NewLclVar(0, types.Ref), WellKnown: abi.ThisPointer})
			require.NoError(t, err)
			pushArgs(t, call, c.NewLclVar(1, types.Int))

			/* the cookie position depends on the target */
			require.NoError(t, c.AddFinalArgsAndDetermineABIInfo(call))
			require.True(t, call.Args().IsVarArgs())
			cookie := call.Args().GetArgByIndex(tc.index)
			require.Equal(t, abi.VarArgsCookie, cookie.WellKnown())
			require.Equal(t, tc.stack, call.Args().OutgoingArgSpaceSize())
			require.Equal(t, tc.stack != 0, call.Args().HasStackArgs())
		})
	}
}

func TestCallArgs_DumpABI(t *testing.T) {
	c := newTestCompiler(t, "amd64")
	call := c.NewCall(0x1000, types.Int)
	pushArgs(t, call, c.NewIconNode(1, types.Int), c.NewDconNode(2, types.Double))
	require.NoError(t, c.AddFinalArgsAndDetermineABIInfo(call))
	require.NoError(t, call.Args().ArgsComplete())

	/* one line per argument, then the stack size */
	out := call.Args().DumpABI(c.Target)
	require.Contains(t, out, "#0 arg int          %"+c.Target.RegName(c.Target.IntArgRegs[0])+" place\n")
	require.Contains(t, out, "#1 arg double       %"+c.Target.RegName(c.Target.FloatArgRegs[0])+" place\n")
	require.Contains(t, out, "stack 0\n")
}

func TestCallArgs_StructSize(t *testing.T) {
	c := newTestCompiler(t, "arm64")
	call := c.NewCall(0x1000, types.Void)

	/* blocks are sized by their own size */
	args := pushArgs(t, call, c.NewBlk(c.NewLclVar(0, types.ByRef), 24), c.NewBlk(c.NewLclVar(1, types.ByRef), 12))
	require.Equal(t, 24, args[0].SigSize())
	require.Equal(t, 12, args[1].SigSize())

	/* other structs must say how large they are */
	_, err := call.Args().PushBack(NewCallArg{Node: c.NewLclVar(2, types.Struct)})
	require.ErrorIs(t, err, ErrBadOperand)
	_, err = call.Args().PushBack(NewCallArg{Node: c.NewLclVar(2, types.Struct), SigSize: 8})
	require.NoError(t, err)

	/* and every one of them lands somewhere */
	require.NoError(t, c.AddFinalArgsAndDetermineABIInfo(call))
	require.Equal(t, "[sp+0x0]:24", args[0].AbiInfo().Format(c.Target))
	require.Equal(t, 24, args[0].AbiInfo().ByteSize)
	require.Equal(t, "%x0,%x1", args[1].AbiInfo().Format(c.Target))
	require.True(t, call.Args().HasStackArgs())
}
