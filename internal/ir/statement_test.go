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

	"github.com/stretchr/testify/require"

	"github.com/cloudwego/gentree/internal/debuginfo"
	"github.com/cloudwego/gentree/internal/types"
)

func TestStatement_DebugInfo(t *testing.T) {
	c := newTestCompiler(t, "amd64")
	root := c.Inlines.Root()
	root.SetInstrStarts(0, 4, 9)
	n := c.NewNothingNode()

	/* locations must fall on an instruction */
	_, err := c.NewStatement(n, debuginfo.New(root, debuginfo.NewILLocation(2, false, false)))
	require.Error(t, err)
	st, err := c.NewStatement(n, debuginfo.New(root, debuginfo.NewILLocation(4, true, false)))
	require.NoError(t, err)
	require.Equal(t, uint32(4), st.DebugInfo().Location().Offset())
	require.Same(t, n, st.Root())

	/* statements need a tree */
	_, err = c.NewStatement(nil, debuginfo.DebugInfo{})
	require.ErrorIs(t, err, ErrBadOperand)
}

func TestStatement_Sequence(t *testing.T) {
	c := newTestCompiler(t, "amd64")
	a := c.NewIconNode(2, types.Int)
	b := c.NewLclVar(0, types.Int)
	add := mustOper(t, c, ADD, types.Int, a, b)
	st, err := c.NewStatement(add, debuginfo.DebugInfo{})
	require.NoError(t, err)

	/* operands before users */
	require.False(t, st.IsSequenced())
	require.Same(t, a, st.Sequence())
	require.Equal(t, []*Node{a, b, add}, st.Nodes())
	require.Same(t, add, st.Last())
	require.Same(t, b, a.Next())
	require.Same(t, a, b.Prev())
	require.Nil(t, add.Next())

	/* the evaluation order decides */
	require.Equal(t, 5, c.SetEvalOrder(add))
	require.True(t, add.IsReverseOp())
	st.Sequence()
	require.Equal(t, []*Node{b, a, add}, st.Nodes())
	require.Same(t, b, st.First())
	require.Nil(t, b.Prev())
}

func TestStatement_ReplaceOperand(t *testing.T) {
	c := newTestCompiler(t, "amd64")
	lcl := c.NewLclVar(0, types.Int)
	neg := mustOper(t, c, NEG, types.Int, lcl)
	add := mustOper(t, c, ADD, types.Int, c.NewIconNode(1, types.Int), neg)
	store := c.NewStoreLclVar(1, add)
	st, err := c.NewStatement(store, debuginfo.DebugInfo{})
	require.NoError(t, err)
	st.Sequence()

	/* the effects of the replacement reach the root */
	call := c.NewHelperCall(0x40, types.Int).Node()
	require.NoError(t, st.ReplaceOperand(neg, lcl, call))
	for _, n := range []*Node{neg, add, store} {
		require.NotZero(t, n.Flags()&FlagCall, "%s", n)
	}
	require.NoError(t, CheckEffects(store))
	require.False(t, st.IsSequenced())

	/* the user must be in the statement */
	require.ErrorIs(t, st.ReplaceOperand(c.NewNothingNode(), lcl, call), ErrNoSuchOperand)
	require.ErrorIs(t, st.ReplaceOperand(neg, lcl, call), ErrNoSuchOperand)

	/* and so must the new root */
	require.ErrorIs(t, st.ReplaceRoot(nil), ErrBadOperand)
	require.NoError(t, st.ReplaceRoot(add))
	require.Same(t, add, st.Root())
}

func TestStatement_ChangeOper(t *testing.T) {
	c := newTestCompiler(t, "amd64")
	add := mustOper(t, c, ADD, types.Int, c.NewLclVar(0, types.Int), c.NewLclVar(1, types.Int))
	neg := mustOper(t, c, NEG, types.Int, add)
	st, err := c.NewStatement(neg, debuginfo.DebugInfo{})
	require.NoError(t, err)
	require.Zero(t, neg.Flags()&FlagExcept)

	/* a division may throw, and so may everything above it */
	require.NoError(t, st.ChangeOper(add, DIV, ClearVN))
	require.NotZero(t, add.Flags()&FlagExcept)
	require.NotZero(t, neg.Flags()&FlagExcept)
	require.NoError(t, CheckEffects(neg))

	/* and back */
	require.NoError(t, st.ChangeOper(add, OR, ClearVN))
	require.Zero(t, neg.Flags()&FlagExcept)
	require.NoError(t, CheckEffects(neg))

	/* the node must be in the statement */
	require.ErrorIs(t, st.ChangeOper(c.NewNothingNode(), NOP, ClearVN), ErrNoSuchOperand)
	var ae ArityError
	require.ErrorAs(t, st.ChangeOper(neg, ADD, ClearVN), &ae)
}

func TestStatement_PropagateEffects(t *testing.T) {
	c := newTestCompiler(t, "amd64")
	lcl := c.NewLclVar(0, types.Int)
	neg := mustOper(t, c, NEG, types.Int, lcl)
	store := c.NewStoreLclVar(1, neg)
	st, err := c.NewStatement(store, debuginfo.DebugInfo{})
	require.NoError(t, err)

	/* setting an operand through the view leaves the flags stale */
	op, err := neg.AsOp()
	require.NoError(t, err)
	op.SetOp1(c.NewHelperCall(0x40, types.Int).Node())
	require.Zero(t, neg.Flags()&FlagCall)
	require.Error(t, CheckEffects(store))

	/* until they are propagated */
	require.NoError(t, st.PropagateEffects(neg))
	require.NotZero(t, neg.Flags()&FlagCall)
	require.NotZero(t, store.Flags()&FlagCall)
	require.NoError(t, CheckEffects(store))
	require.ErrorIs(t, st.PropagateEffects(lcl), ErrNoSuchOperand)
}

func TestSetEvalOrder(t *testing.T) {
	c := newTestCompiler(t, "amd64")

	/* the costlier local goes first */
	add := mustOper(t, c, ADD, types.Int, c.NewIconNode(2, types.Int), c.NewLclVar(0, types.Int))
	require.Equal(t, 5, c.SetEvalOrder(add))
	require.True(t, add.IsReverseOp())
	ex, sz, err := add.Costs()
	require.NoError(t, err)
	require.Equal(t, [2]uint8{5, 4}, [2]uint8{ex, sz})

	/* only for commutative operators */
	sub := mustOper(t, c, SUB, types.Int, c.NewIconNode(2, types.Int), c.NewLclVar(0, types.Int))
	c.SetEvalOrder(sub)
	require.False(t, sub.IsReverseOp())

	/* and operands without ordering effects */
	ind := c.NewIndir(types.Int, c.NewLclVar(1, types.ByRef), 0)
	add = mustOper(t, c, ADD, types.Int, c.NewIconNode(2, types.Int), ind)
	require.Equal(t, 1+1+3+3, c.SetEvalOrder(add))
	require.False(t, add.IsReverseOp())

	/* large constants cost more space */
	big := c.NewIconNode(1000, types.Int)
	c.SetEvalOrder(big)
	require.Equal(t, 4, big.CostSz())
}

func TestCheckEffects(t *testing.T) {
	c := newTestCompiler(t, "amd64")
	call := c.NewHelperCall(0x40, types.Int).Node()
	add := mustOper(t, c, ADD, types.Int, c.NewIconNode(1, types.Int), call)
	require.NoError(t, CheckEffects(add))

	/* dropping the flags of a user is caught */
	add.ClearFlags(FlagCall)
	var ee EffectError
	require.ErrorAs(t, CheckEffects(add), &ee)
	require.Same(t, add, ee.Node)
	require.Equal(t, FlagCall, ee.Missing)
	require.Equal(t, FlagCall, add.MissingEffects())
}
