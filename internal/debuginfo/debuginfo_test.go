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

package debuginfo

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/gentree/internal/opts"
)

func TestILLocation(t *testing.T) {
	require.Equal(t, "0x010[E][C]", NewILLocation(0x10, true, true).String())
	require.Equal(t, "0x004", NewILLocation(4, false, false).String())
	require.Equal(t, "???", BadILLocation().String())
	require.False(t, BadILLocation().IsValid())
}

func TestDebugInfo_GetParent(t *testing.T) {
	o := opts.Options{MaxInlineDepth: 4}
	tree := NewInlineTree(0x100, 64, &o)
	a, ok := tree.Inline(tree.Root(), NewILLocation(8, true, true), 0x200, 32)
	require.True(t, ok)
	b, ok := tree.Inline(a, NewILLocation(2, false, true), 0x300, 16)
	require.True(t, ok)

	di := New(b, NewILLocation(1, false, false))
	p, ok := di.GetParent()
	require.True(t, ok)
	require.Same(t, a, p.InlineContext())
	require.Equal(t, uint32(2), p.Location().Offset())

	r := di.GetRoot()
	require.Same(t, tree.Root(), r.InlineContext())
	require.Equal(t, uint32(8), r.Location().Offset())
	_, ok = r.GetParent()
	require.False(t, ok)
	require.Equal(t, r, r.GetRoot())

	_, ok = DebugInfo{}.GetParent()
	require.False(t, ok)
	require.Equal(t, DebugInfo{}, DebugInfo{}.GetRoot())
}

func TestDebugInfo_RootTerminates(t *testing.T) {
	fk := gofakeit.New(7)
	o := opts.Options{MaxInlineDepth: 3}
	tree := NewInlineTree(1, 100, &o)
	for i := 0; i < 100; i++ {
		parent := tree.Context(fk.Number(0, tree.Count()-1))
		tree.Inline(parent, NewILLocation(uint32(fk.Number(0, 99)), false, true), MethodHandle(i+2), 10)
	}
	tree.Walk(func(ctx *InlineContext) bool {
		require.LessOrEqual(t, ctx.Depth(), o.MaxInlineDepth)
		di := New(ctx, NewILLocation(0, true, false))
		steps := 0
		for p, ok := di.GetParent(); ok; p, ok = p.GetParent() {
			steps++
		}
		require.Equal(t, ctx.Depth(), steps)
		_, ok := di.GetRoot().GetParent()
		require.False(t, ok)
		return true
	})
}

func TestInlineTree_Limits(t *testing.T) {
	o := opts.Options{MaxInlineDepth: 1, MaxInlineILSize: 100}
	tree := NewInlineTree(1, 10, &o)
	a, ok := tree.Inline(tree.Root(), NewILLocation(0, true, true), 2, 60)
	require.True(t, ok)
	_, ok = tree.Inline(a, NewILLocation(0, true, true), 3, 1)
	require.False(t, ok)
	_, ok = tree.Inline(tree.Root(), NewILLocation(4, true, true), 4, 50)
	require.False(t, ok)
	require.Equal(t, 2, tree.Count())
	require.Equal(t, 1, a.Ordinal())
	require.Equal(t, "#0 root method 0x1\n  #1 inlinee 0x2 at 0x000[E][C] of #0\n", tree.Dump())
}

func TestDebugInfo_Validate(t *testing.T) {
	o := opts.Options{}
	tree := NewInlineTree(1, 16, &o)
	tree.Root().SetInstrStarts(0, 1, 5, 10)
	a, _ := tree.Inline(tree.Root(), NewILLocation(5, true, true), 2, 8)
	a.SetInstrStarts(0, 2, 6)

	require.NoError(t, New(a, NewILLocation(2, false, false)).Validate())
	require.NoError(t, New(a, BadILLocation()).Validate())
	require.Error(t, New(a, NewILLocation(3, false, false)).Validate())

	b, _ := tree.Inline(tree.Root(), NewILLocation(7, true, true), 3, 8)
	require.Error(t, New(b, NewILLocation(0, false, false)).Validate())
	require.NoError(t, DebugInfo{}.Validate())
}
