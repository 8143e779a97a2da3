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


package debug

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudwego/gentree/internal/ir"
	"github.com/cloudwego/gentree/internal/opts"
	"github.com/cloudwego/gentree/internal/types"
)

func newCompiler(t *testing.T) *ir.Compiler {
	o := opts.GetDefaultOptions()
	o.Target = "amd64"
	c, err := ir.NewCompiler(context.Background(), 0x1000, 16, &o)
	require.NoError(t, err)
	return c
}

func storeTree(t *testing.T, c *ir.Compiler) *ir.Node {
	ind := c.NewIndir(types.Int, c.NewLclVar(0, types.ByRef), 0)
	add, err := c.NewOperNode(ir.ADD, types.Int, c.NewIconNode(2, types.Int), ind)
	require.NoError(t, err)
	return c.NewStoreLclVar(1, add)
}

func TestSummarize(t *testing.T) {
	c := newCompiler(t)
	defer c.Close()
	root := storeTree(t, c)

	/* not costed yet */
	_, err := Summarize(root)
	require.ErrorIs(t, err, ir.ErrCostsNotSet)

	/* 1, 3, 6, 8, 9 */
	c.SetEvalOrder(root)
	sum, err := Summarize(root)
	require.NoError(t, err)
	require.Equal(t, 5, sum.Nodes)
	require.Equal(t, 27.0, sum.Total)
	require.InDelta(t, 5.4, sum.Mean, 1e-9)
	require.InDelta(t, 3.3615, sum.StdDev, 1e-4)
	require.Equal(t, 6.0, sum.Median)
	require.Equal(t, 9.0, sum.Max)
}

func TestGetStats(t *testing.T) {
	old := GetStats()
	c := newCompiler(t)
	storeTree(t, c)
	c.Close()

	/* counted when the compilation is closed */
	st := GetStats()
	require.GreaterOrEqual(t, st.Compiler.Closed, old.Compiler.Closed+1)
	require.GreaterOrEqual(t, st.Memory.Nodes, old.Memory.Nodes+5)
	require.GreaterOrEqual(t, st.FieldSeq.Size, old.FieldSeq.Size)
}
