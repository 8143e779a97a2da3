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
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudwego/gentree/internal/opts"
	"github.com/cloudwego/gentree/internal/types"
)

func newTestCompiler(t *testing.T, target string, fn ...func(o *opts.Options)) *Compiler {
	o := opts.GetDefaultOptions()
	o.Target = target
	o.DebugChecks = true
	for _, f := range fn {
		f(&o)
	}

	/* one compilation per test */
	c, err := NewCompiler(context.Background(), 0x1000, 64, &o)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func mustOper(t *testing.T, c *Compiler, op Oper, typ types.VarType, ops ...*Node) *Node {
	n, err := c.NewOperNode(op, typ, ops...)
	require.NoError(t, err)
	return n
}

func edgesOf(n *Node) []*Node {
	var ret []*Node
	for it := n.UseEdges(); !it.Done(); it.Next() {
		ret = append(ret, *it.Edge())
	}
	return ret
}
