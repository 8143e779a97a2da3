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

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/gentree/internal/debuginfo"
	"github.com/cloudwego/gentree/internal/types"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestDump_Store(t *testing.T) {
	c := newTestCompiler(t, "amd64")
	cns := c.NewIconNode(2, types.Int)
	ind := c.NewIndir(types.Int, c.NewLclVar(0, types.ByRef), 0)
	add := mustOper(t, c, ADD, types.Int, cns, ind)
	di := debuginfo.New(c.Inlines.Root(), debuginfo.NewILLocation(0x10, true, false))
	st, err := c.NewStatement(c.NewStoreLclVar(1, add), di)
	require.NoError(t, err)

	/* costs are shown once the order is set */
	require.Equal(t, "[000004] (  -,  -) --X--- ADD int", DumpNode(add))
	c.SetEvalOrder(st.Root())
	newGoldie(t).Assert(t, "dump_store", []byte(DumpStatement(st)))
}

func TestDump_CallWithLateArgs(t *testing.T) {
	c := newTestCompiler(t, "amd64")
	call := c.NewCall(0x1000, types.Int)
	pushArgs(t, call, c.NewIconNode(7, types.Int), c.NewLclVar(0, types.Int))

	/* placeholders early, values late */
	require.NoError(t, c.AddFinalArgsAndDetermineABIInfo(call))
	require.NoError(t, c.EvalArgsToTemps(call))
	c.SetEvalOrder(call.Node())
	newGoldie(t).Assert(t, "dump_call", []byte(Dump(call.Node())))
}

func TestDump_Extras(t *testing.T) {
	c := newTestCompiler(t, "amd64")
	require.Equal(t, " 0x40 class", dumpExtra(c.NewIconHandle(0x40, FlagIconClassHdl)))
	require.Equal(t, " 1.5", dumpExtra(c.NewDconNode(1.5, types.Double)))
	require.Equal(t, ` "hi"`, dumpExtra(c.NewSconNode("hi")))
	require.Equal(t, " V03 [+8]", dumpExtra(c.NewLclFld(3, types.Int, 8)))
	require.Equal(t, " long -> ubyte", dumpExtra(c.NewCast(types.UByte, c.NewLclVar(0, types.Long), true, false)))
	require.Equal(t, " (b+(i*4)+12)", dumpExtra(c.NewLea(c.NewLclVar(0, types.Ref), c.NewLclVar(1, types.Long), 4, 12)))
	require.Equal(t, " <0102>", dumpExtra(c.NewVconNode(types.SIMD8, []byte{1, 2})))
}
