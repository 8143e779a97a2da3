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


package irtext

import (
	"context"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/gentree/internal/abi"
	"github.com/cloudwego/gentree/internal/ir"
	"github.com/cloudwego/gentree/internal/opts"
	"github.com/cloudwego/gentree/internal/types"
)

func buildText(t *testing.T, src string) (*ir.Compiler, []*ir.Statement, error) {
	m, err := Parse([]byte(src))
	require.NoError(t, err)
	return buildMethod(t, m)
}

func buildMethod(t *testing.T, m *Method) (*ir.Compiler, []*ir.Statement, error) {
	o := opts.GetDefaultOptions()
	o.Target = "amd64"
	o.DebugChecks = true

	/* one compilation per method */
	c, err := m.NewCompiler(context.Background(), &o)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	/* build the statements */
	sts, err := m.Build(c)
	return c, sts, err
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("method: 1\nilsize: 4\nbogus: 1\n"))
	require.Error(t, err)
	_, err = Parse([]byte("method: 1\nilsize: -4\n"))
	require.Error(t, err)
	_, err = Parse([]byte("statements: [{tree: {oper: NOP, lcl: x}}]\n"))
	require.Error(t, err)
}

func TestBuild_Golden(t *testing.T) {
	m, err := ParseFile("testdata/store.yaml")
	require.NoError(t, err)
	require.Len(t, m.Inlinees, 1)

	/* build and order every statement */
	c, sts, err := buildMethod(t, m)
	require.NoError(t, err)
	require.Len(t, sts, 2)
	require.Equal(t, 2, c.Inlines.Count())

	/* dump them all */
	var sb strings.Builder
	for _, st := range sts {
		c.SetEvalOrder(st.Root())
		require.NoError(t, ir.CheckEffects(st.Root()))
		sb.WriteString(ir.DumpStatement(st))
	}
	goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	).Assert(t, "store", []byte(sb.String()))
}

const _ShapesText = `
method: 0x1000
ilsize: 16
locals: [ref, long, int]
statements:
  - tree:
      oper: IND
      type: int
      flags: [volatile]
      ops:
        - oper: LEA
          offset: 12
          scale: 4
          index: {oper: LCL_VAR, lcl: 1}
  - tree:
      oper: SELECT
      type: int
      ops:
        - {oper: LT, ops: [{oper: LCL_VAR, lcl: 2}, {oper: CNS_INT, value: "0"}]}
        - {oper: CNS_INT, value: "1"}
        - {oper: CNS_INT, value: "-1"}
  - tree:
      oper: CAST
      type: ubyte
      flags: [unsigned]
      ops: [{oper: LCL_VAR, lcl: 1}]
  - tree:
      oper: BOUNDS_CHECK
      throw: index
      ops:
        - {oper: LCL_VAR, lcl: 2}
        - {oper: ARR_LENGTH, offset: 8, ops: [{oper: LCL_VAR, lcl: 0}]}
  - tree:
      oper: FIELD_LIST
      fields:
        - {offset: 0, node: {oper: LCL_VAR, lcl: 2}}
        - {offset: 8, type: long, node: {oper: CNS_LNG, value: "0x10"}}
  - tree: {oper: CNS_INT, handle: class, value: "0x40"}
  - tree: {oper: CNS_VEC, value: "0102"}
`

func TestBuild_Shapes(t *testing.T) {
	_, sts, err := buildText(t, _ShapesText)
	require.NoError(t, err)
	require.Len(t, sts, 7)

	/* volatile load through an address mode without a base */
	ind, err := sts[0].Root().AsIndir()
	require.NoError(t, err)
	require.True(t, ind.IsVolatile())
	lea, err := ind.Addr().AsLea()
	require.NoError(t, err)
	require.Nil(t, lea.Base())
	require.Equal(t, uint32(4), lea.Scale())
	require.Equal(t, int32(12), lea.Offset())
	require.Equal(t, ir.LCL_VAR, lea.Index().Oper())

	/* the condition of a select is listed first */
	sel, err := sts[1].Root().AsConditional()
	require.NoError(t, err)
	require.Equal(t, ir.LT, sel.Cond().Oper())
	require.Equal(t, ir.CNS_INT, sel.Op1().Oper())

	/* unsigned narrowing */
	cast, err := sts[2].Root().AsCast()
	require.NoError(t, err)
	require.Equal(t, types.UByte, cast.CastToType())
	require.Equal(t, types.Long, cast.CastFromType())
	require.NotZero(t, cast.Node().Flags()&ir.FlagUnsigned)

	/* bounds check against an array length */
	bc, err := sts[3].Root().AsBoundsChk()
	require.NoError(t, err)
	require.Equal(t, ir.ThrowIndexOutOfRange, bc.ThrowKind())
	alen, err := bc.Length().AsArrLen()
	require.NoError(t, err)
	require.Equal(t, int32(8), alen.LenOffset())

	/* field types default to the value types */
	fl, err := sts[4].Root().AsFieldList()
	require.NoError(t, err)
	require.Equal(t, 2, fl.NumFields())
	require.Equal(t, types.Int, fl.Fields()[0].Type())
	require.Equal(t, types.Long, fl.Fields()[1].Type())
	require.Equal(t, uint32(8), fl.Fields()[1].Offset())

	/* handles are pointer sized */
	require.True(t, sts[5].Root().IsIconHandle())
	require.Equal(t, types.Long, sts[5].Root().Type())

	/* vector bytes */
	vec, err := sts[6].Root().AsVecCon()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, vec.Bytes())
	require.Equal(t, types.SIMD16, vec.Node().Type())
}

const _CallText = `
method: 0x1000
ilsize: 16
locals: [ref, int]
statements:
  - tree:
      oper: CALL
      kind: indirect
      type: long
      info: [unmanaged]
      flags: [nothrow]
      addr: {oper: LCL_VAR, lcl: 0}
      cookie: {oper: CNS_INT, handle: cell, value: "0x88"}
      args:
        - wellknown: this
          node: {oper: LCL_VAR, lcl: 0}
        - sigtype: int
          node: {oper: CNS_INT, value: "3"}
      returns: [long, long]
`

func TestBuild_Call(t *testing.T) {
	c, sts, err := buildText(t, _CallText)
	require.NoError(t, err)
	call, err := sts[0].Root().AsCall()
	require.NoError(t, err)

	/* shape of the call */
	require.True(t, call.IsIndirect())
	require.True(t, call.IsUnmanaged())
	require.NotNil(t, call.Addr())
	require.NotNil(t, call.Cookie())
	require.Equal(t, 2, call.NumRegs())
	require.Equal(t, 2, call.MultiRegs().Count())

	/* no exceptions once marked so */
	require.Zero(t, call.Node().Flags()&ir.FlagExcept)
	require.NotZero(t, call.Node().Flags()&ir.FlagCall)

	/* the arguments in order */
	args := call.Args()
	require.Equal(t, 2, args.CountArgs())
	require.Equal(t, 2, args.CountUserArgs())
	require.NotNil(t, args.GetThisArg())
	require.Equal(t, types.Int, args.GetArgByIndex(1).SigType())
	require.Equal(t, abi.None, args.GetArgByIndex(1).WellKnown())

	/* and ready for the ABI */
	require.NoError(t, c.AddFinalArgsAndDetermineABIInfo(call))
	require.True(t, args.IsAbiInformationDetermined())
}

func TestBuild_Errors(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		msg  string
	}{
		{"oper", "statements: [{tree: {oper: FROB}}]", "unknown operator"},
		{"flag", "statements: [{tree: {oper: CNS_INT, value: '1', flags: [shiny]}}]", "unknown flag"},
		{"local", "statements: [{tree: {oper: LCL_VAR, lcl: 3}}]", "no local V03"},
		{"type", "locals: [wide]", "unknown type"},
		{"arity", "statements: [{tree: {oper: CAST, ops: []}}]", "ArityError"},
		{"const", "statements: [{tree: {oper: CNS_INT, value: 'x'}}]", "integer constant"},
		{"handle", "statements: [{tree: {oper: CNS_INT, value: '1', handle: door}}]", "unknown handle kind"},
		{"ctx", "statements: [{ctx: 4, tree: {oper: NO_OP}}]", "no inline context #4"},
		{"inlinee", "inlinees: [{parent: 2, at: 0, method: 1, ilsize: 1}]", "no inline context #2"},
		{"kind", "statements: [{tree: {oper: CALL, kind: far}}]", "unknown call kind"},
		{"addr", "statements: [{tree: {oper: CALL, addr: {oper: NO_OP}}}]", "no address"},
		{"wellknown", "statements: [{tree: {oper: CALL, args: [{wellknown: that, node: {oper: NO_OP}}]}}]", "unknown well-known argument"},
		{"il", "ilsize: 8\ninstrs: [0, 4]\nstatements: [{il: 2, tree: {oper: NO_OP}}]", "not an instruction start"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := buildText(t, tc.src)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.msg)
		})
	}
}
