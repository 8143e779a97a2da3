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
	"encoding/hex"

	"tlog.app/go/errors"

	"github.com/cloudwego/gentree/internal/abi"
	"github.com/cloudwego/gentree/internal/debuginfo"
	"github.com/cloudwego/gentree/internal/ir"
	"github.com/cloudwego/gentree/internal/opts"
	"github.com/cloudwego/gentree/internal/types"
)

// NewCompiler starts a compilation of the method with the given options.
func (self *Method) NewCompiler(ctx context.Context, o *opts.Options) (*ir.Compiler, error) {
	return ir.NewCompiler(ctx, debuginfo.MethodHandle(self.Method), self.ILSize, o)
}

// Build declares the locals of the method in c, admits its inlinees into the
// inline tree of c and builds its statements. c must have been created for
// the same method.
func (self *Method) Build(c *ir.Compiler) ([]*ir.Statement, error) {
	for i, v := range self.Locals {
		if typ, err := typeOr(v, types.Undef); err != nil {
			return nil, errors.Wrap(err, "local V%02d", i)
		} else if typ == types.Undef {
			return nil, errors.New("local V%02d: no type", i)
		} else {
			c.AddLocal(typ)
		}
	}

	/* instruction boundaries of the root method */
	if len(self.Instrs) != 0 {
		c.Inlines.Root().SetInstrStarts(self.Instrs...)
	}

	/* inline contexts are numbered in the order they are admitted */
	for i, v := range self.Inlinees {
		parent := c.Inlines.Context(v.Parent)
		if parent == nil {
			return nil, errors.New("inlinee %d: no inline context #%d", i, v.Parent)
		}
		loc := debuginfo.NewILLocation(v.At, false, true)
		if _, ok := c.Inlines.Inline(parent, loc, debuginfo.MethodHandle(v.Method), v.ILSize); !ok {
			return nil, errors.New("inlinee %d: rejected by the inlining limits", i)
		}
	}

	/* the statements themselves */
	ret := make([]*ir.Statement, 0, len(self.Statements))
	for i := range self.Statements {
		if st, err := self.Statements[i].build(c); err != nil {
			return nil, errors.Wrap(err, "statement %d", i)
		} else {
			ret = append(ret, st)
		}
	}
	return ret, nil
}

func (self *StmtDesc) build(c *ir.Compiler) (*ir.Statement, error) {
	ctx := c.Inlines.Context(self.Ctx)
	if ctx == nil {
		return nil, errors.New("no inline context #%d", self.Ctx)
	}

	/* statements without an IL offset are compiler generated */
	loc := debuginfo.BadILLocation()
	if self.IL != nil {
		loc = debuginfo.NewILLocation(*self.IL, self.StackEmpty, false)
	}

	/* build the tree */
	root, err := buildNode(c, &self.Tree)
	if err != nil {
		return nil, err
	}
	return c.NewStatement(root, debuginfo.New(ctx, loc))
}

func buildNode(c *ir.Compiler, d *NodeDesc) (*ir.Node, error) {
	if d == nil {
		return nil, ir.ErrBadOperand
	}

	/* operator and flags */
	op, ok := ir.ParseOper(d.Oper)
	if !ok {
		return nil, errors.New("unknown operator %q", d.Oper)
	}
	fv, err := parseFlags(d.Flags)
	if err != nil {
		return nil, errors.Wrap(err, "%v", op)
	}

	/* the node, then the flags it asks for on top of the defaults */
	n, err := buildOper(c, op, fv, d)
	if err != nil {
		return nil, errors.Wrap(err, "%v", op)
	}
	n.AddFlags(fv)
	n.UpdateEffects()
	return n, nil
}

func buildOps(c *ir.Compiler, op ir.Oper, ds []*NodeDesc, want int) ([]*ir.Node, error) {
	if want >= 0 && len(ds) != want {
		return nil, ir.ArityError{Oper: op, Want: want, Got: len(ds)}
	}

	/* operands in the order they are listed */
	ret := make([]*ir.Node, 0, len(ds))
	for i, v := range ds {
		if n, err := buildNode(c, v); err != nil {
			return nil, errors.Wrap(err, "operand %d", i)
		} else {
			ret = append(ret, n)
		}
	}
	return ret, nil
}

func buildOptional(c *ir.Compiler, d *NodeDesc) (*ir.Node, error) {
	if d == nil {
		return nil, nil
	} else {
		return buildNode(c, d)
	}
}

func buildOper(c *ir.Compiler, op ir.Oper, fv ir.Flags, d *NodeDesc) (*ir.Node, error) {
	switch op {
	case ir.CNS_INT, ir.CNS_LNG, ir.CNS_DBL, ir.CNS_STR, ir.CNS_VEC:
		return buildConst(c, op, d)
	case ir.LCL_VAR, ir.LCL_FLD, ir.LCL_ADDR, ir.PHI_ARG, ir.STORE_LCL_VAR, ir.STORE_LCL_FLD:
		return buildLocal(c, op, d)
	case ir.CALL:
		return buildCall(c, d)
	case ir.LEA:
		return buildLea(c, d)
	case ir.FIELD_LIST:
		return buildFieldList(c, d)
	}

	/* the rest are typed operators over a list of operands */
	typ, err := typeOr(d.Type, types.Int)
	if err != nil {
		return nil, err
	}

	/* leaves without a payload */
	switch op {
	case ir.PHYSREG:
		return c.NewPhysReg(abi.Reg(d.Reg), typ), nil
	case ir.ARGPLACE:
		return c.NewArgPlace(typ), nil
	case ir.NO_OP:
		return c.NewNothingNode(), nil
	}

	/* the operand count of the variadic ones is free */
	want := -1
	switch op {
	case ir.CAST, ir.IND, ir.NULLCHECK, ir.BLK, ir.ARR_LENGTH, ir.PUTARG_SPLIT:
		want = 1
	case ir.STOREIND, ir.STORE_BLK, ir.BOUNDS_CHECK:
		want = 2
	case ir.CMPXCHG, ir.STORE_DYN_BLK, ir.SELECT:
		want = 3
	}

	/* build the operands first */
	ops, err := buildOps(c, op, d.Ops, want)
	if err != nil {
		return nil, err
	}

	/* then the node */
	switch op {
	case ir.CAST:
		return c.NewCast(typ, ops[0], fv&ir.FlagUnsigned != 0, fv&ir.FlagOverflow != 0), nil
	case ir.IND:
		return c.NewIndir(typ, ops[0], fv), nil
	case ir.NULLCHECK:
		return c.NewNullCheck(ops[0]), nil
	case ir.BLK:
		return c.NewBlk(ops[0], d.Size), nil
	case ir.ARR_LENGTH:
		return c.NewArrLen(ops[0], d.Offset), nil
	case ir.PUTARG_SPLIT:
		return c.NewPutArgSplit(ops[0], int(d.Size)), nil
	case ir.STOREIND:
		return c.NewStoreInd(typ, ops[0], ops[1], fv), nil
	case ir.STORE_BLK:
		return c.NewStoreBlk(ops[0], ops[1], d.Size), nil
	case ir.BOUNDS_CHECK:
		return buildBoundsCheck(c, ops, d)
	case ir.CMPXCHG:
		return c.NewCmpXchg(typ, ops[0], ops[1], ops[2]), nil
	case ir.STORE_DYN_BLK:
		return c.NewStoreDynBlk(ops[0], ops[1], ops[2]), nil
	case ir.SELECT:
		return c.NewSelect(typ, ops[0], ops[1], ops[2]), nil
	case ir.PHI:
		return c.NewPhi(typ, ops...)
	case ir.HWINTRINSIC:
		return c.NewHWIntrinsic(typ, d.ID, ops...)
	default:
		return c.NewOperNode(op, typ, ops...)
	}
}

func buildConst(c *ir.Compiler, op ir.Oper, d *NodeDesc) (*ir.Node, error) {
	if len(d.Ops) != 0 {
		return nil, ir.ArityError{Oper: op, Want: 0, Got: len(d.Ops)}
	}

	/* strings and vectors are not numbers */
	switch op {
	case ir.CNS_STR:
		return c.NewSconNode(d.Value), nil
	case ir.CNS_VEC:
		return buildVecCon(c, d)
	case ir.CNS_DBL:
		return buildDblCon(c, d)
	}

	/* integer constants, possibly handles */
	v, err := parseInt(d.Value)
	if err != nil {
		return nil, err
	}

	/* longs are always 64-bit */
	if op == ir.CNS_LNG {
		return c.NewLconNode(v), nil
	}

	/* handles carry their own type */
	if d.Handle != "" {
		if kind, err := lookup(_HandleKinds, "handle kind", d.Handle); err != nil {
			return nil, err
		} else {
			return c.NewIconHandle(v, kind), nil
		}
	}

	/* plain integer */
	if typ, err := typeOr(d.Type, types.Int); err != nil {
		return nil, err
	} else {
		return c.NewIconNode(v, typ), nil
	}
}

func buildDblCon(c *ir.Compiler, d *NodeDesc) (*ir.Node, error) {
	typ, err := typeOr(d.Type, types.Double)
	if err != nil {
		return nil, err
	}
	v, err := parseFloat(d.Value)
	if err != nil {
		return nil, err
	}
	return c.NewDconNode(v, typ), nil
}

func buildVecCon(c *ir.Compiler, d *NodeDesc) (*ir.Node, error) {
	typ, err := typeOr(d.Type, types.SIMD16)
	if err != nil {
		return nil, err
	}

	/* the bytes of the vector, in memory order */
	buf, err := hex.DecodeString(d.Value)
	if err != nil {
		return nil, errors.Wrap(err, "vector constant")
	}
	if len(buf) > typ.Size() {
		return nil, errors.New("vector constant: %d bytes do not fit %v", len(buf), typ)
	}
	return c.NewVconNode(typ, buf), nil
}

func buildLocal(c *ir.Compiler, op ir.Oper, d *NodeDesc) (*ir.Node, error) {
	if int(d.Lcl) >= c.NumLocals() {
		return nil, errors.New("no local V%02d", d.Lcl)
	}

	/* the type of the local is the default */
	typ, err := typeOr(d.Type, c.LocalType(d.Lcl))
	if err != nil {
		return nil, err
	}

	/* field offsets are 16 bits */
	if d.Offset < 0 || d.Offset > 0xffff {
		return nil, errors.New("local field offset out of range: %d", d.Offset)
	}

	/* stores take the value, the rest are leaves */
	want := 0
	if op == ir.STORE_LCL_VAR || op == ir.STORE_LCL_FLD {
		want = 1
	}
	ops, err := buildOps(c, op, d.Ops, want)
	if err != nil {
		return nil, err
	}

	/* build the node */
	switch op {
	case ir.LCL_VAR:
		return c.NewLclVar(d.Lcl, typ), nil
	case ir.LCL_FLD:
		return c.NewLclFld(d.Lcl, typ, uint16(d.Offset)), nil
	case ir.LCL_ADDR:
		return c.NewLclAddr(d.Lcl, uint16(d.Offset)), nil
	case ir.PHI_ARG:
		return c.NewPhiArg(d.Lcl, typ), nil
	case ir.STORE_LCL_VAR:
		return c.NewStoreLclVar(d.Lcl, ops[0]), nil
	default:
		return c.NewStoreLclFld(d.Lcl, typ, uint16(d.Offset), ops[0]), nil
	}
}

func buildLea(c *ir.Compiler, d *NodeDesc) (*ir.Node, error) {
	if len(d.Ops) != 0 {
		return nil, errors.New("address modes take a base and an index, not operands")
	}

	/* both parts are optional */
	base, err := buildOptional(c, d.Base)
	if err != nil {
		return nil, errors.Wrap(err, "base")
	}
	index, err := buildOptional(c, d.Index)
	if err != nil {
		return nil, errors.Wrap(err, "index")
	}

	/* the scale only applies to an index */
	scale := d.Scale
	if scale == 0 {
		scale = 1
	}
	return c.NewLea(base, index, scale, d.Offset), nil
}

func buildBoundsCheck(c *ir.Compiler, ops []*ir.Node, d *NodeDesc) (*ir.Node, error) {
	if kind, err := lookup(_ThrowKinds, "throw kind", d.Throw); err != nil {
		return nil, err
	} else {
		return c.NewBoundsCheck(ops[0], ops[1], kind), nil
	}
}

func buildFieldList(c *ir.Compiler, d *NodeDesc) (*ir.Node, error) {
	if len(d.Ops) != 0 {
		return nil, errors.New("field lists take fields, not operands")
	}

	/* fields in offset order */
	fl := c.NewFieldList()
	for i, v := range d.Fields {
		n, err := buildNode(c, v.Node)
		if err != nil {
			return nil, errors.Wrap(err, "field %d", i)
		}

		/* the field type defaults to the type of its value */
		typ, err := typeOr(v.Type, n.Type())
		if err != nil {
			return nil, errors.Wrap(err, "field %d", i)
		}

		/* add to the list */
		if err = fl.AddField(n, v.Offset, typ); err != nil {
			return nil, errors.Wrap(err, "field %d", i)
		}
	}
	return fl.Node(), nil
}

func buildCall(c *ir.Compiler, d *NodeDesc) (*ir.Node, error) {
	if len(d.Ops) != 0 {
		return nil, errors.New("calls take arguments, not operands")
	}

	/* the return type */
	typ, err := typeOr(d.Type, types.Void)
	if err != nil {
		return nil, err
	}

	/* the call itself */
	var call *ir.Call
	switch d.Kind {
	case "", "user":
		call = c.NewCall(uintptr(d.Target), typ)
	case "helper":
		call = c.NewHelperCall(uintptr(d.Target), typ)
	case "indirect":
		if addr, err := buildNode(c, d.Addr); err != nil {
			return nil, errors.Wrap(err, "call address")
		} else {
			call = c.NewIndirectCall(addr, typ)
		}
	default:
		return nil, errors.New("unknown call kind: %q", d.Kind)
	}

	/* only indirect calls have an address */
	if d.Addr != nil && !call.IsIndirect() {
		return nil, errors.New("%v calls have no address", call.Kind())
	}

	/* the properties the ABI looks at */
	info, err := parseCallInfo(d.Info)
	if err != nil {
		return nil, err
	}
	call.AddInfo(info)
	call.SetEntry(d.Entry)

	/* the special operands */
	if err = buildCallExtras(c, call, d); err != nil {
		return nil, err
	}

	/* the arguments, in signature order */
	for i := range d.Args {
		if err = buildCallArg(c, call, &d.Args[i]); err != nil {
			return nil, errors.Wrap(err, "argument %d", i)
		}
	}

	/* multi-register returns */
	if len(d.Returns) != 0 {
		if err = buildReturns(c, call, d.Returns); err != nil {
			return nil, err
		}
	}
	return call.Node(), nil
}

func buildCallExtras(c *ir.Compiler, call *ir.Call, d *NodeDesc) error {
	if d.Ctrl != nil {
		if n, err := buildNode(c, d.Ctrl); err != nil {
			return errors.Wrap(err, "control expression")
		} else {
			call.SetControlExpr(n)
		}
	}

	/* the cookie of unmanaged calls */
	if d.Cookie != nil {
		if n, err := buildNode(c, d.Cookie); err != nil {
			return errors.Wrap(err, "cookie")
		} else if err = call.SetCookie(n); err != nil {
			return errors.Wrap(err, "cookie")
		}
	}
	return nil
}

func buildCallArg(c *ir.Compiler, call *ir.Call, d *ArgDesc) error {
	wk, err := lookup(_WellKnownArgs, "well-known argument", d.WellKnown)
	if err != nil {
		return err
	}

	/* the value passed */
	n, err := buildNode(c, d.Node)
	if err != nil {
		return err
	}

	/* the signature type defaults to the type of the value */
	st, err := typeOr(d.SigType, types.Undef)
	if err != nil {
		return err
	}

	/* append to the list */
	_, err = call.Args().PushBack(ir.NewCallArg{
		Node:      n,
		WellKnown: wk,
		SigType:   st,
		SigSize:   d.SigSize,
	})
	return err
}

func buildReturns(c *ir.Compiler, call *ir.Call, names []string) error {
	typs := make([]types.VarType, 0, len(names))
	for _, v := range names {
		if typ, err := typeOr(v, types.Undef); err != nil {
			return errors.Wrap(err, "return type")
		} else {
			typs = append(typs, typ)
		}
	}
	return call.SetReturnTypes(c.Target.MaxRegReturn, typs...)
}
