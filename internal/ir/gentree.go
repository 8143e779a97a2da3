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
	"github.com/cloudwego/gentree/internal/abi"
	"github.com/cloudwego/gentree/internal/types"
)

func (self *Compiler) alloc(op Oper, typ types.VarType) *Node {
	p := self.arena.alloc(op, Small)
	p.typ = typ
	return p
}

func (self *Compiler) allocLarge(op Oper, typ types.VarType) *Node {
	p := self.arena.alloc(op, Large)
	p.typ = typ
	return p
}

func (self *Compiler) finish(n *Node) *Node {
	n.UpdateEffects()
	return n
}

func (self *Compiler) nativeInt() types.VarType {
	return types.NativeInt(self.Target.PtrSize)
}

/** Constants **/

// NewIconNode creates an integer constant of a type no wider than a pointer.
func (self *Compiler) NewIconNode(v int64, typ types.VarType) *Node {
	p := self.alloc(CNS_INT, typ)
	p.ival = v
	return p
}

func (self *Compiler) NewLconNode(v int64) *Node {
	p := self.alloc(CNS_LNG, types.Long)
	p.ival = v
	return p
}

func (self *Compiler) NewDconNode(v float64, typ types.VarType) *Node {
	p := self.alloc(CNS_DBL, typ)
	p.fval = v
	return p
}

func (self *Compiler) NewSconNode(v string) *Node {
	p := self.alloc(CNS_STR, types.Ref)
	p.sval = v
	return p
}

func (self *Compiler) NewVconNode(typ types.VarType, data []byte) *Node {
	p := self.alloc(CNS_VEC, typ)
	p.vval = append([]byte(nil), data...)
	return p
}

// NewIconHandle creates a pointer-sized constant holding a runtime handle of
// the given kind.
func (self *Compiler) NewIconHandle(v int64, kind Flags) *Node {
	p := self.NewIconNode(v, self.nativeInt())
	p.flags |= kind & FlagIconHdlMask
	return p
}

// NewNothingNode creates a node that does nothing.
func (self *Compiler) NewNothingNode() *Node {
	return self.alloc(NO_OP, types.Void)
}

/** Locals **/

func (self *Compiler) NewLclVar(lcl uint32, typ types.VarType) *Node {
	p := self.alloc(LCL_VAR, typ)
	p.lclNum = lcl
	return p
}

func (self *Compiler) NewLclFld(lcl uint32, typ types.VarType, offs uint16) *Node {
	p := self.alloc(LCL_FLD, typ)
	p.lclNum = lcl
	p.lclOffs = offs
	return p
}

func (self *Compiler) NewLclAddr(lcl uint32, offs uint16) *Node {
	p := self.alloc(LCL_ADDR, types.ByRef)
	p.lclNum = lcl
	p.lclOffs = offs
	return p
}

// NewStoreLclVar creates a store of val into a local.
func (self *Compiler) NewStoreLclVar(lcl uint32, val *Node) *Node {
	p := self.alloc(STORE_LCL_VAR, val.typ.ActualType())
	p.lclNum = lcl
	p.ops[0] = val
	return self.finish(p)
}

func (self *Compiler) NewStoreLclFld(lcl uint32, typ types.VarType, offs uint16, val *Node) *Node {
	p := self.alloc(STORE_LCL_FLD, typ)
	p.lclNum = lcl
	p.lclOffs = offs
	p.ops[0] = val
	return self.finish(p)
}

func (self *Compiler) NewPhiArg(lcl uint32, typ types.VarType) *Node {
	p := self.alloc(PHI_ARG, typ)
	p.lclNum = lcl
	return p
}

/** Simple Operators **/

func operArity(op Oper) int {
	switch {
	case op.IsLeaf():
		return 0
	case op.IsUnary():
		return 1
	case op.IsBinary():
		return 2
	default:
		return -1
	}
}

func allowsNilOperand(op Oper) bool {
	switch op {
	case RETURN, NOP, LEA:
		return true
	default:
		return false
	}
}

// NewOperNode creates a node of a leaf, unary or binary operator. Nodes of
// special operators are built with their own constructors.
func (self *Compiler) NewOperNode(op Oper, typ types.VarType, ops ...*Node) (*Node, error) {
	return self.newOper(op, Small, typ, ops)
}

// NewLargeOperNode is like NewOperNode, but the node can later be changed to
// a large operator.
func (self *Compiler) NewLargeOperNode(op Oper, typ types.VarType, ops ...*Node) (*Node, error) {
	return self.newOper(op, Large, typ, ops)
}

func (self *Compiler) newOper(op Oper, size SizeClass, typ types.VarType, ops []*Node) (*Node, error) {
	if op >= OperCount {
		return nil, ErrBadOperand
	}

	/* check the number of operands */
	nb := operArity(op)
	if nb < 0 {
		return nil, KindMismatchError{View: "Op", Oper: op}
	} else if len(ops) != nb {
		return nil, ArityError{Oper: op, Want: nb, Got: len(ops)}
	}

	/* only a few operators have optional operands */
	for _, v := range ops {
		if v == nil && !allowsNilOperand(op) {
			return nil, ErrBadOperand
		}
	}

	/* build the node */
	p := self.arena.alloc(op, size)
	p.typ = typ
	copy(p.ops[:], ops)
	return self.finish(p), nil
}

// NewCast creates a conversion of val to typ.
func (self *Compiler) NewCast(typ types.VarType, val *Node, unsigned bool, overflow bool) *Node {
	p := self.alloc(CAST, typ.ActualType())
	p.aux = uint32(typ)
	p.ops[0] = val

	/* conversion flags */
	if unsigned {
		p.flags |= FlagUnsigned
	}
	if overflow {
		p.flags |= FlagOverflow
	}
	return self.finish(p)
}

// NewIndir creates a load of typ from addr.
func (self *Compiler) NewIndir(typ types.VarType, addr *Node, flags Flags) *Node {
	p := self.alloc(IND, typ)
	p.flags |= flags
	p.ops[0] = addr
	return self.finish(p)
}

func (self *Compiler) NewNullCheck(addr *Node) *Node {
	p := self.alloc(NULLCHECK, types.Byte)
	p.ops[0] = addr
	return self.finish(p)
}

// NewStoreInd creates a store of data through addr.
func (self *Compiler) NewStoreInd(typ types.VarType, addr *Node, data *Node, flags Flags) *Node {
	p := self.alloc(STOREIND, typ)
	p.flags |= flags
	p.ops[0] = addr
	p.ops[1] = data
	return self.finish(p)
}

func (self *Compiler) NewBlk(addr *Node, size uint32) *Node {
	p := self.alloc(BLK, types.Struct)
	p.aux = size
	p.ops[0] = addr
	return self.finish(p)
}

func (self *Compiler) NewStoreBlk(addr *Node, data *Node, size uint32) *Node {
	p := self.alloc(STORE_BLK, types.Struct)
	p.aux = size
	p.ops[0] = addr
	p.ops[1] = data
	return self.finish(p)
}

// NewLea creates the address base + index * scale + offset. Either base or
// index may be nil.
func (self *Compiler) NewLea(base *Node, index *Node, scale uint32, offset int32) *Node {
	typ := self.nativeInt()
	if base != nil && base.typ.IsGC() {
		typ = types.ByRef
	}

	/* build the node */
	p := self.alloc(LEA, typ)
	p.aux = scale
	p.aux2 = offset
	p.ops[0] = base
	p.ops[1] = index
	return self.finish(p)
}

func (self *Compiler) NewBoundsCheck(index *Node, length *Node, kind ThrowKind) *Node {
	p := self.alloc(BOUNDS_CHECK, types.Void)
	p.aux = uint32(kind)
	p.ops[0] = index
	p.ops[1] = length
	return self.finish(p)
}

func (self *Compiler) NewArrLen(arr *Node, lenOffset int32) *Node {
	p := self.alloc(ARR_LENGTH, types.Int)
	p.aux2 = lenOffset
	p.ops[0] = arr
	return self.finish(p)
}

func (self *Compiler) NewPutArgSplit(arg *Node, numRegs int) *Node {
	p := self.alloc(PUTARG_SPLIT, arg.typ)
	p.aux = uint32(numRegs)
	p.ops[0] = arg

	/* one register state per register part */
	if numRegs > 1 {
		p.mreg = newMultiRegs(numRegs)
	}
	return self.finish(p)
}

func (self *Compiler) NewPhysReg(reg abi.Reg, typ types.VarType) *Node {
	p := self.alloc(PHYSREG, typ)
	p.aux = uint32(reg)
	return p
}

// NewArgPlace creates the placeholder left in the argument order by an
// argument that moved to the late list.
func (self *Compiler) NewArgPlace(typ types.VarType) *Node {
	return self.alloc(ARGPLACE, typ)
}

/** Special Operators **/

// NewCall creates a direct call of a user method.
func (self *Compiler) NewCall(method uintptr, typ types.VarType) *Call {
	p := self.allocLarge(CALL, typ)
	p.call.kind = CallKindUser
	p.call.method = method
	return (*Call)(self.finish(p))
}

// NewHelperCall creates a call of a runtime helper.
func (self *Compiler) NewHelperCall(helper uintptr, typ types.VarType) *Call {
	p := self.allocLarge(CALL, typ)
	p.call.kind = CallKindHelper
	p.call.method = helper
	return (*Call)(self.finish(p))
}

// NewIndirectCall creates a call through the address computed by addr.
func (self *Compiler) NewIndirectCall(addr *Node, typ types.VarType) *Call {
	p := self.allocLarge(CALL, typ)
	p.call.kind = CallKindIndirect
	p.call.info |= abi.CallIndirect
	p.call.addr = addr
	return (*Call)(self.finish(p))
}

// NewPhi creates a PHI over the given PHI_ARG nodes.
func (self *Compiler) NewPhi(typ types.VarType, args ...*Node) (*Node, error) {
	for _, v := range args {
		if v == nil || v.oper != PHI_ARG {
			return nil, ErrBadOperand
		}
	}

	/* build the node */
	p := self.alloc(PHI, typ)
	p.uses = append([]*Node(nil), args...)
	return self.finish(p), nil
}

// NewFieldList creates an empty field list, fields are added with AddField.
func (self *Compiler) NewFieldList() *FieldList {
	return (*FieldList)(self.alloc(FIELD_LIST, types.Struct))
}

func (self *Compiler) NewCmpXchg(typ types.VarType, loc *Node, val *Node, comparand *Node) *Node {
	p := self.allocLarge(CMPXCHG, typ)
	p.ops = [3]*Node{loc, val, comparand}
	return self.finish(p)
}

func (self *Compiler) NewStoreDynBlk(addr *Node, data *Node, size *Node) *Node {
	p := self.allocLarge(STORE_DYN_BLK, types.Void)
	p.ops = [3]*Node{addr, data, size}
	return self.finish(p)
}

// NewSelect creates cond ? op1 : op2 evaluated without branches.
func (self *Compiler) NewSelect(typ types.VarType, cond *Node, op1 *Node, op2 *Node) *Node {
	p := self.allocLarge(SELECT, typ)
	p.ops = [3]*Node{op1, op2, cond}
	return self.finish(p)
}

// NewHWIntrinsic creates a hardware intrinsic with any number of operands.
func (self *Compiler) NewHWIntrinsic(typ types.VarType, id uint32, ops ...*Node) (*Node, error) {
	for _, v := range ops {
		if v == nil {
			return nil, ErrBadOperand
		}
	}

	/* build the node */
	p := self.allocLarge(HWINTRINSIC, typ)
	p.aux = id
	p.uses = append([]*Node(nil), ops...)
	return self.finish(p), nil
}
