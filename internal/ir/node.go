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
	"fmt"

	"github.com/cloudwego/gentree/internal/abi"
	"github.com/cloudwego/gentree/internal/fieldseq"
	"github.com/cloudwego/gentree/internal/types"
)

// ValueNum is a value number assigned by value numbering.
type ValueNum uint32

// NoVN means "no value number assigned".
const NoVN = ^ValueNum(0)

// ValueNumPair holds the liberal and conservative value numbers of a node.
type ValueNumPair struct {
	Liberal      ValueNum
	Conservative ValueNum
}

func NoVNPair() ValueNumPair {
	return ValueNumPair{Liberal: NoVN, Conservative: NoVN}
}

// ValueNumberUpdate tells ChangeOperator what to do with cached analysis
// results.
type ValueNumberUpdate uint8

const (
	ClearVN ValueNumberUpdate = iota
	PreserveVN
)

// MaxCost is the largest cost a node can record.
const MaxCost = 255

// BadVarNum is the local number of nodes that do not refer to a local.
const BadVarNum = ^uint32(0)

// Node is one IR node. Every operator shares this layout, the operator
// specific payload is reached through the variant views (AsIntCon, AsCall,
// and so on), which reinterpret the same storage.
type Node struct {
	oper     Oper
	typ      types.VarType
	size     SizeClass
	costEx   uint8
	costSz   uint8
	costsSet bool
	flags    Flags
	reg      abi.Reg
	vn       ValueNumPair
	id       uint32
	next     *Node
	prev     *Node
	ops      [3]*Node

	/* operator specific payload */
	ival    int64
	fval    float64
	sval    string
	vval    []byte
	fseq    *fieldseq.FieldSeq
	lclNum  uint32
	lclOffs uint16
	aux     uint32
	aux2    int32
	uses    []*Node
	fields  []FieldUse
	mreg    *MultiRegs
	call    *callData
}

func (self *Node) ID() uint32                { return self.id }
func (self *Node) Oper() Oper                { return self.oper }
func (self *Node) Type() types.VarType       { return self.typ }
func (self *Node) SetType(typ types.VarType) { self.typ = typ }
func (self *Node) Size() SizeClass           { return self.size }
func (self *Node) Flags() Flags              { return self.flags }
func (self *Node) SetFlags(f Flags)          { self.flags = f }
func (self *Node) AddFlags(f Flags)          { self.flags |= f }
func (self *Node) ClearFlags(f Flags)        { self.flags &^= f }
func (self *Node) Next() *Node               { return self.next }
func (self *Node) Prev() *Node               { return self.prev }

// OperIs reports whether the node's operator is one of ops.
func (self *Node) OperIs(ops ...Oper) bool {
	for _, op := range ops {
		if self.oper == op {
			return true
		}
	}
	return false
}

// TypeIs reports whether the node's type is one of typs.
func (self *Node) TypeIs(typs ...types.VarType) bool {
	for _, typ := range typs {
		if self.typ == typ {
			return true
		}
	}
	return false
}

func (self *Node) OperKind() OperKind       { return self.oper.Kind() }
func (self *Node) OperIsLeaf() bool         { return self.oper.IsLeaf() }
func (self *Node) OperIsConst() bool        { return self.oper.IsConst() }
func (self *Node) OperIsUnary() bool        { return self.oper.IsUnary() }
func (self *Node) OperIsBinary() bool       { return self.oper.IsBinary() }
func (self *Node) OperIsSimple() bool       { return self.oper.IsSimple() }
func (self *Node) OperIsSpecial() bool      { return self.oper.IsSpecial() }
func (self *Node) OperIsCommutative() bool  { return self.oper.IsCommutative() }
func (self *Node) OperIsCompare() bool      { return self.oper.IsCompare() }
func (self *Node) OperIsStore() bool        { return self.oper.IsStore() }
func (self *Node) OperIsLocal() bool        { return self.oper.IsLocal() }
func (self *Node) OperIsIndir() bool        { return self.oper.IsIndir() }
func (self *Node) IsCall() bool             { return self.oper == CALL }
func (self *Node) IsPhiNode() bool          { return self.oper == PHI || self.oper == PHI_ARG }
func (self *Node) IsCnsIntOrI() bool        { return self.oper == CNS_INT }
func (self *Node) IsIntegralConst() bool    { return self.oper == CNS_INT || self.oper == CNS_LNG }
func (self *Node) IsReverseOp() bool        { return self.flags&FlagReverseOps != 0 }
func (self *Node) IsUnsigned() bool         { return self.flags&FlagUnsigned != 0 }
func (self *Node) IsContained() bool        { return self.flags&FlagContained != 0 }
func (self *Node) HasSideEffects() bool     { return self.flags&FlagSideEffect != 0 }
func (self *Node) IsLocal() bool            { return self.oper == LCL_VAR || self.oper == LCL_FLD }
func (self *Node) IsLocalAddr() bool        { return self.oper == LCL_ADDR }
func (self *Node) IsNothingNode() bool      { return self.oper == NO_OP || (self.oper == NOP && self.ops[0] == nil) }
func (self *Node) IsIconHandle() bool       { return self.oper == CNS_INT && self.flags&FlagIconHdlMask != 0 }
func (self *Node) GetIconHandleFlag() Flags { return self.flags & FlagIconHdlMask }

// IsValue reports whether the node produces a value.
func (self *Node) IsValue() bool {
	return self.oper.HasValue() && self.typ != types.Void
}

// IsIntegralConstValue reports whether the node is an integer constant with
// the given value.
func (self *Node) IsIntegralConstValue(v int64) bool {
	return self.IsIntegralConst() && self.ival == v
}

// SetReverseOps marks a binary node as evaluating its second operand first.
func (self *Node) SetReverseOps(v bool) {
	if v {
		self.flags |= FlagReverseOps
	} else {
		self.flags &^= FlagReverseOps
	}
}

/** Costs **/

// SetCosts records the execution and size costs, clamped to MaxCost.
func (self *Node) SetCosts(ex int, sz int) {
	self.costEx = clampCost(ex)
	self.costSz = clampCost(sz)
	self.costsSet = true
}

func clampCost(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > MaxCost:
		return MaxCost
	default:
		return uint8(v)
	}
}

// Costs returns the costs set by the evaluation order pass.
func (self *Node) Costs() (ex uint8, sz uint8, err error) {
	if !self.costsSet {
		return 0, 0, ErrCostsNotSet
	} else {
		return self.costEx, self.costSz, nil
	}
}

func (self *Node) CostsSet() bool { return self.costsSet }
func (self *Node) CostEx() int    { return int(self.costEx) }
func (self *Node) CostSz() int    { return int(self.costSz) }

// CopyCosts copies the costs of src, which must have been set.
func (self *Node) CopyCosts(src *Node) error {
	if !src.costsSet {
		return ErrCostsNotSet
	} else {
		self.CopyRawCosts(src)
		return nil
	}
}

// CopyRawCosts copies the costs of src whether or not they were set.
func (self *Node) CopyRawCosts(src *Node) {
	self.costEx = src.costEx
	self.costSz = src.costSz
	self.costsSet = src.costsSet
}

/** Value Numbers **/

func (self *Node) VNs() ValueNumPair        { return self.vn }
func (self *Node) SetVNs(vn ValueNumPair)   { self.vn = vn }
func (self *Node) ClearVN()                 { self.vn = NoVNPair() }
func (self *Node) SetVNsFromNode(src *Node) { self.vn = src.vn }
func (self *Node) HasVN() bool              { return self.vn.Liberal != NoVN }

/** Registers **/

func (self *Node) RegNum() abi.Reg     { return self.reg }
func (self *Node) SetRegNum(r abi.Reg) { self.reg = r }
func (self *Node) ClearRegNum()        { self.reg = abi.NoReg }
func (self *Node) HasReg() bool        { return self.reg != abi.NoReg }
func (self *Node) CopyReg(src *Node)   { self.reg = src.reg }

/** Side Effects **/

// OperMayThrow reports whether the operator itself, given its flags and
// operands, may raise an exception.
func (self *Node) OperMayThrow() bool {
	switch self.oper {
	case DIV, MOD:
		if self.typ.IsFloating() {
			return false
		}
		return self.flags&FlagDivModNoByZero == 0 || self.flags&FlagDivModNoOverflow == 0
	case UDIV, UMOD:
		return self.flags&FlagDivModNoByZero == 0
	case ADD, SUB, MUL, CAST:
		return self.flags&FlagOverflow != 0
	case IND, BLK, NULLCHECK, STOREIND, STORE_BLK, STORE_DYN_BLK, ARR_LENGTH, CMPXCHG:
		return self.flags&FlagIndNonFaulting == 0
	case INDEX_ADDR, BOUNDS_CHECK, LCLHEAP:
		return true
	case CALL:
		return self.flags&FlagCallNoThrow == 0
	case HWINTRINSIC, INTRINSIC:
		return self.flags&FlagExcept != 0
	default:
		return false
	}
}

// OperEffects returns the effects of the node itself, not counting its
// operands.
func (self *Node) OperEffects() Flags {
	info := self.oper.info()
	own := self.flags & FlagAllEffect & info.permits

	/* exceptions are decided by the operator state */
	if self.OperMayThrow() {
		own |= FlagExcept
	} else {
		own &^= FlagExcept
	}

	/* plus the effects the operator always has */
	return own | info.requires
}

// SetAllEffectsFlags replaces the effect flags of the node with the union of
// the effect flags of sources.
func (self *Node) SetAllEffectsFlags(sources ...*Node) {
	self.flags &^= FlagAllEffect
	self.AddAllEffectsFlags(sources...)
}

// AddAllEffectsFlags adds the effect flags of sources to the node.
func (self *Node) AddAllEffectsFlags(sources ...*Node) {
	for _, src := range sources {
		if src != nil {
			self.flags |= src.flags & FlagAllEffect
		}
	}
}

// UpdateEffects recomputes the effect flags of the node from its own effects
// and the effect flags of its operands.
func (self *Node) UpdateEffects() {
	fv := self.OperEffects()
	for it := self.UseEdges(); !it.Done(); it.Next() {
		fv |= (*it.Edge()).flags & FlagAllEffect
	}
	self.flags = (self.flags &^ FlagAllEffect) | fv
}

// GloballyVisibleSideEffects reports whether evaluating the node has effects
// observable outside the method.
func (self *Node) GloballyVisibleSideEffects() bool {
	if self.flags&(FlagCall|FlagExcept|FlagOrderSideEff) != 0 {
		return true
	} else {
		return self.flags&(FlagAsg|FlagGlobRef) == FlagAsg|FlagGlobRef
	}
}

/** Operator Changes **/

type _Payload uint8

const (
	_P_none _Payload = iota
	_P_icon
	_P_dcon
	_P_scon
	_P_vcon
	_P_local
	_P_lclfld
	_P_aux
	_P_list
	_P_fields
	_P_call
)

func payloadOf(op Oper) _Payload {
	switch op {
	case CNS_INT, CNS_LNG:
		return _P_icon
	case CNS_DBL:
		return _P_dcon
	case CNS_STR:
		return _P_scon
	case CNS_VEC:
		return _P_vcon
	case LCL_VAR, STORE_LCL_VAR, PHI_ARG:
		return _P_local
	case LCL_FLD, STORE_LCL_FLD, LCL_ADDR:
		return _P_lclfld
	case PHI, HWINTRINSIC:
		return _P_list
	case FIELD_LIST:
		return _P_fields
	case CALL:
		return _P_call
	}

	/* everything else with extra data keeps it in aux */
	if op.Kind()&KindExOp != 0 || op == PHYSREG || op == INTRINSIC {
		return _P_aux
	} else {
		return _P_none
	}
}

func isLocalPayload(p _Payload) bool {
	return p == _P_local || p == _P_lclfld
}

// ChangeOperator rewrites the node in place to a different operator. The
// operator specific flags and payload are reset and operands beyond the
// arity of the new operator are dropped. The node must already hold every
// operand the new operator requires, otherwise an ArityError is returned and
// the node is left unchanged. Cached value numbers and costs are cleared
// unless vnu is PreserveVN. Effect flags are kept as they are, call
// UpdateEffects when the new operator has different effects.
func (self *Node) ChangeOperator(op Oper, vnu ValueNumberUpdate) error {
	if op >= OperCount {
		return ErrBadOperand
	}

	/* the slot must be large enough for the new operator */
	if op.Size() == Large && self.size == Small {
		return NodeSizeError{From: self.oper, To: op}
	}

	/* the required operand slots must be filled */
	if want := requiredOperands(op); want != 0 {
		if got := self.filledOperands(want); got != want {
			return ArityError{Oper: op, Want: want, Got: got}
		}
	}

	/* reset the analysis results */
	if vnu == ClearVN {
		self.vn = NoVNPair()
		self.costEx = 0
		self.costSz = 0
		self.costsSet = false
	}

	/* switch the operator */
	old := self.oper
	self.oper = op
	self.flags &= FlagCommonMask
	self.resetPayload(old, op)
	self.trimOperands()
	return nil
}

func (self *Node) resetPayload(from Oper, to Oper) {
	fp := payloadOf(from)
	tp := payloadOf(to)

	/* nothing to do if the payload has the same shape */
	if fp == tp {
		return
	}

	/* locals keep their local number across local operators */
	lcl := BadVarNum
	if isLocalPayload(fp) && isLocalPayload(tp) {
		lcl = self.lclNum
	}

	/* clear everything else */
	self.ival = 0
	self.fval = 0
	self.sval = ""
	self.vval = nil
	self.fseq = nil
	self.aux = 0
	self.aux2 = 0
	self.lclOffs = 0
	self.lclNum = lcl
	self.uses = nil
	self.fields = nil
	self.call = nil

	/* drop the multi-reg state if the new operator cannot use it */
	if !canBeMultiReg(to) {
		self.mreg = nil
	}

	/* calls need their data block */
	if tp == _P_call {
		self.call = newCallData(self)
	}
}

func requiredOperands(op Oper) int {
	switch {
	case allowsNilOperand(op):
		return 0
	case op == CMPXCHG || op == STORE_DYN_BLK || op == SELECT:
		return 3
	default:
		if nb := operArity(op); nb > 0 {
			return nb
		} else {
			return 0
		}
	}
}

func (self *Node) filledOperands(want int) int {
	n := 0
	for n < want && self.ops[n] != nil {
		n++
	}
	return n
}

func (self *Node) trimOperands() {
	switch {
	case self.oper.IsLeaf():
		self.ops = [3]*Node{}
	case self.oper.IsUnary():
		self.ops[1], self.ops[2] = nil, nil
	case self.oper.IsBinary():
		self.ops[2] = nil
	case self.oper == CMPXCHG || self.oper == STORE_DYN_BLK || self.oper == SELECT:
		/* all three operand slots are in use */
	default:
		self.ops = [3]*Node{}
	}
}

/** Operands **/

// NumChildren returns the number of operands of the node.
func (self *Node) NumChildren() int {
	n := 0
	for it := self.UseEdges(); !it.Done(); it.Next() {
		n++
	}
	return n
}

// Child returns the i-th operand in operand order, or nil.
func (self *Node) Child(i int) *Node {
	for it := self.Operands(); !it.Done(); it.Next() {
		if i == 0 {
			return it.Operand()
		}
		i--
	}
	return nil
}

// TryGetUse returns the edge holding operand.
func (self *Node) TryGetUse(operand *Node) (**Node, bool) {
	for it := self.UseEdges(); !it.Done(); it.Next() {
		if *it.Edge() == operand {
			return it.Edge(), true
		}
	}
	return nil, false
}

// ReplaceOperand replaces the first use of old by repl and recomputes the
// effect flags of the node. Ancestors are not updated, use
// Statement.ReplaceOperand for that.
func (self *Node) ReplaceOperand(old *Node, repl *Node) error {
	if repl == nil {
		return ErrBadOperand
	}

	/* find the edge */
	edge, ok := self.TryGetUse(old)
	if !ok {
		return ErrNoSuchOperand
	}

	/* replace and update the flags */
	*edge = repl
	self.UpdateEffects()
	return nil
}

func (self *Node) String() string {
	return fmt.Sprintf("[%06d] %s %s", self.id, self.oper, self.typ)
}
