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
	"github.com/cloudwego/gentree/internal/fieldseq"
	"github.com/cloudwego/gentree/internal/types"
)

type (
	Op           Node
	IntCon       Node
	DblCon       Node
	StrCon       Node
	VecCon       Node
	LclVarCommon Node
	LclVar       Node
	LclFld       Node
	Indir        Node
	Blk          Node
	Cast         Node
	Lea          Node
	BoundsChk    Node
	ArrLen       Node
	Call         Node
	MultiOp      Node
	Phi          Node
	FieldList    Node
	CmpXchg      Node
	StoreDynBlk  Node
	Conditional  Node
	PutArgSplit  Node
	PhysReg      Node
)

func mismatch(view string, n *Node) error {
	return KindMismatchError{View: view, Oper: n.oper}
}

/** Op **/

func (self *Node) AsOp() (*Op, error) {
	if !self.oper.IsSimple() {
		return nil, mismatch("Op", self)
	} else {
		return (*Op)(self), nil
	}
}

func (self *Op) Node() *Node { return (*Node)(self) }
func (self *Op) Op1() *Node  { return self.ops[0] }
func (self *Op) Op2() *Node  { return self.ops[1] }

// SetOp1 sets the first operand. The effect flags are not recomputed, call
// UpdateEffects on the node, or Statement.PropagateEffects when it has users.
func (self *Op) SetOp1(n *Node) { self.ops[0] = n }

// SetOp2 sets the second operand, unary operators only have one. The effect
// flags are left alone like in SetOp1.
func (self *Op) SetOp2(n *Node) error {
	if !self.oper.IsBinary() {
		return ErrBadOperand
	} else {
		self.ops[1] = n
		return nil
	}
}

/** Constants **/

func (self *Node) AsIntCon() (*IntCon, error) {
	if !self.OperIs(CNS_INT, CNS_LNG) {
		return nil, mismatch("IntCon", self)
	} else {
		return (*IntCon)(self), nil
	}
}

func (self *IntCon) Node() *Node                  { return (*Node)(self) }
func (self *IntCon) Value() int64                 { return self.ival }
func (self *IntCon) SetValue(v int64)             { self.ival = v }
func (self *IntCon) FieldSeq() *fieldseq.FieldSeq { return self.fseq }

func (self *IntCon) SetFieldSeq(fs *fieldseq.FieldSeq) {
	self.fseq = fs
}

// AppendFieldSeq appends fs to the field sequence of the constant. A sequence
// ending in a field whose address is already known cannot take a suffix.
func (self *IntCon) AppendFieldSeq(store *fieldseq.Store, fs *fieldseq.FieldSeq) error {
	if cur := self.fseq; cur != nil && !cur.IsNotAField() && !cur.Tail().Kind().CanHaveSuffix() {
		return ErrFieldSeqSuffix
	} else {
		self.fseq = store.Append(cur, fs)
		return nil
	}
}

func (self *Node) AsDblCon() (*DblCon, error) {
	if self.oper != CNS_DBL {
		return nil, mismatch("DblCon", self)
	} else {
		return (*DblCon)(self), nil
	}
}

func (self *DblCon) Node() *Node        { return (*Node)(self) }
func (self *DblCon) Value() float64     { return self.fval }
func (self *DblCon) SetValue(v float64) { self.fval = v }

func (self *Node) AsStrCon() (*StrCon, error) {
	if self.oper != CNS_STR {
		return nil, mismatch("StrCon", self)
	} else {
		return (*StrCon)(self), nil
	}
}

func (self *StrCon) Node() *Node   { return (*Node)(self) }
func (self *StrCon) Value() string { return self.sval }

func (self *Node) AsVecCon() (*VecCon, error) {
	if self.oper != CNS_VEC {
		return nil, mismatch("VecCon", self)
	} else {
		return (*VecCon)(self), nil
	}
}

func (self *VecCon) Node() *Node   { return (*Node)(self) }
func (self *VecCon) Bytes() []byte { return self.vval }

func (self *VecCon) IsZero() bool {
	for _, v := range self.vval {
		if v != 0 {
			return false
		}
	}
	return true
}

func (self *VecCon) IsAllBitsSet() bool {
	for _, v := range self.vval {
		if v != 0xff {
			return false
		}
	}
	return len(self.vval) != 0
}

/** Locals **/

func (self *Node) AsLclVarCommon() (*LclVarCommon, error) {
	if !self.oper.IsLocal() {
		return nil, mismatch("LclVarCommon", self)
	} else {
		return (*LclVarCommon)(self), nil
	}
}

func (self *LclVarCommon) Node() *Node        { return (*Node)(self) }
func (self *LclVarCommon) LclNum() uint32     { return self.lclNum }
func (self *LclVarCommon) SetLclNum(n uint32) { self.lclNum = n }

// Data returns the stored value of a local store, or nil for reads.
func (self *LclVarCommon) Data() *Node {
	if self.oper.IsStore() {
		return self.ops[0]
	} else {
		return nil
	}
}

func (self *Node) AsLclVar() (*LclVar, error) {
	if !self.OperIs(LCL_VAR, STORE_LCL_VAR) {
		return nil, mismatch("LclVar", self)
	} else {
		return (*LclVar)(self), nil
	}
}

func (self *LclVar) Node() *Node           { return (*Node)(self) }
func (self *LclVar) LclNum() uint32        { return self.lclNum }
func (self *LclVar) MultiRegs() *MultiRegs { return self.mreg }
func (self *LclVar) IsMultiReg() bool      { return self.flags&FlagVarMultiReg != 0 }

func (self *Node) AsLclFld() (*LclFld, error) {
	if !self.OperIs(LCL_FLD, STORE_LCL_FLD, LCL_ADDR) {
		return nil, mismatch("LclFld", self)
	} else {
		return (*LclFld)(self), nil
	}
}

func (self *LclFld) Node() *Node                  { return (*Node)(self) }
func (self *LclFld) LclNum() uint32               { return self.lclNum }
func (self *LclFld) Offset() uint16               { return self.lclOffs }
func (self *LclFld) SetOffset(v uint16)           { self.lclOffs = v }
func (self *LclFld) FieldSeq() *fieldseq.FieldSeq { return self.fseq }

func (self *LclFld) SetFieldSeq(fs *fieldseq.FieldSeq) {
	self.fseq = fs
}

/** Indirections **/

func (self *Node) AsIndir() (*Indir, error) {
	if !self.oper.IsIndir() {
		return nil, mismatch("Indir", self)
	} else {
		return (*Indir)(self), nil
	}
}

func (self *Indir) Node() *Node         { return (*Node)(self) }
func (self *Indir) Addr() *Node         { return self.ops[0] }
func (self *Indir) IsVolatile() bool    { return self.flags&FlagIndVolatile != 0 }
func (self *Indir) IsNonFaulting() bool { return self.flags&FlagIndNonFaulting != 0 }
func (self *Indir) IsUnaligned() bool   { return self.flags&FlagIndUnaligned != 0 }

// Data returns the stored value of an indirect store, or nil for loads.
func (self *Indir) Data() *Node {
	if self.oper.IsStore() {
		return self.ops[1]
	} else {
		return nil
	}
}

func (self *Node) AsBlk() (*Blk, error) {
	if !self.OperIs(BLK, STORE_BLK) {
		return nil, mismatch("Blk", self)
	} else {
		return (*Blk)(self), nil
	}
}

func (self *Blk) Node() *Node  { return (*Node)(self) }
func (self *Blk) Addr() *Node  { return self.ops[0] }
func (self *Blk) Size() uint32 { return self.aux }

/** Cast **/

func (self *Node) AsCast() (*Cast, error) {
	if self.oper != CAST {
		return nil, mismatch("Cast", self)
	} else {
		return (*Cast)(self), nil
	}
}

func (self *Cast) Node() *Node                 { return (*Node)(self) }
func (self *Cast) CastOp() *Node               { return self.ops[0] }
func (self *Cast) CastToType() types.VarType   { return types.VarType(self.aux) }
func (self *Cast) CastFromType() types.VarType { return self.ops[0].typ }
func (self *Cast) IsOverflow() bool            { return self.flags&FlagOverflow != 0 }

/** Addressing **/

func (self *Node) AsLea() (*Lea, error) {
	if self.oper != LEA {
		return nil, mismatch("Lea", self)
	} else {
		return (*Lea)(self), nil
	}
}

func (self *Lea) Node() *Node   { return (*Node)(self) }
func (self *Lea) Base() *Node   { return self.ops[0] }
func (self *Lea) Index() *Node  { return self.ops[1] }
func (self *Lea) Scale() uint32 { return self.aux }
func (self *Lea) Offset() int32 { return self.aux2 }

func (self *Node) AsBoundsChk() (*BoundsChk, error) {
	if self.oper != BOUNDS_CHECK {
		return nil, mismatch("BoundsChk", self)
	} else {
		return (*BoundsChk)(self), nil
	}
}

// ThrowKind tells which helper raises the exception of a failed check.
type ThrowKind uint32

const (
	ThrowRangeCheck ThrowKind = iota
	ThrowArgumentOutOfRange
	ThrowIndexOutOfRange
)

func (self *BoundsChk) Node() *Node          { return (*Node)(self) }
func (self *BoundsChk) Index() *Node         { return self.ops[0] }
func (self *BoundsChk) Length() *Node        { return self.ops[1] }
func (self *BoundsChk) ThrowKind() ThrowKind { return ThrowKind(self.aux) }

func (self *Node) AsArrLen() (*ArrLen, error) {
	if self.oper != ARR_LENGTH {
		return nil, mismatch("ArrLen", self)
	} else {
		return (*ArrLen)(self), nil
	}
}

func (self *ArrLen) Node() *Node      { return (*Node)(self) }
func (self *ArrLen) ArrRef() *Node    { return self.ops[0] }
func (self *ArrLen) LenOffset() int32 { return self.aux2 }

/** Special Nodes **/

func (self *Node) AsMultiOp() (*MultiOp, error) {
	if self.oper != HWINTRINSIC {
		return nil, mismatch("MultiOp", self)
	} else {
		return (*MultiOp)(self), nil
	}
}

func (self *MultiOp) Node() *Node           { return (*Node)(self) }
func (self *MultiOp) IntrinsicID() uint32   { return self.aux }
func (self *MultiOp) NumOperands() int      { return len(self.uses) }
func (self *MultiOp) MultiRegs() *MultiRegs { return self.mreg }

// Operand returns the i-th operand in declared order, or nil.
func (self *MultiOp) Operand(i int) *Node {
	if i < 0 || i >= len(self.uses) {
		return nil
	} else {
		return self.uses[i]
	}
}

func (self *Node) AsPhi() (*Phi, error) {
	if self.oper != PHI {
		return nil, mismatch("Phi", self)
	} else {
		return (*Phi)(self), nil
	}
}

func (self *Phi) Node() *Node   { return (*Node)(self) }
func (self *Phi) Uses() []*Node { return self.uses }
func (self *Phi) NumUses() int  { return len(self.uses) }

// AddUse appends a PHI_ARG operand.
func (self *Phi) AddUse(arg *Node) error {
	if arg == nil || arg.oper != PHI_ARG {
		return ErrBadOperand
	} else {
		self.uses = append(self.uses, arg)
		return nil
	}
}

// FieldUse is one element of a FIELD_LIST: a value stored at an offset of the
// aggregate being built.
type FieldUse struct {
	node   *Node
	offset uint32
	typ    types.VarType
}

func (self FieldUse) Node() *Node         { return self.node }
func (self FieldUse) Offset() uint32      { return self.offset }
func (self FieldUse) Type() types.VarType { return self.typ }

func (self *Node) AsFieldList() (*FieldList, error) {
	if self.oper != FIELD_LIST {
		return nil, mismatch("FieldList", self)
	} else {
		return (*FieldList)(self), nil
	}
}

func (self *FieldList) Node() *Node        { return (*Node)(self) }
func (self *FieldList) Fields() []FieldUse { return self.fields }
func (self *FieldList) NumFields() int     { return len(self.fields) }

// AddField appends a field and merges its effects into the list.
func (self *FieldList) AddField(n *Node, offset uint32, typ types.VarType) error {
	if n == nil {
		return ErrBadOperand
	} else {
		self.fields = append(self.fields, FieldUse{node: n, offset: offset, typ: typ})
		self.flags |= n.flags & FlagAllEffect
		return nil
	}
}

func (self *Node) AsCmpXchg() (*CmpXchg, error) {
	if self.oper != CMPXCHG {
		return nil, mismatch("CmpXchg", self)
	} else {
		return (*CmpXchg)(self), nil
	}
}

func (self *CmpXchg) Node() *Node      { return (*Node)(self) }
func (self *CmpXchg) Location() *Node  { return self.ops[0] }
func (self *CmpXchg) Value() *Node     { return self.ops[1] }
func (self *CmpXchg) Comparand() *Node { return self.ops[2] }

func (self *Node) AsStoreDynBlk() (*StoreDynBlk, error) {
	if self.oper != STORE_DYN_BLK {
		return nil, mismatch("StoreDynBlk", self)
	} else {
		return (*StoreDynBlk)(self), nil
	}
}

func (self *StoreDynBlk) Node() *Node { return (*Node)(self) }
func (self *StoreDynBlk) Addr() *Node { return self.ops[0] }
func (self *StoreDynBlk) Data() *Node { return self.ops[1] }
func (self *StoreDynBlk) Size() *Node { return self.ops[2] }

func (self *Node) AsConditional() (*Conditional, error) {
	if self.oper != SELECT {
		return nil, mismatch("Conditional", self)
	} else {
		return (*Conditional)(self), nil
	}
}

func (self *Conditional) Node() *Node { return (*Node)(self) }
func (self *Conditional) Op1() *Node  { return self.ops[0] }
func (self *Conditional) Op2() *Node  { return self.ops[1] }
func (self *Conditional) Cond() *Node { return self.ops[2] }

func (self *Node) AsPutArgSplit() (*PutArgSplit, error) {
	if self.oper != PUTARG_SPLIT {
		return nil, mismatch("PutArgSplit", self)
	} else {
		return (*PutArgSplit)(self), nil
	}
}

func (self *PutArgSplit) Node() *Node           { return (*Node)(self) }
func (self *PutArgSplit) Arg() *Node            { return self.ops[0] }
func (self *PutArgSplit) NumRegs() int          { return int(self.aux) }
func (self *PutArgSplit) MultiRegs() *MultiRegs { return self.mreg }

func (self *Node) AsPhysReg() (*PhysReg, error) {
	if self.oper != PHYSREG {
		return nil, mismatch("PhysReg", self)
	} else {
		return (*PhysReg)(self), nil
	}
}

func (self *PhysReg) Node() *Node  { return (*Node)(self) }
func (self *PhysReg) Reg() abi.Reg { return abi.Reg(self.aux) }
