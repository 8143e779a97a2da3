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
	"strings"
)

// Oper is the operator tag of a node.
type Oper uint8

const (
	/* constants */
	CNS_INT Oper = iota
	CNS_LNG
	CNS_DBL
	CNS_STR
	CNS_VEC

	/* locals */
	LCL_VAR
	LCL_FLD
	LCL_ADDR
	STORE_LCL_VAR
	STORE_LCL_FLD
	PHI_ARG

	/* other leaves */
	CATCH_ARG
	LABEL
	FTN_ADDR
	RET_EXPR
	MEMORYBARRIER
	PHYSREG
	JMP
	NO_OP
	ARGPLACE

	/* unary */
	NOT
	NEG
	BSWAP
	CAST
	BITCAST
	IND
	BLK
	NULLCHECK
	ARR_LENGTH
	LCLHEAP
	BOX
	RETURN
	JTRUE
	SWITCH
	NOP
	KEEPALIVE
	PUTARG_REG
	PUTARG_STK
	PUTARG_SPLIT
	COPY
	RELOAD
	INIT_VAL

	/* binary */
	ADD
	SUB
	MUL
	DIV
	MOD
	UDIV
	UMOD
	OR
	XOR
	AND
	LSH
	RSH
	RSZ
	ROL
	ROR
	MULHI
	EQ
	NE
	LT
	LE
	GE
	GT
	TEST_EQ
	TEST_NE
	COMMA
	QMARK
	COLON
	INDEX_ADDR
	BOUNDS_CHECK
	STOREIND
	STORE_BLK
	LEA
	MKREFANY
	INTRINSIC

	/* special */
	CALL
	PHI
	FIELD_LIST
	CMPXCHG
	STORE_DYN_BLK
	SELECT
	HWINTRINSIC

	OperCount
)

// OperKind is the structural kind of an operator, plus its static predicates.
type OperKind uint16

const (
	KindConst OperKind = 1 << iota
	KindLeaf
	KindUnop
	KindBinop
	KindSpecial
	KindCommute
	KindExOp
	KindLocal
	KindNoValue
	KindNotLIR
	KindStore
	KindRelop
	KindNoContain
)

const (
	KindSMPOP = KindUnop | KindBinop
	KindArity = KindLeaf | KindUnop | KindBinop | KindSpecial
)

// SizeClass is the size of an arena slot. Operators with a large payload can
// only live in large slots.
type SizeClass uint8

const (
	Small SizeClass = iota
	Large
)

func (self SizeClass) String() string {
	if self == Small {
		return "small"
	} else {
		return "large"
	}
}

type _OperInfo struct {
	name     string
	kind     OperKind
	size     SizeClass
	requires Flags // effects the operator always has
	permits  Flags // effects the operator may carry on its own
}

const (
	_E_mem   = FlagGlobRef | FlagOrderSideEff | FlagExcept
	_E_store = FlagAsg | _E_mem
)

var _OperTab = [OperCount]_OperInfo{
	CNS_INT:       {"CNS_INT", KindConst | KindLeaf, Small, 0, 0},
	CNS_LNG:       {"CNS_LNG", KindConst | KindLeaf, Small, 0, 0},
	CNS_DBL:       {"CNS_DBL", KindConst | KindLeaf, Small, 0, 0},
	CNS_STR:       {"CNS_STR", KindConst | KindLeaf, Small, 0, 0},
	CNS_VEC:       {"CNS_VEC", KindConst | KindLeaf, Small, 0, 0},
	LCL_VAR:       {"LCL_VAR", KindLeaf | KindLocal, Small, 0, FlagGlobRef},
	LCL_FLD:       {"LCL_FLD", KindLeaf | KindLocal, Small, 0, FlagGlobRef},
	LCL_ADDR:      {"LCL_ADDR", KindLeaf | KindLocal, Small, 0, 0},
	STORE_LCL_VAR: {"STORE_LCL_VAR", KindUnop | KindLocal | KindNoValue | KindStore, Small, FlagAsg, FlagGlobRef},
	STORE_LCL_FLD: {"STORE_LCL_FLD", KindUnop | KindLocal | KindNoValue | KindStore, Small, FlagAsg, FlagGlobRef},
	PHI_ARG:       {"PHI_ARG", KindLeaf | KindLocal, Small, 0, 0},
	CATCH_ARG:     {"CATCH_ARG", KindLeaf, Small, FlagOrderSideEff, 0},
	LABEL:         {"LABEL", KindLeaf, Small, 0, 0},
	FTN_ADDR:      {"FTN_ADDR", KindLeaf, Small, 0, 0},
	RET_EXPR:      {"RET_EXPR", KindLeaf | KindNotLIR, Large, 0, _E_store | FlagCall},
	MEMORYBARRIER: {"MEMORYBARRIER", KindLeaf | KindNoValue, Small, FlagGlobRef | FlagOrderSideEff, 0},
	PHYSREG:       {"PHYSREG", KindLeaf, Small, 0, 0},
	JMP:           {"JMP", KindLeaf | KindNoValue, Small, 0, 0},
	NO_OP:         {"NO_OP", KindLeaf | KindNoValue, Small, 0, 0},
	ARGPLACE:      {"ARGPLACE", KindLeaf | KindNotLIR, Small, 0, 0},
	NOT:           {"NOT", KindUnop, Small, 0, 0},
	NEG:           {"NEG", KindUnop, Small, 0, 0},
	BSWAP:         {"BSWAP", KindUnop, Small, 0, 0},
	CAST:          {"CAST", KindUnop | KindExOp, Large, 0, FlagExcept},
	BITCAST:       {"BITCAST", KindUnop, Small, 0, 0},
	IND:           {"IND", KindUnop, Small, 0, _E_mem},
	BLK:           {"BLK", KindUnop | KindExOp, Small, 0, _E_mem},
	NULLCHECK:     {"NULLCHECK", KindUnop | KindNoValue, Small, 0, _E_mem},
	ARR_LENGTH:    {"ARR_LENGTH", KindUnop | KindExOp, Small, 0, FlagExcept},
	LCLHEAP:       {"LCLHEAP", KindUnop | KindNoContain, Small, 0, FlagExcept | FlagOrderSideEff},
	BOX:           {"BOX", KindUnop | KindExOp | KindNotLIR, Small, 0, 0},
	RETURN:        {"RETURN", KindUnop | KindNoValue, Small, 0, 0},
	JTRUE:         {"JTRUE", KindUnop | KindNoValue, Small, 0, 0},
	SWITCH:        {"SWITCH", KindUnop | KindNoValue, Small, 0, 0},
	NOP:           {"NOP", KindUnop | KindNotLIR, Small, 0, 0},
	KEEPALIVE:     {"KEEPALIVE", KindUnop | KindNoValue, Small, FlagOrderSideEff, 0},
	PUTARG_REG:    {"PUTARG_REG", KindUnop, Small, 0, 0},
	PUTARG_STK:    {"PUTARG_STK", KindUnop | KindNoValue, Small, 0, 0},
	PUTARG_SPLIT:  {"PUTARG_SPLIT", KindUnop | KindExOp, Large, 0, 0},
	COPY:          {"COPY", KindUnop, Small, 0, 0},
	RELOAD:        {"RELOAD", KindUnop, Small, 0, 0},
	INIT_VAL:      {"INIT_VAL", KindUnop, Small, 0, 0},
	ADD:           {"ADD", KindBinop | KindCommute, Small, 0, FlagExcept},
	SUB:           {"SUB", KindBinop, Small, 0, FlagExcept},
	MUL:           {"MUL", KindBinop | KindCommute, Small, 0, FlagExcept},
	DIV:           {"DIV", KindBinop, Small, 0, FlagExcept},
	MOD:           {"MOD", KindBinop, Small, 0, FlagExcept},
	UDIV:          {"UDIV", KindBinop, Small, 0, FlagExcept},
	UMOD:          {"UMOD", KindBinop, Small, 0, FlagExcept},
	OR:            {"OR", KindBinop | KindCommute, Small, 0, 0},
	XOR:           {"XOR", KindBinop | KindCommute, Small, 0, 0},
	AND:           {"AND", KindBinop | KindCommute, Small, 0, 0},
	LSH:           {"LSH", KindBinop, Small, 0, 0},
	RSH:           {"RSH", KindBinop, Small, 0, 0},
	RSZ:           {"RSZ", KindBinop, Small, 0, 0},
	ROL:           {"ROL", KindBinop, Small, 0, 0},
	ROR:           {"ROR", KindBinop, Small, 0, 0},
	MULHI:         {"MULHI", KindBinop | KindCommute, Small, 0, 0},
	EQ:            {"EQ", KindBinop | KindRelop | KindCommute, Small, 0, 0},
	NE:            {"NE", KindBinop | KindRelop | KindCommute, Small, 0, 0},
	LT:            {"LT", KindBinop | KindRelop, Small, 0, 0},
	LE:            {"LE", KindBinop | KindRelop, Small, 0, 0},
	GE:            {"GE", KindBinop | KindRelop, Small, 0, 0},
	GT:            {"GT", KindBinop | KindRelop, Small, 0, 0},
	TEST_EQ:       {"TEST_EQ", KindBinop | KindRelop | KindCommute, Small, 0, 0},
	TEST_NE:       {"TEST_NE", KindBinop | KindRelop | KindCommute, Small, 0, 0},
	COMMA:         {"COMMA", KindBinop | KindNotLIR, Small, 0, 0},
	QMARK:         {"QMARK", KindBinop | KindExOp | KindNotLIR, Large, 0, 0},
	COLON:         {"COLON", KindBinop | KindNotLIR, Small, 0, 0},
	INDEX_ADDR:    {"INDEX_ADDR", KindBinop | KindExOp, Large, FlagExcept, 0},
	BOUNDS_CHECK:  {"BOUNDS_CHECK", KindBinop | KindExOp | KindNoValue, Large, FlagExcept, 0},
	STOREIND:      {"STOREIND", KindBinop | KindNoValue | KindStore, Small, FlagAsg, _E_mem},
	STORE_BLK:     {"STORE_BLK", KindBinop | KindExOp | KindNoValue | KindStore, Small, FlagAsg, _E_mem},
	LEA:           {"LEA", KindBinop | KindExOp, Small, 0, 0},
	MKREFANY:      {"MKREFANY", KindBinop | KindNotLIR, Large, 0, 0},
	INTRINSIC:     {"INTRINSIC", KindBinop | KindExOp, Large, 0, _E_store},
	CALL:          {"CALL", KindSpecial | KindNoContain, Large, FlagCall, _E_store},
	PHI:           {"PHI", KindSpecial | KindNoContain, Small, 0, 0},
	FIELD_LIST:    {"FIELD_LIST", KindSpecial, Small, 0, 0},
	CMPXCHG:       {"CMPXCHG", KindSpecial, Large, _E_store &^ FlagExcept, _E_store},
	STORE_DYN_BLK: {"STORE_DYN_BLK", KindSpecial | KindNoValue | KindStore, Large, FlagAsg, _E_store},
	SELECT:        {"SELECT", KindSpecial, Large, 0, 0},
	HWINTRINSIC:   {"HWINTRINSIC", KindSpecial | KindExOp, Large, 0, _E_store},
}

func (self Oper) info() *_OperInfo {
	if self >= OperCount {
		panic(fmt.Sprintf("invalid operator: %d", uint8(self)))
	} else {
		return &_OperTab[self]
	}
}

func (self Oper) String() string {
	if self >= OperCount {
		return fmt.Sprintf("OPER(%d)", uint8(self))
	} else {
		return _OperTab[self].name
	}
}

func (self Oper) Kind() OperKind      { return self.info().kind }
func (self Oper) Size() SizeClass     { return self.info().size }
func (self Oper) IsConst() bool       { return self.Kind()&KindConst != 0 }
func (self Oper) IsLeaf() bool        { return self.Kind()&KindLeaf != 0 }
func (self Oper) IsUnary() bool       { return self.Kind()&KindUnop != 0 }
func (self Oper) IsBinary() bool      { return self.Kind()&KindBinop != 0 }
func (self Oper) IsSimple() bool      { return self.Kind()&KindSMPOP != 0 }
func (self Oper) IsSpecial() bool     { return self.Kind()&KindSpecial != 0 }
func (self Oper) IsCommutative() bool { return self.Kind()&KindCommute != 0 }
func (self Oper) IsCompare() bool     { return self.Kind()&KindRelop != 0 }
func (self Oper) IsLocal() bool       { return self.Kind()&KindLocal != 0 }
func (self Oper) IsStore() bool       { return self.Kind()&KindStore != 0 }
func (self Oper) HasValue() bool      { return self.Kind()&KindNoValue == 0 }
func (self Oper) IsLIR() bool         { return self.Kind()&KindNotLIR == 0 }
func (self Oper) NoContain() bool     { return self.Kind()&KindNoContain != 0 }

// IsLocalRead reports whether the operator reads a local without storing.
func (self Oper) IsLocalRead() bool {
	return self.IsLocal() && !self.IsStore()
}

// IsIndir reports whether the operator dereferences its first operand.
func (self Oper) IsIndir() bool {
	switch self {
	case IND, BLK, NULLCHECK, STOREIND, STORE_BLK:
		return true
	default:
		return false
	}
}

// IsDivMod reports whether the operator is an integer division or modulus.
func (self Oper) IsDivMod() bool {
	switch self {
	case DIV, MOD, UDIV, UMOD:
		return true
	default:
		return false
	}
}

// ParseOper looks an operator up by its name.
func ParseOper(name string) (Oper, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i := Oper(0); i < OperCount; i++ {
		if _OperTab[i].name == name {
			return i, true
		}
	}
	return 0, false
}

var _KindNames = [...]string{
	"const", "leaf", "unop", "binop", "special", "commute", "exop",
	"local", "novalue", "notlir", "store", "relop", "nocontain",
}

func (self OperKind) String() string {
	var ret []string
	for i, name := range _KindNames {
		if self&(1<<i) != 0 {
			ret = append(ret, name)
		}
	}
	return strings.Join(ret, "|")
}
