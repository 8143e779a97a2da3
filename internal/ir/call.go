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
	"github.com/cloudwego/gentree/internal/types"
)

// CallKind tells how the target of a call is found.
type CallKind uint8

const (
	CallKindUser CallKind = iota
	CallKindHelper
	CallKindIndirect
)

func (self CallKind) String() string {
	switch self {
	case CallKindUser:
		return "user"
	case CallKindHelper:
		return "helper"
	case CallKindIndirect:
		return "indirect"
	default:
		return fmt.Sprintf("CallKind(%d)", uint8(self))
	}
}

type callData struct {
	args     CallArgs
	kind     CallKind
	method   uintptr
	entry    uint64
	info     abi.CallInfo
	cfgKind  abi.CFGCallKind
	ctrlExpr *Node
	cookie   *Node
	addr     *Node
	retTypes []types.VarType
}

func newCallData(owner *Node) *callData {
	ret := &callData{cfgKind: abi.ValidateAndCall}
	ret.args.owner = owner
	return ret
}

func (self *Node) AsCall() (*Call, error) {
	if self.oper != CALL || self.call == nil {
		return nil, mismatch("Call", self)
	} else {
		return (*Call)(self), nil
	}
}

func (self *Call) Node() *Node                  { return (*Node)(self) }
func (self *Call) Args() *CallArgs              { return &self.call.args }
func (self *Call) Kind() CallKind               { return self.call.kind }
func (self *Call) Method() uintptr              { return self.call.method }
func (self *Call) Entry() uint64                { return self.call.entry }
func (self *Call) SetEntry(v uint64)            { self.call.entry = v }
func (self *Call) Info() abi.CallInfo           { return self.call.info }
func (self *Call) SetInfo(v abi.CallInfo)       { self.call.info = v }
func (self *Call) AddInfo(v abi.CallInfo)       { self.call.info |= v }
func (self *Call) CFGKind() abi.CFGCallKind     { return self.call.cfgKind }
func (self *Call) ControlExpr() *Node           { return self.call.ctrlExpr }
func (self *Call) Cookie() *Node                { return self.call.cookie }
func (self *Call) Addr() *Node                  { return self.call.addr }
func (self *Call) ReturnTypes() []types.VarType { return self.call.retTypes }
func (self *Call) MultiRegs() *MultiRegs        { return self.mreg }
func (self *Call) IsIndirect() bool             { return self.call.kind == CallKindIndirect }
func (self *Call) IsHelper() bool               { return self.call.kind == CallKindHelper }
func (self *Call) IsVirtualStub() bool          { return self.call.info.IsVirtualStub() }
func (self *Call) IsUnmanaged() bool            { return self.call.info.IsUnmanaged() }
func (self *Call) HasRetBuffer() bool           { return self.call.args.hasRetBuf }

// SetControlExpr sets the expression that computes the call target of a
// virtual call before the call itself.
func (self *Call) SetControlExpr(n *Node) {
	self.call.ctrlExpr = n
	self.Node().UpdateEffects()
}

// SetCookie sets the signature cookie of an unmanaged indirect call.
func (self *Call) SetCookie(n *Node) error {
	if self.call.kind != CallKindIndirect {
		return ErrBadOperand
	} else {
		self.call.cookie = n
		self.Node().UpdateEffects()
		return nil
	}
}

// SetAddr replaces the target address of an indirect call.
func (self *Call) SetAddr(n *Node) error {
	if self.call.kind != CallKindIndirect {
		return ErrBadOperand
	} else {
		self.call.addr = n
		self.Node().UpdateEffects()
		return nil
	}
}

// SetReturnTypes describes the registers the call returns in. Calls returning
// in more than one register get a MultiRegs, bounded by maxRegs.
func (self *Call) SetReturnTypes(maxRegs int, typs ...types.VarType) error {
	if len(typs) > maxRegs {
		return ErrNotMultiReg
	}

	/* single register returns do not need the multi-reg state */
	self.call.retTypes = append(self.call.retTypes[:0], typs...)
	if len(typs) > 1 {
		self.mreg = newMultiRegs(len(typs))
	} else {
		self.mreg = nil
	}
	return nil
}

// NumRegs returns the number of registers the call returns in.
func (self *Call) NumRegs() int {
	if n := len(self.call.retTypes); n != 0 {
		return n
	} else if self.typ == types.Void {
		return 0
	} else {
		return 1
	}
}

func (self *Call) String() string {
	if self.call.kind == CallKindIndirect {
		return fmt.Sprintf("%s indirect %s", self.Node(), self.call.info)
	} else {
		return fmt.Sprintf("%s %s %#x %s", self.Node(), self.call.kind, self.call.method, self.call.info)
	}
}
