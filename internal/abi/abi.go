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

// Package abi describes how call arguments are placed in registers and stack
// slots on each supported target, and the per-target policies that decide
// which implicit arguments a call carries.
package abi

import (
	"fmt"
	"strings"
)

// Reg is a target register number. Its meaning depends on the Target that
// produced it, use Target.RegName to print it.
type Reg uint8

// NoReg means "not in a register".
const NoReg Reg = 0xff

// WellKnownArg tags implicit or specially-treated call arguments.
type WellKnownArg uint8

const (
	None WellKnownArg = iota
	ThisPointer
	VarArgsCookie
	InstParam
	RetBuffer
	PInvokeCookie
	PInvokeTarget
	SecretStubParam
	WrapperDelegateCell
	ShiftLow
	ShiftHigh
	VirtualStubCell
	R2RIndirectionCell
	ValidateIndirectCallTarget
	DispatchIndirectCallTarget
	_WK_count
)

var _WellKnownNames = [_WK_count]string{
	None:                       "",
	ThisPointer:                "this",
	VarArgsCookie:              "va cookie",
	InstParam:                  "gctx",
	RetBuffer:                  "retbuf",
	PInvokeCookie:              "pinv cookie",
	PInvokeTarget:              "pinv tgt",
	SecretStubParam:            "secret stub",
	WrapperDelegateCell:        "wrap cell",
	ShiftLow:                   "shift low",
	ShiftHigh:                  "shift high",
	VirtualStubCell:            "vsd cell",
	R2RIndirectionCell:         "r2r cell",
	ValidateIndirectCallTarget: "cfg tgt",
	DispatchIndirectCallTarget: "cfg tgt",
}

func (self WellKnownArg) String() string {
	if self >= _WK_count {
		return fmt.Sprintf("wellknown(%d)", uint8(self))
	} else {
		return _WellKnownNames[self]
	}
}

// IsUserArg reports whether arguments with this tag appear in the IL
// signature of the callee.
func (self WellKnownArg) IsUserArg() bool {
	switch self {
	case None, ThisPointer, ShiftLow, ShiftHigh:
		return true
	default:
		return false
	}
}

// CFGCallKind selects how an indirect call is protected by control flow guard.
type CFGCallKind uint8

const (
	ValidateAndCall CFGCallKind = iota
	Dispatch
)

func (self CFGCallKind) String() string {
	switch self {
	case ValidateAndCall:
		return "validate"
	case Dispatch:
		return "dispatch"
	default:
		return fmt.Sprintf("cfg(%d)", uint8(self))
	}
}

// CallInfo carries the properties of a call that the ABI policies look at.
type CallInfo uint16

const (
	CallVirtualStub CallInfo = 1 << iota
	CallR2RRelativeIndir
	CallDelegateInvoke
	CallFastTailCall
	CallVarargs
	CallIndirect
	CallUnmanaged
)

func (self CallInfo) IsVirtualStub() bool     { return self&CallVirtualStub != 0 }
func (self CallInfo) IsR2RRelativeIndir() bool { return self&CallR2RRelativeIndir != 0 }
func (self CallInfo) IsDelegateInvoke() bool  { return self&CallDelegateInvoke != 0 }
func (self CallInfo) IsFastTailCall() bool    { return self&CallFastTailCall != 0 }
func (self CallInfo) IsVarargs() bool         { return self&CallVarargs != 0 }
func (self CallInfo) IsIndirect() bool        { return self&CallIndirect != 0 }
func (self CallInfo) IsUnmanaged() bool       { return self&CallUnmanaged != 0 }

var _CallInfoNames = [...]string{
	"vsd", "r2r-indir", "delegate", "fast-tail", "varargs", "indirect", "unmanaged",
}

func (self CallInfo) String() string {
	var ret []string
	for i, name := range _CallInfoNames {
		if self&(1<<i) != 0 {
			ret = append(ret, name)
		}
	}
	return "{" + strings.Join(ret, ",") + "}"
}
