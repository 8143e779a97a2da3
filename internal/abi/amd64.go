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

package abi

import (
	"github.com/chenzhuoyu/iasm/x86_64"
)

const (
	_XMMBase = 16
)

func gpr64(r x86_64.Register64) Reg {
	return Reg(r)
}

func xmm(r x86_64.XMMRegister) Reg {
	return Reg(r) + _XMMBase
}

var (
	amd64IntArgs = []Reg{
		gpr64(x86_64.RDI),
		gpr64(x86_64.RSI),
		gpr64(x86_64.RDX),
		gpr64(x86_64.RCX),
		gpr64(x86_64.R8),
		gpr64(x86_64.R9),
	}
	amd64FloatArgs = []Reg{
		xmm(x86_64.XMM0),
		xmm(x86_64.XMM1),
		xmm(x86_64.XMM2),
		xmm(x86_64.XMM3),
		xmm(x86_64.XMM4),
		xmm(x86_64.XMM5),
		xmm(x86_64.XMM6),
		xmm(x86_64.XMM7),
	}
)

type _XArchPolicy struct {
	dispatcher bool
}

// IndirectionCellArgKind: xarch recovers the R2R cell from the call site,
// except for fast tail calls that need it in a register.
func (self _XArchPolicy) IndirectionCellArgKind(ci CallInfo) WellKnownArg {
	switch {
	case ci.IsVirtualStub():
		return VirtualStubCell
	case ci.IsR2RRelativeIndir() && ci.IsFastTailCall():
		return R2RIndirectionCell
	default:
		return None
	}
}

// CFGDispatch: the dispatcher clobbers the indirection cell registers, so it
// can only be used for calls that do not pass one.
func (self _XArchPolicy) CFGDispatch(ci CallInfo, cell WellKnownArg) (bool, bool) {
	if !self.dispatcher {
		return false, false
	} else {
		return cell == None, true
	}
}

// NewAMD64 returns the System V amd64 target with vector arguments up to
// vectorBytes wide.
func NewAMD64(vectorBytes int) *Target {
	names := make(map[Reg]string, 32)
	fixed := make(map[WellKnownArg]Reg, 4)

	/* register names come from the assembler */
	for r := x86_64.RAX; r <= x86_64.R15; r++ {
		names[gpr64(r)] = r.String()
	}
	for r := x86_64.XMM0; r <= x86_64.XMM15; r++ {
		names[xmm(r)] = r.String()
	}

	/* registers of the well-known arguments */
	fixed[VirtualStubCell] = gpr64(x86_64.R11)
	fixed[R2RIndirectionCell] = gpr64(x86_64.RAX)
	fixed[DispatchIndirectCallTarget] = gpr64(x86_64.RAX)
	fixed[ValidateIndirectCallTarget] = gpr64(x86_64.RCX)

	/* build the target */
	return &Target{
		Name:         "amd64",
		PtrSize:      8,
		StackSlot:    8,
		MaxRegReturn: 2,
		VectorBytes:  vectorBytes,
		IntArgRegs:   amd64IntArgs,
		FloatArgRegs: amd64FloatArgs,
		MaxRegStruct: 16,
		fixed:        fixed,
		names:        names,
		policy:       _XArchPolicy{dispatcher: true},
	}
}
