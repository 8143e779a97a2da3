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
	"fmt"
)

const (
	_ARM64_X8  Reg = 8
	_ARM64_X9  Reg = 9
	_ARM64_X11 Reg = 11
	_ARM64_X15 Reg = 15
	_ARM64_V0  Reg = 32
)

type _ARMPolicy struct {
	dispatcher bool
}

// IndirectionCellArgKind: ARM always passes the R2R cell in a register,
// except for delegate invokes.
func (self _ARMPolicy) IndirectionCellArgKind(ci CallInfo) WellKnownArg {
	switch {
	case ci.IsVirtualStub():
		return VirtualStubCell
	case ci.IsR2RRelativeIndir() && !ci.IsDelegateInvoke():
		return R2RIndirectionCell
	default:
		return None
	}
}

// CFGDispatch: branch predictors on ARM do not like the dispatcher, so the
// validator is the default even where the dispatcher exists.
func (self _ARMPolicy) CFGDispatch(_ CallInfo, _ WellKnownArg) (bool, bool) {
	return self.dispatcher, false
}

func seqRegs(base Reg, n int) []Reg {
	ret := make([]Reg, n)
	for i := range ret {
		ret[i] = base + Reg(i)
	}
	return ret
}

// NewARM64 returns the AAPCS64 target.
func NewARM64() *Target {
	names := make(map[Reg]string, 64)
	fixed := make(map[WellKnownArg]Reg, 5)

	/* general purpose and vector registers */
	for i := 0; i < 29; i++ {
		names[Reg(i)] = fmt.Sprintf("x%d", i)
	}
	for i := 0; i < 32; i++ {
		names[_ARM64_V0+Reg(i)] = fmt.Sprintf("v%d", i)
	}

	/* the special ones */
	regNames(names, 29, "fp", "lr", "sp")

	/* registers of the well-known arguments */
	fixed[RetBuffer] = _ARM64_X8
	fixed[VirtualStubCell] = _ARM64_X11
	fixed[R2RIndirectionCell] = _ARM64_X11
	fixed[DispatchIndirectCallTarget] = _ARM64_X9
	fixed[ValidateIndirectCallTarget] = _ARM64_X15

	/* build the target */
	return &Target{
		Name:         "arm64",
		PtrSize:      8,
		StackSlot:    8,
		MaxRegReturn: 4,
		VectorBytes:  16,
		IntArgRegs:   seqRegs(0, 8),
		FloatArgRegs: seqRegs(_ARM64_V0, 8),
		MaxRegStruct: 16,
		fixed:        fixed,
		names:        names,
		policy:       _ARMPolicy{dispatcher: true},
	}
}
