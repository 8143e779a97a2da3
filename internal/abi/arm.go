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
	_ARM_R4 Reg = 4
	_ARM_D0 Reg = 16
)

// NewARM returns the 32-bit ARM target. Structs may be split between the
// last argument registers and the stack, longs take an even register pair.
func NewARM() *Target {
	names := make(map[Reg]string, 32)
	fixed := make(map[WellKnownArg]Reg, 2)

	/* core and VFP registers */
	for i := 0; i < 13; i++ {
		names[Reg(i)] = fmt.Sprintf("r%d", i)
	}
	for i := 0; i < 16; i++ {
		names[_ARM_D0+Reg(i)] = fmt.Sprintf("d%d", i)
	}

	/* the special ones */
	regNames(names, 13, "sp", "lr", "pc")

	/* registers of the well-known arguments */
	fixed[VirtualStubCell] = _ARM_R4
	fixed[R2RIndirectionCell] = _ARM_R4

	/* build the target */
	return &Target{
		Name:         "arm",
		PtrSize:      4,
		StackSlot:    4,
		MaxRegReturn: 4,
		VectorBytes:  16,
		IntArgRegs:   seqRegs(0, 4),
		FloatArgRegs: seqRegs(_ARM_D0, 8),
		SplitStructs: true,
		MaxRegStruct: 64,
		EvenPairs:    true,
		fixed:        fixed,
		names:        names,
		policy:       _ARMPolicy{dispatcher: false},
	}
}
