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

func gpr32(r x86_64.Register32) Reg {
	return Reg(r)
}

// NewX86 returns the 32-bit x86 managed target: the first two pointer-sized
// integer arguments travel in ECX and EDX, everything else on the stack.
// Longs never take the ECX:EDX pair.
// There is no CFG dispatcher on x86.
func NewX86() *Target {
	names := make(map[Reg]string, 16)
	fixed := make(map[WellKnownArg]Reg, 2)

	/* register names come from the assembler */
	for r := x86_64.EAX; r <= x86_64.EDI; r++ {
		names[gpr32(r)] = r.String()
	}
	for r := x86_64.XMM0; r <= x86_64.XMM7; r++ {
		names[xmm(r)] = r.String()
	}

	/* registers of the well-known arguments */
	fixed[VirtualStubCell] = gpr32(x86_64.EAX)
	fixed[R2RIndirectionCell] = gpr32(x86_64.EAX)

	/* build the target */
	return &Target{
		Name:         "x86",
		PtrSize:      4,
		StackSlot:    4,
		MaxRegReturn: 2,
		VectorBytes:  16,
		IntArgRegs:   []Reg{gpr32(x86_64.ECX), gpr32(x86_64.EDX)},
		MaxRegStruct: 0,
		LongsOnStack: true,
		fixed:        fixed,
		names:        names,
		policy:       _XArchPolicy{dispatcher: false},
	}
}
