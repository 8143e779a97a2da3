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
)

// SpillFlags is the spill state of one register of a multi-register node.
type SpillFlags uint8

const (
	SpillNone    SpillFlags = 0
	SpillSpill   SpillFlags = 1 // must be spilled after definition
	SpillSpilled SpillFlags = 2 // was spilled, reload before use
)

// MultiRegs holds the registers of a node that produces more than one
// register. Only multi-register nodes carry one.
type MultiRegs struct {
	regs  []abi.Reg
	spill []SpillFlags
}

func newMultiRegs(n int) *MultiRegs {
	ret := &MultiRegs{
		regs:  make([]abi.Reg, n),
		spill: make([]SpillFlags, n),
	}
	for i := range ret.regs {
		ret.regs[i] = abi.NoReg
	}
	return ret
}

func canBeMultiReg(op Oper) bool {
	switch op {
	case CALL, LCL_VAR, STORE_LCL_VAR, HWINTRINSIC, PUTARG_SPLIT, COPY, RELOAD:
		return true
	default:
		return false
	}
}

// Count returns the number of registers, a nil MultiRegs has none.
func (self *MultiRegs) Count() int {
	if self == nil {
		return 0
	} else {
		return len(self.regs)
	}
}

func (self *MultiRegs) Reg(i int) abi.Reg {
	if i < 0 || i >= self.Count() {
		return abi.NoReg
	} else {
		return self.regs[i]
	}
}

func (self *MultiRegs) SetReg(i int, r abi.Reg) error {
	if i < 0 || i >= self.Count() {
		return ErrBadOperand
	} else {
		self.regs[i] = r
		return nil
	}
}

func (self *MultiRegs) SpillFlags(i int) SpillFlags {
	if i < 0 || i >= self.Count() {
		return SpillNone
	} else {
		return self.spill[i]
	}
}

func (self *MultiRegs) SetSpillFlags(i int, f SpillFlags) error {
	if i < 0 || i >= self.Count() {
		return ErrBadOperand
	} else {
		self.spill[i] = f & (SpillSpill | SpillSpilled)
		return nil
	}
}

// IsMultiRegNode reports whether the node produces more than one register.
func (self *Node) IsMultiRegNode() bool {
	return self.mreg.Count() > 1
}

// MultiRegs returns the register state of a multi-register node, or nil.
func (self *Node) MultiRegs() *MultiRegs {
	return self.mreg
}
