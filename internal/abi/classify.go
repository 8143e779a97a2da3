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
	"strings"

	"github.com/cloudwego/gentree/internal/types"
)

// ArgDesc is what the classifier needs to know about one argument.
type ArgDesc struct {
	Type      types.VarType
	Size      int // only used for struct and block types
	WellKnown WellKnownArg
}

// Segment is one register or stack slot range holding part of an argument.
type Segment struct {
	Reg    Reg
	Offset int // stack offset, when Reg is NoReg
	Size   int
}

func (self Segment) InRegister() bool {
	return self.Reg != NoReg
}

// PassingInfo is the placement of one argument.
type PassingInfo struct {
	Segments []Segment
	ByteSize int
	IsSplit  bool
}

func (self PassingInfo) HasRegs() bool {
	for _, s := range self.Segments {
		if s.InRegister() {
			return true
		}
	}
	return false
}

func (self PassingInfo) HasStack() bool {
	for _, s := range self.Segments {
		if !s.InRegister() {
			return true
		}
	}
	return false
}

func (self PassingInfo) NumRegs() int {
	n := 0
	for _, s := range self.Segments {
		if s.InRegister() {
			n++
		}
	}
	return n
}

// StackEnd returns the first stack offset past this argument, or 0.
func (self PassingInfo) StackEnd() int {
	end := 0
	for _, s := range self.Segments {
		if !s.InRegister() && s.Offset+s.Size > end {
			end = s.Offset + s.Size
		}
	}
	return end
}

func (self PassingInfo) Format(t *Target) string {
	mm := make([]string, len(self.Segments))
	for i, s := range self.Segments {
		if s.InRegister() {
			mm[i] = "%" + t.RegName(s.Reg)
		} else {
			mm[i] = fmt.Sprintf("[sp+%#x]:%d", s.Offset, s.Size)
		}
	}
	return strings.Join(mm, ",")
}

// ClassifierState tracks the registers and stack consumed by the arguments
// classified so far for one call.
type ClassifierState struct {
	ni int
	nf int
	sp int
}

// StackSize returns the outgoing stack bytes used so far.
func (self *ClassifierState) StackSize() int {
	return self.sp
}

func alignUp(n int, a int) int {
	return (n + a - 1) &^ (a - 1)
}

func (self *ClassifierState) stack(t *Target, size int) Segment {
	n := alignUp(size, t.StackSlot)
	s := Segment{Reg: NoReg, Offset: self.sp, Size: n}
	self.sp += n
	return s
}

// Classify assigns a placement to the next argument of a call.
func (self *Target) Classify(arg ArgDesc, st *ClassifierState) PassingInfo {
	size := arg.Type.SizeOn(self.PtrSize)
	if arg.Type.IsStruct() && !arg.Type.IsSIMD() {
		size = arg.Size
	}

	/* arguments with a dedicated register */
	if r, ok := self.fixed[arg.WellKnown]; ok {
		return PassingInfo{ByteSize: self.PtrSize, Segments: []Segment{{Reg: r, Size: self.PtrSize}}}
	}

	/* dispatch on the argument type */
	switch {
	case arg.Type.IsFloating():
		return self.classifyFloat(size, st)
	case arg.Type.IsSIMD():
		return self.classifyVector(size, st)
	case arg.Type.IsStruct():
		return self.classifyStruct(size, st)
	default:
		return self.classifyInt(size, st)
	}
}

func (self *Target) classifyFloat(size int, st *ClassifierState) PassingInfo {
	if st.nf < len(self.FloatArgRegs) {
		st.nf++
		return PassingInfo{ByteSize: size, Segments: []Segment{{Reg: self.FloatArgRegs[st.nf-1], Size: size}}}
	} else {
		return PassingInfo{ByteSize: size, Segments: []Segment{st.stack(self, size)}}
	}
}

func (self *Target) classifyVector(size int, st *ClassifierState) PassingInfo {
	if size <= self.VectorBytes && st.nf < len(self.FloatArgRegs) {
		st.nf++
		return PassingInfo{ByteSize: size, Segments: []Segment{{Reg: self.FloatArgRegs[st.nf-1], Size: size}}}
	} else {
		return PassingInfo{ByteSize: size, Segments: []Segment{st.stack(self, size)}}
	}
}

func (self *Target) classifyInt(size int, st *ClassifierState) PassingInfo {
	nr := alignUp(size, self.PtrSize) / self.PtrSize

	/* wide integers on 32-bit targets */
	if nr > 1 && self.LongsOnStack {
		return PassingInfo{ByteSize: size, Segments: []Segment{st.stack(self, size)}}
	}
	if nr > 1 && self.EvenPairs {
		st.ni = alignUp(st.ni, 2)
	}

	/* one register per pointer-sized part */
	if st.ni+nr <= len(self.IntArgRegs) {
		ret := PassingInfo{ByteSize: size}
		for i := 0; i < nr; i++ {
			ret.Segments = append(ret.Segments, Segment{Reg: self.IntArgRegs[st.ni], Size: self.PtrSize})
			st.ni++
		}
		return ret
	}

	/* out of registers */
	st.ni = len(self.IntArgRegs)
	if nr > 1 && self.EvenPairs {
		st.sp = alignUp(st.sp, nr*self.PtrSize)
	}
	return PassingInfo{ByteSize: size, Segments: []Segment{st.stack(self, size)}}
}

func (self *Target) classifyStruct(size int, st *ClassifierState) PassingInfo {
	nr := alignUp(size, self.PtrSize) / self.PtrSize
	free := len(self.IntArgRegs) - st.ni

	/* large structs always go to the stack */
	if size > self.MaxRegStruct {
		return PassingInfo{ByteSize: size, Segments: []Segment{st.stack(self, size)}}
	}

	/* fits entirely in registers */
	if nr <= free {
		ret := PassingInfo{ByteSize: size}
		for i := 0; i < nr; i++ {
			ret.Segments = append(ret.Segments, Segment{Reg: self.IntArgRegs[st.ni], Size: self.PtrSize})
			st.ni++
		}
		return ret
	}

	/* split between the remaining registers and the stack, only possible
	 * before any other argument went to the stack */
	if self.SplitStructs && free > 0 && st.sp == 0 {
		ret := PassingInfo{ByteSize: size, IsSplit: true}
		for st.ni < len(self.IntArgRegs) {
			ret.Segments = append(ret.Segments, Segment{Reg: self.IntArgRegs[st.ni], Size: self.PtrSize})
			st.ni++
		}
		ret.Segments = append(ret.Segments, st.stack(self, size-free*self.PtrSize))
		return ret
	}

	/* no registers left for this struct */
	st.ni = len(self.IntArgRegs)
	return PassingInfo{ByteSize: size, Segments: []Segment{st.stack(self, size)}}
}
