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
	"runtime"

	"tlog.app/go/errors"

	"github.com/cloudwego/gentree/internal/opts"
)

// Policy holds the table-driven decisions that differ per architecture.
type Policy interface {
	// IndirectionCellArgKind returns the well-known argument that carries the
	// indirection cell of a call, or None.
	IndirectionCellArgKind(ci CallInfo) WellKnownArg

	// CFGDispatch reports whether the CFG dispatcher may be used for a call,
	// and whether it should be by default.
	CFGDispatch(ci CallInfo, cell WellKnownArg) (may bool, should bool)
}

// Target describes the calling convention of one architecture.
type Target struct {
	Name         string
	PtrSize      int
	StackSlot    int
	MaxRegReturn int
	VectorBytes  int
	IntArgRegs   []Reg
	FloatArgRegs []Reg

	// SplitStructs allows a struct to be passed partly in the remaining
	// integer registers and partly on the stack.
	SplitStructs bool

	// MaxRegStruct is the largest struct passed by value in registers.
	MaxRegStruct int

	// LongsOnStack passes integers wider than a pointer on the stack, they
	// never take a register pair.
	LongsOnStack bool

	// EvenPairs starts a register pair on an even register and aligns its
	// stack slot to the size of the pair.
	EvenPairs bool

	fixed  map[WellKnownArg]Reg
	names  map[Reg]string
	policy Policy
}

// FixedReg returns the dedicated register of a well-known argument, if the
// target has one.
func (self *Target) FixedReg(wk WellKnownArg) (Reg, bool) {
	r, ok := self.fixed[wk]
	return r, ok
}

func (self *Target) RegName(r Reg) string {
	if r == NoReg {
		return "NA"
	} else if name, ok := self.names[r]; ok {
		return name
	} else {
		return fmt.Sprintf("r%d", uint8(r))
	}
}

func (self *Target) IndirectionCellArgKind(ci CallInfo) WellKnownArg {
	return self.policy.IndirectionCellArgKind(ci)
}

// CFGCallKind picks the control flow guard strategy for a call. A dispatcher
// override of 0 forces validation and 1 prefers the dispatcher where it may
// be used, any other value keeps the target default.
func (self *Target) CFGCallKind(ci CallInfo, dispatcherOverride int) CFGCallKind {
	may, should := self.policy.CFGDispatch(ci, self.IndirectionCellArgKind(ci))

	/* apply the override */
	switch dispatcherOverride {
	case 0:
		should = false
	case 1:
		should = true
	}

	/* both conditions must hold */
	if may && should {
		return Dispatch
	} else {
		return ValidateAndCall
	}
}

func (self *Target) String() string {
	return self.Name
}

// Lookup returns the target with the given architecture name. "386" is
// accepted as an alias of "x86".
func Lookup(name string) (*Target, error) {
	switch name {
	case "amd64":
		return NewAMD64(16), nil
	case "arm64":
		return NewARM64(), nil
	case "arm":
		return NewARM(), nil
	case "x86", "386":
		return NewX86(), nil
	default:
		return nil, errors.New("unsupported target: %q", name)
	}
}

// Resolve returns the target selected by the options. The host target probes
// the running CPU for its vector width.
func Resolve(o *opts.Options) (*Target, error) {
	if arch := o.TargetArch(); arch == runtime.GOARCH && arch == "amd64" {
		return NewAMD64(HostVectorBytes()), nil
	} else {
		return Lookup(arch)
	}
}

func regNames(m map[Reg]string, base Reg, names ...string) {
	for i, v := range names {
		m[base+Reg(i)] = v
	}
}
