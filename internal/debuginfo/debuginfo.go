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

package debuginfo

import (
	"fmt"

	"tlog.app/go/errors"
)

// BadILOffset marks an ILLocation that does not map to any IL instruction.
const BadILOffset = ^uint32(0)

// ILLocation is a position in the IL stream of one method.
type ILLocation struct {
	offset       uint32
	isStackEmpty bool
	isCall       bool
}

func NewILLocation(offset uint32, isStackEmpty bool, isCall bool) ILLocation {
	return ILLocation{
		offset:       offset,
		isStackEmpty: isStackEmpty,
		isCall:       isCall,
	}
}

// BadILLocation returns a location that maps nowhere.
func BadILLocation() ILLocation {
	return ILLocation{offset: BadILOffset}
}

func (self ILLocation) Offset() uint32     { return self.offset }
func (self ILLocation) IsStackEmpty() bool { return self.isStackEmpty }
func (self ILLocation) IsCall() bool       { return self.isCall }
func (self ILLocation) IsValid() bool      { return self.offset != BadILOffset }

func (self ILLocation) String() string {
	if !self.IsValid() {
		return "???"
	}

	/* offset, with the optional attributes */
	ret := fmt.Sprintf("0x%03x", self.offset)
	if self.isStackEmpty {
		ret += "[E]"
	}
	if self.isCall {
		ret += "[C]"
	}
	return ret
}

// DebugInfo maps a statement back to an IL location through zero or more
// inlining steps. It is a plain value and is copied freely.
type DebugInfo struct {
	ctx *InlineContext
	loc ILLocation
}

func New(ctx *InlineContext, loc ILLocation) DebugInfo {
	return DebugInfo{ctx: ctx, loc: loc}
}

func (self DebugInfo) InlineContext() *InlineContext { return self.ctx }
func (self DebugInfo) Location() ILLocation          { return self.loc }

// IsValid reports whether the debug info refers to an actual IL location.
func (self DebugInfo) IsValid() bool {
	return self.ctx != nil && self.loc.IsValid()
}

// GetParent returns the location of the inlined call one level up. It
// returns false when the context is nil or is the root of the inline tree.
func (self DebugInfo) GetParent() (DebugInfo, bool) {
	if self.ctx == nil || self.ctx.IsRoot() {
		return DebugInfo{}, false
	} else {
		return DebugInfo{ctx: self.ctx.parent, loc: self.ctx.location}, true
	}
}

// GetRoot follows GetParent until it fails.
func (self DebugInfo) GetRoot() DebugInfo {
	di := self
	for p, ok := di.GetParent(); ok; p, ok = di.GetParent() {
		di = p
	}
	return di
}

// Validate checks that every valid location in the chain falls exactly on an
// instruction start of its inline context.
func (self DebugInfo) Validate() error {
	for di, ok := self, true; ok; di, ok = di.GetParent() {
		if di.ctx == nil || !di.loc.IsValid() {
			continue
		}
		if !di.ctx.IsInstrStart(di.loc.offset) {
			return errors.New("IL offset %v is not an instruction start in inline context #%d", di.loc, di.ctx.ordinal)
		}
	}
	return nil
}

func (self DebugInfo) String() string {
	if self.ctx == nil {
		return fmt.Sprintf("%v @ <none>", self.loc)
	} else {
		return fmt.Sprintf("%v @ #%d", self.loc, self.ctx.ordinal)
	}
}
