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
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/oleiade/lane"

	"github.com/cloudwego/gentree/internal/opts"
)

// MethodHandle is an opaque method handle handed out by the metadata layer.
type MethodHandle uintptr

// InlineContext is one node of the inline tree: the root is the method being
// compiled, every other context is a call site that was inlined into its
// parent.
type InlineContext struct {
	parent   *InlineContext
	location ILLocation
	method   MethodHandle
	ordinal  int
	depth    int
	ilSize   int
	children []*InlineContext
	starts   *bitset.BitSet
}

func (self *InlineContext) Parent() *InlineContext     { return self.parent }
func (self *InlineContext) Location() ILLocation       { return self.location }
func (self *InlineContext) Method() MethodHandle       { return self.method }
func (self *InlineContext) Ordinal() int               { return self.ordinal }
func (self *InlineContext) Depth() int                 { return self.depth }
func (self *InlineContext) ILSize() int                { return self.ilSize }
func (self *InlineContext) Children() []*InlineContext { return self.children }
func (self *InlineContext) IsRoot() bool               { return self.parent == nil }

// SetInstrStarts records the IL offsets at which instructions begin.
func (self *InlineContext) SetInstrStarts(offsets ...uint32) {
	if self.starts == nil {
		self.starts = bitset.New(uint(self.ilSize))
	}
	for _, v := range offsets {
		self.starts.Set(uint(v))
	}
}

// IsInstrStart reports whether an instruction begins at offset. A context
// without recorded instruction starts accepts every offset inside its IL.
func (self *InlineContext) IsInstrStart(offset uint32) bool {
	if self.starts == nil {
		return self.ilSize == 0 || int(offset) < self.ilSize
	} else {
		return self.starts.Test(uint(offset))
	}
}

func (self *InlineContext) String() string {
	if self.IsRoot() {
		return fmt.Sprintf("#%d root method %#x", self.ordinal, uintptr(self.method))
	} else {
		return fmt.Sprintf("#%d inlinee %#x at %v of #%d", self.ordinal, uintptr(self.method), self.location, self.parent.ordinal)
	}
}

// InlineTree owns every InlineContext of one compilation.
type InlineTree struct {
	root  *InlineContext
	opts  *opts.Options
	ctxs  []*InlineContext
	total int
}

func NewInlineTree(method MethodHandle, ilSize int, o *opts.Options) *InlineTree {
	root := &InlineContext{
		method:   method,
		ilSize:   ilSize,
		location: BadILLocation(),
	}
	return &InlineTree{
		root: root,
		opts: o,
		ctxs: []*InlineContext{root},
	}
}

func (self *InlineTree) Root() *InlineContext { return self.root }
func (self *InlineTree) Count() int           { return len(self.ctxs) }

// Context returns the context with the given ordinal, or nil.
func (self *InlineTree) Context(ordinal int) *InlineContext {
	if ordinal < 0 || ordinal >= len(self.ctxs) {
		return nil
	} else {
		return self.ctxs[ordinal]
	}
}

// Inline admits a call at loc in parent as an inlinee, if the inlining
// limits permit it. The limits are checked against the depth of the parent
// and the total IL inlined so far.
func (self *InlineTree) Inline(parent *InlineContext, loc ILLocation, method MethodHandle, ilSize int) (*InlineContext, bool) {
	if !self.opts.CanInline(parent.depth, self.total+ilSize) {
		return nil, false
	}

	/* create the new context */
	ctx := &InlineContext{
		parent:   parent,
		location: loc,
		method:   method,
		ordinal:  len(self.ctxs),
		depth:    parent.depth + 1,
		ilSize:   ilSize,
	}

	/* link it into the tree */
	self.total += ilSize
	self.ctxs = append(self.ctxs, ctx)
	parent.children = append(parent.children, ctx)
	return ctx, true
}

// Walk visits every context in pre-order until fn returns false.
func (self *InlineTree) Walk(fn func(ctx *InlineContext) bool) {
	st := lane.NewStack()
	for st.Push(self.root); !st.Empty(); {
		ctx := st.Pop().(*InlineContext)

		/* stop if requested */
		if !fn(ctx) {
			return
		}

		/* children are pushed in reverse, so they pop in order */
		for i := len(ctx.children) - 1; i >= 0; i-- {
			st.Push(ctx.children[i])
		}
	}
}

func (self *InlineTree) Dump() string {
	var sb strings.Builder
	self.Walk(func(ctx *InlineContext) bool {
		sb.WriteString(strings.Repeat("  ", ctx.depth))
		sb.WriteString(ctx.String())
		sb.WriteByte('\n')
		return true
	})
	return sb.String()
}
