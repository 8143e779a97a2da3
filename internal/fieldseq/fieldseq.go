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

// Package fieldseq canonicalizes field access sequences.
//
// A field sequence describes the (possibly nested) fields an address points
// into, in the order in which they are dereferenced. Sequences are interned per
// compilation, so two sequences are equal if and only if they are the same
// pointer.
package fieldseq

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Handle is an opaque field handle handed out by the metadata layer.
type Handle uintptr

const (
	// FirstElemPseudoField treats the constant offset of the first element of
	// an array or string as if it were a field.
	FirstElemPseudoField Handle = ^Handle(0)

	// ConstantIndexPseudoField stands for the constant added to the offset of
	// an indexed element.
	ConstantIndexPseudoField Handle = ^Handle(1)
)

func IsPseudoField(hnd Handle) bool {
	return hnd == FirstElemPseudoField || hnd == ConstantIndexPseudoField
}

// Kind classifies the storage a field lives in.
type Kind uint8

const (
	Instance Kind = iota
	SimpleStatic
	SimpleStaticKnownAddress
	SharedStatic
	_K_none
)

func (self Kind) String() string {
	switch self {
	case Instance:
		return "instance"
	case SimpleStatic:
		return "static"
	case SimpleStaticKnownAddress:
		return "static-known-addr"
	case SharedStatic:
		return "shared-static"
	case _K_none:
		return "not-a-field"
	default:
		return fmt.Sprintf("kind(%d)", uint8(self))
	}
}

// IsStatic reports whether the field is a static of any flavor.
func (self Kind) IsStatic() bool {
	return self == SimpleStatic || self == SimpleStaticKnownAddress || self == SharedStatic
}

// CanHaveSuffix reports whether another sequence may be appended after a
// sequence whose head has this kind. The store does not enforce it.
func (self Kind) CanHaveSuffix() bool {
	return self != SimpleStaticKnownAddress && self != _K_none
}

// FieldSeq is one canonical, immutable element of a field sequence.
type FieldSeq struct {
	hnd  Handle
	off  int64
	kind Kind
	next *FieldSeq
}

var notAField = &FieldSeq{kind: _K_none}

// NotAField is the distinguished sequence for values that are known not to be
// field addresses. Appending it on either side yields NotAField.
func NotAField() *FieldSeq {
	return notAField
}

func (self *FieldSeq) IsNotAField() bool { return self == notAField }
func (self *FieldSeq) Handle() Handle    { return self.hnd }
func (self *FieldSeq) Offset() int64     { return self.off }
func (self *FieldSeq) Kind() Kind        { return self.kind }
func (self *FieldSeq) Next() *FieldSeq   { return self.next }

func (self *FieldSeq) IsStatic() bool {
	return self.kind.IsStatic()
}

func (self *FieldSeq) IsPseudoField() bool {
	return IsPseudoField(self.hnd)
}

// Tail returns the last element of the sequence.
func (self *FieldSeq) Tail() *FieldSeq {
	p := self
	for p.next != nil {
		p = p.next
	}
	return p
}

// Len returns the number of fields in the sequence, nil has length 0.
func (self *FieldSeq) Len() int {
	n := 0
	for p := self; p != nil; p = p.next {
		n++
	}
	return n
}

func (self *FieldSeq) String() string {
	if self == nil {
		return "<empty>"
	}
	if self == notAField {
		return "<NotAField>"
	}

	/* format every element */
	var ret []string
	for p := self; p != nil; p = p.next {
		switch p.hnd {
		case FirstElemPseudoField:
			ret = append(ret, "#FirstElem")
		case ConstantIndexPseudoField:
			ret = append(ret, "#ConstantIndex")
		default:
			ret = append(ret, fmt.Sprintf("%#x+%d/%s", uintptr(p.hnd), p.off, p.kind))
		}
	}

	/* join them together */
	return strings.Join(ret, " -> ")
}

type _Key struct {
	hnd  Handle
	off  int64
	kind Kind
	next *FieldSeq
}

var (
	// InternCount counts canonical sequences created by all stores.
	InternCount uint64
)

// Store owns the canonical instances of every field sequence created during
// one compilation. It is not safe for concurrent use.
type Store struct {
	canon map[_Key]*FieldSeq
}

func NewStore() *Store {
	return &Store{canon: make(map[_Key]*FieldSeq, 16)}
}

// Count returns the number of canonical sequences in the store.
func (self *Store) Count() int {
	return len(self.canon)
}

func (self *Store) intern(key _Key) *FieldSeq {
	if fs, ok := self.canon[key]; ok {
		return fs
	}

	/* not seen before, create the canonical instance */
	fs := &FieldSeq{hnd: key.hnd, off: key.off, kind: key.kind, next: key.next}
	self.canon[key] = fs
	atomic.AddUint64(&InternCount, 1)
	return fs
}

// Create returns the canonical singleton sequence for (hnd, off, kind).
func (self *Store) Create(hnd Handle, off int64, kind Kind) *FieldSeq {
	return self.intern(_Key{hnd: hnd, off: off, kind: kind})
}

// Append returns the canonical sequence "a, then b". Both arguments must come
// from this store (or be nil / NotAField). The operation is associative but
// not commutative.
func (self *Store) Append(a *FieldSeq, b *FieldSeq) *FieldSeq {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a == notAField || b == notAField:
		return notAField
	}

	/* rebuild the prefix on top of the appended suffix */
	tail := self.Append(a.next, b)
	return self.intern(_Key{hnd: a.hnd, off: a.off, kind: a.kind, next: tail})
}
