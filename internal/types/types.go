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

package types

import (
	"fmt"
	"strings"
)

// VarType is the type of the value produced by an IR node.
type VarType uint8

const (
	Undef VarType = iota
	Void
	Bool
	Byte
	UByte
	Short
	UShort
	Int
	UInt
	Long
	ULong
	Float
	Double
	Ref
	ByRef
	Struct
	Blk
	SIMD8
	SIMD12
	SIMD16
	SIMD32
	Mask
	Count
)

type _TypeFlags uint8

const (
	_F_int _TypeFlags = 1 << iota
	_F_uns
	_F_flt
	_F_gc
	_F_small
	_F_struct
	_F_simd
)

type _TypeInfo struct {
	name  string
	size  uint8
	flags _TypeFlags
}

var _TypeTab = [Count]_TypeInfo{
	Undef:  {"undef", 0, 0},
	Void:   {"void", 0, 0},
	Bool:   {"bool", 1, _F_int | _F_uns | _F_small},
	Byte:   {"byte", 1, _F_int | _F_small},
	UByte:  {"ubyte", 1, _F_int | _F_uns | _F_small},
	Short:  {"short", 2, _F_int | _F_small},
	UShort: {"ushort", 2, _F_int | _F_uns | _F_small},
	Int:    {"int", 4, _F_int},
	UInt:   {"uint", 4, _F_int | _F_uns},
	Long:   {"long", 8, _F_int},
	ULong:  {"ulong", 8, _F_int | _F_uns},
	Float:  {"float", 4, _F_flt},
	Double: {"double", 8, _F_flt},
	Ref:    {"ref", 8, _F_gc},
	ByRef:  {"byref", 8, _F_gc},
	Struct: {"struct", 0, _F_struct},
	Blk:    {"blk", 0, _F_struct},
	SIMD8:  {"simd8", 8, _F_simd | _F_struct},
	SIMD12: {"simd12", 12, _F_simd | _F_struct},
	SIMD16: {"simd16", 16, _F_simd | _F_struct},
	SIMD32: {"simd32", 32, _F_simd | _F_struct},
	Mask:   {"mask", 8, 0},
}

func (self VarType) info() _TypeInfo {
	if self >= Count {
		return _TypeInfo{name: fmt.Sprintf("type(%d)", uint8(self))}
	} else {
		return _TypeTab[self]
	}
}

func (self VarType) String() string {
	return self.info().name
}

// Size returns the size of the type in bytes. Ref and ByRef are reported with
// the 64-bit pointer size, use SizeOn for other targets.
func (self VarType) Size() int {
	return int(self.info().size)
}

// SizeOn returns the size of the type on a target with the given pointer size.
func (self VarType) SizeOn(ptrSize int) int {
	if self.IsGC() {
		return ptrSize
	} else {
		return self.Size()
	}
}

func (self VarType) IsIntegral() bool { return self.info().flags&_F_int != 0 }
func (self VarType) IsUnsigned() bool { return self.info().flags&_F_uns != 0 }
func (self VarType) IsFloating() bool { return self.info().flags&_F_flt != 0 }
func (self VarType) IsGC() bool       { return self.info().flags&_F_gc != 0 }
func (self VarType) IsSmallInt() bool { return self.info().flags&_F_small != 0 }
func (self VarType) IsStruct() bool   { return self.info().flags&_F_struct != 0 }
func (self VarType) IsSIMD() bool     { return self.info().flags&_F_simd != 0 }

// IsIntegralOrGC reports whether values of this type live in integer registers.
func (self VarType) IsIntegralOrGC() bool {
	return self.IsIntegral() || self.IsGC()
}

// ActualType widens small integer types to Int, the type they have on the
// evaluation stack.
func (self VarType) ActualType() VarType {
	if self.IsSmallInt() {
		return Int
	} else {
		return self
	}
}

// NativeInt returns the pointer-sized integer type of a target.
func NativeInt(ptrSize int) VarType {
	if ptrSize == 8 {
		return Long
	} else {
		return Int
	}
}

// Parse looks up a type by its name.
func Parse(name string) (VarType, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i := Undef; i < Count; i++ {
		if _TypeTab[i].name == name {
			return i, true
		}
	}
	return Undef, false
}
