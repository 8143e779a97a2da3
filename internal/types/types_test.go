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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarType_Predicates(t *testing.T) {
	tests := []struct {
		typ      VarType
		size     int
		integral bool
		floating bool
		gc       bool
		small    bool
	}{
		{Bool, 1, true, false, false, true},
		{Short, 2, true, false, false, true},
		{Int, 4, true, false, false, false},
		{ULong, 8, true, false, false, false},
		{Double, 8, false, true, false, false},
		{Ref, 8, false, false, true, false},
		{SIMD16, 16, false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			require.Equal(t, tt.size, tt.typ.Size())
			require.Equal(t, tt.integral, tt.typ.IsIntegral())
			require.Equal(t, tt.floating, tt.typ.IsFloating())
			require.Equal(t, tt.gc, tt.typ.IsGC())
			require.Equal(t, tt.small, tt.typ.IsSmallInt())
		})
	}
}

func TestVarType_ActualType(t *testing.T) {
	require.Equal(t, Int, UByte.ActualType())
	require.Equal(t, Int, Short.ActualType())
	require.Equal(t, Long, Long.ActualType())
	require.Equal(t, 4, Ref.SizeOn(4))
	require.Equal(t, Int, NativeInt(4))
	require.Equal(t, Long, NativeInt(8))
}

func TestVarType_Parse(t *testing.T) {
	for i := Undef; i < Count; i++ {
		v, ok := Parse(i.String())
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	_, ok := Parse("quux")
	require.False(t, ok)
	require.Equal(t, "type(200)", VarType(200).String())
}
