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
	"strings"
)

// Flags is the per-node flag word. The low half is common to all operators,
// the high half is reinterpreted by each operator.
type Flags uint32

const (
	FlagAsg          Flags = 1 << 0 // contains a store
	FlagCall         Flags = 1 << 1 // contains a call
	FlagExcept       Flags = 1 << 2 // may throw
	FlagGlobRef      Flags = 1 << 3 // reads or writes global state
	FlagOrderSideEff Flags = 1 << 4 // has an ordering side effect
	FlagReverseOps   Flags = 1 << 5 // second operand evaluates first
	FlagContained    Flags = 1 << 6
	FlagNoCSE        Flags = 1 << 7
	FlagMakeCSE      Flags = 1 << 8
	FlagDontCSE      Flags = 1 << 9
	FlagUnsigned     Flags = 1 << 10
	FlagLateArg      Flags = 1 << 11
	FlagSpill        Flags = 1 << 12
	FlagSpilled      Flags = 1 << 13
	FlagBoolean      Flags = 1 << 14
	FlagColonCond    Flags = 1 << 15
)

const (
	FlagAllEffect  = FlagAsg | FlagCall | FlagExcept | FlagGlobRef | FlagOrderSideEff
	FlagSideEffect = FlagAsg | FlagCall | FlagExcept
	FlagCommonMask = Flags(1<<16) - 1
)

/* operator specific flags, the same bit means different things for
 * different operators */
const (
	/* ADD, SUB, MUL, CAST */
	FlagOverflow Flags = 1 << 16

	/* DIV, MOD, UDIV, UMOD */
	FlagDivModNoByZero   Flags = 1 << 17
	FlagDivModNoOverflow Flags = 1 << 18

	/* relational operators */
	FlagRelopNanUn   Flags = 1 << 16
	FlagRelopJmpUsed Flags = 1 << 17

	/* indirections */
	FlagIndVolatile    Flags = 1 << 16
	FlagIndNonFaulting Flags = 1 << 17
	FlagIndInvariant   Flags = 1 << 18
	FlagIndNonNull     Flags = 1 << 19
	FlagIndUnaligned   Flags = 1 << 20

	/* local variables */
	FlagVarDef      Flags = 1 << 16
	FlagVarUseAsg   Flags = 1 << 17
	FlagVarMultiReg Flags = 1 << 18

	/* integer constants, the kind of handle they hold */
	FlagIconHdlMask  Flags = 0xf << 16
	FlagIconFtnAddr  Flags = 1 << 16
	FlagIconClassHdl Flags = 2 << 16
	FlagIconMethHdl  Flags = 3 << 16
	FlagIconFieldHdl Flags = 4 << 16
	FlagIconStrHdl   Flags = 5 << 16
	FlagIconCidMid   Flags = 6 << 16
	FlagIconIndCell  Flags = 7 << 16

	/* calls */
	FlagCallNullCheck Flags = 1 << 16
	FlagCallNoThrow   Flags = 1 << 17
	FlagCallPure      Flags = 1 << 18
)

var _FlagNames = [...]struct {
	flag Flags
	name string
}{
	{FlagAsg, "A"},
	{FlagCall, "C"},
	{FlagExcept, "X"},
	{FlagGlobRef, "G"},
	{FlagOrderSideEff, "O"},
	{FlagReverseOps, "R"},
}

// EffectString renders the effect and order flags in a fixed-width column.
func (self Flags) EffectString() string {
	var sb strings.Builder
	for _, v := range _FlagNames {
		if self&v.flag != 0 {
			sb.WriteString(v.name)
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}
