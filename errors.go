/*
 * Copyright 2021 ByteDance Inc.
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

package gentree

import (
	"github.com/cloudwego/gentree/internal/ir"
)

// KindMismatchError occurs when a node is viewed as a variant that does not
// cover its operator.
type KindMismatchError = ir.KindMismatchError

// NodeSizeError occurs when an operator change needs a larger node than the
// one that was allocated.
type NodeSizeError = ir.NodeSizeError

// ArityError occurs when a node is built with the wrong number of operands.
type ArityError = ir.ArityError

// EffectError reports a node whose effect flags miss effects of its operands.
type EffectError = ir.EffectError

var (
	ErrArgsFrozen     = ir.ErrArgsFrozen
	ErrArgsNotReady   = ir.ErrArgsNotReady
	ErrCostsNotSet    = ir.ErrCostsNotSet
	ErrNoSuchOperand  = ir.ErrNoSuchOperand
	ErrBadOperand     = ir.ErrBadOperand
	ErrNotMultiReg    = ir.ErrNotMultiReg
	ErrFieldSeqSuffix = ir.ErrFieldSeqSuffix
)
