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
	"fmt"

	"tlog.app/go/errors"
)

var (
	ErrArgsFrozen     = errors.New("call arguments are frozen after ABI determination")
	ErrArgsNotReady   = errors.New("call arguments are not ready for this phase")
	ErrCostsNotSet    = errors.New("costs read before evaluation order was set")
	ErrNoSuchOperand  = errors.New("node is not an operand of this node")
	ErrBadOperand     = errors.New("invalid operand")
	ErrNotMultiReg    = errors.New("node does not produce multiple registers")
	ErrFieldSeqSuffix = errors.New("field sequence cannot take a suffix")
)

// KindMismatchError occurs when a node is viewed as a variant whose operator
// set does not contain the node's operator.
type KindMismatchError struct {
	View string
	Oper Oper
}

func (self KindMismatchError) Error() string {
	return fmt.Sprintf("KindMismatchError(%s): operator %s is not applicable", self.View, self.Oper)
}

// NodeSizeError occurs when a node is changed to an operator that needs a
// larger arena slot than the one the node was allocated in.
type NodeSizeError struct {
	From Oper
	To   Oper
}

func (self NodeSizeError) Error() string {
	return fmt.Sprintf("NodeSizeError: cannot change small %s node to large operator %s", self.From, self.To)
}

// ArityError occurs when a constructor receives the wrong number of operands.
type ArityError struct {
	Oper Oper
	Want int
	Got  int
}

func (self ArityError) Error() string {
	return fmt.Sprintf("ArityError(%s): want %d operands, got %d", self.Oper, self.Want, self.Got)
}

// EffectError is reported by CheckEffects when a node's effect flags do not
// cover its own effects and the effects of its operands.
type EffectError struct {
	Node    *Node
	Missing Flags
}

func (self EffectError) Error() string {
	return fmt.Sprintf("EffectError: [%06d] %s is missing effect flags %s", self.Node.id, self.Node.oper, self.Missing.EffectString())
}
