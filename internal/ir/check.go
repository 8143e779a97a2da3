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

// MissingEffects returns the effect flags the node should carry but does not:
// its own effects plus the effects of its operands.
func (self *Node) MissingEffects() Flags {
	fv := self.OperEffects()
	for it := self.UseEdges(); !it.Done(); it.Next() {
		fv |= (*it.Edge()).flags & FlagAllEffect
	}
	return fv &^ self.flags
}

// CheckEffects verifies that every node under root carries the effects of
// its operands. The first offending node, operands first, is reported.
func CheckEffects(root *Node) error {
	var err error
	WalkTree(&root, nil, func(edge **Node, _ *Node) WalkResult {
		if fv := (*edge).MissingEffects(); fv == 0 {
			return WalkContinue
		} else {
			err = EffectError{Node: *edge, Missing: fv}
			return WalkAbort
		}
	})
	return err
}
