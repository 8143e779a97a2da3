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
	"tlog.app/go/errors"

	"github.com/cloudwego/gentree/internal/debuginfo"
)

// Statement is the root of one tree together with the IL location it was
// imported from.
type Statement struct {
	root  *Node
	di    debuginfo.DebugInfo
	first *Node
	last  *Node
}

// NewStatement creates a statement. The debug info is validated when debug
// checks are enabled.
func (self *Compiler) NewStatement(root *Node, di debuginfo.DebugInfo) (*Statement, error) {
	if root == nil {
		return nil, ErrBadOperand
	}

	/* check the location against the inline tree */
	if self.Opts.DebugChecks {
		if err := di.Validate(); err != nil {
			return nil, errors.Wrap(err, "statement [%06d]", root.id)
		}
	}

	/* not sequenced yet */
	return &Statement{root: root, di: di}, nil
}

func (self *Statement) Root() *Node                    { return self.root }
func (self *Statement) DebugInfo() debuginfo.DebugInfo { return self.di }
func (self *Statement) IsSequenced() bool              { return self.first != nil }
func (self *Statement) First() *Node                   { return self.first }
func (self *Statement) Last() *Node                    { return self.last }

// SetRoot replaces the tree of the statement, the order must be rebuilt.
func (self *Statement) SetRoot(root *Node) {
	self.root = root
	self.first = nil
	self.last = nil
}

// Sequence links the nodes of the statement in execution order: operands
// before their users, following the evaluation order of each node.
func (self *Statement) Sequence() *Node {
	var prev *Node
	self.first = nil

	/* link in post-order */
	VisitPostOrder(self.root, func(n *Node) {
		n.prev = prev
		n.next = nil
		if prev == nil {
			self.first = n
		} else {
			prev.next = n
		}
		prev = n
	})

	/* the root is always last */
	self.last = prev
	return self.first
}

// Nodes returns the nodes in execution order, sequencing the statement first
// if needed.
func (self *Statement) Nodes() []*Node {
	if self.first == nil {
		self.Sequence()
	}

	/* follow the links */
	var ret []*Node
	for p := self.first; p != nil; p = p.next {
		ret = append(ret, p)
	}
	return ret
}

// ReplaceOperand replaces the operand old of user by repl, then recomputes
// the effect flags of user and of every node above it. The execution order
// is invalidated.
func (self *Statement) ReplaceOperand(user *Node, old *Node, repl *Node) error {
	path, ok := FindUsers(self.root, user)
	if !ok {
		return ErrNoSuchOperand
	}

	/* replace in the user */
	if err := user.ReplaceOperand(old, repl); err != nil {
		return err
	}

	/* propagate upwards */
	self.updatePath(path)
	return nil
}

// ChangeOper changes the operator of n, then recomputes the effect flags of
// n and of every node above it. The execution order is invalidated.
func (self *Statement) ChangeOper(n *Node, op Oper, vnu ValueNumberUpdate) error {
	path, ok := FindUsers(self.root, n)
	if !ok {
		return ErrNoSuchOperand
	}

	/* switch the operator */
	if err := n.ChangeOperator(op, vnu); err != nil {
		return err
	}

	/* the new operator may have different effects */
	n.UpdateEffects()
	self.updatePath(path)
	return nil
}

// PropagateEffects recomputes the effect flags of n and of every node above
// it. It must be called after n or its operands were rewritten through an
// API that only updates n itself.
func (self *Statement) PropagateEffects(n *Node) error {
	path, ok := FindUsers(self.root, n)
	if !ok {
		return ErrNoSuchOperand
	}

	/* the node first, then its users bottom-up */
	n.UpdateEffects()
	self.updatePath(path)
	return nil
}

func (self *Statement) updatePath(path []*Node) {
	for i := len(path) - 1; i >= 0; i-- {
		path[i].UpdateEffects()
	}

	/* the old order is stale */
	self.first = nil
	self.last = nil
}

// ReplaceRoot replaces the whole tree of the statement.
func (self *Statement) ReplaceRoot(repl *Node) error {
	if repl == nil {
		return ErrBadOperand
	} else {
		self.SetRoot(repl)
		return nil
	}
}
