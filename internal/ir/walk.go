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
	"github.com/oleiade/lane"
)

type WalkResult uint8

const (
	WalkContinue WalkResult = iota
	WalkSkipSubtrees
	WalkAbort
)

// Visitor is called with the edge holding a node and the node using it. The
// user of the root is nil. A pre-order visitor may replace the node through
// the edge, the walk continues with the replacement.
type Visitor func(edge **Node, user *Node) WalkResult

type _WalkFrame struct {
	edge **Node
	user *Node
	it   UseEdgeIterator
}

// WalkTree walks the tree under *root in evaluation order. pre is called
// before the operands of a node are walked and post after. Skipping the
// subtrees of a node still calls post on it. Either visitor may be nil.
func WalkTree(root **Node, pre Visitor, post Visitor) WalkResult {
	st := lane.NewStack()
	if walkEnter(st, root, nil, pre) == WalkAbort {
		return WalkAbort
	}

	/* walk until the stack is empty */
	for !st.Empty() {
		fr := st.Head().(*_WalkFrame)

		/* descend into the next operand */
		if !fr.it.Done() {
			edge := fr.it.Edge()
			fr.it.Next()
			if walkEnter(st, edge, *fr.edge, pre) == WalkAbort {
				return WalkAbort
			} else {
				continue
			}
		}

		/* all the operands are visited, pop the current node */
		st.Pop()
		if post != nil && post(fr.edge, fr.user) == WalkAbort {
			return WalkAbort
		}
	}
	return WalkContinue
}

func walkEnter(st *lane.Stack, edge **Node, user *Node, pre Visitor) WalkResult {
	res := WalkContinue
	if pre != nil {
		res = pre(edge, user)
	}

	/* stop right away */
	if res == WalkAbort {
		return res
	}

	/* the operands are iterated after pre, it may have replaced the node */
	fr := &_WalkFrame{edge: edge, user: user}
	if res == WalkSkipSubtrees {
		fr.it = (*edge).UseEdgesEnd()
	} else {
		fr.it = (*edge).UseEdges()
	}

	/* visit the operands next */
	st.Push(fr)
	return res
}

// VisitPostOrder calls fn on every node of the tree, operands before users.
func VisitPostOrder(root *Node, fn func(n *Node)) {
	WalkTree(&root, nil, func(edge **Node, _ *Node) WalkResult {
		fn(*edge)
		return WalkContinue
	})
}

// FindUsers returns the chain of users from the root down to the user of
// target, or false if target is not in the tree. The chain is empty when
// target is the root itself.
func FindUsers(root *Node, target *Node) ([]*Node, bool) {
	var found bool
	var path []*Node

	/* keep the path to the current node */
	WalkTree(&root, func(edge **Node, _ *Node) WalkResult {
		if *edge == target {
			found = true
			return WalkAbort
		} else {
			path = append(path, *edge)
			return WalkContinue
		}
	}, func(_ **Node, _ *Node) WalkResult {
		path = path[:len(path)-1]
		return WalkContinue
	})

	/* not in this tree */
	if !found {
		return nil, false
	} else {
		return path, true
	}
}
