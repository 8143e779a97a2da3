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

const (
	_S_end = -1
)

/* call operand groups */
const (
	_C_early = iota
	_C_late
	_C_ctrl
	_C_cookie
	_C_addr
	_C_done
)

// UseEdgeIterator walks the operand slots of a node in evaluation order. It
// yields the location holding each operand, so the operand can be replaced
// through the edge.
//
//	for it := n.UseEdges(); !it.Done(); it.Next() {
//	    *it.Edge() = repl
//	}
type UseEdgeIterator struct {
	node    *Node
	edge    **Node
	advance func(*UseEdgeIterator)
	arg     *CallArg
	state   int
}

// UseEdges returns an iterator over the operand slots of the node, in the
// order the operands are evaluated.
func (self *Node) UseEdges() UseEdgeIterator {
	return newUseEdgeIterator(self, true)
}

// UseEdgesEnd returns the terminal iterator of the node.
func (self *Node) UseEdgesEnd() UseEdgeIterator {
	return UseEdgeIterator{node: self, state: _S_end}
}

func newUseEdgeIterator(n *Node, ordered bool) UseEdgeIterator {
	it := UseEdgeIterator{node: n}
	op := n.oper

	/* pick the advance function for the shape of the node */
	switch {
	case op.IsLeaf():
		it.advance = nil
	case op.IsUnary():
		it.advance = advanceUnary
	case op.IsBinary():
		if ordered && n.IsReverseOp() {
			it.advance = advanceBinaryRev
		} else {
			it.advance = advanceBinary
		}
	case op == CALL:
		it.advance = advanceCall
	case op == PHI:
		it.advance = advanceList
	case op == FIELD_LIST:
		it.advance = advanceFields
	case op == HWINTRINSIC:
		if ordered && n.IsReverseOp() && len(n.uses) == 2 {
			it.advance = advanceListRev
		} else {
			it.advance = advanceList
		}
	case op == CMPXCHG, op == STORE_DYN_BLK:
		it.advance = advanceTernary
	case op == SELECT:
		it.advance = advanceConditional
	default:
		panic("unreachable")
	}

	/* find the first edge */
	it.Next()
	return it
}

// Done reports whether the iterator reached the end.
func (self *UseEdgeIterator) Done() bool {
	return self.state == _S_end
}

// Edge returns the slot of the current operand.
func (self *UseEdgeIterator) Edge() **Node {
	return self.edge
}

// Node returns the node whose operands are iterated.
func (self *UseEdgeIterator) Node() *Node {
	return self.node
}

// Equal reports whether two iterators over the same node are at the same
// position. Two terminal iterators are always equal.
func (self *UseEdgeIterator) Equal(other UseEdgeIterator) bool {
	return self.node == other.node && self.edge == other.edge && (self.state == _S_end) == (other.state == _S_end)
}

// Next moves the iterator to the next non-nil operand.
func (self *UseEdgeIterator) Next() {
	if self.advance == nil || self.state == _S_end {
		self.terminate()
	} else {
		self.advance(self)
	}
}

func (self *UseEdgeIterator) terminate() {
	self.edge = nil
	self.arg = nil
	self.state = _S_end
}

func (self *UseEdgeIterator) yield(edge **Node) bool {
	if *edge == nil {
		return false
	} else {
		self.edge = edge
		return true
	}
}

func advanceUnary(self *UseEdgeIterator) {
	if self.state == 0 {
		self.state = 1
		if self.yield(&self.node.ops[0]) {
			return
		}
	}
	self.terminate()
}

func advanceFixed(self *UseEdgeIterator, order []int) {
	for self.state < len(order) {
		i := order[self.state]
		self.state++

		/* skip empty slots */
		if self.yield(&self.node.ops[i]) {
			return
		}
	}
	self.terminate()
}

var (
	_OrderBinary      = []int{0, 1}
	_OrderBinaryRev   = []int{1, 0}
	_OrderTernary     = []int{0, 1, 2}
	_OrderConditional = []int{2, 0, 1}
)

func advanceBinary(self *UseEdgeIterator)      { advanceFixed(self, _OrderBinary) }
func advanceBinaryRev(self *UseEdgeIterator)   { advanceFixed(self, _OrderBinaryRev) }
func advanceTernary(self *UseEdgeIterator)     { advanceFixed(self, _OrderTernary) }
func advanceConditional(self *UseEdgeIterator) { advanceFixed(self, _OrderConditional) }

func advanceList(self *UseEdgeIterator) {
	for self.state < len(self.node.uses) {
		i := self.state
		self.state++

		/* skip empty slots */
		if self.yield(&self.node.uses[i]) {
			return
		}
	}
	self.terminate()
}

func advanceListRev(self *UseEdgeIterator) {
	nb := len(self.node.uses)
	for self.state < nb {
		i := nb - 1 - self.state
		self.state++

		/* skip empty slots */
		if self.yield(&self.node.uses[i]) {
			return
		}
	}
	self.terminate()
}

func advanceFields(self *UseEdgeIterator) {
	for self.state < len(self.node.fields) {
		i := self.state
		self.state++

		/* skip empty slots */
		if self.yield(&self.node.fields[i].node) {
			return
		}
	}
	self.terminate()
}

// advanceCall yields the early args in argument order, then the late args in
// late order, then the control expression, the cookie and the address of
// indirect calls. The group being walked is kept in state, the position
// within the arg lists in arg.
func advanceCall(self *UseEdgeIterator) {
	cd := self.node.call
	for {
		switch self.state {
		case _C_early:
			if self.arg == nil {
				self.arg = cd.args.head
			} else {
				self.arg = self.arg.next
			}
			if self.arg == nil {
				self.state = _C_late
				continue
			}
			if self.yield(&self.arg.early) {
				return
			}

		case _C_late:
			if self.arg == nil {
				self.arg = cd.args.lateHead
			} else {
				self.arg = self.arg.lateNext
			}
			if self.arg == nil {
				self.state = _C_ctrl
				continue
			}
			if self.yield(&self.arg.late) {
				return
			}

		case _C_ctrl:
			self.state = _C_cookie
			if self.yield(&cd.ctrlExpr) {
				return
			}

		case _C_cookie:
			self.state = _C_addr
			if cd.kind == CallKindIndirect && self.yield(&cd.cookie) {
				return
			}

		case _C_addr:
			self.state = _C_done
			if cd.kind == CallKindIndirect && self.yield(&cd.addr) {
				return
			}

		default:
			self.terminate()
			return
		}
	}
}

// OperandIterator yields the operands of a node. Unlike UseEdges it always
// walks binary operands in declared order, regardless of FlagReverseOps.
type OperandIterator struct {
	UseEdgeIterator
}

// Operands returns an iterator over the operand values of the node.
func (self *Node) Operands() OperandIterator {
	return OperandIterator{newUseEdgeIterator(self, false)}
}

// Operand returns the current operand.
func (self *OperandIterator) Operand() *Node {
	return *self.edge
}

// OperandList collects the operands of the node in declared order.
func (self *Node) OperandList() []*Node {
	var ret []*Node
	for it := self.Operands(); !it.Done(); it.Next() {
		ret = append(ret, it.Operand())
	}
	return ret
}
