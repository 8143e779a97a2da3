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
	_COST_ind     = 3
	_COST_call    = 15
	_COST_div     = 20
	_COST_mul     = 3
	_COST_lcl     = 3
	_COST_dbl     = 2
	_COST_default = 1
)

// leafCosts returns the execution and size costs of a leaf.
func leafCosts(n *Node) (int, int) {
	switch n.oper {
	case CNS_INT:
		if n.IsIconHandle() || n.ival < -128 || n.ival > 127 {
			return 1, 4
		} else {
			return 1, 1
		}
	case CNS_LNG:
		return 1, 8
	case CNS_DBL, CNS_VEC:
		return _COST_dbl, 4
	case CNS_STR:
		return _COST_lcl, 4
	case LCL_VAR, LCL_FLD, PHI_ARG:
		return _COST_lcl, 2
	case LCL_ADDR:
		return 1, 3
	case RET_EXPR:
		return _COST_call, 8
	default:
		return _COST_default, _COST_default
	}
}

// operCosts returns the costs a node adds on top of its operands.
func operCosts(n *Node) (int, int) {
	switch {
	case n.oper.IsIndir() || n.oper == ARR_LENGTH:
		return _COST_ind, 2
	case n.oper.IsDivMod():
		return _COST_div, 3
	case n.oper == MUL || n.oper == MULHI:
		return _COST_mul, 2
	case n.oper == CALL:
		return _COST_call, 5
	case n.oper == CAST && n.CastNeedsHelper():
		return _COST_call, 5
	case n.oper == BOUNDS_CHECK:
		return 4, 6
	case n.oper == CMPXCHG:
		return 10, 8
	case n.oper == COMMA || n.oper == ARGPLACE || n.oper == FIELD_LIST || n.oper == PHI:
		return 0, 0
	default:
		return _COST_default, _COST_default
	}
}

// CastNeedsHelper reports whether a CAST cannot be done inline, overflow
// checked conversions from floating point go through a helper.
func (self *Node) CastNeedsHelper() bool {
	return self.oper == CAST && self.ops[0] != nil && self.ops[0].typ.IsFloating() && self.flags&FlagOverflow != 0
}

// canReverse reports whether the operands of a binary node may be evaluated
// in either order.
func canReverse(n *Node) bool {
	if !n.oper.IsCommutative() {
		return false
	}

	/* both operands must be present */
	a, b := n.ops[0], n.ops[1]
	if a == nil || b == nil {
		return false
	}

	/* and free of effects that order each other */
	return (a.flags|b.flags)&(FlagSideEffect|FlagOrderSideEff) == 0
}

// SetEvalOrder computes the costs of every node under root, and reverses the
// operands of commutative nodes whose second operand is costlier, when that
// does not change what the tree computes. It returns the execution cost of
// the root.
func (self *Compiler) SetEvalOrder(root *Node) int {
	nb := 0
	VisitPostOrder(root, func(n *Node) {
		var ex, sz int
		nb++

		/* the node itself */
		if n.oper.IsLeaf() {
			ex, sz = leafCosts(n)
		} else {
			ex, sz = operCosts(n)
		}

		/* plus the operands, which are already costed */
		for it := n.Operands(); !it.Done(); it.Next() {
			ex += it.Operand().CostEx()
			sz += it.Operand().CostSz()
		}

		/* pick the cheaper order */
		if n.oper.IsBinary() {
			n.SetReverseOps(canReverse(n) && n.ops[1].CostEx() > n.ops[0].CostEx())
		}

		/* record the costs */
		n.SetCosts(ex, sz)
	})

	/* trace the result */
	if self.tr.If("ir") {
		self.tr.Printw("eval order", "root", root.id, "nodes", nb, "cost_ex", root.CostEx(), "cost_sz", root.CostSz())
	}
	return root.CostEx()
}
