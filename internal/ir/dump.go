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
	"strconv"
	"strings"

	"github.com/cloudwego/gentree/internal/types"
)

var _HandleNames = map[Flags]string{
	FlagIconFtnAddr:  "ftn",
	FlagIconClassHdl: "class",
	FlagIconMethHdl:  "method",
	FlagIconFieldHdl: "field",
	FlagIconStrHdl:   "str",
	FlagIconCidMid:   "cid",
	FlagIconIndCell:  "cell",
}

func dumpCosts(n *Node) string {
	if !n.costsSet {
		return "(  -,  -)"
	} else {
		return fmt.Sprintf("(%3d,%3d)", n.costEx, n.costSz)
	}
}

func dumpExtra(n *Node) string {
	switch n.oper {
	case CNS_INT, CNS_LNG:
		if h, ok := _HandleNames[n.flags&FlagIconHdlMask]; ok && n.oper == CNS_INT {
			return fmt.Sprintf(" %#x %s", n.ival, h)
		} else {
			return " " + strconv.FormatInt(n.ival, 10)
		}
	case CNS_DBL:
		return " " + strconv.FormatFloat(n.fval, 'g', -1, 64)
	case CNS_STR:
		return " " + strconv.Quote(n.sval)
	case CNS_VEC:
		return fmt.Sprintf(" <%x>", n.vval)
	case LCL_VAR, STORE_LCL_VAR, PHI_ARG:
		return fmt.Sprintf(" V%02d", n.lclNum)
	case LCL_FLD, STORE_LCL_FLD, LCL_ADDR:
		return fmt.Sprintf(" V%02d [+%d]", n.lclNum, n.lclOffs)
	case CAST:
		return " " + castFrom(n) + " -> " + types.VarType(n.aux).String()
	case LEA:
		return fmt.Sprintf(" (b+(i*%d)%+d)", n.aux, n.aux2)
	case BLK, STORE_BLK:
		return fmt.Sprintf(" <%d>", n.aux)
	case PHYSREG:
		return fmt.Sprintf(" r%d", n.aux)
	case HWINTRINSIC:
		return fmt.Sprintf(" #%d", n.aux)
	case CALL:
		return " " + n.call.kind.String() + callTarget(n)
	default:
		return ""
	}
}

func castFrom(n *Node) string {
	if n.ops[0] == nil {
		return ""
	} else {
		return n.ops[0].typ.String()
	}
}

func callTarget(n *Node) string {
	if n.call.kind == CallKindIndirect {
		return ""
	} else {
		return fmt.Sprintf(" %#x", n.call.method)
	}
}

func dumpLine(n *Node, indent string) string {
	return fmt.Sprintf("[%06d] %s %s %s%s %s%s", n.id, dumpCosts(n), n.flags.EffectString(), indent, n.oper, n.typ, dumpExtra(n))
}

// DumpNode formats one node without its operands.
func DumpNode(n *Node) string {
	return dumpLine(n, "")
}

// Dump formats the tree under root, one node per line, operands indented
// below their users in evaluation order.
func Dump(root *Node) string {
	var depth int
	var buf strings.Builder

	/* pre-order for the lines, post-order for the depth */
	WalkTree(&root, func(edge **Node, _ *Node) WalkResult {
		buf.WriteString(dumpLine(*edge, strings.Repeat("  ", depth)))
		buf.WriteByte('\n')
		depth++
		return WalkContinue
	}, func(_ **Node, _ *Node) WalkResult {
		depth--
		return WalkContinue
	})
	return buf.String()
}

// DumpStatement formats the statement header and its tree.
func DumpStatement(st *Statement) string {
	return fmt.Sprintf("STMT %s\n%s", st.di, Dump(st.root))
}
