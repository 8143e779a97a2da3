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
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/cloudwego/gentree/internal/abi"
	"github.com/cloudwego/gentree/internal/debuginfo"
	"github.com/cloudwego/gentree/internal/fieldseq"
	"github.com/cloudwego/gentree/internal/opts"
	"github.com/cloudwego/gentree/internal/types"
)

// Compiler holds the state of one method compilation: the node arena, the
// field sequence store, the inline tree and the local table. A Compiler is
// owned by one goroutine, compilations running in parallel each have their
// own.
type Compiler struct {
	ID        uuid.UUID
	Opts      *opts.Options
	Target    *abi.Target
	FieldSeqs *fieldseq.Store
	Inlines   *debuginfo.InlineTree
	arena     *Arena
	locals    []types.VarType
	tr        tlog.Span
}

// NewCompiler starts the compilation of a method. The log span of the
// compilation is spawned from ctx.
func NewCompiler(ctx context.Context, method debuginfo.MethodHandle, ilSize int, o *opts.Options) (*Compiler, error) {
	tgt, err := abi.Resolve(o)
	if err != nil {
		return nil, errors.Wrap(err, "resolve target")
	}

	/* every compilation is identified for the logs */
	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "compilation id")
	}

	/* spawn the compilation span */
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "gentree: compile", "id", id, "method", uintptr(method), "target", tgt.Name)
	return &Compiler{
		ID:        id,
		Opts:      o,
		Target:    tgt,
		FieldSeqs: fieldseq.NewStore(),
		Inlines:   debuginfo.NewInlineTree(method, ilSize, o),
		arena:     newArena(),
		tr:        tr,
	}, nil
}

// Close releases the arena. Nodes of the compilation must not be used after.
func (self *Compiler) Close() {
	if self.arena == nil {
		return
	}

	/* release the arena */
	n := self.arena.Count()
	freeArena(self.arena)
	atomic.AddUint64(&CompileCount, 1)

	/* finish the span */
	self.arena = nil
	self.tr.Finish("nodes", n, "locals", len(self.locals), "fieldseqs", self.FieldSeqs.Count())
}

func (self *Compiler) Span() tlog.Span { return self.tr }
func (self *Compiler) Arena() *Arena   { return self.arena }
func (self *Compiler) NumLocals() int  { return len(self.locals) }

// LocalType returns the type of a local, or Undef if there is no such local.
func (self *Compiler) LocalType(lcl uint32) types.VarType {
	if int(lcl) >= len(self.locals) {
		return types.Undef
	} else {
		return self.locals[lcl]
	}
}

// AddLocal declares a local of the method.
func (self *Compiler) AddLocal(typ types.VarType) uint32 {
	self.locals = append(self.locals, typ)
	return uint32(len(self.locals) - 1)
}

// GrabTemp allocates a compiler temp.
func (self *Compiler) GrabTemp(typ types.VarType) uint32 {
	lcl := self.AddLocal(typ)
	if self.tr.If("ir") {
		self.tr.Printw("grab temp", "lcl", lcl, "type", typ)
	}
	return lcl
}

// ChangeOper changes the operator of n and recomputes its effect flags. The
// flags of the ancestors of n are left alone, use Statement.ChangeOper when n
// has users. The subtree is verified when debug checks are enabled.
func (self *Compiler) ChangeOper(n *Node, op Oper, vnu ValueNumberUpdate) error {
	old := n.oper
	if err := n.ChangeOperator(op, vnu); err != nil {
		return err
	}

	/* the new operator may have different effects */
	n.UpdateEffects()

	/* trace the change */
	if self.tr.If("ir") {
		self.tr.Printw("change oper", "node", n.id, "from", old, "to", op)
	}

	/* check the tree below */
	if self.Opts.DebugChecks {
		return CheckEffects(n)
	} else {
		return nil
	}
}

// InitMultiReg gives a node the state for count result registers.
func (self *Compiler) InitMultiReg(n *Node, count int) error {
	if !canBeMultiReg(n.oper) || count < 2 || count > self.maxMultiReg() {
		return ErrNotMultiReg
	}

	/* locals carry a flag as well */
	n.mreg = newMultiRegs(count)
	if n.OperIs(LCL_VAR, STORE_LCL_VAR) {
		n.flags |= FlagVarMultiReg
	}
	return nil
}

func (self *Compiler) maxMultiReg() int {
	if self.Target.MaxRegReturn < 2 {
		return 2
	} else {
		return self.Target.MaxRegReturn
	}
}
