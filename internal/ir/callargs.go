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
	"sort"
	"strings"

	"github.com/cloudwego/gentree/internal/abi"
	"github.com/cloudwego/gentree/internal/types"
)

// NewCallArg describes an argument to be added to a call.
type NewCallArg struct {
	Node      *Node
	WellKnown abi.WellKnownArg
	SigType   types.VarType // defaults to the type of Node
	SigSize   int           // struct size, ignored for primitives
}

func (self *NewCallArg) validate() error {
	if self.Node == nil {
		return ErrBadOperand
	}

	/* blocks carry their own size */
	if self.SigSize == 0 {
		if blk, err := self.Node.AsBlk(); err == nil {
			self.SigSize = int(blk.Size())
		}
	}

	/* a struct cannot be placed without its size */
	typ := self.SigType
	if typ == types.Undef {
		typ = self.Node.typ
	}
	if typ.IsStruct() && !typ.IsSIMD() && self.SigSize <= 0 {
		return ErrBadOperand
	} else {
		return nil
	}
}

// CallArg is one actual argument of a call. It is linked into the argument
// order through next, and once the late list is built, into the late order
// through lateNext.
type CallArg struct {
	early     *Node
	late      *Node
	next      *CallArg
	lateNext  *CallArg
	wellKnown abi.WellKnownArg
	sigType   types.VarType
	sigSize   int
	abiInfo   abi.PassingInfo
	needTmp   bool
	needPlace bool
	isTmp     bool
	tmpNum    uint32
}

func (self NewCallArg) build() *CallArg {
	ret := &CallArg{
		early:     self.Node,
		wellKnown: self.WellKnown,
		sigType:   self.SigType,
		sigSize:   self.SigSize,
		tmpNum:    BadVarNum,
	}

	/* use the node type if the signature type is missing */
	if ret.sigType == types.Undef {
		ret.sigType = self.Node.typ
	}
	return ret
}

func (self *CallArg) EarlyNode() *Node             { return self.early }
func (self *CallArg) LateNode() *Node              { return self.late }
func (self *CallArg) Next() *CallArg               { return self.next }
func (self *CallArg) LateNext() *CallArg           { return self.lateNext }
func (self *CallArg) WellKnown() abi.WellKnownArg  { return self.wellKnown }
func (self *CallArg) IsUserArg() bool              { return self.wellKnown.IsUserArg() }
func (self *CallArg) SigType() types.VarType       { return self.sigType }
func (self *CallArg) SigSize() int                 { return self.sigSize }
func (self *CallArg) AbiInfo() abi.PassingInfo     { return self.abiInfo }
func (self *CallArg) SetAbiInfo(v abi.PassingInfo) { self.abiInfo = v }
func (self *CallArg) NeedsTemp() bool              { return self.needTmp }
func (self *CallArg) NeedsPlaceholder() bool       { return self.needPlace }
func (self *CallArg) IsTemp() bool                 { return self.isTmp }
func (self *CallArg) TmpNum() uint32               { return self.tmpNum }
func (self *CallArg) SetEarlyNode(n *Node)         { self.early = n }
func (self *CallArg) SetLateNode(n *Node)          { self.late = n }

// NodeForABI returns the node that carries the value into its ABI location.
func (self *CallArg) NodeForABI() *Node {
	if self.late != nil {
		return self.late
	} else {
		return self.early
	}
}

func (self *CallArg) String() string {
	var tag string
	if self.wellKnown != abi.None {
		tag = " " + self.wellKnown.String()
	}
	return fmt.Sprintf("arg %s%s", self.sigType, tag)
}

// CallArgs is the argument list of a call. Membership can change until the
// ABI information is determined, after which only the placement of each
// argument may be refined.
type CallArgs struct {
	owner            *Node
	head             *CallArg
	lateHead         *CallArg
	hasThis          bool
	hasRetBuf        bool
	isVarArgs        bool
	abiDetermined    bool
	argsComplete     bool
	hasRegArgs       bool
	hasStackArgs     bool
	outgoingArgSpace int
}

func (self *CallArgs) HasThisPointer() bool             { return self.hasThis }
func (self *CallArgs) HasRetBuffer() bool               { return self.hasRetBuf }
func (self *CallArgs) IsVarArgs() bool                  { return self.isVarArgs }
func (self *CallArgs) IsAbiInformationDetermined() bool { return self.abiDetermined }
func (self *CallArgs) AreArgsComplete() bool            { return self.argsComplete }
func (self *CallArgs) HasRegArgs() bool                 { return self.hasRegArgs }
func (self *CallArgs) HasStackArgs() bool               { return self.hasStackArgs }
func (self *CallArgs) OutgoingArgSpaceSize() int        { return self.outgoingArgSpace }
func (self *CallArgs) First() *CallArg                  { return self.head }
func (self *CallArgs) FirstLate() *CallArg              { return self.lateHead }

func (self *CallArgs) checkMutable(na *NewCallArg) error {
	if self.abiDetermined {
		return ErrArgsFrozen
	} else if na != nil {
		return na.validate()
	} else {
		return nil
	}
}

func (self *CallArgs) added(arg *CallArg) {
	switch arg.wellKnown {
	case abi.ThisPointer:
		self.hasThis = true
	case abi.RetBuffer:
		self.hasRetBuf = true
	case abi.VarArgsCookie:
		self.isVarArgs = true
	}
	self.updateOwner()
}

func (self *CallArgs) removed(arg *CallArg) {
	switch arg.wellKnown {
	case abi.ThisPointer:
		self.hasThis = false
	case abi.RetBuffer:
		self.hasRetBuf = false
	case abi.VarArgsCookie:
		self.isVarArgs = false
	}
	self.updateOwner()
}

// updateOwner keeps the effect flags of the call in sync with its arguments.
func (self *CallArgs) updateOwner() {
	if self.owner != nil {
		self.owner.UpdateEffects()
	}
}

// PushFront adds an argument before every other argument.
func (self *CallArgs) PushFront(na NewCallArg) (*CallArg, error) {
	if err := self.checkMutable(&na); err != nil {
		return nil, err
	}

	/* link at the head */
	arg := na.build()
	arg.next = self.head
	self.head = arg
	self.added(arg)
	return arg, nil
}

// PushBack adds an argument after every other argument.
func (self *CallArgs) PushBack(na NewCallArg) (*CallArg, error) {
	if err := self.checkMutable(&na); err != nil {
		return nil, err
	}

	/* find the tail slot */
	slot := &self.head
	for *slot != nil {
		slot = &(*slot).next
	}

	/* link at the tail */
	arg := na.build()
	*slot = arg
	self.added(arg)
	return arg, nil
}

// InsertAfter adds an argument right after pos, which must be in the list.
func (self *CallArgs) InsertAfter(pos *CallArg, na NewCallArg) (*CallArg, error) {
	if err := self.checkMutable(&na); err != nil {
		return nil, err
	}

	/* pos must be one of ours */
	if !self.contains(pos) {
		return nil, ErrNoSuchOperand
	}

	/* link after pos */
	arg := na.build()
	arg.next = pos.next
	pos.next = arg
	self.added(arg)
	return arg, nil
}

// InsertAfterThisOrFirst adds an argument after the this pointer, or at the
// front when the call has none.
func (self *CallArgs) InsertAfterThisOrFirst(na NewCallArg) (*CallArg, error) {
	if this := self.GetThisArg(); this != nil {
		return self.InsertAfter(this, na)
	} else {
		return self.PushFront(na)
	}
}

// InsertInstParam adds the generic context argument of a shared generic call.
func (self *CallArgs) InsertInstParam(n *Node) (*CallArg, error) {
	return self.InsertAfterThisOrFirst(NewCallArg{Node: n, WellKnown: abi.InstParam})
}

// Remove unlinks an argument from the list.
func (self *CallArgs) Remove(arg *CallArg) error {
	if err := self.checkMutable(nil); err != nil {
		return err
	}

	/* find the slot pointing to arg */
	for slot := &self.head; *slot != nil; slot = &(*slot).next {
		if *slot == arg {
			*slot = arg.next
			arg.next = nil
			self.removed(arg)
			return nil
		}
	}
	return ErrNoSuchOperand
}

func (self *CallArgs) contains(arg *CallArg) bool {
	for p := self.head; p != nil; p = p.next {
		if p == arg {
			return true
		}
	}
	return false
}

// FindWellKnownArg returns the argument playing the given role, or nil.
func (self *CallArgs) FindWellKnownArg(wk abi.WellKnownArg) *CallArg {
	for p := self.head; p != nil; p = p.next {
		if p.wellKnown == wk {
			return p
		}
	}
	return nil
}

func (self *CallArgs) GetThisArg() *CallArg      { return self.FindWellKnownArg(abi.ThisPointer) }
func (self *CallArgs) GetRetBufferArg() *CallArg { return self.FindWellKnownArg(abi.RetBuffer) }

// FindByNode returns the argument whose early or late node is n, or nil.
func (self *CallArgs) FindByNode(n *Node) *CallArg {
	for p := self.head; p != nil; p = p.next {
		if p.early == n || p.late == n {
			return p
		}
	}
	return nil
}

// GetArgByIndex returns the i-th argument in argument order, or nil.
func (self *CallArgs) GetArgByIndex(i int) *CallArg {
	for p := self.head; p != nil; p = p.next {
		if i == 0 {
			return p
		}
		i--
	}
	return nil
}

// GetUserArgByIndex returns the i-th argument that appears in the signature,
// skipping the arguments added for the runtime.
func (self *CallArgs) GetUserArgByIndex(i int) *CallArg {
	for p := self.head; p != nil; p = p.next {
		if p.IsUserArg() {
			if i == 0 {
				return p
			}
			i--
		}
	}
	return nil
}

func (self *CallArgs) CountArgs() int {
	n := 0
	for p := self.head; p != nil; p = p.next {
		n++
	}
	return n
}

func (self *CallArgs) CountUserArgs() int {
	n := 0
	for p := self.head; p != nil; p = p.next {
		if p.IsUserArg() {
			n++
		}
	}
	return n
}

// Args returns the arguments in argument order.
func (self *CallArgs) Args() []*CallArg {
	var ret []*CallArg
	for p := self.head; p != nil; p = p.next {
		ret = append(ret, p)
	}
	return ret
}

// LateArgs returns the arguments of the late list in late order.
func (self *CallArgs) LateArgs() []*CallArg {
	var ret []*CallArg
	for p := self.lateHead; p != nil; p = p.lateNext {
		ret = append(ret, p)
	}
	return ret
}

// DumpABI formats the placement of every argument.
func (self *CallArgs) DumpABI(t *abi.Target) string {
	var i int
	var buf strings.Builder

	/* one line per argument */
	for p := self.head; p != nil; p = p.next {
		fmt.Fprintf(&buf, "#%d %-16s %s", i, p.String(), p.abiInfo.Format(t))
		if p.needTmp {
			buf.WriteString(" tmp")
		}
		if p.needPlace {
			buf.WriteString(" place")
		}
		buf.WriteByte('\n')
		i++
	}

	/* outgoing stack space */
	fmt.Fprintf(&buf, "stack %d\n", self.outgoingArgSpace)
	return buf.String()
}

/** ABI Determination **/

// AddFinalArgsAndDetermineABIInfo adds the arguments the runtime needs for
// the call, then assigns a placement to every argument. Argument membership
// is frozen afterwards.
func (self *Compiler) AddFinalArgsAndDetermineABIInfo(call *Call) error {
	args := call.Args()
	if args.abiDetermined {
		return nil
	}

	/* the indirection cell travels as a hidden argument */
	if wk := self.Target.IndirectionCellArgKind(call.Info()); wk != abi.None && args.FindWellKnownArg(wk) == nil {
		cell := self.NewIconHandle(int64(call.Entry()), FlagIconIndCell)
		if _, err := args.PushBack(NewCallArg{Node: cell, WellKnown: wk}); err != nil {
			return err
		}
	}

	/* the varargs cookie goes last on x86, after this and the return buffer elsewhere */
	if call.Info().IsVarargs() && args.FindWellKnownArg(abi.VarArgsCookie) == nil {
		if err := self.addVarArgsCookie(args); err != nil {
			return err
		}
	}

	/* control flow guard on indirect calls */
	if self.Opts.ControlFlowGuard && call.IsIndirect() {
		if err := self.addCFGTarget(call); err != nil {
			return err
		}
	}

	/* assign the placement in argument order */
	st := abi.ClassifierState{}
	for p := args.head; p != nil; p = p.next {
		p.abiInfo = self.Target.Classify(abi.ArgDesc{Type: p.sigType, Size: p.sigSize, WellKnown: p.wellKnown}, &st)
		args.hasRegArgs = args.hasRegArgs || p.abiInfo.HasRegs()
		args.hasStackArgs = args.hasStackArgs || p.abiInfo.HasStack()
	}

	/* freeze the membership */
	args.outgoingArgSpace = st.StackSize()
	args.abiDetermined = true
	call.Node().UpdateEffects()

	/* dump the placement if needed */
	if self.tr.If("abi") {
		self.tr.Printw("abi determined", "call", call.Node().id, "args", args.CountArgs(), "stack", args.outgoingArgSpace)
	}
	return nil
}

func (self *Compiler) addVarArgsCookie(args *CallArgs) error {
	var err error
	var pos *CallArg
	cookie := NewCallArg{Node: self.NewIconHandle(0, FlagIconCidMid), WellKnown: abi.VarArgsCookie}

	/* x86 pushes the arguments right to left */
	if self.Target.Name == "x86" {
		_, err = args.PushBack(cookie)
		return err
	}

	/* find the last of this and the return buffer */
	for p := args.head; p != nil; p = p.next {
		if p.wellKnown == abi.ThisPointer || p.wellKnown == abi.RetBuffer {
			pos = p
		}
	}

	/* insert after them */
	if pos == nil {
		_, err = args.PushFront(cookie)
	} else {
		_, err = args.InsertAfter(pos, cookie)
	}
	return err
}

func (self *Compiler) addCFGTarget(call *Call) error {
	kind := self.Target.CFGCallKind(call.Info(), self.Opts.CFGUseDispatcher)
	call.call.cfgKind = kind

	/* the validator checks the address in place */
	if kind != abi.Dispatch || call.call.addr == nil {
		return nil
	}

	/* the dispatcher receives the target as a hidden argument */
	addr := call.call.addr
	if _, err := call.Args().PushBack(NewCallArg{Node: addr, WellKnown: abi.DispatchIndirectCallTarget}); err != nil {
		return err
	}

	/* the call no longer consumes the address directly */
	call.call.addr = nil
	return nil
}

// ArgsComplete decides which arguments must be evaluated into temps and which
// only need a placeholder in the argument order.
func (self *CallArgs) ArgsComplete() error {
	if !self.abiDetermined {
		return ErrArgsNotReady
	}

	/* nothing to do if already completed */
	if self.argsComplete {
		return nil
	}

	/* scan the arguments in order */
	n := self.CountArgs()
	for p := self.head; p != nil; p = p.next {
		fv := p.early.flags

		/* stores must happen exactly once, in order */
		if fv&FlagAsg != 0 {
			p.needTmp = true
		}

		/* a call may clobber anything evaluated before it */
		if fv&FlagCall != 0 && n > 1 {
			p.needTmp = true
			for q := self.head; q != p; q = q.next {
				if q.early.flags&FlagAllEffect != 0 {
					q.needTmp = true
				}
			}
		}
	}

	/* register arguments that are not temps only need a placeholder */
	for p := self.head; p != nil; p = p.next {
		p.needPlace = !p.needTmp && p.abiInfo.HasRegs()
	}

	/* membership is final */
	self.argsComplete = true
	return nil
}

const (
	_L_call = iota
	_L_temp
	_L_complex
	_L_local
	_L_const
)

func lateBucket(arg *CallArg) int {
	n := arg.early
	switch {
	case n.flags&FlagCall != 0:
		return _L_call
	case arg.needTmp:
		return _L_temp
	case n.oper.IsConst():
		return _L_const
	case n.oper.IsLocalRead():
		return _L_local
	default:
		return _L_complex
	}
}

// SortLateArgs orders the arguments that go into the late list: arguments
// containing calls first, then temps, then other complex arguments by
// descending cost, then local reads, then constants. The order is stable
// within each group.
func SortLateArgs(args []*CallArg) []*CallArg {
	ret := append([]*CallArg(nil), args...)
	sort.SliceStable(ret, func(i int, j int) bool {
		bi := lateBucket(ret[i])
		bj := lateBucket(ret[j])

		/* different groups */
		if bi != bj {
			return bi < bj
		}

		/* costly complex arguments first */
		if bi == _L_complex {
			return ret[i].early.CostEx() > ret[j].early.CostEx()
		} else {
			return false
		}
	})
	return ret
}

// EvalArgsToTemps builds the late list of a call. Arguments that need a temp
// are stored into a fresh local in the argument order and read back in the
// late order. Arguments that need a placeholder move to the late list and
// leave an ARGPLACE node behind. Storing into a temp adds FlagAsg to the
// call, the users of the call need Statement.PropagateEffects afterwards.
func (self *Compiler) EvalArgsToTemps(call *Call) error {
	args := call.Args()
	if err := args.ArgsComplete(); err != nil {
		return err
	}

	/* already built */
	if args.lateHead != nil {
		return nil
	}

	/* collect the arguments that go late */
	var late []*CallArg
	for p := args.head; p != nil; p = p.next {
		if p.needTmp || p.needPlace {
			late = append(late, p)
		}
	}

	/* order before rewriting, the groups depend on the original expressions */
	late = SortLateArgs(late)
	tail := &args.lateHead

	/* materialize each argument */
	for _, p := range late {
		if p.needTmp {
			self.evalToTemp(p)
		} else {
			p.late = p.early
			p.early = self.NewArgPlace(p.late.typ)
		}

		/* link into the late order */
		p.late.flags |= FlagLateArg
		*tail = p
		tail = &p.lateNext
	}

	/* the early and late halves carry the same effects as before */
	call.Node().UpdateEffects()
	if self.tr.If("ir") {
		self.tr.Printw("late args", "call", call.Node().id, "late", len(late))
	}
	return nil
}

func (self *Compiler) evalToTemp(arg *CallArg) {
	val := arg.early
	typ := val.typ.ActualType()
	tmp := self.GrabTemp(typ)

	/* store in argument order, read in late order */
	arg.early = self.NewStoreLclVar(tmp, val)
	arg.late = self.NewLclVar(tmp, typ)
	arg.isTmp = true
	arg.tmpNum = tmp
}
