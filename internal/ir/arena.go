/*
 * Copyright 2022 CloudWeGo Authors
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
	"sync"
	"sync/atomic"

	"github.com/cloudwego/gentree/internal/abi"
)

const (
	_ChunkSize = 256
)

var (
	NodeCount    uint64
	LargeCount   uint64
	CompileCount uint64
)

var (
	arenaPool sync.Pool
)

// Arena bump-allocates the nodes of one compilation. Nodes are never freed
// individually, the whole arena is released when the compilation ends and
// its chunks are reused by the next compilation.
type Arena struct {
	nodes [][]Node
	calls [][]callData
	ni    int
	nj    int
	ci    int
	cj    int
	count uint32
	large uint32
}

func newArena() *Arena {
	if v := arenaPool.Get(); v == nil {
		return allocArena()
	} else {
		return v.(*Arena)
	}
}

func freeArena(p *Arena) {
	atomic.AddUint64(&NodeCount, uint64(p.count))
	atomic.AddUint64(&LargeCount, uint64(p.large))
	arenaPool.Put(resetArena(p))
}

func allocArena() *Arena {
	return new(Arena)
}

// resetArena zeroes the slots handed out so far and rewinds the arena, the
// chunks themselves are kept.
func resetArena(p *Arena) *Arena {
	for i := 0; i < p.ni; i++ {
		if i == p.ni-1 {
			clear(p.nodes[i][:p.nj])
		} else {
			clear(p.nodes[i])
		}
	}

	/* same for the call data */
	for i := 0; i < p.ci; i++ {
		if i == p.ci-1 {
			clear(p.calls[i][:p.cj])
		} else {
			clear(p.calls[i])
		}
	}

	/* rewind */
	p.ni, p.nj = 0, 0
	p.ci, p.cj = 0, 0
	p.count, p.large = 0, 0
	return p
}

// Count returns the number of nodes allocated so far.
func (self *Arena) Count() int {
	return int(self.count)
}

// LargeCount returns the number of large slots allocated so far.
func (self *Arena) LargeCount() int {
	return int(self.large)
}

// Chunks returns the number of node chunks in use.
func (self *Arena) Chunks() int {
	return self.ni
}

// Capacity returns the number of node chunks owned by the arena, including
// the ones kept from earlier compilations.
func (self *Arena) Capacity() int {
	return len(self.nodes)
}

func (self *Arena) nextNode() *Node {
	if self.ni == 0 || self.nj == _ChunkSize {
		if self.ni == len(self.nodes) {
			self.nodes = append(self.nodes, make([]Node, _ChunkSize))
		}
		self.ni++
		self.nj = 0
	}

	/* bump the pointer */
	p := &self.nodes[self.ni-1][self.nj]
	self.nj++
	return p
}

func (self *Arena) alloc(op Oper, size SizeClass) *Node {
	p := self.nextNode()
	self.count++

	/* the slot must fit the operator */
	if op.Size() > size {
		size = op.Size()
	}

	/* initialize the header */
	p.id = self.count
	p.oper = op
	p.size = size
	p.reg = abi.NoReg
	p.vn = NoVNPair()
	p.lclNum = BadVarNum

	/* large slots carry the call data */
	if size == Large {
		self.large++
	}
	if op == CALL {
		p.call = self.allocCall(p)
	}
	return p
}

func (self *Arena) allocCall(owner *Node) *callData {
	if self.ci == 0 || self.cj == _ChunkSize/8 {
		if self.ci == len(self.calls) {
			self.calls = append(self.calls, make([]callData, _ChunkSize/8))
		}
		self.ci++
		self.cj = 0
	}

	/* bump the pointer */
	p := &self.calls[self.ci-1][self.cj]
	self.cj++
	p.cfgKind = abi.ValidateAndCall
	p.args.owner = owner
	return p
}
