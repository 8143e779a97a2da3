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


package debug

import (
	"sync/atomic"

	"github.com/cloudwego/gentree/internal/fieldseq"
	"github.com/cloudwego/gentree/internal/ir"
)

// A Stats records statistics about the IR across all compilations.
type Stats struct {
	Memory   MemStats
	Compiler CompileStats
	FieldSeq CacheStats
}

// A MemStats records statistics about the node arenas. Nodes are counted
// when their compilation is closed.
type MemStats struct {
	Nodes int
	Large int
}

// A CompileStats records statistics about the compilations.
type CompileStats struct {
	Closed int
}

// A CacheStats records statistics about an interning cache.
type CacheStats struct {
	Size int
}

// GetStats returns statistics of the IR.
func GetStats() Stats {
	return Stats{
		Memory: MemStats{
			Nodes: int(atomic.LoadUint64(&ir.NodeCount)),
			Large: int(atomic.LoadUint64(&ir.LargeCount)),
		},
		Compiler: CompileStats{
			Closed: int(atomic.LoadUint64(&ir.CompileCount)),
		},
		FieldSeq: CacheStats{
			Size: int(atomic.LoadUint64(&fieldseq.InternCount)),
		},
	}
}
