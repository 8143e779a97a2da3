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

package opts

import (
	"runtime"
)

type Options struct {
	MaxInlineDepth   int
	MaxInlineILSize  int
	Target           string
	CFGUseDispatcher int
	ControlFlowGuard bool
	DebugChecks      bool
}

// CanInline reports whether an inlinee of ilSize bytes may be admitted at
// inline depth sp. Zero limits mean unlimited.
func (self *Options) CanInline(sp int, ilSize int) bool {
	return (self.MaxInlineDepth > sp || self.MaxInlineDepth == 0) && (self.MaxInlineILSize > ilSize || self.MaxInlineILSize == 0)
}

// TargetArch resolves "host" (or an empty target) to the running architecture.
func (self *Options) TargetArch() string {
	if self.Target == "" || self.Target == "host" {
		return runtime.GOARCH
	} else {
		return self.Target
	}
}

func GetDefaultOptions() Options {
	return Options{
		MaxInlineDepth:   MaxInlineDepth,
		MaxInlineILSize:  MaxInlineILSize,
		Target:           Target,
		CFGUseDispatcher: CFGUseDispatcher,
		ControlFlowGuard: ControlFlowGuard,
		DebugChecks:      DebugChecks,
	}
}
