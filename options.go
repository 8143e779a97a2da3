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


package gentree

import (
	"fmt"

	"github.com/cloudwego/gentree/internal/abi"
	"github.com/cloudwego/gentree/internal/opts"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

const (
	_MinILSize = 16
)

// WithTarget selects the architecture the compiler places call arguments for.
//
// Supported targets are "amd64", "arm64", "arm" and "x86". The special
// target "host" selects the architecture of the running process.
//
// The default value of this option is "host".
func WithTarget(name string) Option {
	if _, err := abi.Lookup(name); err != nil && name != "host" {
		panic(fmt.Sprintf("gentree: invalid target: %q", name))
	} else {
		return func(o *opts.Options) { o.Target = name }
	}
}

// WithMaxInlineDepth sets the maximum inlining depth of the inline tree.
//
// Increasing of this option admits deeper inlinees, each of them adds an
// inline context that debug info may refer to.
//
// Set this option to "0" disables this limit, which means inlining everything.
//
// The default value of this option is "2".
func WithMaxInlineDepth(depth int) Option {
	if depth < 0 {
		panic(fmt.Sprintf("gentree: invalid inline depth: %d", depth))
	} else {
		return func(o *opts.Options) { o.MaxInlineDepth = depth }
	}
}

// WithMaxInlineILSize sets the maximum IL size inlined into one method.
//
// Set this option to "0" disables this limit, which means unlimited inlining
// IL buffer.
//
// The default value of this option is "50000".
func WithMaxInlineILSize(size int) Option {
	if size != 0 && size < _MinILSize {
		panic(fmt.Sprintf("gentree: invalid inline IL size: %d", size))
	} else {
		return func(o *opts.Options) { o.MaxInlineILSize = size }
	}
}

// WithCFGDispatcher overrides how control flow guard protects indirect calls.
//
// "0" always validates the target before the call, "1" dispatches through
// the guard helper wherever the target allows it, and "-1" keeps the default
// policy of the target.
func WithCFGDispatcher(v int) Option {
	if v < -1 || v > 1 {
		panic(fmt.Sprintf("gentree: invalid CFG dispatcher override: %d", v))
	} else {
		return func(o *opts.Options) { o.CFGUseDispatcher = v }
	}
}

// WithControlFlowGuard enables control flow guard on indirect calls.
//
// The default value of this option is "false".
func WithControlFlowGuard(v bool) Option {
	return func(o *opts.Options) { o.ControlFlowGuard = v }
}

// WithDebugChecks enables the consistency checks of the IR: debug info is
// validated against the inline tree when statements are created.
//
// The default value of this option is "false".
func WithDebugChecks(v bool) Option {
	return func(o *opts.Options) { o.DebugChecks = v }
}

// WithConfigFile loads options from a YAML or TOML file. Keys missing from
// the file keep their current values.
func WithConfigFile(path string) Option {
	return func(o *opts.Options) {
		if err := opts.LoadFile(path, o); err != nil {
			panic(fmt.Sprintf("gentree: %v", err))
		}
	}
}

// SetMaxInlineDepth sets the default maximum inlining depth for all
// compilations from now on.
//
// This value can also be configured with the `GENTREE_MAX_INLINE_DEPTH`
// environment variable.
//
// Returns the old opts.MaxInlineDepth value.
func SetMaxInlineDepth(depth int) int {
	depth, opts.MaxInlineDepth = opts.MaxInlineDepth, depth
	return depth
}

// SetMaxInlineILSize sets the default maximum inlined IL size for all
// compilations from now on.
//
// This value can also be configured with the `GENTREE_MAX_INLINE_IL_SIZE`
// environment variable.
//
// Returns the old opts.MaxInlineILSize value.
func SetMaxInlineILSize(size int) int {
	size, opts.MaxInlineILSize = opts.MaxInlineILSize, size
	return size
}

// SetDefaultTarget sets the default target for all compilations from now on.
//
// This value can also be configured with the `GENTREE_TARGET` environment
// variable.
//
// Returns the old opts.Target value.
func SetDefaultTarget(name string) string {
	name, opts.Target = opts.Target, name
	return name
}
