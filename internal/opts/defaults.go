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
	"os"
	"strconv"
	"strings"
)

const (
	_DefaultMaxInlineDepth  = 2     // cutoff at 2 levels of inlining
	_DefaultMaxInlineILSize = 50000 // cutoff at 50k of IL instructions
	_DefaultTarget          = "host"
)

var (
	MaxInlineDepth   = parseOrDefault("GENTREE_MAX_INLINE_DEPTH", _DefaultMaxInlineDepth, 0)
	MaxInlineILSize  = parseOrDefault("GENTREE_MAX_INLINE_IL_SIZE", _DefaultMaxInlineILSize, 0)
	Target           = stringOrDefault("GENTREE_TARGET", _DefaultTarget)
	CFGUseDispatcher = parseIntOrDefault("GENTREE_CFG_DISPATCHER", -1, -1, 1)
	ControlFlowGuard = boolOrDefault("GENTREE_CFG", false)
	DebugChecks      = boolOrDefault("GENTREE_DEBUG_CHECKS", false)
)

func parseOrDefault(key string, def int, min int) int {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := strconv.ParseUint(env, 0, 64); err != nil {
		panic("gentree: invalid value for " + key)
	} else if ret := int(val); ret < min {
		panic("gentree: value too small for " + key)
	} else {
		return ret
	}
}

func parseIntOrDefault(key string, def int, min int, max int) int {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := strconv.ParseInt(env, 0, 64); err != nil {
		panic("gentree: invalid value for " + key)
	} else if ret := int(val); ret < min || ret > max {
		panic("gentree: value out of range for " + key)
	} else {
		return ret
	}
}

func boolOrDefault(key string, def bool) bool {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := strconv.ParseBool(env); err != nil {
		panic("gentree: invalid value for " + key)
	} else {
		return val
	}
}

func stringOrDefault(key string, def string) string {
	if env := strings.TrimSpace(os.Getenv(key)); env == "" {
		return def
	} else {
		return strings.ToLower(env)
	}
}
