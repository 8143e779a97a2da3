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

package opts

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"
)

type fileOptions struct {
	MaxInlineDepth   *int    `yaml:"max_inline_depth" toml:"max_inline_depth"`
	MaxInlineILSize  *int    `yaml:"max_inline_il_size" toml:"max_inline_il_size"`
	Target           *string `yaml:"target" toml:"target"`
	CFGUseDispatcher *int    `yaml:"cfg_dispatcher" toml:"cfg_dispatcher"`
	ControlFlowGuard *bool   `yaml:"cfg" toml:"cfg"`
	DebugChecks      *bool   `yaml:"debug_checks" toml:"debug_checks"`
}

// LoadFile overrides the fields of o with the keys present in a YAML or TOML
// configuration file. The format is chosen by the file extension.
func LoadFile(path string, o *Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config")
	}

	/* decode by extension */
	var fo fileOptions
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, &fo)
	case ".toml":
		err = toml.Unmarshal(data, &fo)
	default:
		return errors.New("unsupported config format: %q", ext)
	}

	/* check for decoding errors */
	if err != nil {
		return errors.Wrap(err, "parse config %v", path)
	} else {
		return fo.apply(o)
	}
}

func decodeYAML(data []byte, fo *fileOptions) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	/* an empty document is not an error */
	if err := dec.Decode(fo); err != nil && err != io.EOF {
		return err
	} else {
		return nil
	}
}

func (self *fileOptions) apply(o *Options) error {
	if self.MaxInlineDepth != nil {
		if *self.MaxInlineDepth < 0 {
			return errors.New("invalid max_inline_depth: %d", *self.MaxInlineDepth)
		}
		o.MaxInlineDepth = *self.MaxInlineDepth
	}
	if self.MaxInlineILSize != nil {
		if *self.MaxInlineILSize < 0 {
			return errors.New("invalid max_inline_il_size: %d", *self.MaxInlineILSize)
		}
		o.MaxInlineILSize = *self.MaxInlineILSize
	}
	if self.CFGUseDispatcher != nil {
		if v := *self.CFGUseDispatcher; v < -1 || v > 1 {
			return errors.New("invalid cfg_dispatcher: %d", v)
		}
		o.CFGUseDispatcher = *self.CFGUseDispatcher
	}
	if self.Target != nil {
		o.Target = strings.ToLower(strings.TrimSpace(*self.Target))
	}
	if self.ControlFlowGuard != nil {
		o.ControlFlowGuard = *self.ControlFlowGuard
	}
	if self.DebugChecks != nil {
		o.DebugChecks = *self.DebugChecks
	}
	return nil
}
