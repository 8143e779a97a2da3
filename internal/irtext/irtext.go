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


// Package irtext reads method descriptions written in YAML and builds their
// statements through the node constructors of the compiler.
package irtext

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"
)

// Method describes one method: its locals, the inlinees admitted into it and
// its statements.
type Method struct {
	Method     uint64     `yaml:"method"`
	ILSize     int        `yaml:"ilsize"`
	Instrs     []uint32   `yaml:"instrs"`
	Locals     []string   `yaml:"locals"`
	Inlinees   []Inlinee  `yaml:"inlinees"`
	Statements []StmtDesc `yaml:"statements"`
}

// Inlinee is an inlined call. Parent is the ordinal of the inline context the
// call is in, 0 being the method itself.
type Inlinee struct {
	Parent int    `yaml:"parent"`
	At     uint32 `yaml:"at"`
	Method uint64 `yaml:"method"`
	ILSize int    `yaml:"ilsize"`
}

// StmtDesc is one statement. IL is the offset of the statement in the inline
// context Ctx, statements without an offset have no location.
type StmtDesc struct {
	IL         *uint32  `yaml:"il"`
	Ctx        int      `yaml:"ctx"`
	StackEmpty bool     `yaml:"stack_empty"`
	Tree       NodeDesc `yaml:"tree"`
}

// NodeDesc is one node. Which fields are used depends on the operator.
type NodeDesc struct {
	Oper   string      `yaml:"oper"`
	Type   string      `yaml:"type"`
	Value  string      `yaml:"value"`
	Handle string      `yaml:"handle"`
	Flags  []string    `yaml:"flags"`
	Lcl    uint32      `yaml:"lcl"`
	Offset int32       `yaml:"offset"`
	Scale  uint32      `yaml:"scale"`
	Size   uint32      `yaml:"size"`
	Reg    uint8       `yaml:"reg"`
	ID     uint32      `yaml:"id"`
	Throw  string      `yaml:"throw"`
	Ops    []*NodeDesc `yaml:"ops"`
	Base   *NodeDesc   `yaml:"base"`
	Index  *NodeDesc   `yaml:"index"`
	Fields []FieldDesc `yaml:"fields"`

	/* calls */
	Kind    string    `yaml:"kind"`
	Target  uint64    `yaml:"target"`
	Entry   uint64    `yaml:"entry"`
	Info    []string  `yaml:"info"`
	Args    []ArgDesc `yaml:"args"`
	Addr    *NodeDesc `yaml:"addr"`
	Ctrl    *NodeDesc `yaml:"ctrl"`
	Cookie  *NodeDesc `yaml:"cookie"`
	Returns []string  `yaml:"returns"`
}

// ArgDesc is one call argument.
type ArgDesc struct {
	WellKnown string    `yaml:"wellknown"`
	SigType   string    `yaml:"sigtype"`
	SigSize   int       `yaml:"sigsize"`
	Node      *NodeDesc `yaml:"node"`
}

// FieldDesc is one element of a FIELD_LIST.
type FieldDesc struct {
	Offset uint32    `yaml:"offset"`
	Type   string    `yaml:"type"`
	Node   *NodeDesc `yaml:"node"`
}

// Parse decodes a method description. Unknown keys are rejected.
func Parse(data []byte) (*Method, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	/* decode the document */
	ret := new(Method)
	if err := dec.Decode(ret); err != nil {
		return nil, errors.Wrap(err, "parse method")
	}

	/* sizes cannot be negative */
	if ret.ILSize < 0 {
		return nil, errors.New("negative IL size: %d", ret.ILSize)
	} else {
		return ret, nil
	}
}

// ParseFile reads and decodes a method description file.
func ParseFile(path string) (*Method, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read %v", path)
	} else {
		return Parse(data)
	}
}
