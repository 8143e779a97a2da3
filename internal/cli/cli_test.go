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


package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const _MethodFile = "../irtext/testdata/store.yaml"

func execute(t *testing.T, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"opers", "dump"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	target := cmd.PersistentFlags().Lookup("target")
	require.NotNil(t, target)
	assert.Equal(t, "t", target.Shorthand)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestOpers(t *testing.T) {
	data := operTable()
	require.Equal(t, []string{"#", "Operator", "Kind", "Size"}, data[0])

	/* one row per operator */
	out, err := execute(t, "opers")
	require.NoError(t, err)
	assert.Contains(t, out, "CNS_INT")
	assert.Contains(t, out, "STORE_LCL_VAR")
}

func TestDump(t *testing.T) {
	out, err := execute(t, "dump", "--target", "amd64", "--summary", "--abi", _MethodFile)
	require.NoError(t, err)
	assert.Contains(t, out, "STMT 0x010[E] @ #0\n")
	assert.Contains(t, out, "COST nodes=5 total=27 mean=5.40 stddev=3.36 median=6 max=9\n")
	assert.Contains(t, out, "STMT 0x004 @ #1\n")
	assert.Contains(t, out, "CALL int user 0x2000")
	assert.Contains(t, out, "ABI [")
}

func TestDump_Errors(t *testing.T) {
	_, err := execute(t, "dump", "--target", "vax", _MethodFile)
	require.Error(t, err)
	_, err = execute(t, "dump", "testdata/missing.yaml")
	require.Error(t, err)
	_, err = execute(t, "dump", "--config", "testdata/missing.toml", _MethodFile)
	require.Error(t, err)
	_, err = execute(t, "dump")
	require.Error(t, err)
}
