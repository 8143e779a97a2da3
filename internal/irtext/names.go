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


package irtext

import (
	"strconv"
	"strings"

	"tlog.app/go/errors"

	"github.com/cloudwego/gentree/internal/abi"
	"github.com/cloudwego/gentree/internal/ir"
	"github.com/cloudwego/gentree/internal/types"
)

var _FlagNames = map[string]ir.Flags{
	"globref":     ir.FlagGlobRef,
	"ordered":     ir.FlagOrderSideEff,
	"unsigned":    ir.FlagUnsigned,
	"nocse":       ir.FlagNoCSE,
	"overflow":    ir.FlagOverflow,
	"nozero":      ir.FlagDivModNoByZero,
	"nooverflow":  ir.FlagDivModNoOverflow,
	"volatile":    ir.FlagIndVolatile,
	"nonfaulting": ir.FlagIndNonFaulting,
	"invariant":   ir.FlagIndInvariant,
	"nonnull":     ir.FlagIndNonNull,
	"unaligned":   ir.FlagIndUnaligned,
	"nothrow":     ir.FlagCallNoThrow,
	"pure":        ir.FlagCallPure,
}

var _HandleKinds = map[string]ir.Flags{
	"ftn":    ir.FlagIconFtnAddr,
	"class":  ir.FlagIconClassHdl,
	"method": ir.FlagIconMethHdl,
	"field":  ir.FlagIconFieldHdl,
	"str":    ir.FlagIconStrHdl,
	"cid":    ir.FlagIconCidMid,
	"cell":   ir.FlagIconIndCell,
}

var _WellKnownArgs = map[string]abi.WellKnownArg{
	"":           abi.None,
	"this":       abi.ThisPointer,
	"vacookie":   abi.VarArgsCookie,
	"instparam":  abi.InstParam,
	"retbuf":     abi.RetBuffer,
	"pinvcookie": abi.PInvokeCookie,
	"pinvtarget": abi.PInvokeTarget,
	"secretstub": abi.SecretStubParam,
	"wrapcell":   abi.WrapperDelegateCell,
	"shiftlow":   abi.ShiftLow,
	"shifthigh":  abi.ShiftHigh,
	"vsdcell":    abi.VirtualStubCell,
	"r2rcell":    abi.R2RIndirectionCell,
}

var _CallInfos = map[string]abi.CallInfo{
	"vsd":       abi.CallVirtualStub,
	"r2r-indir": abi.CallR2RRelativeIndir,
	"delegate":  abi.CallDelegateInvoke,
	"fast-tail": abi.CallFastTailCall,
	"varargs":   abi.CallVarargs,
	"unmanaged": abi.CallUnmanaged,
}

var _ThrowKinds = map[string]ir.ThrowKind{
	"":      ir.ThrowRangeCheck,
	"range": ir.ThrowRangeCheck,
	"arg":   ir.ThrowArgumentOutOfRange,
	"index": ir.ThrowIndexOutOfRange,
}

func lookup[T any](m map[string]T, what string, name string) (T, error) {
	if v, ok := m[strings.ToLower(strings.TrimSpace(name))]; ok {
		return v, nil
	} else {
		return v, errors.New("unknown %s: %q", what, name)
	}
}

func parseFlags(names []string) (ir.Flags, error) {
	var ret ir.Flags
	for _, v := range names {
		if f, err := lookup(_FlagNames, "flag", v); err != nil {
			return 0, err
		} else {
			ret |= f
		}
	}
	return ret, nil
}

func parseCallInfo(names []string) (abi.CallInfo, error) {
	var ret abi.CallInfo
	for _, v := range names {
		if f, err := lookup(_CallInfos, "call info", v); err != nil {
			return 0, err
		} else {
			ret |= f
		}
	}
	return ret, nil
}

// typeOr parses name, or returns def when name is empty.
func typeOr(name string, def types.VarType) (types.VarType, error) {
	if name == "" {
		return def, nil
	} else if typ, ok := types.Parse(name); !ok {
		return types.Undef, errors.New("unknown type: %q", name)
	} else {
		return typ, nil
	}
}

func parseInt(v string) (int64, error) {
	if ret, err := strconv.ParseInt(strings.TrimSpace(v), 0, 64); err != nil {
		return 0, errors.Wrap(err, "integer constant")
	} else {
		return ret, nil
	}
}

func parseFloat(v string) (float64, error) {
	if ret, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
		return 0, errors.Wrap(err, "floating point constant")
	} else {
		return ret, nil
	}
}
