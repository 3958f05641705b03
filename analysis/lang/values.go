// Copyright (c) The ikos-go Authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lang provides convenience functions over the SSA representation of
// golang.org/x/tools/go/ssa.
package lang

import (
	"go/types"

	"golang.org/x/tools/go/ssa"

	"github.com/zzmjohn/ikos/internal/funcutil"
)

// IsIntegerType returns true for basic integer types of either signedness.
func IsIntegerType(t types.Type) bool {
	basic, ok := t.Underlying().(*types.Basic)
	return ok && basic.Info()&types.IsInteger != 0
}

// IsIntegerValue returns true for SSA values of a basic integer type.
func IsIntegerValue(v ssa.Value) bool {
	return v != nil && IsIntegerType(v.Type())
}

// IntConstant returns the value of v when v is an integer constant.
func IntConstant(v ssa.Value) funcutil.Optional[int64] {
	c, ok := v.(*ssa.Const)
	if !ok || c.Value == nil || !IsIntegerType(c.Type()) {
		return funcutil.None[int64]()
	}
	return funcutil.Some(c.Int64())
}
