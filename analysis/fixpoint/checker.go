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

package fixpoint

import (
	"golang.org/x/tools/go/ssa"

	"github.com/zzmjohn/ikos/analysis/lattice"
)

// A Checker consumes converged abstract states to emit diagnostics. During
// the check pass it is invoked on every instruction with a valid source
// position, with the state holding just before the instruction executes.
// Checkers must treat the state as read-only.
type Checker[T lattice.Domain[T]] interface {
	Check(instr ssa.Instruction, state T, ctx *CallContext)
}
