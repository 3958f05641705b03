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

// An ExecutionEngine supplies the abstract semantics of one analysis: how
// ordinary instructions, branch edges and call boundaries transform the
// abstract state. The engine owns a single working state that the fixpoint
// threads through a block's instructions in order; the engine must never alias
// it with stored states.
//
// Call instructions are not passed to ExecInstruction. The fixpoint resolves
// them and either analyzes the callee, composing its exit state back through
// ReturnFromCall, or gives up and calls ApproximateCall.
type ExecutionEngine[T lattice.Domain[T]] interface {
	// Bottom returns the state of an unreachable program point.
	Bottom() T

	// State returns the current working state.
	State() T

	// SetState replaces the working state. The engine takes ownership of s.
	SetState(s T)

	// ExecEnter signals entry into a block, before its first instruction.
	ExecEnter(b *ssa.BasicBlock)

	// ExecLeave signals exit from a block, after its last instruction.
	ExecLeave(b *ssa.BasicBlock)

	// ExecEdge refines the working state with the semantics of the edge from
	// src to dest, e.g. assuming the branch condition that selects dest.
	ExecEdge(src, dest *ssa.BasicBlock)

	// ExecInstruction applies the effect of one non-call instruction to the
	// working state.
	ExecInstruction(instr ssa.Instruction)

	// EnterCall builds the callee's entry state from the caller's state at the
	// call site, typically by binding arguments to parameters. It must not
	// mutate caller.
	EnterCall(call ssa.CallInstruction, callee *ssa.Function, caller T) T

	// ReturnFromCall composes the callee's exit state into the working state
	// at the call site.
	ReturnFromCall(call ssa.CallInstruction, callee *ssa.Function, exit T)

	// ApproximateCall applies a conservative effect for a call whose callee
	// cannot or must not be analyzed: unresolved targets, recursion, or calls
	// past the depth limit. It must over-approximate any possible callee.
	ApproximateCall(call ssa.CallInstruction)
}
