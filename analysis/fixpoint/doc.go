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

// Package fixpoint implements the interprocedural abstract-interpretation engine.
//
// The engine computes, for every basic block of an analyzed function, a sound
// over-approximation of the reachable abstract states. A ForwardIterator runs
// Kleene iteration over the function's control-flow graph following a weak
// topological order: blocks outside cycles are visited once, cycles are iterated
// at their head with a join phase, a widening phase and a narrowing phase until
// the head invariant stabilizes.
//
// A FunctionFixpoint binds the iterator to a concrete function, an execution
// engine supplying instruction and edge semantics, and a calling context. When
// the engine reaches a resolvable call, the Driver spawns a nested
// FunctionFixpoint for the callee under an extended CallContext, detects
// recursion through the chain of functions on the analysis stack, and caches
// converged callee results keyed by (context, callee).
//
// After convergence, RunChecks re-walks the function from the stored per-block
// entry states and invokes the registered checkers on every instruction that
// maps back to a source position.
package fixpoint
