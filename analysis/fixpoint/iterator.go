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

// FixpointSemantics is what the generic iterator needs from its client: the
// abstract semantics of nodes and edges, the acceleration operators applied at
// cycle heads, and the observation hooks. FunctionFixpoint is the production
// implementation; tests supply instrumented ones.
type FixpointSemantics[T lattice.Domain[T]] interface {
	// Bottom returns the state of an unreachable program point.
	Bottom() T

	// AnalyzeNode applies the block's instructions to pre and returns the
	// resulting post state. It takes ownership of pre.
	AnalyzeNode(b *ssa.BasicBlock, pre T) T

	// AnalyzeEdge transforms a predecessor's post state with the semantics of
	// the edge from src to dest. It takes ownership of pre.
	AnalyzeEdge(src, dest *ssa.BasicBlock, pre T) T

	// Extrapolate merges the new head state into the previous estimate during
	// the increasing phase. iteration starts at 1. It takes ownership of both
	// arguments and returns the next estimate.
	Extrapolate(head *ssa.BasicBlock, iteration int, before, after T) T

	// Refine merges the new head state into the previous estimate during the
	// decreasing phase. iteration starts at 1. It takes ownership of both
	// arguments and returns the next estimate.
	Refine(head *ssa.BasicBlock, iteration int, before, after T) T

	// IsDecreasingFixpoint reports whether the decreasing phase is done,
	// given the estimate before refinement and the refined one.
	IsDecreasingFixpoint(iteration int, before, after T) bool

	// EnterCycle, CycleIteration and LeaveCycle bracket the iteration of one
	// cycle head. Observational only.
	EnterCycle(head *ssa.BasicBlock)
	CycleIteration(head *ssa.BasicBlock, iteration int, kind IterationKind)
	LeaveCycle(head *ssa.BasicBlock)

	// ProcessPost observes a block's post state right after it is computed.
	ProcessPost(b *ssa.BasicBlock, post T)
}

// A ForwardIterator computes a fixpoint over one function's control-flow
// graph. Blocks are visited in weak topological order; each cycle is iterated
// at its head until the increasing phase stabilizes, then refined by the
// decreasing phase. The iterator records a pre state per visited block and,
// until ClearPost is called, a post state.
type ForwardIterator[T lattice.Domain[T]] struct {
	fn    *ssa.Function
	sem   FixpointSemantics[T]
	order *wto
	entry T
	pre   map[*ssa.BasicBlock]T
	post  map[*ssa.BasicBlock]T
}

// NewForwardIterator returns an iterator for fn driven by sem.
func NewForwardIterator[T lattice.Domain[T]](fn *ssa.Function, sem FixpointSemantics[T]) *ForwardIterator[T] {
	return &ForwardIterator[T]{
		fn:    fn,
		sem:   sem,
		order: buildWTO(fn),
		pre:   map[*ssa.BasicBlock]T{},
		post:  map[*ssa.BasicBlock]T{},
	}
}

// Run computes the fixpoint starting from init at the function's entry block.
// It takes ownership of init.
func (it *ForwardIterator[T]) Run(init T) {
	it.entry = init
	for _, c := range it.order.components {
		it.visit(c)
	}
}

// Pre returns the converged state entering b. ok is false for blocks never
// reached by the iteration.
func (it *ForwardIterator[T]) Pre(b *ssa.BasicBlock) (T, bool) {
	s, ok := it.pre[b]
	return s, ok
}

// Post returns the state leaving b, if still retained.
func (it *ForwardIterator[T]) Post(b *ssa.BasicBlock) (T, bool) {
	s, ok := it.post[b]
	return s, ok
}

// ClearPost discards all post states. Pre states survive for the check pass;
// posts are only needed while flowing into successors.
func (it *ForwardIterator[T]) ClearPost() {
	it.post = map[*ssa.BasicBlock]T{}
}

func (it *ForwardIterator[T]) visit(c wtoComponent) {
	switch n := c.(type) {
	case wtoVertex:
		it.analyzeBlock(n.block, it.flowIn(n.block))
	case *wtoCycle:
		it.visitCycle(n)
	}
}

// flowIn computes the state entering b by joining the edge-transformed post
// states of its predecessors, in predecessor order. The entry block
// additionally receives the initial state.
func (it *ForwardIterator[T]) flowIn(b *ssa.BasicBlock) T {
	state := it.sem.Bottom()
	if len(it.fn.Blocks) > 0 && b == it.fn.Blocks[0] {
		state.JoinWith(it.entry)
	}
	for _, pred := range b.Preds {
		if post, ok := it.post[pred]; ok {
			state.JoinWith(it.sem.AnalyzeEdge(pred, b, post.Copy()))
		}
	}
	return state
}

// analyzeBlock records pre, applies the block and records and publishes post.
func (it *ForwardIterator[T]) analyzeBlock(b *ssa.BasicBlock, pre T) {
	it.pre[b] = pre.Copy()
	post := it.sem.AnalyzeNode(b, pre)
	it.post[b] = post
	it.sem.ProcessPost(b, post)
}

func (it *ForwardIterator[T]) visitCycle(c *wtoCycle) {
	head := c.head
	it.sem.EnterCycle(head)

	// Increasing phase: iterate the whole component and extrapolate the head
	// estimate until the freshly computed entry state is included in it.
	invariant := it.flowIn(head)
	for iteration := 1; ; iteration++ {
		it.sem.CycleIteration(head, iteration, IterationIncreasing)
		it.analyzeBlock(head, invariant.Copy())
		for _, sub := range c.components {
			it.visit(sub)
		}
		after := it.flowIn(head)
		if after.Leq(invariant) {
			break
		}
		invariant = it.sem.Extrapolate(head, iteration, invariant, after)
	}

	// Decreasing phase: refine the stabilized estimate to recover precision
	// lost to widening. Each refinement is replayed through the component so
	// inner blocks see the tightened head state.
	for iteration := 1; ; iteration++ {
		it.sem.CycleIteration(head, iteration, IterationDecreasing)
		after := it.flowIn(head)
		refined := it.sem.Refine(head, iteration, invariant.Copy(), after)
		done := it.sem.IsDecreasingFixpoint(iteration, invariant, refined)
		invariant = refined
		it.analyzeBlock(head, invariant.Copy())
		for _, sub := range c.components {
			it.visit(sub)
		}
		if done {
			break
		}
	}

	it.sem.LeaveCycle(head)
}
