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
	"fmt"
	"sync"

	"golang.org/x/tools/go/ssa"

	"github.com/zzmjohn/ikos/analysis/config"
	"github.com/zzmjohn/ikos/analysis/lattice"
	"github.com/zzmjohn/ikos/internal/funcutil"
)

// A Driver runs interprocedural fixpoint analyses. It owns the shared
// machinery of one run: the execution engine, the call context factory, the
// callee result cache and the optional profiler, progress logger and checkers.
// Each entry point gets a FunctionFixpoint tree rooted at the empty context.
type Driver[T lattice.Domain[T]] struct {
	state    *AnalyzerState
	engine   ExecutionEngine[T]
	contexts *CallContextFactory
	profiler Profiler
	progress ProgressLogger
	checkers []Checker[T]

	mu        sync.Mutex
	summaries map[summaryKey]*calleeSummary[T]
}

type summaryKey struct {
	ctx *CallContext
	fn  *ssa.Function
}

// calleeSummary caches the converged analysis of one (context, callee) pair.
// input is the entry state the result was computed for; a cached result is
// only reused for entry states included in it.
type calleeSummary[T lattice.Domain[T]] struct {
	fixpoint *FunctionFixpoint[T]
	input    T
	stable   bool
	checked  bool
}

// DriverOption configures a Driver.
type DriverOption[T lattice.Domain[T]] func(*Driver[T])

// WithProfiler installs a profiler supplying widening hints.
func WithProfiler[T lattice.Domain[T]](p Profiler) DriverOption[T] {
	return func(d *Driver[T]) { d.profiler = p }
}

// WithProgress replaces the progress logger. The default forwards to the
// analyzer state's log group.
func WithProgress[T lattice.Domain[T]](l ProgressLogger) DriverOption[T] {
	return func(d *Driver[T]) { d.progress = l }
}

// WithCheckers registers the checkers invoked during the check pass.
func WithCheckers[T lattice.Domain[T]](cs ...Checker[T]) DriverOption[T] {
	return func(d *Driver[T]) { d.checkers = append(d.checkers, cs...) }
}

// NewDriver returns a driver over state using engine for the abstract
// semantics.
func NewDriver[T lattice.Domain[T]](state *AnalyzerState, engine ExecutionEngine[T], opts ...DriverOption[T]) *Driver[T] {
	d := &Driver[T]{
		state:     state,
		engine:    engine,
		contexts:  NewCallContextFactory(),
		progress:  NewProgressLogger(state.Logger),
		summaries: map[summaryKey]*calleeSummary[T]{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the shared analyzer state.
func (d *Driver[T]) State() *AnalyzerState {
	return d.state
}

// Contexts returns the call context factory of this run.
func (d *Driver[T]) Contexts() *CallContextFactory {
	return d.contexts
}

// Analyze runs the fixpoint for entry point fn starting from init and returns
// the converged root. Callees reached from fn are analyzed recursively and
// cached on the driver. It takes ownership of init.
func (d *Driver[T]) Analyze(fn *ssa.Function, init T) (*FunctionFixpoint[T], error) {
	if len(fn.Blocks) == 0 {
		return nil, fmt.Errorf("cannot analyze function without body: %s", fn)
	}
	d.state.Logger.Infof("analyzing entry point %s", fn)
	root := newRootFixpoint(d, fn)
	root.Run(init)
	return root, nil
}

func (d *Driver[T]) profileOf(fn *ssa.Function) *Profile {
	if d.profiler == nil {
		return nil
	}
	return d.profiler.Profile(fn)
}

func (d *Driver[T]) analyzeCallee(caller *FunctionFixpoint[T], ctx *CallContext, callee *ssa.Function, entry T, stable bool) (T, bool) {
	key := summaryKey{ctx: ctx, fn: callee}
	d.mu.Lock()
	s := d.summaries[key]
	d.mu.Unlock()
	// Reuse a cached result only when it was computed under a stable caller
	// state and still covers the current entry state.
	if s != nil && s.stable && s.fixpoint.converged && entry.Leq(s.input) {
		return s.fixpoint.ExitState()
	}
	nested := newCalleeFixpoint(caller, ctx, callee, stable)
	nested.Run(entry.Copy())
	d.mu.Lock()
	d.summaries[key] = &calleeSummary[T]{fixpoint: nested, input: entry, stable: stable}
	d.mu.Unlock()
	return nested.ExitState()
}

// A FunctionFixpoint is the analysis of one function under one call context.
// It implements FixpointSemantics by delegating instruction and edge effects
// to the driver's execution engine, interposing on call instructions to
// descend into callees, and dispatching the configured widening and narrowing
// strategies at cycle heads.
type FunctionFixpoint[T lattice.Domain[T]] struct {
	driver  *Driver[T]
	fn      *ssa.Function
	context *CallContext
	profile *Profile

	// functions on the active analysis stack, entry point first; membership
	// means a call is recursive
	analyzed []*ssa.Function

	// contextStable is true when the caller-side state feeding this call
	// cannot change across outer iterations, which makes the result cachable
	contextStable bool

	iterator  *ForwardIterator[T]
	exitPosts map[*ssa.BasicBlock]T
	converged bool

	cycleDepth   int
	checkCallees bool
}

func newRootFixpoint[T lattice.Domain[T]](d *Driver[T], fn *ssa.Function) *FunctionFixpoint[T] {
	f := &FunctionFixpoint[T]{
		driver:        d,
		fn:            fn,
		context:       d.contexts.GetEmpty(),
		profile:       d.profileOf(fn),
		analyzed:      []*ssa.Function{fn},
		contextStable: true,
		exitPosts:     map[*ssa.BasicBlock]T{},
	}
	f.iterator = NewForwardIterator[T](fn, f)
	return f
}

func newCalleeFixpoint[T lattice.Domain[T]](caller *FunctionFixpoint[T], ctx *CallContext, fn *ssa.Function, stable bool) *FunctionFixpoint[T] {
	analyzed := make([]*ssa.Function, len(caller.analyzed)+1)
	copy(analyzed, caller.analyzed)
	analyzed[len(analyzed)-1] = fn
	f := &FunctionFixpoint[T]{
		driver:        caller.driver,
		fn:            fn,
		context:       ctx,
		profile:       caller.driver.profileOf(fn),
		analyzed:      analyzed,
		contextStable: stable,
		exitPosts:     map[*ssa.BasicBlock]T{},
	}
	f.iterator = NewForwardIterator[T](fn, f)
	return f
}

// Function returns the analyzed function.
func (f *FunctionFixpoint[T]) Function() *ssa.Function {
	return f.fn
}

// Context returns the call context this analysis runs under.
func (f *FunctionFixpoint[T]) Context() *CallContext {
	return f.context
}

// Converged returns true once Run has completed.
func (f *FunctionFixpoint[T]) Converged() bool {
	return f.converged
}

// Pre returns the converged state entering b. ok is false for blocks the
// iteration never reached.
func (f *FunctionFixpoint[T]) Pre(b *ssa.BasicBlock) (T, bool) {
	return f.iterator.Pre(b)
}

// ExitState returns the join of the converged post states of all returning
// blocks. ok is false when no return is reachable.
func (f *FunctionFixpoint[T]) ExitState() (T, bool) {
	var zero T
	if len(f.exitPosts) == 0 {
		return zero, false
	}
	state := f.driver.engine.Bottom()
	for _, p := range f.exitPosts {
		state.JoinWith(p)
	}
	return state, true
}

// Run computes the fixpoint starting from init. On completion the call is
// marked converged and all post states are released; the per-block pre states
// remain for RunChecks. It takes ownership of init.
func (f *FunctionFixpoint[T]) Run(init T) {
	if !f.context.Empty() {
		f.driver.progress.StartCallee(f.context, f.fn)
	}
	f.iterator.Run(init)
	f.converged = true
	if !f.context.Empty() {
		f.driver.progress.EndCallee(f.context, f.fn)
	}
	f.iterator.ClearPost()
}

// RunChecks re-walks every analyzed block from its converged pre state and
// invokes the registered checkers on each instruction with a valid source
// position, before applying the instruction. Calls encountered recursively
// trigger the check pass of their cached callee analyses. Stored pre states
// are not modified.
func (f *FunctionFixpoint[T]) RunChecks() {
	e := f.driver.engine
	f.checkCallees = true
	defer func() { f.checkCallees = false }()
	for _, b := range f.fn.Blocks {
		pre, ok := f.iterator.Pre(b)
		if !ok {
			continue
		}
		e.SetState(pre.Copy())
		e.ExecEnter(b)
		for _, instr := range b.Instrs {
			if instr.Pos().IsValid() {
				for _, c := range f.driver.checkers {
					c.Check(instr, e.State(), f.context)
				}
			}
			f.execInstruction(instr)
		}
		e.ExecLeave(b)
	}
}

// Bottom implements FixpointSemantics.
func (f *FunctionFixpoint[T]) Bottom() T {
	return f.driver.engine.Bottom()
}

// AnalyzeNode implements FixpointSemantics: it threads pre through the
// block's instructions, interposing on calls.
func (f *FunctionFixpoint[T]) AnalyzeNode(b *ssa.BasicBlock, pre T) T {
	e := f.driver.engine
	e.SetState(pre)
	e.ExecEnter(b)
	for _, instr := range b.Instrs {
		f.execInstruction(instr)
	}
	e.ExecLeave(b)
	return e.State()
}

// AnalyzeEdge implements FixpointSemantics.
func (f *FunctionFixpoint[T]) AnalyzeEdge(src, dest *ssa.BasicBlock, pre T) T {
	e := f.driver.engine
	e.SetState(pre)
	e.ExecEdge(src, dest)
	return e.State()
}

// Extrapolate implements FixpointSemantics. The first LoopIterations rounds
// join to avoid losing precision on quickly converging loops; the round right
// after widens toward the profile hint when one exists; later rounds widen
// plainly. The Join strategy never widens.
func (f *FunctionFixpoint[T]) Extrapolate(head *ssa.BasicBlock, iteration int, before, after T) T {
	cfg := f.driver.state.Config
	switch cfg.WideningStrategy {
	case config.WideningStrategyJoin:
		before.JoinWith(after)
	case config.WideningStrategyWiden:
		switch {
		case iteration <= cfg.LoopIterations:
			before.JoinWith(after)
		case iteration == cfg.LoopIterations+1:
			if hint := f.profile.WideningHint(head); hint.IsSome() {
				before.WidenThresholdWith(after, hint.Value())
			} else {
				before.WidenWith(after)
			}
		default:
			before.WidenWith(after)
		}
	default:
		// unsound to fall back silently
		panic(fmt.Sprintf("invalid widening strategy %q", cfg.WideningStrategy))
	}
	return before
}

// Refine implements FixpointSemantics. The first narrowing round uses the
// profile hint when one exists; the Meet strategy meets every round instead.
func (f *FunctionFixpoint[T]) Refine(head *ssa.BasicBlock, iteration int, before, after T) T {
	cfg := f.driver.state.Config
	switch cfg.NarrowingStrategy {
	case config.NarrowingStrategyMeet:
		before.MeetWith(after)
	case config.NarrowingStrategyNarrow:
		if iteration == 1 {
			if hint := f.profile.WideningHint(head); hint.IsSome() {
				before.NarrowThresholdWith(after, hint.Value())
				return before
			}
		}
		before.NarrowWith(after)
	default:
		panic(fmt.Sprintf("invalid narrowing strategy %q", cfg.NarrowingStrategy))
	}
	return before
}

// IsDecreasingFixpoint implements FixpointSemantics: the decreasing phase
// stops after the configured narrowing iteration cap, or as soon as the
// refined state no longer decreases.
func (f *FunctionFixpoint[T]) IsDecreasingFixpoint(iteration int, before, after T) bool {
	cfg := f.driver.state.Config
	if cfg.NarrowingIterations > 0 && iteration >= cfg.NarrowingIterations {
		return true
	}
	return before.Leq(after)
}

// EnterCycle implements FixpointSemantics.
func (f *FunctionFixpoint[T]) EnterCycle(head *ssa.BasicBlock) {
	f.cycleDepth++
	f.driver.progress.StartCycle(f.fn, head)
}

// CycleIteration implements FixpointSemantics.
func (f *FunctionFixpoint[T]) CycleIteration(head *ssa.BasicBlock, iteration int, kind IterationKind) {
	f.driver.progress.CycleIteration(f.fn, head, iteration, kind)
}

// LeaveCycle implements FixpointSemantics.
func (f *FunctionFixpoint[T]) LeaveCycle(head *ssa.BasicBlock) {
	f.cycleDepth--
	f.driver.progress.EndCycle(f.fn, head)
}

// ProcessPost implements FixpointSemantics: it captures the post state of
// returning blocks as the function's exit contribution to callers.
func (f *FunctionFixpoint[T]) ProcessPost(b *ssa.BasicBlock, post T) {
	if isReturnBlock(b) {
		f.exitPosts[b] = post.Copy()
	}
}

func (f *FunctionFixpoint[T]) execInstruction(instr ssa.Instruction) {
	if call, ok := instr.(ssa.CallInstruction); ok {
		f.execCall(call)
		return
	}
	f.driver.engine.ExecInstruction(instr)
}

// execCall decides how to obtain a call's effect: descend into a resolvable
// callee, or fall back to the engine's conservative approximation for
// unresolved targets, recursion and calls past the depth limit.
func (f *FunctionFixpoint[T]) execCall(call ssa.CallInstruction) {
	d := f.driver
	e := d.engine
	callee := d.state.ResolveCallee(call)
	if callee == nil || len(callee.Blocks) == 0 {
		e.ApproximateCall(call)
		return
	}
	if funcutil.Contains(f.analyzed, callee) {
		d.progress.RecursiveCall(f.context, callee)
		e.ApproximateCall(call)
		return
	}
	if d.state.Config.ExceedsMaxDepth(f.context.Height() + 1) {
		d.state.Logger.Warnf("call depth limit reached at %s, approximating call to %s", f.fn, callee)
		e.ApproximateCall(call)
		return
	}
	ctx := d.contexts.GetContext(f.context, call)
	if f.checkCallees {
		f.checkCallee(call, ctx, callee)
		return
	}
	entry := e.EnterCall(call, callee, e.State())
	stable := f.contextStable && f.cycleDepth == 0
	saved := e.State()
	exit, ok := d.analyzeCallee(f, ctx, callee, entry, stable)
	e.SetState(saved)
	if ok {
		e.ReturnFromCall(call, callee, exit)
	} else {
		e.ApproximateCall(call)
	}
}

// checkCallee runs the check pass of a cached callee analysis, once per
// (context, callee) pair, and composes its cached exit state.
func (f *FunctionFixpoint[T]) checkCallee(call ssa.CallInstruction, ctx *CallContext, callee *ssa.Function) {
	d := f.driver
	e := d.engine
	d.mu.Lock()
	s := d.summaries[summaryKey{ctx: ctx, fn: callee}]
	runChecks := s != nil && !s.checked
	if runChecks {
		s.checked = true
	}
	d.mu.Unlock()
	if s == nil {
		e.ApproximateCall(call)
		return
	}
	if runChecks {
		saved := e.State()
		s.fixpoint.RunChecks()
		e.SetState(saved)
	}
	if exit, ok := s.fixpoint.ExitState(); ok {
		e.ReturnFromCall(call, callee, exit)
	} else {
		e.ApproximateCall(call)
	}
}

// isReturnBlock returns true for blocks that flow back to the caller.
func isReturnBlock(b *ssa.BasicBlock) bool {
	if len(b.Instrs) == 0 {
		return false
	}
	_, ok := b.Instrs[len(b.Instrs)-1].(*ssa.Return)
	return ok
}
