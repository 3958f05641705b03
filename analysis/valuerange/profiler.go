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

package valuerange

import (
	"sync"

	"golang.org/x/tools/go/ssa"

	"github.com/zzmjohn/ikos/analysis/config"
	"github.com/zzmjohn/ikos/analysis/fixpoint"
	"github.com/zzmjohn/ikos/analysis/lang"
	"github.com/zzmjohn/ikos/internal/graphutil"
)

// A LoopBoundProfiler mines widening hints from the program text: a loop
// whose exit condition compares against an integer constant gets that
// constant as the widening threshold of its head, so the fixpoint lands on
// the loop bound instead of infinity. Profiles are cached per function since
// the same callee is profiled once per calling context otherwise.
type LoopBoundProfiler struct {
	logger *config.LogGroup

	mu    sync.Mutex
	cache map[*ssa.Function]*fixpoint.Profile
}

// NewLoopBoundProfiler returns a profiler logging its findings to logger.
func NewLoopBoundProfiler(logger *config.LogGroup) *LoopBoundProfiler {
	return &LoopBoundProfiler{
		logger: logger,
		cache:  map[*ssa.Function]*fixpoint.Profile{},
	}
}

// Profile implements fixpoint.Profiler.
func (p *LoopBoundProfiler) Profile(fn *ssa.Function) *fixpoint.Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	if profile, ok := p.cache[fn]; ok {
		return profile
	}
	profile := p.build(fn)
	p.cache[fn] = profile
	return profile
}

func (p *LoopBoundProfiler) build(fn *ssa.Function) *fixpoint.Profile {
	loops := graphutil.FindLoops(fn)
	if len(loops) == 0 {
		return nil
	}
	profile := fixpoint.NewProfile()
	for _, loop := range loops {
		if bound, ok := loopBound(loop); ok {
			p.logger.Tracef("%s: loop at block %s has widening hint %d", fn, loop.Head, bound)
			profile.SetWideningHint(loop.Head, bound)
		}
	}
	if profile.Empty() {
		return nil
	}
	return profile
}

// loopBound looks for a conditional branch inside the loop comparing some
// value against an integer constant. The first constant found is taken as
// the hint; a wrong guess costs precision on one widening round, never
// soundness.
func loopBound(loop graphutil.Loop) (int64, bool) {
	for _, b := range loop.Body {
		if len(b.Instrs) == 0 {
			continue
		}
		branch, ok := b.Instrs[len(b.Instrs)-1].(*ssa.If)
		if !ok {
			continue
		}
		cond, ok := branch.Cond.(*ssa.BinOp)
		if !ok {
			continue
		}
		for _, v := range []ssa.Value{cond.Y, cond.X} {
			if c := lang.IntConstant(v); c.IsSome() {
				return c.Value(), true
			}
		}
	}
	return 0, false
}
