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

	"github.com/zzmjohn/ikos/analysis/config"
)

// IterationKind tags cycle iteration notifications with the active phase.
type IterationKind int

const (
	// IterationIncreasing is the join/widen phase of a cycle.
	IterationIncreasing IterationKind = iota
	// IterationDecreasing is the narrow/meet phase of a cycle.
	IterationDecreasing
)

func (k IterationKind) String() string {
	if k == IterationDecreasing {
		return "decreasing"
	}
	return "increasing"
}

// A ProgressLogger observes the engine while it runs. Notifications are purely
// observational and never influence results. The entry function is not
// reported as a callee.
type ProgressLogger interface {
	StartCallee(ctx *CallContext, fn *ssa.Function)
	EndCallee(ctx *CallContext, fn *ssa.Function)
	StartCycle(fn *ssa.Function, head *ssa.BasicBlock)
	CycleIteration(fn *ssa.Function, head *ssa.BasicBlock, iteration int, kind IterationKind)
	EndCycle(fn *ssa.Function, head *ssa.BasicBlock)
	RecursiveCall(ctx *CallContext, fn *ssa.Function)
}

type noopLogger struct{}

func (noopLogger) StartCallee(*CallContext, *ssa.Function)                              {}
func (noopLogger) EndCallee(*CallContext, *ssa.Function)                                {}
func (noopLogger) StartCycle(*ssa.Function, *ssa.BasicBlock)                            {}
func (noopLogger) CycleIteration(*ssa.Function, *ssa.BasicBlock, int, IterationKind)    {}
func (noopLogger) EndCycle(*ssa.Function, *ssa.BasicBlock)                              {}
func (noopLogger) RecursiveCall(*CallContext, *ssa.Function)                            {}

// NoProgress returns a logger that discards all notifications.
func NoProgress() ProgressLogger {
	return noopLogger{}
}

// groupLogger forwards progress notifications to a leveled log group. Callee
// events log at debug, per-iteration events at trace.
type groupLogger struct {
	log *config.LogGroup
}

// NewProgressLogger returns a ProgressLogger writing to l.
func NewProgressLogger(l *config.LogGroup) ProgressLogger {
	return groupLogger{log: l}
}

func (g groupLogger) StartCallee(ctx *CallContext, fn *ssa.Function) {
	g.log.Debugf("analyzing callee %s (depth %d)", fn, ctx.Height())
}

func (g groupLogger) EndCallee(ctx *CallContext, fn *ssa.Function) {
	g.log.Debugf("callee %s converged (depth %d)", fn, ctx.Height())
}

func (g groupLogger) StartCycle(fn *ssa.Function, head *ssa.BasicBlock) {
	g.log.Tracef("%s: entering cycle at block %s", fn, head)
}

func (g groupLogger) CycleIteration(fn *ssa.Function, head *ssa.BasicBlock, iteration int, kind IterationKind) {
	g.log.Tracef("%s: cycle at block %s, %s iteration %d", fn, head, kind, iteration)
}

func (g groupLogger) EndCycle(fn *ssa.Function, head *ssa.BasicBlock) {
	g.log.Tracef("%s: leaving cycle at block %s", fn, head)
}

func (g groupLogger) RecursiveCall(ctx *CallContext, fn *ssa.Function) {
	g.log.Debugf("recursive call to %s, approximating (context %s)", fn, ctx)
}
