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

// Package valuerange runs an interprocedural interval analysis over a
// program and checks the converged ranges for arithmetic defects. It is the
// reference client of the fixpoint engine: an interval execution engine, a
// loop-bound profiler feeding widening hints, and checkers consuming the
// converged states.
package valuerange

import (
	"fmt"

	"golang.org/x/tools/go/ssa"

	"github.com/zzmjohn/ikos/analysis/config"
	"github.com/zzmjohn/ikos/analysis/fixpoint"
	"github.com/zzmjohn/ikos/analysis/lang"
	"github.com/zzmjohn/ikos/analysis/lattice"
)

// AnalysisResult is what Analyze returns: the converged analysis per entry
// point and the diagnostics of the registered checkers.
type AnalysisResult struct {
	// EntryPoints maps each analyzed entry point to its converged fixpoint,
	// whose per-block states remain queryable.
	EntryPoints map[*ssa.Function]*fixpoint.FunctionFixpoint[*lattice.Env]

	// Diagnostics are the checker findings, ordered by source position.
	Diagnostics []Diagnostic
}

// Analyze runs the value-range analysis on the program's entry points, as
// configured by cfg.EntryPoints (the main function when unset), then runs
// the check pass on every converged entry point.
func Analyze(logger *config.LogGroup, cfg *config.Config, program *ssa.Program) (AnalysisResult, error) {
	names := cfg.EntryPoints
	if len(names) == 0 {
		names = []string{"main"}
	}
	entries := lang.FindFunctionsByName(program, names)
	if len(entries) == 0 {
		return AnalysisResult{}, fmt.Errorf("no entry points found matching %v", names)
	}

	state := fixpoint.NewAnalyzerState(program, logger, cfg)
	checker := NewDivByZeroChecker()
	opts := []fixpoint.DriverOption[*lattice.Env]{
		fixpoint.WithCheckers[*lattice.Env](checker),
	}
	if cfg.UseProfiler {
		opts = append(opts, fixpoint.WithProfiler[*lattice.Env](NewLoopBoundProfiler(logger)))
	}
	driver := fixpoint.NewDriver[*lattice.Env](state, newIntervalEngine(cfg.Precision), opts...)

	result := AnalysisResult{
		EntryPoints: map[*ssa.Function]*fixpoint.FunctionFixpoint[*lattice.Env]{},
	}
	for _, fn := range entries {
		root, err := driver.Analyze(fn, lattice.NewEnv())
		if err != nil {
			return result, fmt.Errorf("analysis of %s failed: %w", fn, err)
		}
		root.RunChecks()
		result.EntryPoints[fn] = root
	}
	result.Diagnostics = checker.Diagnostics()
	return result, nil
}
