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
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"io"
	"strings"
	"testing"

	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"github.com/zzmjohn/ikos/analysis/config"
	"github.com/zzmjohn/ikos/analysis/lattice"
	"github.com/zzmjohn/ikos/internal/graphutil"
)

func buildSSA(t *testing.T, src string) *ssa.Package {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "test.go", src, 0)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	pkg, _, err := ssautil.BuildPackage(
		&types.Config{}, fset, types.NewPackage("test", ""), []*ast.File{file},
		ssa.SanityCheckFunctions)
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	return pkg
}

func quietLogger(cfg *config.Config) *config.LogGroup {
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(io.Discard)
	return logger
}

func runAnalysis(t *testing.T, src string, entry string, tune func(*config.Config)) (AnalysisResult, *ssa.Package) {
	t.Helper()
	pkg := buildSSA(t, src)
	cfg := config.NewDefault()
	cfg.EntryPoints = []string{entry}
	if tune != nil {
		tune(cfg)
	}
	result, err := Analyze(quietLogger(cfg), cfg, pkg.Prog)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return result, pkg
}

const loopSrc = `package test

func iter() int {
	i := 0
	for i < 10 {
		i = i + 1
	}
	return i
}
`

// A counting loop converges to its exact bound: the exit branch constrains
// the counter to the bound, and narrowing (or the profiler hint) removes the
// widening overshoot.
func TestLoopConvergesToBound(t *testing.T) {
	for _, useProfiler := range []bool{true, false} {
		result, pkg := runAnalysis(t, loopSrc, "iter", func(cfg *config.Config) {
			cfg.UseProfiler = useProfiler
		})
		fn := pkg.Func("iter")
		root := result.EntryPoints[fn]
		if root == nil {
			t.Fatalf("no fixpoint for entry point (profiler=%v)", useProfiler)
		}
		exit, ok := root.ExitState()
		if !ok {
			t.Fatalf("no exit state (profiler=%v)", useProfiler)
		}
		if got := exit.Get(fn); !got.Equal(lattice.ConstInterval(10)) {
			t.Errorf("profiler=%v: return range = %s, want [10, 10]", useProfiler, got)
		}
	}
}

func TestConstantDivisionByZero(t *testing.T) {
	result, _ := runAnalysis(t, `package test

func bad(a int) int {
	z := 0
	return a / z
}
`, "bad", nil)
	if len(result.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %v, want exactly one", result.Diagnostics)
	}
	d := result.Diagnostics[0]
	if d.Message != "division by zero" {
		t.Errorf("message = %q, want a definite division by zero", d.Message)
	}
	if !d.Pos.IsValid() {
		t.Errorf("diagnostic has no source position")
	}
	if d.Function != "bad" {
		t.Errorf("function = %q, want bad", d.Function)
	}
}

const guardedSrc = `package test

func guarded(a, b int) int {
	if b > 0 {
		return a / b
	}
	return 0
}
`

// Branch refinement proves the guarded division safe; without it the divisor
// stays unconstrained and the division is flagged.
func TestGuardedDivision(t *testing.T) {
	result, _ := runAnalysis(t, guardedSrc, "guarded", nil)
	if len(result.Diagnostics) != 0 {
		t.Errorf("diagnostics with branch refinement = %v, want none", result.Diagnostics)
	}

	result, _ = runAnalysis(t, guardedSrc, "guarded", func(cfg *config.Config) {
		cfg.Precision = config.PrecisionBasic
	})
	if len(result.Diagnostics) != 1 {
		t.Errorf("diagnostics at basic precision = %v, want one", result.Diagnostics)
	}
	if len(result.Diagnostics) == 1 && !strings.HasPrefix(result.Diagnostics[0].Message, "possible division by zero") {
		t.Errorf("message = %q, want a possible division", result.Diagnostics[0].Message)
	}
}

// Return ranges of callees flow back into the caller at the call site.
func TestCalleeReturnRange(t *testing.T) {
	result, pkg := runAnalysis(t, `package test

func compute() int {
	return helper() + 1
}

func helper() int {
	return 41
}
`, "compute", nil)
	fn := pkg.Func("compute")
	exit, ok := result.EntryPoints[fn].ExitState()
	if !ok {
		t.Fatalf("no exit state")
	}
	if got := exit.Get(fn); !got.Equal(lattice.ConstInterval(42)) {
		t.Errorf("return range = %s, want [42, 42]", got)
	}
	if len(result.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", result.Diagnostics)
	}
}

// A division by a callee's zero return is caught through the call boundary.
func TestInterproceduralDivisionByZero(t *testing.T) {
	result, _ := runAnalysis(t, `package test

func entry() int {
	return 7 / zero()
}

func zero() int {
	return 0
}
`, "entry", nil)
	if len(result.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %v, want exactly one", result.Diagnostics)
	}
	if result.Diagnostics[0].Message != "division by zero" {
		t.Errorf("message = %q, want a definite division by zero", result.Diagnostics[0].Message)
	}
}

func TestLoopBoundProfiler(t *testing.T) {
	pkg := buildSSA(t, loopSrc)
	fn := pkg.Func("iter")
	profiler := NewLoopBoundProfiler(quietLogger(config.NewDefault()))
	profile := profiler.Profile(fn)
	if profile == nil {
		t.Fatalf("no profile for a function with a bounded loop")
	}
	loops := graphutil.FindLoops(fn)
	if len(loops) == 0 {
		t.Fatalf("no loops found in iter")
	}
	hint := profile.WideningHint(loops[0].Head)
	if hint.IsNone() || hint.Value() != 10 {
		t.Errorf("widening hint = %v, want 10", hint)
	}
	// cached profiles are shared
	if profiler.Profile(fn) != profile {
		t.Errorf("profile not cached")
	}
}

func TestAnalyzeUnknownEntryPoint(t *testing.T) {
	pkg := buildSSA(t, loopSrc)
	cfg := config.NewDefault()
	cfg.EntryPoints = []string{"missing"}
	if _, err := Analyze(quietLogger(cfg), cfg, pkg.Prog); err == nil {
		t.Errorf("expected an error for an unknown entry point")
	}
}
