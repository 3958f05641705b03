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

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(name, []byte(contents), 0o600); err != nil {
		t.Fatalf("could not write config: %v", err)
	}
	return name
}

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()
	if cfg.LoopIterations != DefaultLoopIterations {
		t.Errorf("LoopIterations = %d, want %d", cfg.LoopIterations, DefaultLoopIterations)
	}
	if cfg.WideningStrategy != WideningStrategyWiden {
		t.Errorf("WideningStrategy = %q, want %q", cfg.WideningStrategy, WideningStrategyWiden)
	}
	if cfg.NarrowingStrategy != NarrowingStrategyNarrow {
		t.Errorf("NarrowingStrategy = %q, want %q", cfg.NarrowingStrategy, NarrowingStrategyNarrow)
	}
	if cfg.NarrowingIterations != DefaultNarrowingIterations {
		t.Errorf("NarrowingIterations = %d, want %d", cfg.NarrowingIterations, DefaultNarrowingIterations)
	}
	if cfg.Precision != PrecisionFull {
		t.Errorf("Precision = %d, want %d", cfg.Precision, PrecisionFull)
	}
	if cfg.MaxDepth != DefaultMaxCallDepth {
		t.Errorf("MaxDepth = %d, want %d", cfg.MaxDepth, DefaultMaxCallDepth)
	}
	if !cfg.UseProfiler {
		t.Errorf("UseProfiler = false, want true")
	}
	if cfg.Verbose() {
		t.Errorf("default config should not be verbose")
	}
}

func TestLoad(t *testing.T) {
	name := writeConfig(t, `
loop-iterations: 4
widening-strategy: join
narrowing-strategy: meet
narrowing-iterations: 2
precision: 1
max-depth: 7
use-profiler: false
log-level: 4
entry-points:
  - main
  - server.Run
`)
	cfg, err := Load(name)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LoopIterations != 4 {
		t.Errorf("LoopIterations = %d, want 4", cfg.LoopIterations)
	}
	if cfg.WideningStrategy != WideningStrategyJoin {
		t.Errorf("WideningStrategy = %q, want join", cfg.WideningStrategy)
	}
	if cfg.NarrowingStrategy != NarrowingStrategyMeet {
		t.Errorf("NarrowingStrategy = %q, want meet", cfg.NarrowingStrategy)
	}
	if cfg.NarrowingIterations != 2 {
		t.Errorf("NarrowingIterations = %d, want 2", cfg.NarrowingIterations)
	}
	if cfg.Precision != PrecisionBranch {
		t.Errorf("Precision = %d, want %d", cfg.Precision, PrecisionBranch)
	}
	if cfg.MaxDepth != 7 {
		t.Errorf("MaxDepth = %d, want 7", cfg.MaxDepth)
	}
	if cfg.UseProfiler {
		t.Errorf("UseProfiler = true, want false")
	}
	if !cfg.Verbose() {
		t.Errorf("log-level 4 should be verbose")
	}
	if len(cfg.EntryPoints) != 2 || cfg.EntryPoints[0] != "main" || cfg.EntryPoints[1] != "server.Run" {
		t.Errorf("EntryPoints = %v", cfg.EntryPoints)
	}
}

func TestLoadDefaultsMissingFields(t *testing.T) {
	name := writeConfig(t, "max-depth: 3\n")
	cfg, err := Load(name)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", cfg.MaxDepth)
	}
	if cfg.LoopIterations != DefaultLoopIterations {
		t.Errorf("LoopIterations = %d, want default", cfg.LoopIterations)
	}
	if cfg.WideningStrategy != WideningStrategyWiden {
		t.Errorf("WideningStrategy = %q, want default", cfg.WideningStrategy)
	}
	if cfg.LogLevel != int(InfoLevel) {
		t.Errorf("LogLevel = %d, want %d", cfg.LogLevel, InfoLevel)
	}
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	name := writeConfig(t, "widening-strategy: extrapolate\n")
	if _, err := Load(name); err == nil {
		t.Errorf("expected an error for an unknown widening strategy")
	}
	name = writeConfig(t, "narrowing-strategy: refine\n")
	if _, err := Load(name); err == nil {
		t.Errorf("expected an error for an unknown narrowing strategy")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}

func TestExceedsMaxDepth(t *testing.T) {
	cfg := NewDefault()
	cfg.MaxDepth = 2
	if cfg.ExceedsMaxDepth(2) {
		t.Errorf("depth 2 should be allowed")
	}
	if !cfg.ExceedsMaxDepth(3) {
		t.Errorf("depth 3 should exceed the limit")
	}
	cfg.MaxDepth = 0
	if cfg.ExceedsMaxDepth(1 << 20) {
		t.Errorf("depth should be unlimited when MaxDepth <= 0")
	}
}
