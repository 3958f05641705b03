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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// WideningStrategy selects how a cycle head is extrapolated once the join-only iterations are
// exhausted.
type WideningStrategy string

const (
	// WideningStrategyWiden applies the widening operator until the increasing sequence stabilizes.
	WideningStrategyWiden WideningStrategy = "widen"

	// WideningStrategyJoin keeps joining indefinitely. Termination is then the domain's
	// responsibility; this trades speed for precision.
	WideningStrategyJoin WideningStrategy = "join"
)

// NarrowingStrategy selects how a cycle head is refined during the decreasing iterations.
type NarrowingStrategy string

const (
	// NarrowingStrategyNarrow applies the narrowing operator.
	NarrowingStrategyNarrow NarrowingStrategy = "narrow"

	// NarrowingStrategyMeet applies the lattice meet instead of narrowing.
	NarrowingStrategyMeet NarrowingStrategy = "meet"
)

// Precision levels for the abstract execution engine.
const (
	// PrecisionBasic disables branch filtering: edges propagate states unchanged.
	PrecisionBasic = 0

	// PrecisionBranch refines states along branch edges using the branch condition.
	PrecisionBranch = 1

	// PrecisionFull additionally maps caller states into callee parameters at call sites.
	PrecisionFull = 2
)

// Config contains the fixpoint engine settings and the analysis problem description.
// To add elements to a config file, add fields to this struct.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options `yaml:",inline"`

	sourceFile string

	// EntryPoints lists the names of the functions the interprocedural analysis starts from.
	// When empty, the analysis starts from main.
	EntryPoints []string `yaml:"entry-points"`
}

// Options holds the fixpoint iteration parameters.
type Options struct {
	// LoopIterations is the number of join-only rounds performed at a cycle head before the
	// widening strategy takes over.
	LoopIterations int `yaml:"loop-iterations"`

	// WideningStrategy selects the strategy of the increasing iterations: "widen" or "join".
	WideningStrategy WideningStrategy `yaml:"widening-strategy"`

	// NarrowingStrategy selects the strategy of the decreasing iterations: "narrow" or "meet".
	NarrowingStrategy NarrowingStrategy `yaml:"narrowing-strategy"`

	// NarrowingIterations caps the number of decreasing iterations at a cycle head.
	// If <= 0, the decreasing sequence runs until it converges on its own.
	NarrowingIterations int `yaml:"narrowing-iterations"`

	// Precision is the precision level of the abstract execution engine (see the Precision*
	// constants).
	Precision int `yaml:"precision"`

	// MaxDepth sets a limit for the function call depth explored during the analysis.
	// If MaxDepth is <= 0, it is ignored.
	MaxDepth int `yaml:"max-depth"`

	// UseProfiler enables the fixpoint profiler that mines widening hints from loop bounds.
	UseProfiler bool `yaml:"use-profiler"`

	// LogLevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`
}

// NewDefault returns a default config.
func NewDefault() *Config {
	return &Config{
		sourceFile:  "",
		EntryPoints: nil,
		Options: Options{
			LoopIterations:      DefaultLoopIterations,
			WideningStrategy:    WideningStrategyWiden,
			NarrowingStrategy:   NarrowingStrategyNarrow,
			NarrowingIterations: DefaultNarrowingIterations,
			Precision:           PrecisionFull,
			MaxDepth:            DefaultMaxCallDepth,
			UseProfiler:         true,
			LogLevel:            int(InfoLevel),
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	cfg := NewDefault()
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}

	cfg.sourceFile = filename

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if cfg.LoopIterations <= 0 {
		cfg.LoopIterations = DefaultLoopIterations
	}

	if cfg.WideningStrategy == "" {
		cfg.WideningStrategy = WideningStrategyWiden
	}
	if cfg.NarrowingStrategy == "" {
		cfg.NarrowingStrategy = NarrowingStrategyNarrow
	}
	if err := cfg.validateStrategies(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateStrategies rejects strategy names the fixpoint engine does not implement. An invalid
// strategy reaching the engine's dispatch is fatal, so this is the last line of defense when a
// config file is user-supplied.
func (c *Config) validateStrategies() error {
	switch c.WideningStrategy {
	case WideningStrategyWiden, WideningStrategyJoin:
	default:
		return fmt.Errorf("unknown widening strategy %q (expected %q or %q)",
			c.WideningStrategy, WideningStrategyWiden, WideningStrategyJoin)
	}
	switch c.NarrowingStrategy {
	case NarrowingStrategyNarrow, NarrowingStrategyMeet:
	default:
		return fmt.Errorf("unknown narrowing strategy %q (expected %q or %q)",
			c.NarrowingStrategy, NarrowingStrategyNarrow, NarrowingStrategyMeet)
	}
	return nil
}

// Verbose returns true if the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}

// ExceedsMaxDepth returns true if the input exceeds the maximum depth parameter of the
// configuration. If the configuration setting is <= 0, this always returns false.
func (c Config) ExceedsMaxDepth(d int) bool {
	if c.MaxDepth <= 0 {
		return false
	}
	return d > c.MaxDepth
}
