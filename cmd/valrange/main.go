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

// valrange: an interprocedural value-range analyzer for Go programs.
// It infers integer intervals with a widening/narrowing fixpoint and
// reports possible divisions by zero.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/tools/go/ssa"

	"github.com/zzmjohn/ikos/analysis"
	"github.com/zzmjohn/ikos/analysis/config"
	"github.com/zzmjohn/ikos/analysis/valuerange"
	"github.com/zzmjohn/ikos/internal/formatutil"
)

var (
	configPath = flag.String("config", "", "Config file path for the value-range analysis")
	buildmode  = ssa.BuilderMode(0)
)

func init() {
	flag.Var(&buildmode, "build", ssa.BuilderModeDoc)
}

const usage = ` Infer integer value ranges in your packages and report divisions by zero.
Usage:
    valrange [options] <package path(s)>
Examples:
% valrange -config config.yaml package...
Run without a config to analyze from main with the default settings.
`

func main() {
	flag.Parse()

	if flag.NArg() == 0 {
		_, _ = fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config.NewDefault()
	if *configPath != "" {
		config.SetGlobalConfig(*configPath)
		loaded, err := config.LoadGlobal()
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not load config %s: %v\n", *configPath, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	logger := config.NewLogGroup(cfg)

	logger.Infof(formatutil.Faint("Reading sources") + "\n")

	program, err := analysis.LoadProgram(nil, "", buildmode, flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load program: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	result, err := valuerange.Analyze(logger, cfg, program.Program)
	duration := time.Since(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		os.Exit(1)
	}
	logger.Infof("Analysis took %3.4f s\n", duration.Seconds())

	for fn, converged := range result.EntryPoints {
		if exit, ok := converged.ExitState(); ok {
			logger.Debugf("exit state of %s: %s\n", fn.String(), exit.String())
		}
	}

	for _, d := range result.Diagnostics {
		logger.Infof("%s in function %s:\n\t%s\n\t\t[%s]\n\tCalling context: %s\n",
			formatutil.Red("Potential runtime error"),
			d.Function,
			d.Message,
			d.Pos.String(),
			d.Trace,
		)
	}
	if len(result.Diagnostics) > 0 {
		os.Exit(1)
	}
	logger.Infof(formatutil.Green("No division by zero detected") + "\n")
}
