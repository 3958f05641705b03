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
	"sync"

	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/cha"
	"golang.org/x/tools/go/ssa"

	"github.com/zzmjohn/ikos/analysis/config"
)

// AnalyzerState bundles the program-wide data every analysis needs: the SSA
// program, the configuration, the logger and a call graph for resolving
// dynamic call targets. One AnalyzerState is shared by all entry points of a
// run.
type AnalyzerState struct {
	Logger  *config.LogGroup
	Config  *config.Config
	Program *ssa.Program

	mu sync.Mutex
	cg *callgraph.Graph
}

// NewAnalyzerState returns a state for program. The call graph is built
// lazily on the first dynamic call resolution.
func NewAnalyzerState(program *ssa.Program, logger *config.LogGroup, cfg *config.Config) *AnalyzerState {
	return &AnalyzerState{
		Logger:  logger,
		Config:  cfg,
		Program: program,
	}
}

// PopulateCallGraph builds the class-hierarchy call graph used to resolve
// dynamic calls. Calling it eagerly moves the cost out of the first analysis.
func (s *AnalyzerState) PopulateCallGraph() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cg == nil {
		s.Logger.Debugf("building call graph")
		s.cg = cha.CallGraph(s.Program)
	}
}

// ResolveCallee returns the unique function a call instruction can reach, or
// nil when the target is a builtin, is unresolved, or is ambiguous. An
// ambiguous dynamic call is treated like an unresolved one; the caller falls
// back to a conservative call approximation.
func (s *AnalyzerState) ResolveCallee(call ssa.CallInstruction) *ssa.Function {
	common := call.Common()
	if callee := common.StaticCallee(); callee != nil {
		return callee
	}
	if !common.IsInvoke() {
		if _, isBuiltin := common.Value.(*ssa.Builtin); isBuiltin {
			return nil
		}
	}
	s.PopulateCallGraph()
	node := s.cg.Nodes[call.Parent()]
	if node == nil {
		return nil
	}
	var callee *ssa.Function
	for _, e := range node.Out {
		if e.Site != call {
			continue
		}
		if callee != nil && callee != e.Callee.Func {
			return nil
		}
		callee = e.Callee.Func
	}
	return callee
}
