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
	"fmt"
	"go/token"
	"sort"
	"sync"

	"golang.org/x/tools/go/ssa"

	"github.com/zzmjohn/ikos/analysis/fixpoint"
	"github.com/zzmjohn/ikos/analysis/lang"
	"github.com/zzmjohn/ikos/analysis/lattice"
)

// A Diagnostic is one finding of a checker, located in the source program.
type Diagnostic struct {
	// Pos is the source position of the offending instruction.
	Pos token.Position

	// Function is the name of the function containing the instruction.
	Function string

	// Message describes the finding.
	Message string

	// Trace is the call chain under which the finding was observed.
	Trace string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Pos, d.Message)
}

// DivByZeroChecker reports integer divisions and remainders whose divisor
// interval contains zero. A divisor that is exactly zero is reported as
// definite, anything else containing zero as possible.
type DivByZeroChecker struct {
	mu    sync.Mutex
	diags []Diagnostic
}

// NewDivByZeroChecker returns an empty checker.
func NewDivByZeroChecker() *DivByZeroChecker {
	return &DivByZeroChecker{}
}

// Check implements fixpoint.Checker.
func (c *DivByZeroChecker) Check(instr ssa.Instruction, state *lattice.Env, ctx *fixpoint.CallContext) {
	binop, ok := instr.(*ssa.BinOp)
	if !ok || (binop.Op != token.QUO && binop.Op != token.REM) || !lang.IsIntegerValue(binop.Y) {
		return
	}
	divisor := evalValue(state, binop.Y)
	if divisor.IsBottom() || !divisor.Contains(0) {
		return
	}
	msg := fmt.Sprintf("possible division by zero: divisor in %s", divisor)
	if divisor.Equal(lattice.ConstInterval(0)) {
		msg = "division by zero"
	}
	pos := instr.Parent().Prog.Fset.Position(instr.Pos())
	c.mu.Lock()
	c.diags = append(c.diags, Diagnostic{Pos: pos, Function: instr.Parent().Name(), Message: msg, Trace: ctx.String()})
	c.mu.Unlock()
}

// Diagnostics returns the findings collected so far, ordered by position.
func (c *DivByZeroChecker) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	diags := make([]Diagnostic, len(c.diags))
	copy(diags, c.diags)
	sort.Slice(diags, func(i, j int) bool {
		if diags[i].Pos.Filename != diags[j].Pos.Filename {
			return diags[i].Pos.Filename < diags[j].Pos.Filename
		}
		if diags[i].Pos.Line != diags[j].Pos.Line {
			return diags[i].Pos.Line < diags[j].Pos.Line
		}
		return diags[i].Pos.Column < diags[j].Pos.Column
	})
	return diags
}
