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

package lang

import (
	"sort"

	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// FindFunctionsByName returns the functions of the program whose short or
// package-qualified name is in names, restricted to functions with a body.
// The result is sorted by qualified name so callers iterate deterministically.
func FindFunctionsByName(program *ssa.Program, names []string) []*ssa.Function {
	want := map[string]bool{}
	for _, name := range names {
		want[name] = true
	}
	var found []*ssa.Function
	for fn := range ssautil.AllFunctions(program) {
		if len(fn.Blocks) == 0 {
			continue
		}
		if want[fn.Name()] || want[fn.String()] {
			found = append(found, fn)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].String() < found[j].String() })
	return found
}

// IterateInstructions applies f to every instruction of the function.
func IterateInstructions(fn *ssa.Function, f func(instr ssa.Instruction)) {
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			f(instr)
		}
	}
}

// CountInstructions returns the number of instructions across the functions.
func CountInstructions(funcs []*ssa.Function) int {
	n := 0
	for _, fn := range funcs {
		IterateInstructions(fn, func(ssa.Instruction) { n++ })
	}
	return n
}
