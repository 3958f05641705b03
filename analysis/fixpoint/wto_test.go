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
	"testing"

	"golang.org/x/tools/go/ssa"
)

func collectBlocks(cs []wtoComponent, out map[*ssa.BasicBlock]int) {
	for _, c := range cs {
		switch n := c.(type) {
		case wtoVertex:
			out[n.block]++
		case *wtoCycle:
			out[n.head]++
			collectBlocks(n.components, out)
		}
	}
}

func TestWTOStraightLine(t *testing.T) {
	fn := makeCFG(3, [][2]int{{0, 1}, {1, 2}})
	w := buildWTO(fn)
	if got := w.String(); got != "0 1 2" {
		t.Errorf("wto = %q, want %q", got, "0 1 2")
	}
}

func TestWTOSingleLoop(t *testing.T) {
	fn := loopCFG()
	w := buildWTO(fn)
	if got := w.String(); got != "0 (1 2) 3" {
		t.Errorf("wto = %q, want %q", got, "0 (1 2) 3")
	}
}

func TestWTONestedLoops(t *testing.T) {
	fn := makeCFG(5, [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 2}, {3, 1}, {1, 4}})
	w := buildWTO(fn)
	if got := w.String(); got != "0 (1 (2 3)) 4" {
		t.Errorf("wto = %q, want %q", got, "0 (1 (2 3)) 4")
	}
}

func TestWTODiamond(t *testing.T) {
	fn := makeCFG(4, [][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}})
	w := buildWTO(fn)
	seen := map[*ssa.BasicBlock]int{}
	collectBlocks(w.components, seen)
	for _, b := range fn.Blocks {
		if seen[b] != 1 {
			t.Errorf("block %d appears %d times in the order", b.Index, seen[b])
		}
	}
	// the merge block must come after both branches
	var pos []int
	for i, c := range w.components {
		if v, ok := c.(wtoVertex); ok && v.block.Index == 3 {
			pos = append(pos, i)
		}
	}
	if len(pos) != 1 || pos[0] != 3 {
		t.Errorf("merge block at position %v in %q", pos, w)
	}
}

func TestWTOUnreachableBlocksExcluded(t *testing.T) {
	// block 2 has no incoming edge from the entry component
	fn := makeCFG(3, [][2]int{{0, 1}})
	w := buildWTO(fn)
	seen := map[*ssa.BasicBlock]int{}
	collectBlocks(w.components, seen)
	if seen[fn.Blocks[2]] != 0 {
		t.Errorf("unreachable block is part of the order %q", w)
	}
	if seen[fn.Blocks[0]] != 1 || seen[fn.Blocks[1]] != 1 {
		t.Errorf("reachable blocks missing from the order %q", w)
	}
}

func TestWTOEveryBlockOnce(t *testing.T) {
	// two sibling loops sharing a preheader
	fn := makeCFG(6, [][2]int{{0, 1}, {1, 2}, {2, 1}, {1, 3}, {3, 4}, {4, 3}, {3, 5}})
	w := buildWTO(fn)
	seen := map[*ssa.BasicBlock]int{}
	collectBlocks(w.components, seen)
	for _, b := range fn.Blocks {
		if seen[b] != 1 {
			t.Errorf("block %d appears %d times in %q", b.Index, seen[b], w)
		}
	}
	if got := w.String(); got != "0 (1 2) (3 4) 5" {
		t.Errorf("wto = %q, want %q", got, "0 (1 2) (3 4) 5")
	}
}
