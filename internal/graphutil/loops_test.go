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

package graphutil

import (
	"testing"

	"golang.org/x/tools/go/ssa"
)

// makeCFG builds a function with n blocks connected by the given edges.
func makeCFG(n int, edges [][2]int) *ssa.Function {
	blocks := make([]*ssa.BasicBlock, n)
	for i := range blocks {
		blocks[i] = &ssa.BasicBlock{Index: i}
	}
	for _, e := range edges {
		from, to := blocks[e[0]], blocks[e[1]]
		from.Succs = append(from.Succs, to)
		to.Preds = append(to.Preds, from)
	}
	return &ssa.Function{Blocks: blocks}
}

func bodyIndices(loop Loop) map[int]bool {
	body := map[int]bool{}
	for _, b := range loop.Body {
		body[b.Index] = true
	}
	return body
}

func TestFindLoopsStraightLine(t *testing.T) {
	fn := makeCFG(3, [][2]int{{0, 1}, {1, 2}})
	if loops := FindLoops(fn); len(loops) != 0 {
		t.Errorf("found %d loops in a straight-line function", len(loops))
	}
}

func TestFindLoopsSingle(t *testing.T) {
	fn := makeCFG(4, [][2]int{{0, 1}, {1, 2}, {2, 1}, {1, 3}})
	loops := FindLoops(fn)
	if len(loops) != 1 {
		t.Fatalf("loops = %d, want 1", len(loops))
	}
	if loops[0].Head.Index != 1 {
		t.Errorf("head = %d, want 1", loops[0].Head.Index)
	}
	body := bodyIndices(loops[0])
	if len(body) != 2 || !body[1] || !body[2] {
		t.Errorf("body = %v, want {1, 2}", body)
	}
}

func TestFindLoopsSelfLoop(t *testing.T) {
	fn := makeCFG(3, [][2]int{{0, 1}, {1, 1}, {1, 2}})
	loops := FindLoops(fn)
	if len(loops) != 1 {
		t.Fatalf("loops = %d, want 1", len(loops))
	}
	if loops[0].Head.Index != 1 || len(loops[0].Body) != 1 {
		t.Errorf("loop = %v, want a self loop on block 1", loops[0])
	}
}

func TestFindLoopsNested(t *testing.T) {
	fn := makeCFG(5, [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 2}, {3, 1}, {1, 4}})
	loops := FindLoops(fn)
	if len(loops) != 2 {
		t.Fatalf("loops = %d, want 2", len(loops))
	}
	if loops[0].Head.Index != 1 {
		t.Errorf("outer head = %d, want 1", loops[0].Head.Index)
	}
	outer := bodyIndices(loops[0])
	if len(outer) != 3 || !outer[1] || !outer[2] || !outer[3] {
		t.Errorf("outer body = %v, want {1, 2, 3}", outer)
	}
	if loops[1].Head.Index != 2 {
		t.Errorf("inner head = %d, want 2", loops[1].Head.Index)
	}
	inner := bodyIndices(loops[1])
	if len(inner) != 2 || !inner[2] || !inner[3] {
		t.Errorf("inner body = %v, want {2, 3}", inner)
	}
}

func TestFindLoopsSiblings(t *testing.T) {
	fn := makeCFG(6, [][2]int{{0, 1}, {1, 2}, {2, 1}, {1, 3}, {3, 4}, {4, 3}, {3, 5}})
	loops := FindLoops(fn)
	if len(loops) != 2 {
		t.Fatalf("loops = %d, want 2", len(loops))
	}
	if loops[0].Head.Index != 1 || loops[1].Head.Index != 3 {
		t.Errorf("heads = %d, %d, want 1, 3", loops[0].Head.Index, loops[1].Head.Index)
	}
}

func TestFindLoopsEmptyFunction(t *testing.T) {
	if loops := FindLoops(&ssa.Function{}); loops != nil {
		t.Errorf("loops = %v, want none", loops)
	}
}

func TestSubgraphKeepsEdgesInside(t *testing.T) {
	fn := makeCFG(4, [][2]int{{0, 1}, {1, 2}, {2, 1}, {1, 3}})
	g := NewBlockGraph(fn)
	sub := Subgraph(g, []int64{1, 2})
	if sub.Order() != g.Order() {
		t.Errorf("subgraph order = %d, want %d", sub.Order(), g.Order())
	}
	if !sub.Edges[1][2] || !sub.Edges[2][1] {
		t.Errorf("subgraph lost the 1<->2 edges")
	}
	if sub.Edges[1][3] {
		t.Errorf("subgraph kept an edge to an excluded node")
	}
	if _, ok := sub.IDMap[0]; ok {
		t.Errorf("subgraph kept an excluded node")
	}
}
