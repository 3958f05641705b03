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
	"sort"

	"github.com/yourbasic/graph"
	"golang.org/x/tools/go/ssa"
)

// Loop describes one cycle of a function's control-flow graph. The head is the entry block of the
// strongly connected component the cycle belongs to; the body contains all the blocks of the
// component, head included.
type Loop struct {
	Head *ssa.BasicBlock
	Body []*ssa.BasicBlock
}

// FindLoops returns the loops of the function, outermost loops first. A loop is reported for every
// strongly connected component with at least two blocks, and for every block with an edge to
// itself. Nested loops are found by removing the edges into the head of each component and
// decomposing the remainder of the component recursively.
func FindLoops(fn *ssa.Function) []Loop {
	if len(fn.Blocks) == 0 {
		return nil
	}
	g := NewBlockGraph(fn)
	return findLoopsIn(g)
}

func findLoopsIn(g BlockGraph) []Loop {
	var loops []Loop
	components := graph.StrongComponents(g)
	// Sort by smallest block index so the report order is deterministic
	sort.Slice(components, func(i, j int) bool {
		return minOf(components[i]) < minOf(components[j])
	})
	for _, component := range components {
		ids := keepKnown(g, component)
		if len(ids) == 0 {
			continue
		}
		if len(ids) == 1 && !g.Edges[ids[0]][ids[0]] {
			continue // not a cycle
		}
		head := componentHead(g, ids)
		loops = append(loops, Loop{
			Head: g.IDMap[head].Block,
			Body: blocksOf(g, ids),
		})
		// Recurse on the component without its head to find nested loops
		var inner []int64
		for _, id := range ids {
			if id != head {
				inner = append(inner, id)
			}
		}
		if len(inner) > 0 {
			loops = append(loops, findLoopsIn(Subgraph(g, inner))...)
		}
	}
	return loops
}

// componentHead returns the entry node of a component: the node with a predecessor outside the
// component, with ties broken by the smallest block index. A component with no outside
// predecessor (the function entry's component) is headed by its smallest block index.
func componentHead(g BlockGraph, ids []int64) int64 {
	in := map[int64]bool{}
	for _, id := range ids {
		in[id] = true
	}
	head := int64(-1)
	for _, key := range g.Keys {
		if in[key] {
			continue
		}
		for succ := range g.Edges[key] {
			if in[succ] && (head == -1 || succ < head) {
				head = succ
			}
		}
	}
	if head == -1 {
		head = ids[0]
		for _, id := range ids {
			if id < head {
				head = id
			}
		}
	}
	return head
}

// keepKnown filters out component ids that are not part of the (sub)graph. The strong component
// decomposition works on a dense range of node ids, so subgraphs report excluded ids as
// singleton components.
func keepKnown(g BlockGraph, component []int) []int64 {
	var ids []int64
	for _, v := range component {
		if _, ok := g.IDMap[int64(v)]; ok {
			ids = append(ids, int64(v))
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func blocksOf(g BlockGraph, ids []int64) []*ssa.BasicBlock {
	blocks := make([]*ssa.BasicBlock, len(ids))
	for i, id := range ids {
		blocks[i] = g.IDMap[id].Block
	}
	return blocks
}

func minOf(component []int) int {
	m := component[0]
	for _, v := range component {
		if v < m {
			m = v
		}
	}
	return m
}
