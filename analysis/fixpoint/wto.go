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
	"math"
	"strings"

	"golang.org/x/tools/go/ssa"
)

// A wto is Bourdoncle's weak topological order of a function's control-flow
// graph: a sequence of components where every cycle of the graph is nested
// inside a component anchored at its head. Iterating the components in order
// and re-iterating each component until its head stabilizes yields a fixpoint.
type wto struct {
	components []wtoComponent
}

type wtoComponent interface {
	isWTOComponent()
}

// wtoVertex is a block outside any cycle.
type wtoVertex struct {
	block *ssa.BasicBlock
}

// wtoCycle is a strongly connected subgraph anchored at head. The head is not
// repeated in components.
type wtoCycle struct {
	head       *ssa.BasicBlock
	components []wtoComponent
}

func (wtoVertex) isWTOComponent() {}
func (*wtoCycle) isWTOComponent() {}

// buildWTO computes the weak topological order of the blocks reachable from
// the function's entry. Unreachable blocks are not part of the order.
func buildWTO(fn *ssa.Function) *wto {
	if len(fn.Blocks) == 0 {
		return &wto{}
	}
	b := &wtoBuilder{dfn: make(map[*ssa.BasicBlock]int, len(fn.Blocks))}
	var components []wtoComponent
	b.visit(fn.Blocks[0], &components)
	reverseComponents(components)
	return &wto{components: components}
}

// wtoBuilder runs Bourdoncle's recursive-strategy algorithm, a variant of
// Tarjan's SCC search that emits nested components instead of flat ones.
type wtoBuilder struct {
	dfn   map[*ssa.BasicBlock]int
	num   int
	stack []*ssa.BasicBlock
}

func (w *wtoBuilder) push(b *ssa.BasicBlock) {
	w.stack = append(w.stack, b)
}

func (w *wtoBuilder) pop() *ssa.BasicBlock {
	b := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	return b
}

func (w *wtoBuilder) visit(v *ssa.BasicBlock, partition *[]wtoComponent) int {
	w.push(v)
	w.num++
	w.dfn[v] = w.num
	head := w.dfn[v]
	loop := false
	for _, succ := range v.Succs {
		var min int
		if w.dfn[succ] == 0 {
			min = w.visit(succ, partition)
		} else {
			min = w.dfn[succ]
		}
		if min <= head {
			head = min
			loop = true
		}
	}
	if head == w.dfn[v] {
		w.dfn[v] = math.MaxInt
		element := w.pop()
		if loop {
			for element != v {
				w.dfn[element] = 0
				element = w.pop()
			}
			*partition = append(*partition, w.component(v))
		} else {
			*partition = append(*partition, wtoVertex{block: v})
		}
	}
	return head
}

func (w *wtoBuilder) component(head *ssa.BasicBlock) *wtoCycle {
	var sub []wtoComponent
	for _, succ := range head.Succs {
		if w.dfn[succ] == 0 {
			w.visit(succ, &sub)
		}
	}
	reverseComponents(sub)
	return &wtoCycle{head: head, components: sub}
}

func reverseComponents(cs []wtoComponent) {
	for i, j := 0, len(cs)-1; i < j; i, j = i+1, j-1 {
		cs[i], cs[j] = cs[j], cs[i]
	}
}

// String renders the order in Bourdoncle's parenthesized notation,
// e.g. "0 (1 2) 3" for a single loop with head 1 and body 2.
func (w *wto) String() string {
	var sb strings.Builder
	writeComponents(&sb, w.components)
	return sb.String()
}

func writeComponents(sb *strings.Builder, cs []wtoComponent) {
	for i, c := range cs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch n := c.(type) {
		case wtoVertex:
			sb.WriteString(n.block.String())
		case *wtoCycle:
			sb.WriteByte('(')
			sb.WriteString(n.head.String())
			if len(n.components) > 0 {
				sb.WriteByte(' ')
				writeComponents(sb, n.components)
			}
			sb.WriteByte(')')
		}
	}
}
