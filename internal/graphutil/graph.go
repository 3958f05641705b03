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

// Package graphutil provides graph views of a function's control-flow graph
// that work with existing graph libraries.
package graphutil

import (
	"sort"

	"golang.org/x/tools/go/ssa"
	"gonum.org/v1/gonum/graph"
)

// BlockGraph is an abstraction over the basic-block graph of a function to work with existing
// graph libraries. It implements the methods to satisfy graph.Iterator and Gonum's graph.Graph
type BlockGraph struct {
	// The order of the graph
	order int

	// The function the BlockGraph was constructed from
	Fn *ssa.Function

	// IDMap maps from node IDs to BNodes
	IDMap map[int64]BNode

	// Keys are all the node IDs, sorted in increasing order
	Keys []int64

	// Edges is an adjacency matrix: Edges[x][y] means there is a directed edge between IDMap[x] and IDMap[y]
	Edges map[int64]map[int64]bool
}

// NewBlockGraph returns a new block graph of the function where node ids correspond to the Index
// of each basic block.
func NewBlockGraph(fn *ssa.Function) BlockGraph {
	n := len(fn.Blocks)
	idmap := make(map[int64]BNode, n)
	edges := make(map[int64]map[int64]bool, n)
	keys := make([]int64, n)

	for i, block := range fn.Blocks {
		keys[i] = int64(block.Index)
		idmap[int64(block.Index)] = BNode{block}
		edges[int64(block.Index)] = map[int64]bool{}
		for _, succ := range block.Succs {
			edges[int64(block.Index)][int64(succ.Index)] = true
		}
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return BlockGraph{
		order: n,
		Fn:    fn,
		IDMap: idmap,
		Edges: edges,
		Keys:  keys,
	}
}

// Subgraph returns a new graph that is the original graph with only the nodes in include. Only the
// edges that have both the origin and destination nodes in the include nodes are kept in the
// resulting graph. The subgraph's order and Fn are the same as in the original, meaning that node
// indices stay consistent across subgraphs.
func Subgraph(original BlockGraph, include []int64) BlockGraph {
	idmap := make(map[int64]BNode, len(include))
	edges := make(map[int64]map[int64]bool, len(include))
	keys := make([]int64, len(include))

	for j, i := range include {
		keys[j] = i
		idmap[i] = original.IDMap[i]
	}

	for _, i := range include {
		edges[i] = map[int64]bool{}
		for e := range original.Edges[i] {
			if _, ok := idmap[e]; ok {
				edges[i][e] = true
			}
		}
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return BlockGraph{
		order: original.Order(),
		Fn:    original.Fn,
		IDMap: idmap,
		Edges: edges,
		Keys:  keys,
	}
}

// Order implements the order of the graph.Iterator interface for the BlockGraph
func (b BlockGraph) Order() int {
	return b.order
}

// Visit implements the graph.Iterator interface for the BlockGraph
func (b BlockGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if _, ok := b.IDMap[int64(v)]; !ok {
		return false
	}
	for w := range b.Edges[int64(v)] {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// *************** Graph interface implementation **********************

// Node implements the Graph interface
func (b BlockGraph) Node(id int64) graph.Node {
	return b.IDMap[id]
}

// Nodes returns the set of nodes in the graph
func (b BlockGraph) Nodes() graph.Nodes {
	keys := make([]int64, len(b.IDMap))
	i := 0
	for k := range b.IDMap {
		keys[i] = k
		i++
	}
	return &NodeSet{
		nodes: b.IDMap,
		ids:   keys,
		cur:   0,
	}
}

// From returns the set of nodes reachable from the id
func (b BlockGraph) From(id int64) graph.Nodes {
	var keys []int64
	for out := range b.Edges[id] {
		keys = append(keys, out)
	}
	return &NodeSet{
		nodes: b.IDMap,
		ids:   keys,
		cur:   0,
	}
}

// HasEdgeBetween returns a boolean indicating whether an edge exists between the two node identifiers
func (b BlockGraph) HasEdgeBetween(xid, yid int64) bool {
	xe := b.Edges[xid]
	ye := b.Edges[yid]
	return xe[yid] || ye[xid]
}

// Edge returns the edge between the two identifiers (nil if none exists)
func (b BlockGraph) Edge(uid, vid int64) graph.Edge {
	ue := b.Edges[uid]
	if ue != nil && ue[vid] {
		return BEdge{from: b.IDMap[uid], to: b.IDMap[vid]}
	}
	return nil
}

// *************** Nodes implementation **********************

// BNode is a wrapper around a *ssa.BasicBlock that implements the graph.Node interface
type BNode struct {
	Block *ssa.BasicBlock
}

// ID returns the id of the node
func (n BNode) ID() int64 {
	return int64(n.Block.Index)
}

func (n BNode) String() string {
	if n.Block == nil {
		return ""
	}
	return n.Block.String()
}

// NodeSet implements the graph.Nodes interface, an iterator over a set of nodes
type NodeSet struct {
	// nodes is the set of nodes in the iterator
	nodes map[int64]BNode

	// ids is the set of node ids in the iterator
	ids []int64

	// cur is the current index of the iterator. The current node is nodes[ids[cur]]
	cur int
}

// Next moves the current node to the next, and returns true if such a node exists. Otherwise,
// returns false and the current node has not changed.
func (ns *NodeSet) Next() bool {
	if ns.cur < len(ns.ids)-1 {
		ns.cur++
		return true
	}
	return false
}

// Len returns the length of the node set
func (ns *NodeSet) Len() int {
	return len(ns.ids)
}

// Reset resets the id of the current node in the set
func (ns *NodeSet) Reset() {
	ns.cur = 0
}

// Node returns the current node in the set
func (ns *NodeSet) Node() graph.Node {
	return ns.nodes[ns.ids[ns.cur]]
}

// *************** Edge implementation **********************

// BEdge implements the graph.Edge interface
type BEdge struct {
	from BNode
	to   BNode
}

// From returns the origin of the edge
func (e BEdge) From() graph.Node {
	return e.from
}

// To returns the destination of the edge
func (e BEdge) To() graph.Node {
	return e.to
}

// ReversedEdge returns a new value representing the reversed edge
func (e BEdge) ReversedEdge() graph.Edge {
	return BEdge{from: e.to, to: e.from}
}
