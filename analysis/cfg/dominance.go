// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
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

package cfg

import (
	"github.com/awslabs/ar-flow/internal/graphutil"
	"gonum.org/v1/gonum/graph/flow"
	"gonum.org/v1/gonum/graph/simple"
)

// computeOrder computes the reverse post-order of the blocks reachable from the entry, and collects the retreating
// edges of the depth-first search.
func (g *Graph) computeOrder() {
	n := len(g.Blocks)
	const (
		unvisited = iota
		onStack
		done
	)
	state := make([]int, n)
	post := make([]*BasicBlock, 0, n)
	var retreating []*Branch

	var visit func(b *BasicBlock)
	visit = func(b *BasicBlock) {
		state[b.Index] = onStack
		for _, s := range b.Succs {
			switch state[s.Destination.Index] {
			case unvisited:
				visit(s.Destination)
			case onStack:
				retreating = append(retreating, s)
			}
		}
		state[b.Index] = done
		post = append(post, b)
	}
	visit(g.Entry())

	g.rpo = make([]*BasicBlock, len(post))
	g.rpoIndex = make([]int, n)
	for i := range g.rpoIndex {
		g.rpoIndex[i] = -1
	}
	for i, b := range post {
		j := len(post) - 1 - i
		g.rpo[j] = b
		g.rpoIndex[b.Index] = j
	}
	g.retreating = retreating
}

// computeDominance computes the immediate dominators and post-dominators of all blocks. Blocks that are not
// reachable from the entry have no dominator, and blocks that cannot reach the exit have no post-dominator.
func (g *Graph) computeDominance() {
	n := len(g.Blocks)
	forward := simple.NewDirectedGraph()
	backward := simple.NewDirectedGraph()
	for i := 0; i < n; i++ {
		forward.AddNode(simple.Node(i))
		backward.AddNode(simple.Node(i))
	}
	for _, b := range g.Blocks {
		for _, s := range b.Succs {
			if s.Destination == b {
				// self loops do not change dominance, and simple graphs do not allow them
				continue
			}
			from, to := simple.Node(b.Index), simple.Node(s.Destination.Index)
			forward.SetEdge(forward.NewEdge(from, to))
			backward.SetEdge(backward.NewEdge(to, from))
		}
	}
	g.idom = immediateDominators(flow.Dominators(simple.Node(0), forward), n)
	g.ipdom = immediateDominators(flow.Dominators(simple.Node(g.Exit().Index), backward), n)
}

func immediateDominators(tree flow.DominatorTree, n int) []int {
	idom := make([]int, n)
	for i := range idom {
		if d := tree.DominatorOf(int64(i)); d != nil {
			idom[i] = int(d.ID())
		} else {
			idom[i] = -1
		}
	}
	return idom
}

// computeBackEdges marks the back edges of the graph. An edge is a back edge when its destination dominates its
// source. In irreducible loops, no edge satisfies that condition; the retreating edges of those loops are marked
// instead.
func (g *Graph) computeBackEdges() {
	for _, b := range g.rpo {
		for _, s := range b.Succs {
			if g.Dominates(s.Destination, b) {
				s.backEdge = true
			}
		}
	}

	// the cycles that remain once natural back edges are removed are irreducible loops
	adj := make(graphutil.Adjacency, len(g.Blocks))
	for _, b := range g.rpo {
		for _, s := range b.Succs {
			if !s.backEdge {
				adj[b.Index] = append(adj[b.Index], s.Destination.Index)
			}
		}
	}
	component, sizes := graphutil.ComponentIndex(adj)
	for _, s := range g.retreating {
		src, dst := s.Source.Index, s.Destination.Index
		if !s.backEdge && component[src] == component[dst] && sizes[component[src]] > 1 {
			s.backEdge = true
			g.irreducible = true
		}
	}
	g.retreating = nil
}

// computeDominatedJoins marks the blocks where all the paths from a single branching block meet again: the block has
// at least two predecessors, none of them through a back edge, and it post-dominates its immediate dominator.
func (g *Graph) computeDominatedJoins() {
	g.dominatedJoin = make([]bool, len(g.Blocks))
	for _, b := range g.rpo {
		forward := 0
		hasBackEdge := false
		for _, p := range b.Preds {
			if !g.Reachable(p.Source) {
				continue
			}
			if p.backEdge {
				hasBackEdge = true
			} else {
				forward++
			}
		}
		idom := g.ImmediateDominator(b)
		g.dominatedJoin[b.Index] = !hasBackEdge && forward >= 2 && idom != nil && g.PostDominates(b, idom)
	}
}

// Dominates returns true when every path from the entry to b goes through a. Every block dominates itself.
func (g *Graph) Dominates(a, b *BasicBlock) bool {
	if !g.Reachable(b) {
		return false
	}
	for i := b.Index; i >= 0; i = g.idom[i] {
		if i == a.Index {
			return true
		}
	}
	return false
}

// PostDominates returns true when every path from b to the exit goes through a. Every block post-dominates itself.
func (g *Graph) PostDominates(a, b *BasicBlock) bool {
	for i := b.Index; i >= 0; i = g.ipdom[i] {
		if i == a.Index {
			return true
		}
	}
	return false
}

// ImmediateDominator returns the immediate dominator of b, or nil if b is the entry or is not reachable.
func (g *Graph) ImmediateDominator(b *BasicBlock) *BasicBlock {
	if d := g.idom[b.Index]; d >= 0 {
		return g.Blocks[d]
	}
	return nil
}

// ImmediatePostDominator returns the immediate post-dominator of b, or nil if b is the exit or cannot reach the exit.
func (g *Graph) ImmediatePostDominator(b *BasicBlock) *BasicBlock {
	if d := g.ipdom[b.Index]; d >= 0 {
		return g.Blocks[d]
	}
	return nil
}

// IsDominatedJoin returns true when b joins the paths leaving a single block that dominates it, and no loop re-enters
// b. At such a block, the states flowing from the predecessors can be intersected instead of merged.
func (g *Graph) IsDominatedJoin(b *BasicBlock) bool {
	return g.dominatedJoin[b.Index]
}
