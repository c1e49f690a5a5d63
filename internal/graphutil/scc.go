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

package graphutil

// StronglyConnectedComponents computes the strongly connected components of the graph given by the nodes and the
// successors function, with Tarjan's algorithm.
// Components are returned in reverse topological order: a component appears before any component that can reach it.
// Bottom-up summary computations should process them in that order.
func StronglyConnectedComponents[T comparable](nodes []T, successors func(T) []T) [][]T {
	t := &tarjan[T]{
		successors: successors,
		index:      map[T]int{},
		lowlink:    map[T]int{},
		onStack:    map[T]bool{},
	}
	for _, v := range nodes {
		if _, visited := t.index[v]; !visited {
			t.visit(v)
		}
	}
	return t.sccs
}

// Recursive returns the set of nodes that belong to a cycle of the graph: either their component has more than one
// node, or they are their own successor.
func Recursive[T comparable](nodes []T, successors func(T) []T) map[T]bool {
	rec := map[T]bool{}
	for _, scc := range StronglyConnectedComponents(nodes, successors) {
		if len(scc) > 1 {
			for _, v := range scc {
				rec[v] = true
			}
			continue
		}
		v := scc[0]
		for _, w := range successors(v) {
			if w == v {
				rec[v] = true
				break
			}
		}
	}
	return rec
}

type tarjan[T comparable] struct {
	successors func(T) []T
	index      map[T]int
	lowlink    map[T]int
	onStack    map[T]bool
	stack      []T
	next       int
	sccs       [][]T
}

func (t *tarjan[T]) visit(v T) {
	t.index[v] = t.next
	t.lowlink[v] = t.next
	t.next++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.successors(v) {
		if _, visited := t.index[w]; !visited {
			t.visit(w)
			t.lowlink[v] = min(t.lowlink[v], t.lowlink[w])
		} else if t.onStack[w] {
			t.lowlink[v] = min(t.lowlink[v], t.index[w])
		}
	}

	if t.lowlink[v] != t.index[v] {
		return
	}
	// v is the root of a component: pop it from the stack
	var scc []T
	for {
		w := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[w] = false
		scc = append(scc, w)
		if w == v {
			break
		}
	}
	t.sccs = append(t.sccs, scc)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
