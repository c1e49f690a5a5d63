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

import "github.com/yourbasic/graph"

// Adjacency is a directed graph over the nodes 0..len-1 where the successors of the node i are listed in the i-th
// slice. It implements the graph.Iterator interface so that the algorithms of the yourbasic graph library can be used
// on it.
type Adjacency [][]int

// Order implements the graph.Iterator interface for the Adjacency
func (a Adjacency) Order() int {
	return len(a)
}

// Visit implements the graph.Iterator interface for the Adjacency
func (a Adjacency) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if v < 0 || v >= len(a) {
		return false
	}
	for _, w := range a[v] {
		if do(w, 1) {
			return true
		}
	}
	return false
}

// ComponentIndex returns, for each node of the graph, the index of its strongly connected component, and the size of
// each component.
func ComponentIndex(a Adjacency) (index []int, sizes []int) {
	index = make([]int, len(a))
	components := graph.StrongComponents(a)
	sizes = make([]int, len(components))
	for i, component := range components {
		sizes[i] = len(component)
		for _, v := range component {
			index[v] = i
		}
	}
	return index, sizes
}
