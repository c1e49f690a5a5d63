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

// Package cfg contains the control-flow graphs consumed by the dataflow engine.
//
// A [Graph] is a list of [BasicBlock] starting with an entry block and ending with an exit block. Blocks are
// connected by [Branch] edges and hold an ordered list of [Operation]. Graphs are created with a [Builder] and are
// immutable once built; the builder computes the dominator and post-dominator trees, the back edges and the join
// blocks that are dominated by a single branching block.
package cfg

import (
	"fmt"
	"strings"
)

// Operation is an opaque element of a basic block. Only the visitors interpret operations.
type Operation interface {
	String() string
}

// Call is implemented by the operations that transfer control to another procedure.
type Call interface {
	Operation
	// Callee returns the graph of the procedure called, or nil if the callee is not known.
	Callee() *Graph
}

// Symbol identifies the procedure that owns a graph
type Symbol interface {
	String() string
}

// BlockKind distinguishes the synthetic entry and exit blocks from the other blocks
type BlockKind int

const (
	// EntryBlock is the unique block without predecessors
	EntryBlock BlockKind = iota
	// ExitBlock is the unique block without successors
	ExitBlock
	// RegularBlock is any other block
	RegularBlock
)

func (k BlockKind) String() string {
	switch k {
	case EntryBlock:
		return "entry"
	case ExitBlock:
		return "exit"
	default:
		return "block"
	}
}

// BranchKind is the kind of condition under which a branch is taken
type BranchKind int

const (
	// Unconditional branches are always taken when the source block terminates
	Unconditional BranchKind = iota
	// WhenTrue branches are taken when the condition of the source block holds
	WhenTrue
	// WhenFalse branches are taken when the condition of the source block does not hold
	WhenFalse
)

func (k BranchKind) String() string {
	switch k {
	case WhenTrue:
		return "true"
	case WhenFalse:
		return "false"
	default:
		return "jump"
	}
}

// Branch is an edge of the control-flow graph
type Branch struct {
	Source      *BasicBlock
	Destination *BasicBlock
	Kind        BranchKind
	// Condition is the operation whose value decides whether a conditional branch is taken. Nil for unconditional
	// branches.
	Condition Operation

	backEdge bool
}

// IsBackEdge returns true when the branch re-enters a loop. Every cycle of the graph contains at least one back edge.
func (b *Branch) IsBackEdge() bool {
	return b.backEdge
}

func (b *Branch) String() string {
	s := fmt.Sprintf("%d -%s-> %d", b.Source.Index, b.Kind, b.Destination.Index)
	if b.backEdge {
		s += " (back)"
	}
	return s
}

// BasicBlock is a sequence of operations with a single entry point
type BasicBlock struct {
	// Index is the position of the block in the Blocks of its graph
	Index int
	Kind  BlockKind
	// Comment is used when printing the block
	Comment    string
	Operations []Operation
	Succs      []*Branch
	Preds      []*Branch
}

func (b *BasicBlock) String() string {
	if b.Comment != "" {
		return fmt.Sprintf("%s %d (%s)", b.Kind, b.Index, b.Comment)
	}
	return fmt.Sprintf("%s %d", b.Kind, b.Index)
}

// Graph is the control-flow graph of a procedure
type Graph struct {
	// Name is a human-readable name of the graph, unique among the graphs of a program
	Name string
	// Owner is the procedure the graph belongs to. May be nil.
	Owner  Symbol
	Blocks []*BasicBlock

	rpo           []*BasicBlock
	rpoIndex      []int
	idom          []int
	ipdom         []int
	dominatedJoin []bool
	irreducible   bool
	retreating    []*Branch
}

// Entry returns the entry block of the graph
func (g *Graph) Entry() *BasicBlock {
	return g.Blocks[0]
}

// Exit returns the exit block of the graph
func (g *Graph) Exit() *BasicBlock {
	return g.Blocks[len(g.Blocks)-1]
}

// ReversePostOrder returns the blocks reachable from the entry in reverse post-order. The slice must not be modified.
func (g *Graph) ReversePostOrder() []*BasicBlock {
	return g.rpo
}

// Order returns the position of b in the reverse post-order, or -1 if b is not reachable from the entry.
func (g *Graph) Order(b *BasicBlock) int {
	return g.rpoIndex[b.Index]
}

// Reachable returns true when b is reachable from the entry block
func (g *Graph) Reachable(b *BasicBlock) bool {
	return g.rpoIndex[b.Index] >= 0
}

// Irreducible returns true if some loop of the graph has more than one entry
func (g *Graph) Irreducible() bool {
	return g.irreducible
}

func (g *Graph) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "graph %s\n", g.Name)
	for _, b := range g.Blocks {
		fmt.Fprintf(&sb, "  %s:\n", b)
		for _, op := range b.Operations {
			fmt.Fprintf(&sb, "    %s\n", op)
		}
		for _, s := range b.Succs {
			fmt.Fprintf(&sb, "    %s\n", s)
		}
	}
	return sb.String()
}
