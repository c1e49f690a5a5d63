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
	"errors"
	"fmt"
)

// ErrMalformedGraph is returned by Build when the edges of the graph violate the shape of a control-flow graph
var ErrMalformedGraph = errors.New("malformed control-flow graph")

// Builder creates a Graph. The entry and exit blocks are created with the builder; all the other blocks must be
// created with NewBlock.
type Builder struct {
	g     *Graph
	exit  *BasicBlock
	owned map[*BasicBlock]bool
	err   error
	built bool
}

// NewBuilder returns a builder for a graph named name owned by the procedure owner
func NewBuilder(name string, owner Symbol) *Builder {
	entry := &BasicBlock{Index: 0, Kind: EntryBlock}
	exit := &BasicBlock{Kind: ExitBlock}
	return &Builder{
		g:     &Graph{Name: name, Owner: owner, Blocks: []*BasicBlock{entry}},
		exit:  exit,
		owned: map[*BasicBlock]bool{entry: true, exit: true},
	}
}

// Entry returns the entry block of the graph being built
func (b *Builder) Entry() *BasicBlock {
	return b.g.Blocks[0]
}

// Exit returns the exit block of the graph being built
func (b *Builder) Exit() *BasicBlock {
	return b.exit
}

// NewBlock adds a new block containing ops to the graph
func (b *Builder) NewBlock(ops ...Operation) *BasicBlock {
	blk := &BasicBlock{Index: len(b.g.Blocks), Kind: RegularBlock, Operations: ops}
	b.g.Blocks = append(b.g.Blocks, blk)
	b.owned[blk] = true
	return blk
}

// Add appends operations to the block blk
func (b *Builder) Add(blk *BasicBlock, ops ...Operation) {
	if !b.check(blk) {
		return
	}
	if blk.Kind == ExitBlock {
		b.fail("cannot add operations to the exit block")
		return
	}
	blk.Operations = append(blk.Operations, ops...)
}

// Jump adds an unconditional branch from -> to
func (b *Builder) Jump(from, to *BasicBlock) {
	b.edge(from, to, Unconditional, nil)
}

// If adds two conditional branches from the block from: one to then, taken when cond holds, and one to els.
func (b *Builder) If(from *BasicBlock, cond Operation, then, els *BasicBlock) {
	b.edge(from, then, WhenTrue, cond)
	b.edge(from, els, WhenFalse, cond)
}

// Return adds an unconditional branch from the block to the exit block
func (b *Builder) Return(from *BasicBlock) {
	b.edge(from, b.exit, Unconditional, nil)
}

func (b *Builder) edge(from, to *BasicBlock, kind BranchKind, cond Operation) {
	if !b.check(from) || !b.check(to) {
		return
	}
	if from.Kind == ExitBlock {
		b.fail("branch out of the exit block")
		return
	}
	if to.Kind == EntryBlock {
		b.fail("branch into the entry block")
		return
	}
	br := &Branch{Source: from, Destination: to, Kind: kind, Condition: cond}
	from.Succs = append(from.Succs, br)
	to.Preds = append(to.Preds, br)
}

func (b *Builder) check(blk *BasicBlock) bool {
	if b.built {
		b.fail("graph already built")
		return false
	}
	if blk == nil || !b.owned[blk] {
		b.fail("block does not belong to this graph")
		return false
	}
	return true
}

func (b *Builder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = fmt.Errorf("%w: %s: %s", ErrMalformedGraph, b.g.Name, fmt.Sprintf(format, args...))
	}
}

// Build returns the graph with its exit block appended and all its structural properties computed. The builder
// cannot be used after Build has been called.
func (b *Builder) Build() (*Graph, error) {
	if b.built {
		return nil, fmt.Errorf("%w: %s: graph already built", ErrMalformedGraph, b.g.Name)
	}
	if b.err != nil {
		return nil, b.err
	}
	b.built = true
	g := b.g
	b.exit.Index = len(g.Blocks)
	g.Blocks = append(g.Blocks, b.exit)
	g.computeOrder()
	g.computeDominance()
	g.computeBackEdges()
	g.computeDominatedJoins()
	return g, nil
}
