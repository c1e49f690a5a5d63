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
	"testing"
)

type op string

func (o op) String() string { return string(o) }

// diamond builds entry -> cond -> (then | else) -> join -> exit
func diamond(t *testing.T) (*Graph, map[string]*BasicBlock) {
	b := NewBuilder("diamond", nil)
	cond := b.NewBlock(op("c"))
	then := b.NewBlock(op("t"))
	els := b.NewBlock(op("e"))
	join := b.NewBlock(op("j"))
	b.Jump(b.Entry(), cond)
	b.If(cond, op("c"), then, els)
	b.Jump(then, join)
	b.Jump(els, join)
	b.Return(join)
	g, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build graph: %v", err)
	}
	return g, map[string]*BasicBlock{"cond": cond, "then": then, "else": els, "join": join}
}

func TestDiamond(t *testing.T) {
	g, blocks := diamond(t)
	if g.Entry().Kind != EntryBlock || g.Exit().Kind != ExitBlock {
		t.Fatalf("entry and exit should be the first and last blocks")
	}
	if g.Exit().Index != len(g.Blocks)-1 {
		t.Errorf("exit index should be %d, got %d", len(g.Blocks)-1, g.Exit().Index)
	}
	if !g.Dominates(blocks["cond"], blocks["join"]) {
		t.Errorf("cond should dominate join")
	}
	if g.Dominates(blocks["then"], blocks["join"]) {
		t.Errorf("then should not dominate join")
	}
	if !g.PostDominates(blocks["join"], blocks["cond"]) {
		t.Errorf("join should post-dominate cond")
	}
	if d := g.ImmediateDominator(blocks["join"]); d != blocks["cond"] {
		t.Errorf("immediate dominator of join should be cond, got %v", d)
	}
	if !g.IsDominatedJoin(blocks["join"]) {
		t.Errorf("join should be a dominated join")
	}
	if g.IsDominatedJoin(blocks["then"]) {
		t.Errorf("then has one predecessor and should not be a dominated join")
	}
	for _, b := range g.Blocks {
		for _, s := range b.Succs {
			if s.IsBackEdge() {
				t.Errorf("unexpected back edge %s", s)
			}
		}
	}
	if g.Irreducible() {
		t.Errorf("diamond is reducible")
	}
}

func TestReversePostOrder(t *testing.T) {
	g, blocks := diamond(t)
	rpo := g.ReversePostOrder()
	if len(rpo) != len(g.Blocks) {
		t.Fatalf("all blocks are reachable, expected %d blocks in order, got %d", len(g.Blocks), len(rpo))
	}
	if rpo[0] != g.Entry() || rpo[len(rpo)-1] != g.Exit() {
		t.Errorf("order should start at the entry and end at the exit")
	}
	for _, name := range []string{"then", "else"} {
		if g.Order(blocks[name]) <= g.Order(blocks["cond"]) || g.Order(blocks[name]) >= g.Order(blocks["join"]) {
			t.Errorf("%s should be ordered between cond and join", name)
		}
	}
}

func TestLoop(t *testing.T) {
	b := NewBuilder("loop", nil)
	head := b.NewBlock(op("h"))
	body := b.NewBlock(op("b"))
	after := b.NewBlock(op("a"))
	b.Jump(b.Entry(), head)
	b.If(head, op("h"), body, after)
	b.Jump(body, head)
	b.Return(after)
	g, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build graph: %v", err)
	}
	back := 0
	for _, p := range head.Preds {
		if p.IsBackEdge() {
			back++
			if p.Source != body {
				t.Errorf("back edge should come from the body, got %s", p)
			}
		}
	}
	if back != 1 {
		t.Errorf("expected one back edge into the loop head, got %d", back)
	}
	if g.IsDominatedJoin(head) {
		t.Errorf("loop head should not be a dominated join")
	}
}

func TestSelfLoop(t *testing.T) {
	b := NewBuilder("self", nil)
	spin := b.NewBlock(op("s"))
	b.Jump(b.Entry(), spin)
	b.If(spin, op("s"), spin, b.Exit())
	g, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build graph: %v", err)
	}
	if !spin.Succs[0].IsBackEdge() {
		t.Errorf("self loop should be a back edge")
	}
	if !g.Dominates(spin, g.Exit()) {
		t.Errorf("spin should dominate the exit")
	}
}

func TestIrreducible(t *testing.T) {
	b := NewBuilder("irreducible", nil)
	split := b.NewBlock(op("s"))
	left := b.NewBlock(op("l"))
	right := b.NewBlock(op("r"))
	b.Jump(b.Entry(), split)
	b.If(split, op("s"), left, right)
	b.Jump(left, right)
	b.If(right, op("r"), left, b.Exit())
	g, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build graph: %v", err)
	}
	if !g.Irreducible() {
		t.Fatalf("graph should be irreducible")
	}
	// the cycle left <-> right must be broken by a back edge
	cycleBroken := false
	for _, s := range append(left.Succs, right.Succs...) {
		if s.IsBackEdge() {
			cycleBroken = true
		}
	}
	if !cycleBroken {
		t.Errorf("expected a back edge between left and right")
	}
}

func TestUnreachable(t *testing.T) {
	b := NewBuilder("unreachable", nil)
	live := b.NewBlock(op("l"))
	dead := b.NewBlock(op("d"))
	b.Jump(b.Entry(), live)
	b.Return(live)
	b.Jump(dead, live)
	g, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build graph: %v", err)
	}
	if g.Reachable(dead) || g.Order(dead) != -1 {
		t.Errorf("dead block should not be reachable")
	}
	if g.ImmediateDominator(dead) != nil {
		t.Errorf("dead block should have no dominator")
	}
	if g.IsDominatedJoin(live) {
		t.Errorf("live has a single reachable predecessor and should not be a dominated join")
	}
	if len(g.ReversePostOrder()) != len(g.Blocks)-1 {
		t.Errorf("expected all but one block in the order")
	}
}

func TestMalformed(t *testing.T) {
	tests := map[string]func(b *Builder){
		"into entry": func(b *Builder) {
			blk := b.NewBlock()
			b.Jump(blk, b.Entry())
		},
		"out of exit": func(b *Builder) {
			b.Jump(b.Exit(), b.NewBlock())
		},
		"foreign block": func(b *Builder) {
			other := NewBuilder("other", nil)
			b.Jump(b.Entry(), other.NewBlock())
		},
		"ops in exit": func(b *Builder) {
			b.Add(b.Exit(), op("x"))
		},
	}
	for name, mk := range tests {
		t.Run(name, func(t *testing.T) {
			b := NewBuilder(name, nil)
			mk(b)
			if _, err := b.Build(); !errors.Is(err, ErrMalformedGraph) {
				t.Errorf("expected ErrMalformedGraph, got %v", err)
			}
		})
	}
}

func TestBuildTwice(t *testing.T) {
	b := NewBuilder("twice", nil)
	b.Return(b.Entry())
	if _, err := b.Build(); err != nil {
		t.Fatalf("first build should succeed: %v", err)
	}
	if _, err := b.Build(); !errors.Is(err, ErrMalformedGraph) {
		t.Errorf("second build should fail, got %v", err)
	}
}
