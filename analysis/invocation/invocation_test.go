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

package invocation

import (
	"context"
	"io"
	"testing"

	"github.com/awslabs/ar-flow/analysis/cfg"
	"github.com/awslabs/ar-flow/analysis/config"
	"github.com/awslabs/ar-flow/analysis/lattice"
	"github.com/google/go-cmp/cmp"
)

func TestCountTables(t *testing.T) {
	counts := []InvocationCount{ZeroInvocations, OneInvocation, ManyInvocations, UnknownInvocations}
	add := [4][4]InvocationCount{
		{ZeroInvocations, OneInvocation, ManyInvocations, UnknownInvocations},
		{OneInvocation, ManyInvocations, ManyInvocations, UnknownInvocations},
		{ManyInvocations, ManyInvocations, ManyInvocations, UnknownInvocations},
		{UnknownInvocations, UnknownInvocations, UnknownInvocations, UnknownInvocations},
	}
	for i, a := range counts {
		for j, b := range counts {
			if got := a.Add(b); got != add[i][j] {
				t.Errorf("%s + %s: expected %s, got %s", a, b, add[i][j], got)
			}
			if a.Join(b) != b.Join(a) || a.Meet(b) != b.Meet(a) {
				t.Errorf("join and meet of %s and %s should commute", a, b)
			}
			if a.Join(b) < a || a.Meet(b) > a {
				t.Errorf("join or meet of %s and %s is not a bound", a, b)
			}
		}
	}
	if !ManyInvocations.AtLeastMany() || !UnknownInvocations.AtLeastMany() || OneInvocation.AtLeastMany() {
		t.Errorf("unexpected AtLeastMany")
	}
}

func TestDomain(t *testing.T) {
	dom := Domain()
	i1 := &Invoke{Target: Entity{Name: "f"}, Pos: 1}
	i2 := &Invoke{Target: Entity{Name: "f"}, Pos: 2}
	one1 := Known(NewTrackingInvocationSet(OneInvocation, i1))
	one2 := Known(NewTrackingInvocationSet(OneInvocation, i2))
	many := Known(NewTrackingInvocationSet(ManyInvocations, i1, i2))

	merged := dom.Merge(one1, one2)
	set, _ := merged.Payload()
	if set.Count != OneInvocation || len(set.Operations()) != 2 {
		t.Errorf("merge should keep the count and union the operations, got %s", merged)
	}
	if !dom.Equal(dom.Merge(one2, one1), merged) {
		t.Errorf("merge should commute")
	}
	if !dom.Equal(dom.Merge(merged, many), many) {
		t.Errorf("merge with a larger count should give the larger count")
	}

	met := dom.Intersect(one1, lattice.EmptyValue[TrackingInvocationSet]())
	set, _ = met.Payload()
	if met.Kind() != lattice.Known || set.Count != ZeroInvocations || len(set.Operations()) != 0 {
		t.Errorf("intersect with an absent value should give zero invocations, got %s", met)
	}
	met = dom.Intersect(one1, many)
	set, _ = met.Payload()
	if set.Count != OneInvocation || len(set.Operations()) != 2 {
		t.Errorf("unexpected intersect %s", met)
	}

	if c, _ := dom.Compare(one1, one2, false); c != -1 {
		t.Errorf("distinct invocation sets should be incomparable, got %d", c)
	}
	if c, _ := dom.Compare(many, Known(NewTrackingInvocationSet(ManyInvocations, i2, i1)), false); c != 0 {
		t.Errorf("sets with the same operations should be equal, got %d", c)
	}
	if got := many.String(); got != "many[invoke f, invoke f]" {
		t.Errorf("unexpected string %q", got)
	}
}

var (
	f = Entity{Scope: "main", Name: "f"}
	a = Entity{Scope: "main", Name: "a"}
	b = Entity{Scope: "main", Name: "b"}
	p = Entity{Scope: "g", Name: "p"}
)

func quietLogger() *config.LogGroup {
	l := config.NewLogGroup(config.NewDefault())
	l.SetAllOutput(io.Discard)
	return l
}

func mustBuild(t *testing.T, bld *cfg.Builder) *cfg.Graph {
	t.Helper()
	g, err := bld.Build()
	if err != nil {
		t.Fatalf("failed to build graph: %v", err)
	}
	return g
}

func straight(t *testing.T, name string, ops ...cfg.Operation) *cfg.Graph {
	bld := cfg.NewBuilder(name, nil)
	blk := bld.NewBlock(ops...)
	bld.Jump(bld.Entry(), blk)
	bld.Return(blk)
	return mustBuild(t, bld)
}

func analyze(t *testing.T, c *config.Config, g *cfg.Graph) *Result {
	t.Helper()
	res, err := Analyze(context.Background(), quietLogger(), c, g, nil)
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	return res
}

func countOf(t *testing.T, s *State, e Entity) (lattice.Kind, InvocationCount) {
	t.Helper()
	x, ok := s.Get(e)
	if !ok {
		t.Fatalf("%s has no value in %s", e, s)
	}
	set, _ := x.Payload()
	return x.Kind(), set.Count
}

func expectCount(t *testing.T, what string, s *State, e Entity, want InvocationCount) {
	t.Helper()
	kind, count := countOf(t, s, e)
	if kind != lattice.Known || count != want {
		t.Errorf("%s: expected %s to be invoked %s times, got %s %s", what, e, want, kind, count)
	}
}

// ifElse builds: define f; if c { then } else { els }; join
func ifElse(t *testing.T, then, els []cfg.Operation) *cfg.Graph {
	bld := cfg.NewBuilder("main", nil)
	def := bld.NewBlock(&Define{Target: f})
	thenBlock := bld.NewBlock(then...)
	elseBlock := bld.NewBlock(els...)
	join := bld.NewBlock()
	bld.Jump(bld.Entry(), def)
	bld.If(def, &Define{Target: Entity{Scope: "main", Name: "c"}}, thenBlock, elseBlock)
	bld.Jump(thenBlock, join)
	bld.Jump(elseBlock, join)
	bld.Return(join)
	return mustBuild(t, bld)
}

func withPredicated(predicated bool) *config.Config {
	c := config.NewDefault()
	c.PredicatedGlobalState = predicated
	return c
}

func TestBothBranchesInvoke(t *testing.T) {
	g := ifElse(t, []cfg.Operation{&Invoke{Target: f, Pos: 1}}, []cfg.Operation{&Invoke{Target: f, Pos: 2}})
	for _, predicated := range []bool{false, true} {
		res := analyze(t, withPredicated(predicated), g)
		expectCount(t, "exit", res.ExitState, f, OneInvocation)
		expectCount(t, "summary", res.GlobalValues, f, OneInvocation)
		expectCount(t, "summary", res.GlobalValues, Global, OneInvocation)
		if findings := Findings(res); len(findings) != 0 {
			t.Errorf("expected no findings, got %v", findings)
		}
	}
}

func TestOneBranchInvokes(t *testing.T) {
	g := ifElse(t, []cfg.Operation{&Invoke{Target: f, Pos: 1}}, nil)
	res := analyze(t, withPredicated(false), g)
	expectCount(t, "merged exit", res.ExitState, f, OneInvocation)

	res = analyze(t, withPredicated(true), g)
	expectCount(t, "intersected exit", res.ExitState, f, ZeroInvocations)
	expectCount(t, "summary", res.GlobalValues, f, OneInvocation)
}

func TestLoopInvokesMany(t *testing.T) {
	inv := &Invoke{Target: f, Pos: 3}
	bld := cfg.NewBuilder("main", nil)
	def := bld.NewBlock(&Define{Target: f})
	head := bld.NewBlock()
	body := bld.NewBlock(inv)
	after := bld.NewBlock()
	bld.Jump(bld.Entry(), def)
	bld.Jump(def, head)
	bld.If(head, &Define{Target: Entity{Scope: "main", Name: "c"}}, body, after)
	bld.Jump(body, head)
	bld.Return(after)
	g := mustBuild(t, bld)

	res := analyze(t, nil, g)
	expectCount(t, "exit", res.ExitState, f, ManyInvocations)
	if res.Iterations > 3*len(g.Blocks) {
		t.Errorf("too many iterations: %d", res.Iterations)
	}
	want := []Finding{{Entity: f, Count: ManyInvocations, Invocations: []*Invoke{inv}}}
	if diff := cmp.Diff(want, Findings(res)); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoopWithUntouchedValue(t *testing.T) {
	h := Entity{Scope: "main", Name: "h"}
	inv := &Invoke{Target: f, Pos: 3}
	bld := cfg.NewBuilder("main", nil)
	def := bld.NewBlock(&Define{Target: f}, &Define{Target: h})
	head := bld.NewBlock()
	body := bld.NewBlock(inv)
	after := bld.NewBlock()
	bld.Jump(bld.Entry(), def)
	bld.Jump(def, head)
	bld.If(head, &Define{Target: Entity{Scope: "main", Name: "c"}}, body, after)
	bld.Jump(body, head)
	bld.Return(after)
	g := mustBuild(t, bld)

	for i := 0; i < 20; i++ {
		res := analyze(t, nil, g)
		expectCount(t, "exit", res.ExitState, f, ManyInvocations)
		expectCount(t, "exit", res.ExitState, h, ZeroInvocations)
		want := []Finding{{Entity: f, Count: ManyInvocations, Invocations: []*Invoke{inv}}}
		if diff := cmp.Diff(want, Findings(res)); diff != "" {
			t.Fatalf("run %d: findings mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestGlobalSurvivesPassiveCallee(t *testing.T) {
	for _, kind := range []string{config.InterproceduralContextual, config.InterproceduralNonContextual} {
		t.Run(kind, func(t *testing.T) {
			c := config.NewDefault()
			c.Interprocedural = kind
			passive := straight(t, "g", &Param{Target: p})
			call := &Call{Name: "g", Target: passive, Bindings: []Binding{{Arg: a, Param: p}}, Writes: []Entity{a}}

			// operations in the entry block: the global entity is not seeded before the call
			bld := cfg.NewBuilder("main", nil)
			bld.Add(bld.Entry(), &Define{Target: a}, &Define{Target: b}, call, &Invoke{Target: b, Pos: 4})
			bld.Return(bld.Entry())
			res := analyze(t, c, mustBuild(t, bld))
			if res.Interprocedural[call] == nil {
				t.Fatalf("callee should be analyzed")
			}
			expectCount(t, "exit", res.ExitState, b, OneInvocation)
			expectCount(t, "exit", res.ExitState, Global, OneInvocation)
		})
	}
}

func TestUnanalyzedCallWrites(t *testing.T) {
	callee := straight(t, "g", &Param{Target: p}, &Invoke{Target: p})
	for name, target := range map[string]*cfg.Graph{"depth": callee, "unknown callee": nil} {
		t.Run(name, func(t *testing.T) {
			call := &Call{Name: "g", Target: target, Bindings: []Binding{{Arg: a, Param: p}}, Writes: []Entity{a}}
			g := straight(t, "main",
				&Define{Target: a}, &Define{Target: b}, &Invoke{Target: b}, call)
			c := config.NewDefault()
			c.MaxDepth = 0
			res := analyze(t, c, g)
			if kind, _ := countOf(t, res.ExitState, a); kind != lattice.Unknown {
				t.Errorf("a should be unknown after the call, got %s", kind)
			}
			expectCount(t, "exit", res.ExitState, b, OneInvocation)
		})
	}
}

func callerOf(t *testing.T, callee *cfg.Graph) (*cfg.Graph, *Call) {
	call := &Call{Name: "g", Target: callee, Bindings: []Binding{{Arg: f, Param: p}}, Writes: []Entity{f}}
	g := straight(t, "main", &Define{Target: f}, &Invoke{Target: f, Pos: 1}, call)
	return g, call
}

func TestInterproceduralInvocations(t *testing.T) {
	for _, kind := range []string{config.InterproceduralContextual, config.InterproceduralNonContextual} {
		t.Run(kind, func(t *testing.T) {
			c := config.NewDefault()
			c.Interprocedural = kind

			invoking := straight(t, "g", &Param{Target: p}, &Invoke{Target: p, Pos: 2})
			g, call := callerOf(t, invoking)
			res := analyze(t, c, g)
			if res.Interprocedural[call] == nil {
				t.Fatalf("callee should be analyzed")
			}
			expectCount(t, "exit", res.ExitState, f, ManyInvocations)
			findings := Findings(res)
			if len(findings) != 1 || len(findings[0].Invocations) != 2 {
				t.Errorf("expected one finding with two invocations, got %v", findings)
			}
			expectCount(t, "exit", res.ExitState, Global, ManyInvocations)

			passive := straight(t, "g", &Param{Target: p})
			g, _ = callerOf(t, passive)
			res = analyze(t, c, g)
			expectCount(t, "exit", res.ExitState, f, OneInvocation)

			releasing := straight(t, "g", &Param{Target: p}, &Release{Target: p})
			g, _ = callerOf(t, releasing)
			res = analyze(t, c, g)
			if kind, _ := countOf(t, res.ExitState, f); kind != lattice.Unknown {
				t.Errorf("a parameter released by the callee should be unknown after the call, got %s", kind)
			}
		})
	}
}

func TestHavocAndRelease(t *testing.T) {
	bld := cfg.NewBuilder("main", nil)
	first := bld.NewBlock(&Define{Target: a}, &Havoc{Target: a}, &Invoke{Target: a}, &Invoke{Target: a},
		&Define{Target: b}, &Invoke{Target: b}, &Invoke{Target: b})
	second := bld.NewBlock(&Release{Target: b}, &Invoke{Target: f})
	bld.Jump(bld.Entry(), first)
	bld.Jump(first, second)
	bld.Return(second)
	res := analyze(t, nil, mustBuild(t, bld))
	got := Entities(res.ExitState)
	want := map[string]string{"main.a": "unknown", Global.String(): "many[invoke main.a, invoke main.a, invoke main.b, " +
		"invoke main.b, invoke main.f]"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("exit state mismatch (-want +got):\n%s", diff)
	}
	// b is released at the exit but was invoked twice in the procedure
	findings := Findings(res)
	if len(findings) != 1 || findings[0].Entity != b {
		t.Errorf("expected one finding for b, got %v", findings)
	}
}

type unsupported struct{}

func (unsupported) String() string { return "unsupported" }

func TestUnsupportedOperation(t *testing.T) {
	g := straight(t, "main", unsupported{})
	if _, err := Analyze(context.Background(), quietLogger(), nil, g, nil); err == nil {
		t.Errorf("expected an error for an unsupported operation")
	}
}

func TestInvalidConfig(t *testing.T) {
	c := config.NewDefault()
	c.Interprocedural = "sometimes"
	g := straight(t, "main")
	if _, err := Analyze(context.Background(), quietLogger(), c, g, nil); err == nil {
		t.Errorf("expected an error for an invalid configuration")
	}
}
