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

package dataflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/awslabs/ar-flow/analysis/cfg"
	"github.com/awslabs/ar-flow/analysis/config"
	"github.com/awslabs/ar-flow/analysis/lattice"
)

var (
	// ErrNilCFG is returned when an analysis is started without a graph
	ErrNilCFG = errors.New("nil control-flow graph")

	// ErrInvalidConfig is returned when an analysis is started with a configuration that cannot be used
	ErrInvalidConfig = errors.New("invalid analysis configuration")

	// ErrCanceled is returned when the context of an analysis is done before the fixed point is reached. The error
	// also wraps the error of the context.
	ErrCanceled = errors.New("analysis canceled")
)

// Run computes the fixed point of the forward analysis of actx.CFG with the visitor built by factory, and the
// analyses of the callees permitted by actx.Interprocedural.
//
// Run returns an error and no result if the context is invalid, if ctx is done before the fixed point is reached,
// if a value decreases while actx.Config.AssertMonotonic is set, or if the visitor returns an error.
func Run[K comparable, V lattice.Value](ctx context.Context, logger *config.LogGroup, actx *AnalysisContext[K, V],
	factory VisitorFactory[K, V]) (*Result[K, V], error) {
	if actx == nil || actx.CFG == nil {
		return nil, ErrNilCFG
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: nil visitor factory", ErrInvalidConfig)
	}
	if err := actx.Interprocedural.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = config.NewLogGroup(config.NewDefault())
	}
	return newSession(logger, factory).analyze(ctx, actx)
}

// solver holds the state of the fixed point computation of one graph
type solver[K comparable, V lattice.Value] struct {
	session *session[K, V]
	actx    *AnalysisContext[K, V]
	v       Visitor[K, V]
	dom     lattice.Domain[V]
	g       *cfg.Graph
	logger  *config.LogGroup

	assertMonotonic bool

	// entry and exit are the states at the boundaries of each block, nil until the block is reached
	entry []*DictionaryAnalysisData[K, V]
	exit  []*DictionaryAnalysisData[K, V]

	// incoming holds, for each block, the last state that flowed through each of its incoming branches
	incoming []map[*cfg.Branch]*DictionaryAnalysisData[K, V]

	// pending is indexed by reverse post-order: the worklist always returns the first block in that order
	pending []bool

	// waiting marks the dominated joins whose entry is computed once all predecessors have been processed, and
	// mergeOnly the ones that gave up waiting
	waiting   []bool
	mergeOnly []bool

	result *Result[K, V]
}

func newSolver[K comparable, V lattice.Value](s *session[K, V], actx *AnalysisContext[K, V],
	v Visitor[K, V]) *solver[K, V] {
	n := len(actx.CFG.Blocks)
	sv := &solver[K, V]{
		session:         s,
		actx:            actx,
		v:               v,
		dom:             v.Domain(),
		g:               actx.CFG,
		logger:          s.logger,
		assertMonotonic: actx.Config != nil && actx.Config.AssertMonotonic,
		entry:           make([]*DictionaryAnalysisData[K, V], n),
		exit:            make([]*DictionaryAnalysisData[K, V], n),
		incoming:        make([]map[*cfg.Branch]*DictionaryAnalysisData[K, V], n),
		pending:         make([]bool, len(actx.CFG.ReversePostOrder())),
		waiting:         make([]bool, n),
		mergeOnly:       make([]bool, n),
		result: &Result[K, V]{
			Context:         actx,
			Blocks:          make([]*BlockResult[K, V], n),
			Interprocedural: map[cfg.Call]*Result[K, V]{},
		},
	}
	for i := range sv.incoming {
		sv.incoming[i] = map[*cfg.Branch]*DictionaryAnalysisData[K, V]{}
	}
	return sv
}

func (sv *solver[K, V]) solve(ctx context.Context) (*Result[K, V], error) {
	entry := sv.g.Entry()
	if sv.actx.InitialState != nil {
		sv.entry[entry.Index] = sv.v.Cloned(sv.actx.InitialState)
	} else {
		sv.entry[entry.Index] = sv.v.EmptyState()
	}
	sv.schedule(entry)

	for {
		b := sv.next()
		if b == nil {
			released, err := sv.releaseWaiting()
			if err != nil {
				return nil, err
			}
			if !released {
				break
			}
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCanceled, sv.g.Name, err)
		}
		if err := sv.process(ctx, b); err != nil {
			return nil, err
		}
	}
	return sv.finish(), nil
}

func (sv *solver[K, V]) schedule(b *cfg.BasicBlock) {
	if i := sv.g.Order(b); i >= 0 {
		sv.pending[i] = true
	}
}

func (sv *solver[K, V]) next() *cfg.BasicBlock {
	for i, p := range sv.pending {
		if p {
			sv.pending[i] = false
			return sv.g.ReversePostOrder()[i]
		}
	}
	return nil
}

// process applies the operations of b to its entry state and propagates the resulting state through the branches
// leaving b.
func (sv *solver[K, V]) process(ctx context.Context, b *cfg.BasicBlock) error {
	sv.result.Iterations++
	state := sv.v.Cloned(sv.entry[b.Index])
	for _, op := range b.Operations {
		if err := sv.v.ApplyOperation(state, op); err != nil {
			return err
		}
		if call, ok := op.(cfg.Call); ok {
			if err := sv.interprocedural(ctx, state, call); err != nil {
				return err
			}
		}
	}
	sv.exit[b.Index] = state
	sv.logger.Tracef("%s: processed %s (iteration %d): %s\n", sv.g.Name, b, sv.result.Iterations, state)

	for _, br := range b.Succs {
		out := sv.v.Cloned(state)
		if !sv.v.FlowBranch(b, br, out) {
			sv.logger.Tracef("%s: branch %s is infeasible\n", sv.g.Name, br)
			continue
		}
		sv.incoming[br.Destination.Index][br] = out
		if err := sv.updateEntry(br.Destination); err != nil {
			return err
		}
	}
	return nil
}

// updateEntry recomputes the entry state of b from its incoming states, and schedules b if the state has changed.
func (sv *solver[K, V]) updateEntry(b *cfg.BasicBlock) error {
	joined := sv.join(b)
	if joined == nil {
		return nil
	}
	old := sv.entry[b.Index]
	if old != nil {
		c, err := CompareAnalysisData(sv.dom, old, joined, sv.assertMonotonic)
		if err != nil {
			return fmt.Errorf("%s: entry of %s: %w", sv.g.Name, b, err)
		}
		if c > 0 {
			decreasing := decreasingEntities(sv.dom, old, joined)
			sv.logger.Warnf("%s: entry of %s: non-monotonic update of %v, setting to unknown\n",
				sv.g.Name, b, decreasing)
			for _, k := range decreasing {
				joined.Set(k, sv.dom.UnknownOrMayBe())
			}
			c, _ = CompareAnalysisData(sv.dom, old, joined, false)
		}
		if c == 0 {
			return nil
		}
	}
	sv.entry[b.Index] = joined
	sv.schedule(b)
	return nil
}

// join computes the entry state of b from the states flowing through its incoming branches. Forward branches are
// merged, or intersected when b is a dominated join and the visitor tracks predicated state. States flowing through
// back edges are always merged with MergeBackEdge.
// join returns nil when b must wait for more predecessors before its entry state can be computed.
func (sv *solver[K, V]) join(b *cfg.BasicBlock) *DictionaryAnalysisData[K, V] {
	var forward, back []*DictionaryAnalysisData[K, V]
	reachableForward := 0
	for _, p := range b.Preds {
		if !sv.g.Reachable(p.Source) {
			continue
		}
		s, ok := sv.incoming[b.Index][p]
		if p.IsBackEdge() {
			if ok {
				back = append(back, s)
			}
			continue
		}
		reachableForward++
		if ok {
			forward = append(forward, s)
		}
	}

	intersect := sv.v.PredicatedGlobalState() && sv.g.IsDominatedJoin(b) && !sv.mergeOnly[b.Index]
	if intersect && len(forward) < reachableForward {
		sv.waiting[b.Index] = true
		return nil
	}
	sv.waiting[b.Index] = false

	var acc *DictionaryAnalysisData[K, V]
	for _, s := range forward {
		switch {
		case acc == nil:
			acc = sv.v.Cloned(s)
		case intersect:
			acc = sv.v.Intersect(acc, s)
		default:
			acc = sv.v.Merge(acc, s)
		}
	}
	for _, s := range back {
		if acc == nil {
			acc = sv.v.Cloned(s)
		} else {
			acc = sv.v.MergeBackEdge(acc, s)
		}
	}
	return acc
}

// releaseWaiting is called when the worklist is empty. The dominated joins still waiting have some predecessor
// that will never flow into them; their entry state is computed by merging the states that did flow in.
func (sv *solver[K, V]) releaseWaiting() (bool, error) {
	released := false
	for _, b := range sv.g.ReversePostOrder() {
		if !sv.waiting[b.Index] {
			continue
		}
		sv.waiting[b.Index] = false
		sv.mergeOnly[b.Index] = true
		if len(sv.incoming[b.Index]) == 0 {
			continue
		}
		released = true
		if err := sv.updateEntry(b); err != nil {
			return false, err
		}
	}
	return released, nil
}

func (sv *solver[K, V]) finish() *Result[K, V] {
	var reached []*BlockResult[K, V]
	for _, b := range sv.g.ReversePostOrder() {
		if sv.exit[b.Index] == nil {
			continue
		}
		br := &BlockResult[K, V]{Block: b, Entry: sv.entry[b.Index], Exit: sv.exit[b.Index]}
		sv.result.Blocks[b.Index] = br
		reached = append(reached, br)
	}
	sv.result.ExitState = sv.exit[sv.g.Exit().Index]
	sv.result.GlobalValues = sv.v.GlobalValuesMap(reached)
	return sv.result
}
