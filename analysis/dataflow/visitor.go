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
	"github.com/awslabs/ar-flow/analysis/cfg"
	"github.com/awslabs/ar-flow/analysis/lattice"
)

// Visitor gives the semantics of the operations of a graph to the engine, and the operations on states it needs.
//
// The engine owns the states it passes to the visitor: the visitor can mutate the state it receives in
// ApplyOperation, FlowBranch, ApplyInterproceduralResult and ApplyUnanalyzedCall, but must not keep references to it.
type Visitor[K comparable, V lattice.Value] interface {
	// Domain returns the domain of the values of the states
	Domain() lattice.Domain[V]

	// PredicatedGlobalState returns true when the analysis intersects the states at dominated joins instead of
	// merging them
	PredicatedGlobalState() bool

	EmptyState() *DictionaryAnalysisData[K, V]
	Cloned(s *DictionaryAnalysisData[K, V]) *DictionaryAnalysisData[K, V]
	Equals(a, b *DictionaryAnalysisData[K, V]) bool

	// GetValue returns the value of k in s, unknown if k has no value
	GetValue(s *DictionaryAnalysisData[K, V], k K) V
	// SetValue sets the value of k when v is Known, and does nothing otherwise
	SetValue(s *DictionaryAnalysisData[K, V], k K, v V)
	HasValue(s *DictionaryAnalysisData[K, V], k K) bool
	// Remove is called when k goes out of scope
	Remove(s *DictionaryAnalysisData[K, V], k K)

	// ApplyOperation updates s with the effect of op. For calls, the interprocedural effect is applied afterwards by
	// either ApplyInterproceduralResult or ApplyUnanalyzedCall.
	ApplyOperation(s *DictionaryAnalysisData[K, V], op cfg.Operation) error

	// FlowBranch updates s, the state at the end of from, for the branch br. It returns false if the branch cannot be
	// taken in s.
	FlowBranch(from *cfg.BasicBlock, br *cfg.Branch, s *DictionaryAnalysisData[K, V]) bool

	Merge(a, b *DictionaryAnalysisData[K, V]) *DictionaryAnalysisData[K, V]
	// MergeBackEdge merges the state flowing through a back edge. Analyses that need widening implement it here.
	MergeBackEdge(a, b *DictionaryAnalysisData[K, V]) *DictionaryAnalysisData[K, V]
	Intersect(a, b *DictionaryAnalysisData[K, V]) *DictionaryAnalysisData[K, V]

	// CallSiteState returns the initial state of the callee of a contextual interprocedural analysis of call
	CallSiteState(s *DictionaryAnalysisData[K, V], call cfg.Call) *DictionaryAnalysisData[K, V]
	// ApplyInterproceduralResult installs the result of the analysis of the callee of call into s
	ApplyInterproceduralResult(s *DictionaryAnalysisData[K, V], call cfg.Call, callee *Result[K, V])
	// ApplyUnanalyzedCall updates s for a call whose callee has not been analyzed
	ApplyUnanalyzedCall(s *DictionaryAnalysisData[K, V], call cfg.Call)

	// GlobalValuesMap reduces the states of all the reachable blocks to one state
	GlobalValuesMap(blocks []*BlockResult[K, V]) *DictionaryAnalysisData[K, V]
}

// VisitorFactory returns the visitor for the analysis in the context c. The engine calls it once per context.
type VisitorFactory[K comparable, V lattice.Value] func(c *AnalysisContext[K, V]) Visitor[K, V]

// BaseVisitor implements the state operations of a Visitor with the operations of a domain. Concrete visitors embed
// it and implement the operation semantics.
type BaseVisitor[K comparable, V lattice.Value] struct {
	Dom lattice.Domain[V]

	// Global is the entity accumulating facts about the whole procedure. It is seeded with the bottom value the first
	// time a branch is taken.
	Global K

	// Predicated is returned by PredicatedGlobalState
	Predicated bool
}

// Domain returns the domain of the visitor
func (b *BaseVisitor[K, V]) Domain() lattice.Domain[V] {
	return b.Dom
}

// PredicatedGlobalState returns Predicated
func (b *BaseVisitor[K, V]) PredicatedGlobalState() bool {
	return b.Predicated
}

// EmptyState returns a new state without entities
func (b *BaseVisitor[K, V]) EmptyState() *DictionaryAnalysisData[K, V] {
	return NewDictionaryAnalysisData[K, V]()
}

// Cloned returns a copy of s
func (b *BaseVisitor[K, V]) Cloned(s *DictionaryAnalysisData[K, V]) *DictionaryAnalysisData[K, V] {
	return s.Clone()
}

// Equals returns true if the values of all entities are equal in s1 and s2
func (b *BaseVisitor[K, V]) Equals(s1, s2 *DictionaryAnalysisData[K, V]) bool {
	return EqualAnalysisData(b.Dom, s1, s2)
}

// GetValue returns the value of k in s. Entities without a value are unknown.
func (b *BaseVisitor[K, V]) GetValue(s *DictionaryAnalysisData[K, V], k K) V {
	if v, ok := s.Get(k); ok {
		return v
	}
	return b.Dom.UnknownOrMayBe()
}

// SetValue stores v for k if v is Known. States stay sparse: unknown values are only stored by Invalidate.
func (b *BaseVisitor[K, V]) SetValue(s *DictionaryAnalysisData[K, V], k K, v V) {
	if v.Kind() == lattice.Known {
		s.Set(k, v)
	}
}

// Invalidate stores the unknown value for k
func (b *BaseVisitor[K, V]) Invalidate(s *DictionaryAnalysisData[K, V], k K) {
	s.Set(k, b.Dom.UnknownOrMayBe())
}

// HasValue returns true if k has a value in s
func (b *BaseVisitor[K, V]) HasValue(s *DictionaryAnalysisData[K, V], k K) bool {
	return s.Has(k)
}

// Remove removes k from s
func (b *BaseVisitor[K, V]) Remove(s *DictionaryAnalysisData[K, V], k K) {
	s.Remove(k)
}

// FlowBranch seeds the global entity and lets every branch be taken
func (b *BaseVisitor[K, V]) FlowBranch(_ *cfg.BasicBlock, _ *cfg.Branch, s *DictionaryAnalysisData[K, V]) bool {
	b.SeedGlobal(s)
	return true
}

// SeedGlobal sets the global entity to bottom in s if s is empty
func (b *BaseVisitor[K, V]) SeedGlobal(s *DictionaryAnalysisData[K, V]) {
	if s.Len() == 0 {
		s.Set(b.Global, b.Dom.Bottom())
	}
}

// Merge returns the join of s1 and s2
func (b *BaseVisitor[K, V]) Merge(s1, s2 *DictionaryAnalysisData[K, V]) *DictionaryAnalysisData[K, V] {
	return MergeAnalysisData(b.Dom, s1, s2)
}

// MergeBackEdge returns the join of s1 and s2
func (b *BaseVisitor[K, V]) MergeBackEdge(s1, s2 *DictionaryAnalysisData[K, V]) *DictionaryAnalysisData[K, V] {
	return MergeAnalysisData(b.Dom, s1, s2)
}

// Intersect returns the meet of s1 and s2
func (b *BaseVisitor[K, V]) Intersect(s1, s2 *DictionaryAnalysisData[K, V]) *DictionaryAnalysisData[K, V] {
	return IntersectAnalysisData(b.Dom, s1, s2)
}

// GlobalValuesMap merges the exit states of all blocks
func (b *BaseVisitor[K, V]) GlobalValuesMap(blocks []*BlockResult[K, V]) *DictionaryAnalysisData[K, V] {
	res := NewDictionaryAnalysisData[K, V]()
	for _, br := range blocks {
		res = MergeAnalysisData(b.Dom, res, br.Exit)
	}
	return res
}
