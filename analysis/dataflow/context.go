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
	"fmt"
	"strconv"

	"github.com/awslabs/ar-flow/analysis/cfg"
	"github.com/awslabs/ar-flow/analysis/config"
	"github.com/awslabs/ar-flow/analysis/lattice"
	"github.com/cespare/xxhash/v2"
)

// InterproceduralKind determines how calls are analyzed
type InterproceduralKind int

const (
	// NoInterprocedural never analyzes callees: the effect of calls is unknown
	NoInterprocedural InterproceduralKind = iota
	// ContextualInterprocedural analyzes a callee starting from the state at the call site
	ContextualInterprocedural
	// NonContextualInterprocedural analyzes a callee starting from the empty state; the result does not depend on
	// the call site
	NonContextualInterprocedural
)

func (k InterproceduralKind) String() string {
	switch k {
	case NoInterprocedural:
		return config.InterproceduralNone
	case ContextualInterprocedural:
		return config.InterproceduralContextual
	case NonContextualInterprocedural:
		return config.InterproceduralNonContextual
	default:
		return "interprocedural(" + strconv.Itoa(int(k)) + ")"
	}
}

// ParseInterproceduralKind returns the kind named s in a configuration file
func ParseInterproceduralKind(s string) (InterproceduralKind, error) {
	switch s {
	case config.InterproceduralNone:
		return NoInterprocedural, nil
	case config.InterproceduralContextual:
		return ContextualInterprocedural, nil
	case config.InterproceduralNonContextual:
		return NonContextualInterprocedural, nil
	default:
		return NoInterprocedural, fmt.Errorf("%w: unknown interprocedural kind %q", ErrInvalidConfig, s)
	}
}

// InterproceduralConfig bounds the interprocedural analysis
type InterproceduralConfig struct {
	Kind InterproceduralKind

	// MaxCallChain is the maximum number of nested callee analyses started from a top-level analysis
	MaxCallChain int

	// Skip, when not nil, returns true for the calls of the graph caller that must not be analyzed. Their effect is
	// then unknown.
	Skip func(caller *cfg.Graph, call cfg.Call) bool
}

// Validate returns an error wrapping ErrInvalidConfig when c cannot be used by the engine
func (c InterproceduralConfig) Validate() error {
	switch c.Kind {
	case NoInterprocedural, ContextualInterprocedural, NonContextualInterprocedural:
	default:
		return fmt.Errorf("%w: interprocedural kind %d", ErrInvalidConfig, c.Kind)
	}
	if c.Kind != NoInterprocedural && c.MaxCallChain < 0 {
		return fmt.Errorf("%w: negative max call chain %d", ErrInvalidConfig, c.MaxCallChain)
	}
	return nil
}

// InterproceduralConfigFrom returns the interprocedural configuration specified by the options of c
func InterproceduralConfigFrom(c *config.Config) (InterproceduralConfig, error) {
	kind, err := ParseInterproceduralKind(c.Interprocedural)
	if err != nil {
		return InterproceduralConfig{}, err
	}
	ip := InterproceduralConfig{Kind: kind, MaxCallChain: c.MaxDepth}
	return ip, ip.Validate()
}

// AuxiliaryResult is the result of another analysis consumed by visitors, such as points-to or copy information.
// A *Result of this package is an AuxiliaryResult.
type AuxiliaryResult interface {
	// Rescope returns the part of the result that applies to the callee analyzed at the call, or nil.
	Rescope(callee *cfg.Graph, call cfg.Call) AuxiliaryResult
}

// AuxiliaryResults maps names of analyses to their results
type AuxiliaryResults map[string]AuxiliaryResult

// AnalysisContext is the input of one analysis of a graph. Contexts are immutable: the context of a callee is obtained
// with Fork.
type AnalysisContext[K comparable, V lattice.Value] struct {
	// CFG is the graph analyzed
	CFG *cfg.Graph

	// Owner is the procedure that owns CFG. The dynamic type of Owner must be comparable.
	Owner cfg.Symbol

	// Config holds the options of the analysis. May be nil.
	Config *config.Config

	Interprocedural InterproceduralConfig

	// Auxiliary holds the results of other analyses. May be nil.
	Auxiliary AuxiliaryResults

	// Parent is the context of the caller, nil for a top-level analysis
	Parent *AnalysisContext[K, V]

	// CallSite is the call in the Parent that started this analysis
	CallSite cfg.Call

	// InitialState is the state at the entry of the graph. Nil stands for the empty state.
	InitialState *DictionaryAnalysisData[K, V]

	depth int
	hash  uint64
}

// NewAnalysisContext returns the context of a top-level analysis of g starting from the state initial
func NewAnalysisContext[K comparable, V lattice.Value](g *cfg.Graph, c *config.Config, ip InterproceduralConfig,
	aux AuxiliaryResults, initial *DictionaryAnalysisData[K, V]) *AnalysisContext[K, V] {
	ctx := &AnalysisContext[K, V]{
		CFG:             g,
		Config:          c,
		Interprocedural: ip,
		Auxiliary:       aux,
		InitialState:    initial,
	}
	if g != nil {
		ctx.Owner = g.Owner
	}
	ctx.hash = ctx.computeHash()
	return ctx
}

// Fork returns the context of the analysis of callee at the call, starting from the state initial.
// The auxiliary results are re-scoped to the callee.
func (c *AnalysisContext[K, V]) Fork(callee *cfg.Graph, call cfg.Call,
	initial *DictionaryAnalysisData[K, V]) *AnalysisContext[K, V] {
	var aux AuxiliaryResults
	if len(c.Auxiliary) > 0 {
		aux = AuxiliaryResults{}
		for name, r := range c.Auxiliary {
			if rr := r.Rescope(callee, call); rr != nil {
				aux[name] = rr
			}
		}
	}
	child := &AnalysisContext[K, V]{
		CFG:             callee,
		Owner:           callee.Owner,
		Config:          c.Config,
		Interprocedural: c.Interprocedural,
		Auxiliary:       aux,
		Parent:          c,
		CallSite:        call,
		InitialState:    initial,
		depth:           c.depth + 1,
	}
	child.hash = child.computeHash()
	return child
}

// Depth returns the number of callers in the chain of contexts that lead to c
func (c *AnalysisContext[K, V]) Depth() int {
	return c.depth
}

// Hash returns the structural hash of the context: graph, owner, chain of callers and initial state
func (c *AnalysisContext[K, V]) Hash() uint64 {
	return c.hash
}

// CallStack returns the chain of contexts from the top-level context to c
func (c *AnalysisContext[K, V]) CallStack() []*AnalysisContext[K, V] {
	stack := make([]*AnalysisContext[K, V], c.depth+1)
	for cur := c; cur != nil; cur = cur.Parent {
		stack[cur.depth] = cur
	}
	return stack
}

func (c *AnalysisContext[K, V]) computeHash() uint64 {
	h := xxhash.New()
	for cur := c; cur != nil; cur = cur.Parent {
		if cur.CFG != nil {
			_, _ = h.WriteString(cur.CFG.Name)
		}
		_, _ = h.WriteString("/")
	}
	if c.Owner != nil {
		_, _ = h.WriteString(c.Owner.String())
	}
	_, _ = h.WriteString(c.Interprocedural.Kind.String())
	_, _ = h.WriteString(strconv.Itoa(c.Interprocedural.MaxCallChain))
	_, _ = h.WriteString(hashedState(c.InitialState))
	return h.Sum64()
}

// hashedState returns the string of s without its empty entries, which sameState does not distinguish from absent
// entities
func hashedState[K comparable, V lattice.Value](s *DictionaryAnalysisData[K, V]) string {
	if s == nil {
		return "{}"
	}
	nonEmpty := NewDictionaryAnalysisData[K, V]()
	s.Range(func(k K, v V) bool {
		if v.Kind() != lattice.Empty {
			nonEmpty.Set(k, v)
		}
		return true
	})
	return nonEmpty.String()
}

// Equal returns true when c and o analyze the same graph from equal initial states, with the same chain of callers
func (c *AnalysisContext[K, V]) Equal(o *AnalysisContext[K, V], dom lattice.Domain[V]) bool {
	if c == o {
		return true
	}
	if c.hash != o.hash || c.depth != o.depth || c.Owner != o.Owner ||
		c.Interprocedural.Kind != o.Interprocedural.Kind ||
		c.Interprocedural.MaxCallChain != o.Interprocedural.MaxCallChain {
		return false
	}
	for a, b := c, o; a != nil; a, b = a.Parent, b.Parent {
		if a.CFG != b.CFG {
			return false
		}
	}
	return sameState(dom, c.InitialState, o.InitialState)
}

// IsRecursive returns true when c or one of its callers is an analysis of callee starting from the state initial.
// Forking such an analysis would not terminate.
func (c *AnalysisContext[K, V]) IsRecursive(callee *cfg.Graph, initial *DictionaryAnalysisData[K, V],
	dom lattice.Domain[V]) bool {
	for cur := c; cur != nil; cur = cur.Parent {
		if cur.CFG == callee && sameState(dom, cur.InitialState, initial) {
			return true
		}
	}
	return false
}

func sameState[K comparable, V lattice.Value](dom lattice.Domain[V], a, b *DictionaryAnalysisData[K, V]) bool {
	if a == nil {
		a = NewDictionaryAnalysisData[K, V]()
	}
	if b == nil {
		b = NewDictionaryAnalysisData[K, V]()
	}
	return EqualAnalysisData(dom, a, b)
}
