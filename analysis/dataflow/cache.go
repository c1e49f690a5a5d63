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

	"github.com/awslabs/ar-flow/analysis/config"
	"github.com/awslabs/ar-flow/analysis/lattice"
)

// session holds the state shared by all the analyses started from one top-level analysis: the cache of results
// indexed by context. A session is never shared between top-level analyses.
type session[K comparable, V lattice.Value] struct {
	logger  *config.LogGroup
	factory VisitorFactory[K, V]
	cache   map[uint64][]*Result[K, V]
	hits    int
}

func newSession[K comparable, V lattice.Value](logger *config.LogGroup, factory VisitorFactory[K, V]) *session[K, V] {
	return &session[K, V]{
		logger:  logger,
		factory: factory,
		cache:   map[uint64][]*Result[K, V]{},
	}
}

// analyze returns the result of the analysis in the context actx, from the cache if an equal context has already
// been analyzed.
func (s *session[K, V]) analyze(ctx context.Context, actx *AnalysisContext[K, V]) (*Result[K, V], error) {
	v := s.factory(actx)
	if r := s.lookup(actx, v.Domain()); r != nil {
		s.hits++
		s.logger.Debugf("%s: reusing result at depth %d\n", actx.CFG.Name, actx.Depth())
		return r, nil
	}
	r, err := newSolver(s, actx, v).solve(ctx)
	if err != nil {
		return nil, err
	}
	s.cache[actx.Hash()] = append(s.cache[actx.Hash()], r)
	return r, nil
}

func (s *session[K, V]) lookup(actx *AnalysisContext[K, V], dom lattice.Domain[V]) *Result[K, V] {
	for _, r := range s.cache[actx.Hash()] {
		if r.Context.Equal(actx, dom) {
			return r
		}
	}
	return nil
}
