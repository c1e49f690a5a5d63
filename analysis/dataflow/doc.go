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

/*
Package dataflow implements a generic forward dataflow analysis engine over the graphs of the cfg package.

An analysis is defined by a domain of abstract values (see the lattice package) and a [Visitor] that gives the
semantics of the operations of the graphs. The state at a program point is a [DictionaryAnalysisData] mapping tracked
entities to abstract values. To run an analysis, build the context of the graph and call [Run]:

	actx := dataflow.NewAnalysisContext[K, V](graph, cfg, interprocedural, nil, nil)
	result, err := dataflow.Run(ctx, logger, actx, newVisitor)

[Run] processes the blocks of the graph in reverse post-order until no entry state changes. The states flowing into a
block are merged, except at joins dominated by a single branching block where analyses that track predicated state
intersect them. States flowing through back edges are merged with MergeBackEdge, so that analyses can widen there.

Calls whose callee graph is known are analyzed in a forked context, up to the depth given by the
[InterproceduralConfig]. Recursive calls, calls beyond the depth bound and calls rejected by the skip predicate are
not analyzed and the visitor applies their conservative effect. The results of callee analyses are cached for the
duration of one call to [Run].

[Run] checks ctx before processing each block and before each callee analysis; when ctx is done, it returns an error
wrapping [ErrCanceled] and no result.
*/
package dataflow
