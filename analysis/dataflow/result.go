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

// BlockResult holds the states at the boundaries of a block once the analysis has converged
type BlockResult[K comparable, V lattice.Value] struct {
	Block *cfg.BasicBlock
	Entry *DictionaryAnalysisData[K, V]
	Exit  *DictionaryAnalysisData[K, V]
}

// Result is the result of the analysis of one graph. Results are read-only.
type Result[K comparable, V lattice.Value] struct {
	// Context is the context of the analysis
	Context *AnalysisContext[K, V]

	// Blocks is indexed by the block indexes of the graph. Blocks that the analysis never reached have a nil result.
	Blocks []*BlockResult[K, V]

	// GlobalValues summarizes the states of all the blocks
	GlobalValues *DictionaryAnalysisData[K, V]

	// ExitState is the state at the end of the exit block, nil if the exit is not reachable
	ExitState *DictionaryAnalysisData[K, V]

	// Interprocedural maps the calls analyzed interprocedurally to the result of the analysis of their callee
	Interprocedural map[cfg.Call]*Result[K, V]

	// Iterations is the number of blocks processed before reaching the fixed point
	Iterations int

	// Forks is the number of callee analyses started from this analysis, including the ones found in the cache
	Forks int
}

// Block returns the result for the block b, or nil if b was not reached
func (r *Result[K, V]) Block(b *cfg.BasicBlock) *BlockResult[K, V] {
	if b.Index < 0 || b.Index >= len(r.Blocks) {
		return nil
	}
	return r.Blocks[b.Index]
}

// Unreachable returns the blocks of the graph the analysis did not reach, either because they are not connected to
// the entry or because all the branches leading to them were infeasible.
func (r *Result[K, V]) Unreachable() []*cfg.BasicBlock {
	var res []*cfg.BasicBlock
	for _, b := range r.Context.CFG.Blocks {
		if r.Blocks[b.Index] == nil {
			res = append(res, b)
		}
	}
	return res
}

// Rescope returns the result of the analysis of the callee at the call, so that a result can be used as an
// auxiliary result by the analyses of callees.
func (r *Result[K, V]) Rescope(callee *cfg.Graph, call cfg.Call) AuxiliaryResult {
	if sub, ok := r.Interprocedural[call]; ok && sub.Context.CFG == callee {
		return sub
	}
	return nil
}
