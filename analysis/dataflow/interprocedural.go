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
	"fmt"

	"github.com/awslabs/ar-flow/analysis/cfg"
)

// interprocedural analyzes the callee of call if the configuration permits it, and applies its result to state.
// When the callee is not analyzed, the visitor applies the conservative effect of the call instead.
func (sv *solver[K, V]) interprocedural(ctx context.Context, state *DictionaryAnalysisData[K, V], call cfg.Call) error {
	callee := call.Callee()
	reason := sv.declineReason(call, callee)
	if reason == "" {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrCanceled, sv.g.Name, err)
		}
		var initial *DictionaryAnalysisData[K, V]
		if sv.actx.Interprocedural.Kind == ContextualInterprocedural {
			initial = sv.v.CallSiteState(state, call)
		} else {
			initial = sv.v.EmptyState()
		}
		if sv.actx.IsRecursive(callee, initial, sv.dom) {
			reason = "recursive call"
		} else {
			child := sv.actx.Fork(callee, call, initial)
			sv.logger.Debugf("%s: analyzing %s at depth %d\n", sv.g.Name, callee.Name, child.Depth())
			res, err := sv.session.analyze(ctx, child)
			if err != nil {
				return err
			}
			sv.result.Forks++
			sv.result.Interprocedural[call] = res
			sv.v.ApplyInterproceduralResult(state, call, res)
			return nil
		}
	}
	sv.logger.Debugf("%s: not analyzing %s: %s\n", sv.g.Name, call, reason)
	sv.v.ApplyUnanalyzedCall(state, call)
	return nil
}

// declineReason returns why the callee of call must not be analyzed, or the empty string if it can be.
func (sv *solver[K, V]) declineReason(call cfg.Call, callee *cfg.Graph) string {
	ip := sv.actx.Interprocedural
	switch {
	case ip.Kind == NoInterprocedural:
		return "interprocedural analysis disabled"
	case callee == nil:
		return "unknown callee"
	case sv.actx.Depth() >= ip.MaxCallChain:
		return fmt.Sprintf("call chain longer than %d", ip.MaxCallChain)
	case ip.Skip != nil && ip.Skip(sv.g, call):
		return "skipped"
	default:
		return ""
	}
}
