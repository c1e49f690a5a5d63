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
	"fmt"

	"github.com/awslabs/ar-flow/analysis/cfg"
	"github.com/awslabs/ar-flow/analysis/dataflow"
	"github.com/awslabs/ar-flow/analysis/lattice"
)

// State is the state of the invocation analysis at a program point
type State = dataflow.DictionaryAnalysisData[Entity, Value]

// Visitor gives the invocation semantics to the operations of Define, Param, Invoke, Havoc, Release and Call.
type Visitor struct {
	*dataflow.BaseVisitor[Entity, Value]
	kind dataflow.InterproceduralKind
}

// NewVisitor returns the visitor of the analysis in the context c
func NewVisitor(c *dataflow.AnalysisContext[Entity, Value]) dataflow.Visitor[Entity, Value] {
	return &Visitor{
		BaseVisitor: &dataflow.BaseVisitor[Entity, Value]{
			Dom:        Domain(),
			Global:     Global,
			Predicated: c.Config != nil && c.Config.PredicatedGlobalState,
		},
		kind: c.Interprocedural.Kind,
	}
}

// ApplyOperation updates s with the effect of op
func (v *Visitor) ApplyOperation(s *State, op cfg.Operation) error {
	switch op := op.(type) {
	case *Define:
		v.SetValue(s, op.Target, Known(NewTrackingInvocationSet(ZeroInvocations)))
	case *Param:
		if !v.HasValue(s, op.Target) {
			v.SetValue(s, op.Target, Known(NewTrackingInvocationSet(ZeroInvocations)))
		}
	case *Invoke:
		if v.HasValue(s, op.Target) {
			v.invoke(s, op.Target, op)
		}
		v.invoke(s, Global, op)
	case *Havoc:
		v.Invalidate(s, op.Target)
	case *Release:
		v.Remove(s, op.Target)
	case *Call:
	default:
		return fmt.Errorf("invocation analysis: unsupported operation %q", op)
	}
	return nil
}

// invoke records one invocation of e by op. Unknown values stay unknown.
func (v *Visitor) invoke(s *State, e Entity, op *Invoke) {
	if set, ok := v.tracked(s, e); ok {
		v.SetValue(s, e, Known(set.Invoked(op)))
	}
}

// tracked returns the invocation set of e in s. Entities without a value or with the empty value have not been
// invoked; the second result is false for unknown values.
func (v *Visitor) tracked(s *State, e Entity) (TrackingInvocationSet, bool) {
	x, ok := s.Get(e)
	if !ok {
		return NewTrackingInvocationSet(ZeroInvocations), true
	}
	switch x.Kind() {
	case lattice.Empty:
		return NewTrackingInvocationSet(ZeroInvocations), true
	case lattice.Known:
		set, _ := x.Payload()
		return set, true
	default:
		return TrackingInvocationSet{}, false
	}
}

// CallSiteState returns the values of the arguments bound to the parameters of the callee, and the global entity
func (v *Visitor) CallSiteState(s *State, call cfg.Call) *State {
	res := v.EmptyState()
	if x, ok := s.Get(Global); ok {
		res.Set(Global, x)
	}
	c, ok := call.(*Call)
	if !ok {
		return res
	}
	for _, b := range c.Bindings {
		if x, ok := s.Get(b.Arg); ok {
			res.Set(b.Param, x)
		}
	}
	return res
}

// ApplyInterproceduralResult copies the values of the parameters at the exit of the callee back to the arguments.
// When the callee was analyzed from the empty state, its invocations are added to the ones of the caller.
func (v *Visitor) ApplyInterproceduralResult(s *State, call cfg.Call, callee *dataflow.Result[Entity, Value]) {
	c, ok := call.(*Call)
	if !ok || callee.ExitState == nil {
		v.ApplyUnanalyzedCall(s, call)
		return
	}
	for _, b := range c.Bindings {
		v.install(s, b.Arg, callee.ExitState, b.Param)
	}
	if callee.ExitState.Has(Global) {
		v.install(s, Global, callee.ExitState, Global)
	}
}

func (v *Visitor) install(s *State, arg Entity, exit *State, param Entity) {
	x, ok := exit.Get(param)
	if !ok || x.Kind() == lattice.Unknown {
		v.Invalidate(s, arg)
		return
	}
	if v.kind == dataflow.ContextualInterprocedural {
		s.Set(arg, x)
		return
	}
	before, tracked := v.tracked(s, arg)
	if !tracked {
		return
	}
	if x.Kind() == lattice.Empty {
		x = Known(NewTrackingInvocationSet(ZeroInvocations))
	}
	after, _ := x.Payload()
	s.Set(arg, Known(before.Then(after)))
}

// ApplyUnanalyzedCall makes the invocations of the entities written by the call unknown
func (v *Visitor) ApplyUnanalyzedCall(s *State, call cfg.Call) {
	c, ok := call.(*Call)
	if !ok {
		return
	}
	for _, e := range c.Writes {
		v.Invalidate(s, e)
	}
}
