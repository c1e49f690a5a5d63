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
	"strings"

	"github.com/awslabs/ar-flow/analysis/lattice"
	"github.com/awslabs/ar-flow/internal/funcutil"
)

// TrackingInvocationSet records how many times a value may have been invoked, and the operations that invoked it.
// A set is never modified once built: the operations return new sets.
type TrackingInvocationSet struct {
	ops   map[*Invoke]bool
	Count InvocationCount
}

// NewTrackingInvocationSet returns the set of a value invoked count times by the operations ops
func NewTrackingInvocationSet(count InvocationCount, ops ...*Invoke) TrackingInvocationSet {
	s := TrackingInvocationSet{Count: count}
	if len(ops) > 0 {
		s.ops = make(map[*Invoke]bool, len(ops))
		for _, op := range ops {
			s.ops[op] = true
		}
	}
	return s
}

// Operations returns the invocations recorded in s, sorted by position
func (s TrackingInvocationSet) Operations() []*Invoke {
	return funcutil.SetToSortedSlice(s.ops, func(a, b *Invoke) bool {
		if a.Pos != b.Pos {
			return a.Pos < b.Pos
		}
		return a.Target.String() < b.Target.String()
	})
}

// Invoked returns the set after one more invocation by op
func (s TrackingInvocationSet) Invoked(op *Invoke) TrackingInvocationSet {
	return TrackingInvocationSet{
		ops:   funcutil.Union(s.ops, map[*Invoke]bool{op: true}),
		Count: s.Count.Add(OneInvocation),
	}
}

// Then returns the set of a value invoked as recorded by s, then as recorded by o
func (s TrackingInvocationSet) Then(o TrackingInvocationSet) TrackingInvocationSet {
	return TrackingInvocationSet{ops: funcutil.Union(s.ops, o.ops), Count: s.Count.Add(o.Count)}
}

func (s TrackingInvocationSet) String() string {
	ops := s.Operations()
	if len(ops) == 0 {
		return s.Count.String()
	}
	b := strings.Builder{}
	b.WriteString(s.Count.String())
	b.WriteString("[")
	for i, op := range ops {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(op.String())
	}
	b.WriteString("]")
	return b.String()
}

// Value is the abstract value of a tracked entity
type Value = lattice.AbstractValue[TrackingInvocationSet]

// Known returns the Known value holding s
func Known(s TrackingInvocationSet) Value {
	return lattice.KnownValue(s)
}

// Domain returns the domain of the values of the invocation analysis
func Domain() lattice.KindDomain[TrackingInvocationSet] {
	return lattice.NewKindDomain[TrackingInvocationSet](invocationSets{})
}

// invocationSets is the payload algebra of TrackingInvocationSet.
// The meet takes the smallest count; the operations of both sides are kept as long as some invocation remains, so
// that reports can point to every invocation that contributed.
type invocationSets struct{}

func (invocationSets) Zero() TrackingInvocationSet {
	return TrackingInvocationSet{Count: ZeroInvocations}
}

func (invocationSets) Equal(a, b TrackingInvocationSet) bool {
	return a.Count == b.Count && funcutil.SetEqual(a.ops, b.ops)
}

func (invocationSets) Join(a, b TrackingInvocationSet) TrackingInvocationSet {
	return TrackingInvocationSet{ops: funcutil.Union(a.ops, b.ops), Count: a.Count.Join(b.Count)}
}

func (invocationSets) Meet(a, b TrackingInvocationSet) TrackingInvocationSet {
	count := a.Count.Meet(b.Count)
	if count == ZeroInvocations {
		return TrackingInvocationSet{Count: count}
	}
	return TrackingInvocationSet{ops: funcutil.Union(a.ops, b.ops), Count: count}
}
