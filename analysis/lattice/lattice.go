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

// Package lattice defines the abstract values manipulated by the dataflow engine.
//
// An [AbstractValue] is either [Empty] (bottom, nothing is known yet), [Known] with a payload, or [Unknown] (top,
// information has been conservatively discarded). Kinds are ordered Empty < Known < Unknown and two Known values are
// either equal or incomparable. A [Domain] gives the algebra over values that the engine needs: bottom, top, join,
// meet and the comparison used as the convergence test.
package lattice

import (
	"errors"
	"fmt"
)

// ErrNonMonotonic is returned when a value moves down the lattice between two iterations of a fixed point
// computation. This is always a defect of the analysis that produced the values.
var ErrNonMonotonic = errors.New("non-monotonic update of abstract value")

// Kind is the position of an abstract value in the lattice, ignoring its payload.
type Kind int

const (
	// Empty is the bottom of the lattice
	Empty Kind = iota
	// Known values hold a payload
	Known
	// Unknown is the top of the lattice
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Known:
		return "known"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is the constraint on the abstract values stored in the states of the engine
type Value interface {
	Kind() Kind
}

// Domain is the set of operations on abstract values of type V the engine depends on.
//
// Merge must be commutative, associative and idempotent, with Bottom as identity and UnknownOrMayBe as absorbing
// element. Intersect is only ever called at join points dominated by a single block, never on back edges.
type Domain[V any] interface {
	// Bottom returns the minimal element
	Bottom() V

	// UnknownOrMayBe returns the maximal element
	UnknownOrMayBe() V

	// Merge returns the join of a and b
	Merge(a, b V) V

	// Intersect returns the meet of a and b
	Intersect(a, b V) V

	// Compare returns 0 if old and new are equal, -1 if new is above old or incomparable with old at the same kind,
	// and 1 if new is below old. When 1 is returned and assertMonotonic is set, the error wraps ErrNonMonotonic.
	Compare(old, new V, assertMonotonic bool) (int, error)
}
