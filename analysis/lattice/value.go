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

package lattice

import "fmt"

// AbstractValue is a lattice element with a payload of type P that is only meaningful when the kind is Known.
// Values are immutable: operations return new values.
type AbstractValue[P any] struct {
	kind    Kind
	payload P
}

// EmptyValue returns the bottom value.
func EmptyValue[P any]() AbstractValue[P] {
	return AbstractValue[P]{kind: Empty}
}

// UnknownValue returns the top value.
func UnknownValue[P any]() AbstractValue[P] {
	return AbstractValue[P]{kind: Unknown}
}

// KnownValue returns a value of kind Known holding p.
func KnownValue[P any](p P) AbstractValue[P] {
	return AbstractValue[P]{kind: Known, payload: p}
}

// Kind returns the kind of v
func (v AbstractValue[P]) Kind() Kind {
	return v.kind
}

// Payload returns the payload of v and whether v is Known. The payload of a value that is not Known is the zero
// value of P.
func (v AbstractValue[P]) Payload() (P, bool) {
	return v.payload, v.kind == Known
}

func (v AbstractValue[P]) String() string {
	if v.kind == Known {
		return fmt.Sprintf("%v", v.payload)
	}
	return v.kind.String()
}

// PayloadDomain is the algebra of the payloads of Known values.
type PayloadDomain[P any] interface {
	// Zero returns the payload that stands for an entity with no information when it is intersected with a Known
	// value.
	Zero() P
	// Equal returns true when a and b are structurally equal
	Equal(a, b P) bool
	// Join returns the least upper bound of a and b
	Join(a, b P) P
	// Meet returns the greatest lower bound of a and b
	Meet(a, b P) P
}

// KindDomain lifts a PayloadDomain to a Domain over AbstractValue[P] by adding Empty and Unknown around the Known
// payloads.
type KindDomain[P any] struct {
	Payloads PayloadDomain[P]
}

// NewKindDomain returns the domain of values with payloads in pd.
func NewKindDomain[P any](pd PayloadDomain[P]) KindDomain[P] {
	return KindDomain[P]{Payloads: pd}
}

// Bottom returns the Empty value
func (d KindDomain[P]) Bottom() AbstractValue[P] {
	return EmptyValue[P]()
}

// UnknownOrMayBe returns the Unknown value
func (d KindDomain[P]) UnknownOrMayBe() AbstractValue[P] {
	return UnknownValue[P]()
}

// Merge joins a and b. Unknown absorbs anything and Empty is the identity.
func (d KindDomain[P]) Merge(a, b AbstractValue[P]) AbstractValue[P] {
	switch {
	case a.kind == Unknown || b.kind == Unknown:
		return UnknownValue[P]()
	case a.kind == Empty:
		return b
	case b.kind == Empty:
		return a
	default:
		return KnownValue(d.Payloads.Join(a.payload, b.payload))
	}
}

// Intersect computes the meet of a and b. An Empty operand stands for an entity that has no value on one side, and
// contributes the zero payload to the meet. Unknown is the identity of the meet.
func (d KindDomain[P]) Intersect(a, b AbstractValue[P]) AbstractValue[P] {
	switch {
	case a.kind == Unknown:
		return b
	case b.kind == Unknown:
		return a
	case a.kind == Empty && b.kind == Empty:
		return a
	}
	pa, pb := a.payload, b.payload
	if a.kind == Empty {
		pa = d.Payloads.Zero()
	}
	if b.kind == Empty {
		pb = d.Payloads.Zero()
	}
	return KnownValue(d.Payloads.Meet(pa, pb))
}

// Compare orders old and new. Two Known values are only compared for equality.
func (d KindDomain[P]) Compare(old, new AbstractValue[P], assertMonotonic bool) (int, error) {
	switch {
	case old.kind == new.kind:
		if old.kind != Known || d.Payloads.Equal(old.payload, new.payload) {
			return 0, nil
		}
		return -1, nil
	case old.kind < new.kind:
		return -1, nil
	default:
		if assertMonotonic {
			return 1, fmt.Errorf("%w: %s -> %s", ErrNonMonotonic, old, new)
		}
		return 1, nil
	}
}

// Equal returns true when a and b have the same kind and, if Known, equal payloads.
func (d KindDomain[P]) Equal(a, b AbstractValue[P]) bool {
	c, _ := d.Compare(a, b, false)
	return c == 0
}
