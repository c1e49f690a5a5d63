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
	"strings"

	"github.com/awslabs/ar-flow/analysis/lattice"
	"golang.org/x/exp/slices"
)

// DictionaryAnalysisData is the state of the analysis at a program point: a map from tracked entities to abstract
// values. Entities that are not in the map have not been assigned a value yet.
type DictionaryAnalysisData[K comparable, V lattice.Value] struct {
	values map[K]V
}

// NewDictionaryAnalysisData returns an empty state
func NewDictionaryAnalysisData[K comparable, V lattice.Value]() *DictionaryAnalysisData[K, V] {
	return &DictionaryAnalysisData[K, V]{values: map[K]V{}}
}

// Get returns the value of the entity k and true, or false if k has no value in d
func (d *DictionaryAnalysisData[K, V]) Get(k K) (V, bool) {
	v, ok := d.values[k]
	return v, ok
}

// Set sets the value of k to v, whatever its kind
func (d *DictionaryAnalysisData[K, V]) Set(k K, v V) {
	d.values[k] = v
}

// Has returns true when k has a value in d
func (d *DictionaryAnalysisData[K, V]) Has(k K) bool {
	_, ok := d.values[k]
	return ok
}

// Remove removes the entity k from the state
func (d *DictionaryAnalysisData[K, V]) Remove(k K) {
	delete(d.values, k)
}

// Len returns the number of entities with a value
func (d *DictionaryAnalysisData[K, V]) Len() int {
	return len(d.values)
}

// Range calls f on every entity and its value, in no particular order, until f returns false.
func (d *DictionaryAnalysisData[K, V]) Range(f func(K, V) bool) {
	for k, v := range d.values {
		if !f(k, v) {
			return
		}
	}
}

// Clone returns a copy of d. Values are immutable and shared.
func (d *DictionaryAnalysisData[K, V]) Clone() *DictionaryAnalysisData[K, V] {
	values := make(map[K]V, len(d.values))
	for k, v := range d.values {
		values[k] = v
	}
	return &DictionaryAnalysisData[K, V]{values: values}
}

// String returns the entries of the state sorted by the string representation of the entities
func (d *DictionaryAnalysisData[K, V]) String() string {
	entries := make([]string, 0, len(d.values))
	for k, v := range d.values {
		entries = append(entries, fmt.Sprintf("%v: %v", k, v))
	}
	slices.Sort(entries)
	return "{" + strings.Join(entries, ", ") + "}"
}

// valueOrBottom returns the value of k in d, or the bottom of the domain if k has no value
func valueOrBottom[K comparable, V lattice.Value](dom lattice.Domain[V], d *DictionaryAnalysisData[K, V], k K) V {
	if v, ok := d.values[k]; ok {
		return v
	}
	return dom.Bottom()
}

// MergeAnalysisData returns the join of a and b. An entity with a value in only one of the states keeps that value.
func MergeAnalysisData[K comparable, V lattice.Value](dom lattice.Domain[V],
	a, b *DictionaryAnalysisData[K, V]) *DictionaryAnalysisData[K, V] {
	res := a.Clone()
	for k, vb := range b.values {
		if va, ok := res.values[k]; ok {
			res.values[k] = dom.Merge(va, vb)
		} else {
			res.values[k] = vb
		}
	}
	return res
}

// IntersectAnalysisData returns the meet of a and b. Every entity present in either state is in the result; on the
// side where it is absent, it contributes the bottom value to the meet.
func IntersectAnalysisData[K comparable, V lattice.Value](dom lattice.Domain[V],
	a, b *DictionaryAnalysisData[K, V]) *DictionaryAnalysisData[K, V] {
	res := NewDictionaryAnalysisData[K, V]()
	for k, va := range a.values {
		res.values[k] = dom.Intersect(va, valueOrBottom(dom, b, k))
	}
	for k, vb := range b.values {
		if _, done := res.values[k]; !done {
			res.values[k] = dom.Intersect(dom.Bottom(), vb)
		}
	}
	return res
}

// CompareAnalysisData compares two successive states of the same program point. It returns 0 if all entities have
// equal values, 1 if some entity moved down the lattice, and -1 otherwise. Entities absent from a state are compared
// as bottom values. When assertMonotonic is set, a decreasing entity makes the function return an error wrapping
// lattice.ErrNonMonotonic.
func CompareAnalysisData[K comparable, V lattice.Value](dom lattice.Domain[V],
	old, new *DictionaryAnalysisData[K, V], assertMonotonic bool) (int, error) {
	res := 0
	visit := func(k K) error {
		c, err := dom.Compare(valueOrBottom(dom, old, k), valueOrBottom(dom, new, k), assertMonotonic)
		if err != nil {
			return fmt.Errorf("entity %v: %w", k, err)
		}
		if c > 0 {
			res = 1
		} else if c < 0 && res == 0 {
			res = -1
		}
		return nil
	}
	for k := range old.values {
		if err := visit(k); err != nil {
			return 1, err
		}
	}
	for k := range new.values {
		if _, seen := old.values[k]; seen {
			continue
		}
		if err := visit(k); err != nil {
			return 1, err
		}
	}
	return res, nil
}

// EqualAnalysisData returns true when both states hold equal values for every entity
func EqualAnalysisData[K comparable, V lattice.Value](dom lattice.Domain[V], a, b *DictionaryAnalysisData[K, V]) bool {
	c, _ := CompareAnalysisData(dom, a, b, false)
	return c == 0
}

// decreasingEntities returns the entities whose value is lower in new than in old
func decreasingEntities[K comparable, V lattice.Value](dom lattice.Domain[V],
	old, new *DictionaryAnalysisData[K, V]) []K {
	var res []K
	for k, vo := range old.values {
		if c, _ := dom.Compare(vo, valueOrBottom(dom, new, k), false); c > 0 {
			res = append(res, k)
		}
	}
	return res
}
