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

// Package funcutil contains generic helpers over the map-represented sets and slices used in the analyses.
package funcutil

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Merge merges the two maps into the first map.
// if x is in b but not in a, then a[x] := b[x]
// if x in both in a and b, then a[x] := both(a[x], b[x])
// @mutates a
func Merge[T comparable, S any](a map[T]S, b map[T]S, both func(x S, y S) S) {
	for x, yb := range b {
		ya, ina := a[x]
		if ina {
			a[x] = both(ya, yb)
		} else {
			a[x] = yb
		}
	}
}

// Union returns a new set containing the elements of the sets a and b. Neither a nor b is modified.
func Union[T comparable](a map[T]bool, b map[T]bool) map[T]bool {
	res := make(map[T]bool, len(a)+len(b))
	Merge(res, a, func(x bool, y bool) bool { return x || y })
	Merge(res, b, func(x bool, y bool) bool { return x || y })
	return res
}

// SetEqual returns true when the sets a and b have the same elements
func SetEqual[T comparable](a map[T]bool, b map[T]bool) bool {
	return Subset(a, b) && Subset(b, a)
}

// Subset returns true when every element of the set a is in b
func Subset[T comparable](a map[T]bool, b map[T]bool) bool {
	for x, in := range a {
		if in && !b[x] {
			return false
		}
	}
	return true
}

// Map returns a new slice b such for any i <= len(a), b[i] = f(a[i])
func Map[T any, S any](a []T, f func(T) S) []S {
	b := make([]S, 0, len(a))
	for _, x := range a {
		b = append(b, f(x))
	}
	return b
}

// SetToOrderedSlice converts a set represented as a map from elements to booleans into a slice.
// Sorts the result in increasing order
func SetToOrderedSlice[T constraints.Ordered](set map[T]bool) []T {
	s := Members(set)
	slices.Sort(s)
	return s
}

// SetToSortedSlice converts a set into a slice sorted with less
func SetToSortedSlice[T comparable](set map[T]bool, less func(a, b T) bool) []T {
	s := Members(set)
	slices.SortFunc(s, less)
	return s
}

// Members returns the elements of the set in no particular order
func Members[T comparable](set map[T]bool) []T {
	s := make([]T, 0, len(set))
	for _, x := range maps.Keys(set) {
		if set[x] {
			s = append(s, x)
		}
	}
	return s
}
