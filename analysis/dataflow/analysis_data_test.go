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
	"errors"
	"fmt"
	"testing"

	"github.com/awslabs/ar-flow/analysis/lattice"
	"github.com/google/go-cmp/cmp"
)

func stateOf(entries map[string]counter) *DictionaryAnalysisData[string, counter] {
	s := NewDictionaryAnalysisData[string, counter]()
	for k, v := range entries {
		s.Set(k, v)
	}
	return s
}

var (
	known   = lattice.KnownValue[int]
	unknown = lattice.UnknownValue[int]()
	empty   = lattice.EmptyValue[int]()
)

func TestMergeAnalysisData(t *testing.T) {
	var dom lattice.Domain[counter] = lattice.NewKindDomain[int](maxInts{})
	a := stateOf(map[string]counter{"x": known(1), "y": known(2), "z": empty})
	b := stateOf(map[string]counter{"x": known(4), "w": unknown, "z": known(3)})
	got := MergeAnalysisData(dom, a, b)
	want := map[string]string{"x": "4", "y": "2", "z": "3", "w": "unknown"}
	if diff := cmp.Diff(want, values(got)); diff != "" {
		t.Errorf("merge mismatch (-want +got):\n%s", diff)
	}
	if a.Len() != 3 || b.Len() != 3 {
		t.Errorf("merge should not modify its arguments")
	}
	if !EqualAnalysisData(dom, got, MergeAnalysisData(dom, b, a)) {
		t.Errorf("merge should be commutative")
	}
}

func TestIntersectAnalysisData(t *testing.T) {
	var dom lattice.Domain[counter] = lattice.NewKindDomain[int](maxInts{})
	a := stateOf(map[string]counter{"x": known(1), "y": known(2), "u": unknown})
	b := stateOf(map[string]counter{"x": known(4), "w": known(3), "u": known(7)})
	got := IntersectAnalysisData(dom, a, b)
	want := map[string]string{"x": "1", "y": "0", "w": "0", "u": "7"}
	if diff := cmp.Diff(want, values(got)); diff != "" {
		t.Errorf("intersect mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareAnalysisData(t *testing.T) {
	var dom lattice.Domain[counter] = lattice.NewKindDomain[int](maxInts{})
	tests := []struct {
		name     string
		old, new map[string]counter
		want     int
	}{
		{"equal", map[string]counter{"x": known(1)}, map[string]counter{"x": known(1)}, 0},
		{"both empty", nil, nil, 0},
		{"new entity", nil, map[string]counter{"x": known(1)}, -1},
		{"absent is bottom", map[string]counter{"x": empty}, nil, 0},
		{"changed", map[string]counter{"x": known(1)}, map[string]counter{"x": known(2)}, -1},
		{"widened", map[string]counter{"x": known(1)}, map[string]counter{"x": unknown}, -1},
		{"decreased", map[string]counter{"x": unknown, "y": known(1)},
			map[string]counter{"x": known(1), "y": known(2)}, 1},
		{"removed", map[string]counter{"x": known(1)}, nil, 1},
		{"one of several changed", map[string]counter{"a": known(0), "b": known(0), "c": known(0)},
			map[string]counter{"a": known(0), "b": unknown, "c": known(0)}, -1},
		{"one of several decreased", map[string]counter{"a": known(0), "b": unknown, "c": known(0)},
			map[string]counter{"a": known(1), "b": known(0), "c": known(0)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := CompareAnalysisData(dom, stateOf(tt.old), stateOf(tt.new), false)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c != tt.want {
				t.Errorf("expected %d, got %d", tt.want, c)
			}
			_, err = CompareAnalysisData(dom, stateOf(tt.old), stateOf(tt.new), true)
			if (tt.want > 0) != errors.Is(err, lattice.ErrNonMonotonic) {
				t.Errorf("unexpected error with assertions: %v", err)
			}
		})
	}
}

func TestCompareAnalysisDataIgnoresOrder(t *testing.T) {
	var dom lattice.Domain[counter] = lattice.NewKindDomain[int](maxInts{})
	old := map[string]counter{}
	for i := 0; i < 16; i++ {
		old[fmt.Sprintf("e%d", i)] = known(0)
	}
	changed := stateOf(old)
	changed.Set("e7", unknown)
	for i := 0; i < 100; i++ {
		if c, _ := CompareAnalysisData(dom, stateOf(old), changed, false); c != -1 {
			t.Fatalf("run %d: a single changed entity should make the states differ, got %d", i, c)
		}
		if EqualAnalysisData(dom, stateOf(old), changed) {
			t.Fatalf("run %d: states with a changed entity should not be equal", i)
		}
	}
}

func TestDecreasingEntities(t *testing.T) {
	var dom lattice.Domain[counter] = lattice.NewKindDomain[int](maxInts{})
	old := stateOf(map[string]counter{"x": unknown, "y": known(1), "z": known(2)})
	new := stateOf(map[string]counter{"x": known(3), "y": unknown, "z": known(2)})
	got := decreasingEntities(dom, old, new)
	if len(got) != 1 || got[0] != "x" {
		t.Errorf("expected [x], got %v", got)
	}
}

func TestStateString(t *testing.T) {
	s := stateOf(map[string]counter{"b": known(2), "a": unknown, "c": empty})
	if got, want := s.String(), "{a: unknown, b: 2, c: empty}"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got := NewDictionaryAnalysisData[string, counter]().String(); got != "{}" {
		t.Errorf("expected {}, got %q", got)
	}
	c := s.Clone()
	c.Remove("a")
	if !s.Has("a") || c.Has("a") {
		t.Errorf("clone should be independent of the original")
	}
}
