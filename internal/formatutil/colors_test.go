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

package formatutil

import "testing"

func TestSprint(t *testing.T) {
	defer SetStyled(styled)

	SetStyled(false)
	if got := Red.Sprint("twice ", 2); got != "twice 2" {
		t.Errorf("unstyled Sprint = %q", got)
	}
	SetStyled(true)
	if got := Red.Sprintf("%d", 2); got != "\033[1;31m2\033[0m" {
		t.Errorf("styled Sprintf = %q", got)
	}
	if got := Faint.Sprint(); got != "\033[2m\033[0m" {
		t.Errorf("styled empty Sprint = %q", got)
	}
}

func TestSanitize(t *testing.T) {
	for in, want := range map[string]string{
		"f":              "f",
		"\033[1mbold":    `\x1b[1mbold`,
		"line\nbreak":    `line\nbreak`,
		`quoted "value"`: `quoted \"value\"`,
	} {
		if got := Sanitize(in); got != want {
			t.Errorf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPlural(t *testing.T) {
	for n, want := range map[int]string{0: "0 reports", 1: "1 report", 3: "3 reports"} {
		if got := Plural(n, "report"); got != want {
			t.Errorf("Plural(%d) = %q, want %q", n, got, want)
		}
	}
}
