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

// Package formatutil contains the styles used to print reports on a terminal.
package formatutil

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// Style is an ANSI select graphic rendition code
type Style string

// The styles used by the reports.
const (
	Bold   Style = "1"
	Faint  Style = "2"
	Red    Style = "1;31"
	Green  Style = "1;32"
	Yellow Style = "1;33"
	Cyan   Style = "1;36"
)

// styled is true when output is styled. It defaults to whether the standard output is a terminal.
var styled = term.IsTerminal(int(os.Stdout.Fd()))

// SetStyled turns the styling of all the styles on or off.
func SetStyled(on bool) {
	styled = on
}

// Sprint formats args like fmt.Sprint and wraps the result in the style s.
func (s Style) Sprint(args ...any) string {
	str := fmt.Sprint(args...)
	if !styled {
		return str
	}
	return "\033[" + string(s) + "m" + str + "\033[0m"
}

// Sprintf formats like fmt.Sprintf and wraps the result in the style s.
func (s Style) Sprintf(format string, args ...any) string {
	return s.Sprint(fmt.Sprintf(format, args...))
}

// Sanitize escapes the non-printable characters of s, including escape sequences
func Sanitize(s string) string {
	r := fmt.Sprintf("%q", s)
	return r[1 : len(r)-1]
}

// Plural returns "n word" with word in plural form when n != 1.
func Plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
