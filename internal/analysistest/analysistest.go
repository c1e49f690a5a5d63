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

// Package analysistest loads the test programs of the analyses and reads the expectations annotated in their
// comments.
package analysistest

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/awslabs/ar-flow/analysis/config"
	"github.com/awslabs/ar-flow/analysis/invokecheck"
	"github.com/awslabs/ar-flow/internal/funcutil"
	"golang.org/x/tools/go/ssa"
)

// LoadTest loads the program in the directory dir, looking for a main.go and a config.yaml. If additional files
// are specified as extraFiles, the program will be loaded using those files too.
func LoadTest(t *testing.T, dir string, extraFiles []string) (invokecheck.LoadedProgram, *config.Config) {
	t.Helper()
	configFile := filepath.Join(dir, "config.yaml")
	config.SetGlobalConfig(configFile)
	files := []string{filepath.Join(dir, "./main.go")}
	for _, extraFile := range extraFiles {
		files = append(files, filepath.Join(dir, extraFile))
	}

	lp, err := invokecheck.LoadProgram(nil, "", ssa.BuilderMode(0), files)
	if err != nil {
		t.Fatalf("error loading packages: %v", err)
	}
	cfg, err := config.LoadGlobal()
	if err != nil {
		t.Fatalf("error loading global config: %v", err)
	}
	return lp, cfg
}

// MultiRegex matches annotations of the form "@Multi(id1, id2, id3)"
var MultiRegex = regexp.MustCompile(`//.*@Multi\(((?:\s*\w\s*,?)+)\)`)

// LPos is a position without column. The filename is the base name of the file.
type LPos struct {
	Filename string
	Line     int
}

func (p LPos) String() string {
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}

// RemoveColumn returns the line position of pos
func RemoveColumn(pos token.Position) LPos {
	return LPos{Line: pos.Line, Filename: filepath.Base(pos.Filename)}
}

// GetExpectedInvocations parses the files in dir and looks for comments @Multi(id). It returns, for each id, the
// positions of the invocations of the value expected to be invoked more than once.
func GetExpectedInvocations(dir string) (map[string]map[LPos]bool, error) {
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, dir, nil, parser.ParseComments)
	if err != nil {
		return nil, err
	}
	expected := map[string]map[LPos]bool{}
	for _, pkg := range pkgs {
		for _, f := range pkg.Files {
			mapComments(f, func(c *ast.Comment) {
				a := MultiRegex.FindStringSubmatch(c.Text)
				if len(a) <= 1 {
					return
				}
				pos := RemoveColumn(fset.Position(c.Pos()))
				for _, ident := range strings.Split(a[1], ",") {
					id := strings.TrimSpace(ident)
					if _, ok := expected[id]; !ok {
						expected[id] = map[LPos]bool{}
					}
					expected[id][pos] = true
				}
			})
		}
	}
	return expected, nil
}

// Canonical returns a sorted representation of a set of positions
func Canonical(set map[LPos]bool) string {
	sorted := funcutil.SetToSortedSlice(set, func(a, b LPos) bool {
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		return a.Line < b.Line
	})
	return strings.Join(funcutil.Map(sorted, LPos.String), ",")
}

func mapComments(f *ast.File, fmap func(*ast.Comment)) {
	for _, c := range f.Comments {
		for _, c1 := range c.List {
			fmap(c1)
		}
	}
}
