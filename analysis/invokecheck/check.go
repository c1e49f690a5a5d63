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

package invokecheck

import (
	"context"
	"fmt"
	"go/token"
	"go/types"
	"runtime"
	"strings"
	"sync"

	"github.com/awslabs/ar-flow/analysis/cfg"
	"github.com/awslabs/ar-flow/analysis/config"
	"github.com/awslabs/ar-flow/analysis/invocation"
	"github.com/awslabs/ar-flow/internal/funcutil"
	"github.com/awslabs/ar-flow/internal/graphutil"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/callgraph/static"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// A Report is a func value that may be invoked more than once
type Report struct {
	// Function is the function in which the value is defined
	Function *ssa.Function
	// Value is the name of the value in the SSA form of Function
	Value string
	// Count is the number of invocations
	Count invocation.InvocationCount
	// Invocations are the positions of the invocations of the value, sorted
	Invocations []token.Position
}

func (r Report) String() string {
	lines := funcutil.Map(r.Invocations, func(p token.Position) string { return "\t" + p.String() })
	return fmt.Sprintf("%s in %s may be invoked %s times:\n%s", r.Value, r.Function, r.Count,
		strings.Join(lines, "\n"))
}

// Functions returns the functions of the program analyzed with c, sorted by name. Without a package filter in c,
// those are the functions of the packages loaded.
func Functions(lp LoadedProgram, c *config.Config) []*ssa.Function {
	initial := map[*types.Package]bool{}
	for _, pkg := range lp.Packages {
		initial[pkg.Types] = true
	}
	var fns []*ssa.Function
	for fn := range ssautil.AllFunctions(lp.Program) {
		if fn.Blocks == nil || fn.Synthetic != "" || fn.Pkg == nil {
			continue
		}
		if c.PkgFilter != "" && c.MatchPkgFilter(fn.Pkg.Pkg.Path()) || c.PkgFilter == "" && initial[fn.Pkg.Pkg] {
			fns = append(fns, fn)
		}
	}
	slices.SortFunc(fns, func(a, b *ssa.Function) bool { return a.String() < b.String() })
	return fns
}

// Run analyzes every function of the program selected by the options of c, and returns the reports of the func values
// that may be invoked more than once, sorted by position. Functions are analyzed in parallel; the first error stops
// the analysis of all functions.
func Run(ctx context.Context, logger *config.LogGroup, c *config.Config, lp LoadedProgram) ([]Report, error) {
	fns := Functions(lp, c)
	logger.Infof("Analyzing %d functions\n", len(fns))
	graphs, err := Lower(fns)
	if err != nil {
		return nil, err
	}
	var skip func(*cfg.Graph, cfg.Call) bool
	if c.SkipRecursiveCalls {
		skip = recursiveCalls(logger, lp.Program, fns)
	}

	workers := c.Parallelism
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	var reports []Report
	for _, fn := range fns {
		fn := fn
		graph := graphs[fn]
		if graph == nil {
			continue
		}
		g.Go(func() error {
			res, err := invocation.Analyze(gctx, logger, c, graph, skip)
			if err != nil {
				return fmt.Errorf("while analyzing %s: %w", fn, err)
			}
			logger.Debugf("%s: %d iterations, %d callee analyses\n", fn, res.Iterations, res.Forks)
			found := reportsOf(lp, fn, invocation.Findings(res))
			mu.Lock()
			defer mu.Unlock()
			reports = append(reports, found...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(reports, lessReport)
	if c.MaxAlarms > 0 && len(reports) > c.MaxAlarms {
		logger.Warnf("%d reports, only the first %d are returned\n", len(reports), c.MaxAlarms)
		reports = reports[:c.MaxAlarms]
	}
	return reports, nil
}

// reportsOf returns the reports of the findings in fn that are defined in fn and not ignored by a directive
func reportsOf(lp LoadedProgram, fn *ssa.Function, findings []invocation.Finding) []Report {
	var reports []Report
	for _, f := range findings {
		if f.Entity.Scope != fn.String() {
			continue
		}
		r := Report{Function: fn, Value: f.Entity.Name, Count: f.Count}
		for _, op := range f.Invocations {
			pos := lp.Program.Fset.Position(op.Pos)
			if lp.Directives.Ignored(pos) {
				continue
			}
			r.Invocations = append(r.Invocations, pos)
		}
		if len(r.Invocations) == 0 {
			continue
		}
		slices.SortFunc(r.Invocations, lessPosition)
		reports = append(reports, r)
	}
	return reports
}

// recursiveCalls returns a predicate that is true for the calls between functions of the same recursive component of
// the static call graph
func recursiveCalls(logger *config.LogGroup, prog *ssa.Program, fns []*ssa.Function) func(*cfg.Graph, cfg.Call) bool {
	cg := static.CallGraph(prog)
	selected := make(map[*ssa.Function]bool, len(fns))
	for _, fn := range fns {
		selected[fn] = true
	}
	successors := func(fn *ssa.Function) []*ssa.Function {
		node := cg.Nodes[fn]
		if node == nil {
			return nil
		}
		var res []*ssa.Function
		for _, e := range node.Out {
			if selected[e.Callee.Func] {
				res = append(res, e.Callee.Func)
			}
		}
		return res
	}
	recursive := graphutil.Recursive(fns, successors)
	names := map[string]bool{}
	for fn := range recursive {
		names[fn.String()] = true
	}
	logger.Debugf("recursive functions: %v\n", funcutil.SetToOrderedSlice(names))
	component := map[*ssa.Function]int{}
	for i, scc := range graphutil.StronglyConnectedComponents(fns, successors) {
		for _, fn := range scc {
			component[fn] = i
		}
	}
	return func(caller *cfg.Graph, call cfg.Call) bool {
		callee := call.Callee()
		if callee == nil {
			return false
		}
		from, ok1 := caller.Owner.(*ssa.Function)
		to, ok2 := callee.Owner.(*ssa.Function)
		return ok1 && ok2 && recursive[from] && recursive[to] && component[from] == component[to]
	}
}

func lessPosition(a, b token.Position) bool {
	if a.Filename != b.Filename {
		return a.Filename < b.Filename
	}
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Column < b.Column
}

func lessReport(a, b Report) bool {
	if lessPosition(a.Invocations[0], b.Invocations[0]) {
		return true
	}
	if lessPosition(b.Invocations[0], a.Invocations[0]) {
		return false
	}
	return a.Value < b.Value
}
