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
	"context"
	"fmt"

	"github.com/awslabs/ar-flow/analysis/cfg"
	"github.com/awslabs/ar-flow/analysis/config"
	"github.com/awslabs/ar-flow/analysis/dataflow"
	"golang.org/x/exp/slices"
)

// Result is the result of the invocation analysis of one procedure
type Result = dataflow.Result[Entity, Value]

// Analyze runs the invocation analysis of g with the options of c. The calls for which skip returns true are not
// analyzed; skip may be nil.
func Analyze(ctx context.Context, logger *config.LogGroup, c *config.Config, g *cfg.Graph,
	skip func(caller *cfg.Graph, call cfg.Call) bool) (*Result, error) {
	if c == nil {
		c = config.NewDefault()
	}
	ip, err := dataflow.InterproceduralConfigFrom(c)
	if err != nil {
		return nil, err
	}
	ip.Skip = skip
	actx := dataflow.NewAnalysisContext[Entity, Value](g, c, ip, nil, nil)
	return dataflow.Run(ctx, logger, actx, NewVisitor)
}

// A Finding is a value that may be invoked more than once
type Finding struct {
	Entity      Entity
	Count       InvocationCount
	Invocations []*Invoke
}

func (f Finding) String() string {
	return fmt.Sprintf("%s invoked %s times by %d operation(s)", f.Entity, f.Count, len(f.Invocations))
}

// Findings returns the values of the summary of res that may be invoked more than once, sorted by name.
// Values whose invocations are unknown are not reported.
func Findings(res *Result) []Finding {
	if res == nil || res.GlobalValues == nil {
		return nil
	}
	var findings []Finding
	res.GlobalValues.Range(func(e Entity, x Value) bool {
		set, known := x.Payload()
		if e == Global || !known || !set.Count.AtLeastMany() {
			return true
		}
		findings = append(findings, Finding{Entity: e, Count: set.Count, Invocations: set.Operations()})
		return true
	})
	slices.SortFunc(findings, func(a, b Finding) bool { return a.Entity.String() < b.Entity.String() })
	return findings
}

// Entities returns the names of the entities of s with their values, for logging and tests
func Entities(s *State) map[string]string {
	if s == nil {
		return nil
	}
	m := map[string]string{}
	s.Range(func(e Entity, x Value) bool {
		m[e.String()] = x.String()
		return true
	})
	return m
}
