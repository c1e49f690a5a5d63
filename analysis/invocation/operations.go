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
	"fmt"
	"go/token"
	"strings"

	"github.com/awslabs/ar-flow/analysis/cfg"
)

// Entity identifies a value whose invocations are tracked: a named value in the scope of a procedure.
type Entity struct {
	Scope string
	Name  string
}

func (e Entity) String() string {
	if e.Scope == "" {
		return e.Name
	}
	return e.Scope + "." + e.Name
}

// Global is the entity that counts all the invocations of a procedure
var Global = Entity{Name: "<global>"}

// Define starts tracking Target, a value that has not been invoked yet
type Define struct {
	Target Entity
}

func (d *Define) String() string { return "define " + d.Target.String() }

// Param starts tracking the parameter Target, unless the caller has already provided its value
type Param struct {
	Target Entity
}

func (p *Param) String() string { return "param " + p.Target.String() }

// Invoke is one invocation of Target. Invoke operations are compared by identity and recorded in the invocation sets
// of the values they invoke.
type Invoke struct {
	Target Entity
	Pos    token.Pos
}

func (i *Invoke) String() string { return "invoke " + i.Target.String() }

// Havoc makes the invocations of Target unknown, for instance when the value escapes
type Havoc struct {
	Target Entity
}

func (h *Havoc) String() string { return "havoc " + h.Target.String() }

// Release stops tracking Target
type Release struct {
	Target Entity
}

func (r *Release) String() string { return "release " + r.Target.String() }

// Binding binds the argument of a call to a parameter of the callee
type Binding struct {
	Arg   Entity
	Param Entity
}

// Call is a call to the procedure represented by Target, or to an unknown procedure when Target is nil.
type Call struct {
	Name   string
	Target *cfg.Graph
	Pos    token.Pos

	// Bindings maps the tracked arguments to the parameters of the callee
	Bindings []Binding

	// Writes are the tracked entities whose invocations are unknown after the call when the callee is not analyzed.
	// The arguments of Bindings are usually part of Writes.
	Writes []Entity
}

// Callee returns the graph of the procedure called, or nil
func (c *Call) Callee() *cfg.Graph { return c.Target }

func (c *Call) String() string {
	args := make([]string, len(c.Bindings))
	for i, b := range c.Bindings {
		args[i] = b.Arg.String()
	}
	return fmt.Sprintf("call %s(%s)", c.Name, strings.Join(args, ", "))
}
