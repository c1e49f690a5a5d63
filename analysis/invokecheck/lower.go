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
	"fmt"
	"go/token"
	"go/types"

	"github.com/awslabs/ar-flow/analysis/cfg"
	"github.com/awslabs/ar-flow/analysis/invocation"
	"golang.org/x/tools/go/ssa"
)

// Lower returns the graphs of the invocation analysis of the functions fns. The calls from a function of fns to
// another function of fns are linked to the graph of the callee; other calls have an unknown callee.
func Lower(fns []*ssa.Function) (map[*ssa.Function]*cfg.Graph, error) {
	l := &lowering{
		lowered: make(map[*ssa.Function]bool, len(fns)),
		graphs:  make(map[*ssa.Function]*cfg.Graph, len(fns)),
		calls:   map[*invocation.Call]*ssa.Function{},
	}
	for _, fn := range fns {
		if fn.Blocks != nil {
			l.lowered[fn] = true
		}
	}
	for _, fn := range fns {
		if !l.lowered[fn] {
			continue
		}
		g, err := l.function(fn)
		if err != nil {
			return nil, fmt.Errorf("while lowering %s: %w", fn, err)
		}
		l.graphs[fn] = g
	}
	// all graphs exist now: link the calls
	for call, callee := range l.calls {
		call.Target = l.graphs[callee]
	}
	return l.graphs, nil
}

type lowering struct {
	lowered map[*ssa.Function]bool
	graphs  map[*ssa.Function]*cfg.Graph
	calls   map[*invocation.Call]*ssa.Function
}

// condition is the operation labelling the branches of an if
type condition struct {
	value ssa.Value
}

func (c condition) String() string { return "if " + c.value.Name() }

func (l *lowering) function(fn *ssa.Function) (*cfg.Graph, error) {
	b := cfg.NewBuilder(fn.String(), fn)
	blocks := make([]*cfg.BasicBlock, len(fn.Blocks))
	for i, blk := range fn.Blocks {
		blocks[i] = b.NewBlock()
		blocks[i].Comment = blk.Comment
	}
	for _, p := range fn.Params {
		if isFunc(p.Type()) {
			b.Add(blocks[0], &invocation.Param{Target: entity(fn, p)})
		}
	}
	b.Jump(b.Entry(), blocks[0])

	for i, blk := range fn.Blocks {
		for _, instr := range blk.Instrs {
			b.Add(blocks[i], l.operations(fn, instr)...)
		}
		if len(blk.Instrs) == 0 {
			continue
		}
		switch last := blk.Instrs[len(blk.Instrs)-1].(type) {
		case *ssa.If:
			b.If(blocks[i], condition{last.Cond}, blocks[blk.Succs[0].Index], blocks[blk.Succs[1].Index])
		case *ssa.Jump:
			b.Jump(blocks[i], blocks[blk.Succs[0].Index])
		case *ssa.Return, *ssa.Panic:
			b.Return(blocks[i])
		}
	}
	return b.Build()
}

// operations returns the operations of the invocation analysis for the instruction instr of fn
func (l *lowering) operations(fn *ssa.Function, instr ssa.Instruction) []cfg.Operation {
	var ops []cfg.Operation
	havoc := func(v ssa.Value) {
		if tracked(v) {
			ops = append(ops, &invocation.Havoc{Target: entity(fn, v)})
		}
	}

	switch i := instr.(type) {
	case ssa.CallInstruction:
		ops = append(ops, l.call(fn, i.Common(), i.Pos())...)
	case *ssa.MakeClosure:
		for _, v := range i.Bindings {
			havoc(v)
		}
	case *ssa.Store:
		havoc(i.Val)
	case *ssa.MakeInterface:
		havoc(i.X)
	case *ssa.ChangeType:
		havoc(i.X)
	case *ssa.Send:
		havoc(i.X)
	case *ssa.MapUpdate:
		havoc(i.Value)
	}

	// every local func value starts untouched
	if v, ok := instr.(ssa.Value); ok && isFunc(v.Type()) {
		ops = append(ops, &invocation.Define{Target: entity(fn, v)})
	}
	return ops
}

func (l *lowering) call(fn *ssa.Function, common *ssa.CallCommon, pos token.Pos) []cfg.Operation {
	var ops []cfg.Operation
	if callee := common.StaticCallee(); callee != nil && !common.IsInvoke() {
		c := &invocation.Call{Name: callee.String(), Pos: pos}
		for i, arg := range common.Args {
			if !tracked(arg) {
				continue
			}
			e := entity(fn, arg)
			c.Writes = append(c.Writes, e)
			if l.lowered[callee] && i < len(callee.Params) {
				c.Bindings = append(c.Bindings, invocation.Binding{Arg: e, Param: entity(callee, callee.Params[i])})
			}
		}
		if l.lowered[callee] {
			l.calls[c] = callee
		}
		return append(ops, c)
	}

	if _, builtin := common.Value.(*ssa.Builtin); !builtin && !common.IsInvoke() {
		ops = append(ops, &invocation.Invoke{Target: entity(fn, common.Value), Pos: pos})
	}
	// the callee is not known: the func values passed escape
	for _, arg := range common.Args {
		if tracked(arg) {
			ops = append(ops, &invocation.Havoc{Target: entity(fn, arg)})
		}
	}
	return ops
}

func entity(fn *ssa.Function, v ssa.Value) invocation.Entity {
	return invocation.Entity{Scope: fn.String(), Name: v.Name()}
}

// tracked returns true for the func values local to a function: parameters and values computed by instructions
func tracked(v ssa.Value) bool {
	if !isFunc(v.Type()) {
		return false
	}
	switch v.(type) {
	case *ssa.Parameter, ssa.Instruction:
		return true
	default:
		return false
	}
}

func isFunc(t types.Type) bool {
	_, ok := t.Underlying().(*types.Signature)
	return ok
}
