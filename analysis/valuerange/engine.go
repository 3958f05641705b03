// Copyright (c) The ikos-go Authors. All Rights Reserved.
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

package valuerange

import (
	"go/token"

	"golang.org/x/tools/go/ssa"

	"github.com/zzmjohn/ikos/analysis/config"
	"github.com/zzmjohn/ikos/analysis/lang"
	"github.com/zzmjohn/ikos/analysis/lattice"
)

// intervalEngine is the abstract semantics of the value-range analysis: an
// environment of integer intervals threaded through the instructions.
// Precision levels: basic propagates edges unchanged, branch refines states
// with the branch condition, full additionally maps arguments into callee
// parameters.
type intervalEngine struct {
	precision int
	cur       *lattice.Env
}

func newIntervalEngine(precision int) *intervalEngine {
	return &intervalEngine{precision: precision, cur: lattice.BottomEnv()}
}

// evalValue evaluates an SSA value to an interval in env. Constants evaluate
// to singletons, anything non-integer to top.
func evalValue(env *lattice.Env, v ssa.Value) lattice.Interval {
	if c := lang.IntConstant(v); c.IsSome() {
		return lattice.ConstInterval(c.Value())
	}
	if _, isConst := v.(*ssa.Const); isConst || !lang.IsIntegerValue(v) {
		return lattice.TopInterval()
	}
	return env.Get(v)
}

func (e *intervalEngine) Bottom() *lattice.Env {
	return lattice.BottomEnv()
}

func (e *intervalEngine) State() *lattice.Env {
	return e.cur
}

func (e *intervalEngine) SetState(s *lattice.Env) {
	e.cur = s
}

func (e *intervalEngine) ExecEnter(*ssa.BasicBlock) {}
func (e *intervalEngine) ExecLeave(*ssa.BasicBlock) {}

// ExecEdge refines the state with the branch condition selecting dest and
// binds the phi nodes of dest to their operand on this edge.
func (e *intervalEngine) ExecEdge(src, dest *ssa.BasicBlock) {
	if e.cur.IsBottom() {
		return
	}
	if e.precision >= config.PrecisionBranch {
		e.assumeBranch(src, dest)
	}
	e.bindPhis(src, dest)
}

func (e *intervalEngine) assumeBranch(src, dest *ssa.BasicBlock) {
	if len(src.Instrs) == 0 {
		return
	}
	branch, ok := src.Instrs[len(src.Instrs)-1].(*ssa.If)
	if !ok {
		return
	}
	cond, ok := branch.Cond.(*ssa.BinOp)
	if !ok || !lang.IsIntegerValue(cond.X) {
		return
	}
	// Succs[0] is the true edge of an If
	e.assume(cond, len(src.Succs) > 0 && src.Succs[0] == dest)
}

// assume narrows the operands of an integer comparison known to evaluate to
// positive. A contradiction makes the state bottom: the edge is unreachable.
func (e *intervalEngine) assume(cond *ssa.BinOp, positive bool) {
	op := cond.Op
	if !positive {
		op = negateCmp(op)
	}
	x := evalValue(e.cur, cond.X)
	y := evalValue(e.cur, cond.Y)
	if x.IsBottom() || y.IsBottom() {
		return
	}
	one := lattice.Finite(1)
	var rx, ry lattice.Interval
	switch op {
	case token.EQL:
		rx = x.Meet(y)
		ry = rx
	case token.LSS:
		rx = x.Meet(lattice.OfBounds(lattice.NegInf, y.Hi().Add(one.Neg())))
		ry = y.Meet(lattice.OfBounds(x.Lo().Add(one), lattice.PosInf))
	case token.LEQ:
		rx = x.Meet(lattice.OfBounds(lattice.NegInf, y.Hi()))
		ry = y.Meet(lattice.OfBounds(x.Lo(), lattice.PosInf))
	case token.GTR:
		rx = x.Meet(lattice.OfBounds(y.Lo().Add(one), lattice.PosInf))
		ry = y.Meet(lattice.OfBounds(lattice.NegInf, x.Hi().Add(one.Neg())))
	case token.GEQ:
		rx = x.Meet(lattice.OfBounds(y.Lo(), lattice.PosInf))
		ry = y.Meet(lattice.OfBounds(lattice.NegInf, x.Hi()))
	default:
		// != and non-order operators carry no interval information
		return
	}
	e.constrain(cond.X, rx)
	e.constrain(cond.Y, ry)
}

func (e *intervalEngine) constrain(v ssa.Value, i lattice.Interval) {
	if _, isConst := v.(*ssa.Const); isConst {
		if i.IsBottom() {
			e.cur = lattice.BottomEnv()
		}
		return
	}
	e.cur.Set(v, i)
}

// bindPhis assigns each phi of dest its operand coming from src, evaluated
// simultaneously against the pre-edge state.
func (e *intervalEngine) bindPhis(src, dest *ssa.BasicBlock) {
	predIdx := -1
	for i, pred := range dest.Preds {
		if pred == src {
			predIdx = i
			break
		}
	}
	if predIdx < 0 {
		return
	}
	type binding struct {
		phi *ssa.Phi
		val lattice.Interval
	}
	var bindings []binding
	for _, instr := range dest.Instrs {
		phi, ok := instr.(*ssa.Phi)
		if !ok {
			break
		}
		if lang.IsIntegerValue(phi) {
			bindings = append(bindings, binding{phi, evalValue(e.cur, phi.Edges[predIdx])})
		}
	}
	for _, b := range bindings {
		e.cur.Set(b.phi, b.val)
	}
}

// ExecInstruction models integer arithmetic; anything else leaves the defined
// value unconstrained, which is top by construction of the environment.
func (e *intervalEngine) ExecInstruction(instr ssa.Instruction) {
	if e.cur.IsBottom() {
		return
	}
	switch instr := instr.(type) {
	case *ssa.BinOp:
		e.execBinOp(instr)
	case *ssa.UnOp:
		if instr.Op == token.SUB && lang.IsIntegerValue(instr) {
			e.cur.Set(instr, evalValue(e.cur, instr.X).Neg())
		}
	case *ssa.Phi:
		// phis are bound on edge entry; keep a sound join as fallback for
		// states that reached the block without flowing through ExecEdge
		if lang.IsIntegerValue(instr) {
			if _, ok := e.cur.Lookup(instr); !ok {
				res := lattice.BottomInterval()
				for _, edge := range instr.Edges {
					res = res.Join(evalValue(e.cur, edge))
				}
				e.cur.Set(instr, res)
			}
		}
	case *ssa.ChangeType:
		if lang.IsIntegerValue(instr) && lang.IsIntegerValue(instr.X) {
			e.cur.Set(instr, evalValue(e.cur, instr.X))
		}
	case *ssa.Convert:
		if lang.IsIntegerValue(instr) && lang.IsIntegerValue(instr.X) {
			e.cur.Set(instr, evalValue(e.cur, instr.X))
		}
	case *ssa.Return:
		// record the single integer return value under the function key so
		// callers can read it from the exit state
		if len(instr.Results) == 1 && lang.IsIntegerValue(instr.Results[0]) {
			e.cur.Set(instr.Parent(), evalValue(e.cur, instr.Results[0]))
		}
	}
}

func (e *intervalEngine) execBinOp(instr *ssa.BinOp) {
	if !lang.IsIntegerValue(instr) {
		return
	}
	x := evalValue(e.cur, instr.X)
	y := evalValue(e.cur, instr.Y)
	switch instr.Op {
	case token.ADD:
		e.cur.Set(instr, x.Add(y))
	case token.SUB:
		e.cur.Set(instr, x.Sub(y))
	case token.MUL:
		e.cur.Set(instr, x.Mul(y))
	default:
		// quotients, shifts and bit operations are not modeled
	}
}

// EnterCall builds the callee entry state. At full precision argument
// intervals are mapped onto the callee's parameters; below that the callee
// starts unconstrained.
func (e *intervalEngine) EnterCall(call ssa.CallInstruction, callee *ssa.Function, caller *lattice.Env) *lattice.Env {
	entry := lattice.NewEnv()
	if e.precision < config.PrecisionFull {
		return entry
	}
	args := call.Common().Args
	if len(args) != len(callee.Params) {
		return entry
	}
	for i, param := range callee.Params {
		if lang.IsIntegerValue(param) {
			entry.Set(param, evalValue(caller, args[i]))
		}
	}
	return entry
}

// ReturnFromCall binds the call's result to the callee's recorded return
// interval.
func (e *intervalEngine) ReturnFromCall(call ssa.CallInstruction, callee *ssa.Function, exit *lattice.Env) {
	v := call.Value()
	if v == nil {
		return
	}
	if !lang.IsIntegerValue(v) {
		e.cur.Forget(v)
		return
	}
	e.cur.Set(v, exit.Get(callee))
}

// ApproximateCall treats the call as returning anything.
func (e *intervalEngine) ApproximateCall(call ssa.CallInstruction) {
	if v := call.Value(); v != nil {
		e.cur.Forget(v)
	}
}

func negateCmp(op token.Token) token.Token {
	switch op {
	case token.EQL:
		return token.NEQ
	case token.NEQ:
		return token.EQL
	case token.LSS:
		return token.GEQ
	case token.LEQ:
		return token.GTR
	case token.GTR:
		return token.LEQ
	case token.GEQ:
		return token.LSS
	}
	return op
}
