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

package lattice

import (
	"sort"
	"strings"

	"golang.org/x/tools/go/ssa"
)

// An Env maps SSA values to intervals, pointwise lifted. A value with no entry is
// unconstrained (top), so the map only stores values the analysis has learned
// something about. The bottom Env represents an unreachable program point.
type Env struct {
	bottom    bool
	intervals map[ssa.Value]Interval
}

// NewEnv returns the environment with no constraints.
func NewEnv() *Env {
	return &Env{intervals: map[ssa.Value]Interval{}}
}

// BottomEnv returns the environment of an unreachable program point.
func BottomEnv() *Env {
	return &Env{bottom: true}
}

// IsBottom returns true on the unreachable environment.
func (e *Env) IsBottom() bool {
	return e.bottom
}

// Get returns the interval constraint on v.
func (e *Env) Get(v ssa.Value) Interval {
	if e.bottom {
		return BottomInterval()
	}
	if i, ok := e.intervals[v]; ok {
		return i
	}
	return TopInterval()
}

// Lookup returns the recorded constraint on v. ok is false when v is
// unconstrained; Get would return top.
func (e *Env) Lookup(v ssa.Value) (Interval, bool) {
	if e.bottom {
		return BottomInterval(), false
	}
	i, ok := e.intervals[v]
	return i, ok
}

// Set constrains v to i. Setting a bottom interval makes the whole environment bottom.
func (e *Env) Set(v ssa.Value, i Interval) {
	if e.bottom {
		return
	}
	if i.IsBottom() {
		e.bottom = true
		e.intervals = nil
		return
	}
	if i.IsTop() {
		delete(e.intervals, v)
		return
	}
	e.intervals[v] = i
}

// Forget drops the constraint on v.
func (e *Env) Forget(v ssa.Value) {
	if !e.bottom {
		delete(e.intervals, v)
	}
}

// Copy returns a deep copy of the environment.
func (e *Env) Copy() *Env {
	if e.bottom {
		return BottomEnv()
	}
	c := &Env{intervals: make(map[ssa.Value]Interval, len(e.intervals))}
	for v, i := range e.intervals {
		c.intervals[v] = i
	}
	return c
}

// merge applies f pointwise for operators where absent entries (top) absorb the result.
func (e *Env) merge(other *Env, f func(a, b Interval) Interval) {
	for v, a := range e.intervals {
		b, ok := other.intervals[v]
		if !ok {
			delete(e.intervals, v)
			continue
		}
		r := f(a, b)
		if r.IsTop() {
			delete(e.intervals, v)
		} else {
			e.intervals[v] = r
		}
	}
}

// JoinWith sets the environment to the pointwise join with other.
func (e *Env) JoinWith(other *Env) {
	if other.IsBottom() {
		return
	}
	if e.bottom {
		*e = *other.Copy()
		return
	}
	e.merge(other, Interval.Join)
}

// WidenWith sets the environment to the pointwise widening with other.
func (e *Env) WidenWith(other *Env) {
	if other.IsBottom() {
		return
	}
	if e.bottom {
		*e = *other.Copy()
		return
	}
	e.merge(other, Interval.Widen)
}

// WidenThresholdWith widens pointwise with a landing threshold.
func (e *Env) WidenThresholdWith(other *Env, threshold int64) {
	if other.IsBottom() {
		return
	}
	if e.bottom {
		*e = *other.Copy()
		return
	}
	e.merge(other, func(a, b Interval) Interval {
		return a.WidenThreshold(b, threshold)
	})
}

// meetLike applies f for operators that can only tighten constraints: entries present
// in only one operand are kept.
func (e *Env) meetLike(other *Env, f func(a, b Interval) Interval) {
	if e.bottom {
		return
	}
	if other.IsBottom() {
		e.bottom = true
		e.intervals = nil
		return
	}
	for v, a := range e.intervals {
		if b, ok := other.intervals[v]; ok {
			r := f(a, b)
			if r.IsBottom() {
				e.bottom = true
				e.intervals = nil
				return
			}
			e.intervals[v] = r
		}
	}
	for v, b := range other.intervals {
		if _, ok := e.intervals[v]; !ok {
			e.intervals[v] = b
		}
	}
}

// NarrowWith sets the environment to the pointwise narrowing with other.
func (e *Env) NarrowWith(other *Env) {
	e.meetLike(other, Interval.Narrow)
}

// NarrowThresholdWith narrows pointwise with a landing threshold.
func (e *Env) NarrowThresholdWith(other *Env, threshold int64) {
	e.meetLike(other, func(a, b Interval) Interval {
		return a.NarrowThreshold(b, threshold)
	})
}

// MeetWith sets the environment to the pointwise meet with other.
func (e *Env) MeetWith(other *Env) {
	e.meetLike(other, Interval.Meet)
}

// Leq is the pointwise inclusion order.
func (e *Env) Leq(other *Env) bool {
	if e.bottom {
		return true
	}
	if other.IsBottom() {
		return false
	}
	for v, b := range other.intervals {
		a, ok := e.intervals[v]
		if !ok {
			// e is top on v, other is not
			return false
		}
		if !a.Leq(b) {
			return false
		}
	}
	return true
}

func (e *Env) String() string {
	if e.bottom {
		return "_|_"
	}
	if len(e.intervals) == 0 {
		return "T"
	}
	entries := make([]string, 0, len(e.intervals))
	for v, i := range e.intervals {
		entries = append(entries, v.Name()+" -> "+i.String())
	}
	sort.Strings(entries)
	return "{" + strings.Join(entries, ", ") + "}"
}
