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

import "fmt"

// An Interval is a set of machine integers between two bounds, or the empty set.
// The zero value is the empty interval (bottom).
type Interval struct {
	lo, hi Bound
	valid  bool
}

// BottomInterval returns the empty interval.
func BottomInterval() Interval {
	return Interval{}
}

// TopInterval returns the interval [-oo, +oo].
func TopInterval() Interval {
	return Interval{lo: NegInf, hi: PosInf, valid: true}
}

// OfBounds returns the interval [lo, hi], or bottom when lo > hi.
func OfBounds(lo, hi Bound) Interval {
	if lo.Cmp(hi) > 0 {
		return BottomInterval()
	}
	return Interval{lo: lo, hi: hi, valid: true}
}

// ConstInterval returns the singleton interval [n, n].
func ConstInterval(n int64) Interval {
	return OfBounds(Finite(n), Finite(n))
}

// IsBottom returns true on the empty interval.
func (i Interval) IsBottom() bool {
	return !i.valid
}

// IsTop returns true on [-oo, +oo].
func (i Interval) IsTop() bool {
	return i.valid && !i.lo.IsFinite() && !i.hi.IsFinite()
}

// Lo returns the lower bound. It panics on bottom.
func (i Interval) Lo() Bound {
	if !i.valid {
		panic("Lo() on bottom interval")
	}
	return i.lo
}

// Hi returns the upper bound. It panics on bottom.
func (i Interval) Hi() Bound {
	if !i.valid {
		panic("Hi() on bottom interval")
	}
	return i.hi
}

// Contains returns true if n is in the interval.
func (i Interval) Contains(n int64) bool {
	return i.valid && i.lo.Cmp(Finite(n)) <= 0 && Finite(n).Cmp(i.hi) <= 0
}

// Equal returns true if both intervals denote the same set.
func (i Interval) Equal(other Interval) bool {
	if !i.valid || !other.valid {
		return i.valid == other.valid
	}
	return i.lo.Cmp(other.lo) == 0 && i.hi.Cmp(other.hi) == 0
}

// Leq is the inclusion order.
func (i Interval) Leq(other Interval) bool {
	if !i.valid {
		return true
	}
	if !other.valid {
		return false
	}
	return other.lo.Cmp(i.lo) <= 0 && i.hi.Cmp(other.hi) <= 0
}

// Join returns the smallest interval containing both operands.
func (i Interval) Join(other Interval) Interval {
	if !i.valid {
		return other
	}
	if !other.valid {
		return i
	}
	return Interval{lo: MinBound(i.lo, other.lo), hi: MaxBound(i.hi, other.hi), valid: true}
}

// Meet returns the intersection of both operands.
func (i Interval) Meet(other Interval) Interval {
	if !i.valid || !other.valid {
		return BottomInterval()
	}
	return OfBounds(MaxBound(i.lo, other.lo), MinBound(i.hi, other.hi))
}

// Widen extrapolates unstable bounds to infinity: a bound that moved between i and other
// jumps straight to -oo or +oo so increasing chains cannot grow forever.
func (i Interval) Widen(other Interval) Interval {
	if !i.valid {
		return other
	}
	if !other.valid {
		return i
	}
	lo := i.lo
	if other.lo.Cmp(i.lo) < 0 {
		lo = NegInf
	}
	hi := i.hi
	if other.hi.Cmp(i.hi) > 0 {
		hi = PosInf
	}
	return Interval{lo: lo, hi: hi, valid: true}
}

// WidenThreshold widens with a landing point: an unstable bound first jumps to the threshold
// when the threshold still covers it, and to infinity otherwise.
func (i Interval) WidenThreshold(other Interval, threshold int64) Interval {
	if !i.valid {
		return other
	}
	if !other.valid {
		return i
	}
	t := Finite(threshold)
	lo := i.lo
	if other.lo.Cmp(i.lo) < 0 {
		if t.Cmp(other.lo) <= 0 {
			lo = t
		} else {
			lo = NegInf
		}
	}
	hi := i.hi
	if other.hi.Cmp(i.hi) > 0 {
		if other.hi.Cmp(t) <= 0 {
			hi = t
		} else {
			hi = PosInf
		}
	}
	return Interval{lo: lo, hi: hi, valid: true}
}

// Narrow refines the result of a widening: infinite bounds are replaced by the bounds of
// the recomputed interval, finite bounds are kept.
func (i Interval) Narrow(other Interval) Interval {
	if !i.valid || !other.valid {
		return BottomInterval()
	}
	lo := i.lo
	if !lo.IsFinite() {
		lo = other.lo
	}
	hi := i.hi
	if !hi.IsFinite() {
		hi = other.hi
	}
	return OfBounds(lo, hi)
}

// NarrowThreshold narrows, additionally refining bounds that landed exactly on the threshold.
func (i Interval) NarrowThreshold(other Interval, threshold int64) Interval {
	if !i.valid || !other.valid {
		return BottomInterval()
	}
	t := Finite(threshold)
	lo := i.lo
	if !lo.IsFinite() || lo.Cmp(t) == 0 {
		lo = other.lo
	}
	hi := i.hi
	if !hi.IsFinite() || hi.Cmp(t) == 0 {
		hi = other.hi
	}
	return OfBounds(lo, hi)
}

// Add returns the interval of sums.
func (i Interval) Add(other Interval) Interval {
	if !i.valid || !other.valid {
		return BottomInterval()
	}
	return OfBounds(i.lo.Add(other.lo), i.hi.Add(other.hi))
}

// Neg returns the interval of negations.
func (i Interval) Neg() Interval {
	if !i.valid {
		return BottomInterval()
	}
	return OfBounds(i.hi.Neg(), i.lo.Neg())
}

// Sub returns the interval of differences.
func (i Interval) Sub(other Interval) Interval {
	return i.Add(other.Neg())
}

// Mul returns the interval of products.
func (i Interval) Mul(other Interval) Interval {
	if !i.valid || !other.valid {
		return BottomInterval()
	}
	a := i.lo.Mul(other.lo)
	b := i.lo.Mul(other.hi)
	c := i.hi.Mul(other.lo)
	d := i.hi.Mul(other.hi)
	return OfBounds(MinBound(MinBound(a, b), MinBound(c, d)), MaxBound(MaxBound(a, b), MaxBound(c, d)))
}

func (i Interval) String() string {
	if !i.valid {
		return "_|_"
	}
	return fmt.Sprintf("[%s, %s]", i.lo, i.hi)
}
