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
	"fmt"
	"math"
)

type boundKind int8

const (
	boundFinite boundKind = iota
	boundNegInf
	boundPosInf
)

// A Bound is an interval endpoint: a machine integer or one of the two infinities.
type Bound struct {
	kind boundKind
	n    int64
}

// NegInf is the -oo bound.
var NegInf = Bound{kind: boundNegInf}

// PosInf is the +oo bound.
var PosInf = Bound{kind: boundPosInf}

// Finite returns the bound for the integer n.
func Finite(n int64) Bound {
	return Bound{kind: boundFinite, n: n}
}

// IsFinite returns true if the bound is an integer.
func (b Bound) IsFinite() bool {
	return b.kind == boundFinite
}

// Int returns the integer value of a finite bound. It panics on an infinite bound.
func (b Bound) Int() int64 {
	if b.kind != boundFinite {
		panic(fmt.Sprintf("Int() on infinite bound %s", b))
	}
	return b.n
}

// Cmp compares two bounds, returning -1, 0 or +1.
func (b Bound) Cmp(other Bound) int {
	switch {
	case b.kind == other.kind && b.kind != boundFinite:
		return 0
	case b.kind == boundNegInf || other.kind == boundPosInf:
		return -1
	case b.kind == boundPosInf || other.kind == boundNegInf:
		return 1
	case b.n < other.n:
		return -1
	case b.n > other.n:
		return 1
	default:
		return 0
	}
}

// MinBound returns the smaller of two bounds.
func MinBound(x, y Bound) Bound {
	if x.Cmp(y) <= 0 {
		return x
	}
	return y
}

// MaxBound returns the larger of two bounds.
func MaxBound(x, y Bound) Bound {
	if x.Cmp(y) >= 0 {
		return x
	}
	return y
}

// Add adds two bounds. Overflow saturates to the corresponding infinity, which keeps the result
// an over-approximation of the exact sum. Adding opposite infinities is a programming error.
func (b Bound) Add(other Bound) Bound {
	if b.kind == boundFinite && other.kind == boundFinite {
		s := b.n + other.n
		// overflow check: the sum of two same-sign operands must keep the sign
		if b.n > 0 && other.n > 0 && s < 0 {
			return PosInf
		}
		if b.n < 0 && other.n < 0 && s >= 0 {
			return NegInf
		}
		return Finite(s)
	}
	if b.kind == boundFinite {
		return other
	}
	if other.kind == boundFinite {
		return b
	}
	if b.kind != other.kind {
		panic("adding opposite infinite bounds")
	}
	return b
}

// Neg negates a bound.
func (b Bound) Neg() Bound {
	switch b.kind {
	case boundNegInf:
		return PosInf
	case boundPosInf:
		return NegInf
	default:
		if b.n == math.MinInt64 {
			return PosInf
		}
		return Finite(-b.n)
	}
}

// Mul multiplies two bounds. Zero absorbs infinities; overflow saturates to an infinity.
func (b Bound) Mul(other Bound) Bound {
	if (b.kind == boundFinite && b.n == 0) || (other.kind == boundFinite && other.n == 0) {
		return Finite(0)
	}
	neg := b.Cmp(Finite(0)) < 0 != (other.Cmp(Finite(0)) < 0)
	if b.kind != boundFinite || other.kind != boundFinite {
		if neg {
			return NegInf
		}
		return PosInf
	}
	p := b.n * other.n
	if b.n != 0 && (p/b.n != other.n || (b.n == -1 && other.n == math.MinInt64)) {
		if neg {
			return NegInf
		}
		return PosInf
	}
	return Finite(p)
}

func (b Bound) String() string {
	switch b.kind {
	case boundNegInf:
		return "-oo"
	case boundPosInf:
		return "+oo"
	default:
		return fmt.Sprintf("%d", b.n)
	}
}
