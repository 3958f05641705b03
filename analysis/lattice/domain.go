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

// Package lattice defines the abstract-domain contract consumed by the fixpoint engine, and
// provides an interval domain over the machine integers together with an environment domain
// mapping SSA values to intervals.
package lattice

// Domain is the contract between an abstract domain and the fixpoint engine. A domain element is
// an owned, mutable value: the engine threads a single working state through the transfer
// function and calls Copy at the points where a state must be shared.
//
// The operators must satisfy the usual abstract-interpretation requirements: JoinWith
// over-approximates the least upper bound, WidenWith over-approximates JoinWith and guarantees
// stabilization of increasing sequences, NarrowWith refines its receiver without going below the
// argument's meaning. The threshold variants behave like their plain counterparts but clamp
// toward the supplied bound instead of jumping to an extreme value.
//
// The engine treats a misbehaving domain (e.g. a non-monotone Leq) as a defect of the supplied
// domain, not as a recoverable condition.
type Domain[T any] interface {
	// Copy returns an independent copy of the element.
	Copy() T

	// IsBottom returns true if the element is the least element of the lattice.
	IsBottom() bool

	// JoinWith sets the receiver to the join of the receiver and other.
	JoinWith(other T)

	// WidenWith sets the receiver to the widening of the receiver with other.
	WidenWith(other T)

	// WidenThresholdWith widens the receiver with other, clamping toward threshold.
	WidenThresholdWith(other T, threshold int64)

	// NarrowWith sets the receiver to the narrowing of the receiver with other.
	NarrowWith(other T)

	// NarrowThresholdWith narrows the receiver with other, additionally refining bounds equal to
	// threshold.
	NarrowThresholdWith(other T, threshold int64)

	// MeetWith sets the receiver to the meet of the receiver and other.
	MeetWith(other T)

	// Leq returns true if the receiver is less than or equal to other in the lattice order.
	Leq(other T) bool
}
