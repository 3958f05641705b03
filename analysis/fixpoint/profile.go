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

package fixpoint

import (
	"golang.org/x/tools/go/ssa"

	"github.com/zzmjohn/ikos/internal/funcutil"
)

// A Profile carries advisory widening hints for the loop heads of one
// function. A hint is a numeric threshold (typically a statically discovered
// loop bound) used once as a landing point before plain widening, which lets
// slow-converging loops stabilize on a precise bound instead of infinity.
type Profile struct {
	hints map[*ssa.BasicBlock]int64
}

// NewProfile returns a profile with no hints.
func NewProfile() *Profile {
	return &Profile{hints: map[*ssa.BasicBlock]int64{}}
}

// SetWideningHint records the threshold for a loop head.
func (p *Profile) SetWideningHint(head *ssa.BasicBlock, threshold int64) {
	p.hints[head] = threshold
}

// WideningHint returns the threshold for a loop head. A nil profile has no
// hints.
func (p *Profile) WideningHint(head *ssa.BasicBlock) funcutil.Optional[int64] {
	if p == nil {
		return funcutil.None[int64]()
	}
	if t, ok := p.hints[head]; ok {
		return funcutil.Some(t)
	}
	return funcutil.None[int64]()
}

// Empty returns true when the profile carries no hints.
func (p *Profile) Empty() bool {
	return p == nil || len(p.hints) == 0
}

// A Profiler produces per-function profiles ahead of each function fixpoint.
// Returning a nil profile means no hints for that function.
type Profiler interface {
	Profile(fn *ssa.Function) *Profile
}
