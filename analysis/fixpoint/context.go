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
	"strings"
	"sync"

	"golang.org/x/tools/go/ssa"
)

// A CallContext is an immutable node in the tree of call chains explored by
// the analysis: the sequence of call sites from the entry point down to the
// current function invocation. Contexts are interned by their factory, so two
// identical chains are always the same pointer and context equality is pointer
// equality.
type CallContext struct {
	parent *CallContext
	site   ssa.CallInstruction
	height int
}

// Empty returns true on the root context of an analysis entry point.
func (c *CallContext) Empty() bool {
	return c.parent == nil
}

// Parent returns the caller's context, or nil on the root context.
func (c *CallContext) Parent() *CallContext {
	return c.parent
}

// Site returns the call instruction this context was extended with, or nil on
// the root context.
func (c *CallContext) Site() ssa.CallInstruction {
	return c.site
}

// Height returns the length of the call chain, 0 for the root context.
func (c *CallContext) Height() int {
	return c.height
}

// String renders the chain of call sites from the entry point, outermost first.
func (c *CallContext) String() string {
	if c.Empty() {
		return "[]"
	}
	var sites []string
	for cur := c; !cur.Empty(); cur = cur.parent {
		sites = append(sites, cur.site.Parent().String()+"@"+cur.site.String())
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i := len(sites) - 1; i >= 0; i-- {
		sb.WriteString(sites[i])
		if i > 0 {
			sb.WriteString(" > ")
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

type contextKey struct {
	parent *CallContext
	site   ssa.CallInstruction
}

// A CallContextFactory interns call contexts: extending the same parent with
// the same call site always returns the same *CallContext. Safe for concurrent
// use so independent entry points can share one factory.
type CallContextFactory struct {
	mu       sync.Mutex
	empty    *CallContext
	contexts map[contextKey]*CallContext
}

// NewCallContextFactory returns an empty factory.
func NewCallContextFactory() *CallContextFactory {
	return &CallContextFactory{
		empty:    &CallContext{},
		contexts: map[contextKey]*CallContext{},
	}
}

// GetEmpty returns the root context.
func (f *CallContextFactory) GetEmpty() *CallContext {
	return f.empty
}

// GetContext returns parent extended with the call site, reusing the existing
// node when the chain was seen before.
func (f *CallContextFactory) GetContext(parent *CallContext, site ssa.CallInstruction) *CallContext {
	key := contextKey{parent: parent, site: site}
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.contexts[key]; ok {
		return c
	}
	c := &CallContext{parent: parent, site: site, height: parent.height + 1}
	f.contexts[key] = c
	return c
}
