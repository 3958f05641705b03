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

package config

const (
	// DefaultLoopIterations is the default number of join-only rounds at a cycle head.
	DefaultLoopIterations = 1

	// DefaultNarrowingIterations is the default cap on decreasing iterations. Narrowing sequences
	// are not guaranteed finite on every domain, so the default is bounded.
	DefaultNarrowingIterations = 3

	// DefaultMaxCallDepth is the default limit on the interprocedural descent depth.
	DefaultMaxCallDepth = 100
)
