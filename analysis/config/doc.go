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

/*
Package config implements the configuration and logging facilities shared by the analyses.

A configuration is loaded from a yaml file:

	loop-iterations: 2
	widening-strategy: widen
	narrowing-strategy: narrow
	narrowing-iterations: 3
	entry-points:
	  - main

The Options embedded in the [Config] control how the fixpoint engine iterates cycle heads: the
number of join-only rounds before widening (loop-iterations), the widening and narrowing
strategies, and the cap on decreasing iterations. The strategies are validated when the file is
loaded; the fixpoint engine treats any other value reaching its dispatch as a fatal fault.
*/
package config
