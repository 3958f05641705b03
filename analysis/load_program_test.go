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

package analysis

import (
	"path"
	"runtime"
	"testing"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

func testdataConfig(t *testing.T) *packages.Config {
	t.Helper()
	_, filename, _, _ := runtime.Caller(0)
	return &packages.Config{
		Mode: PkgLoadMode,
		Dir:  path.Join(path.Dir(filename), "testdata", "loadprogram"),
	}
}

func TestLoadProgram(t *testing.T) {
	loaded, err := LoadProgram(testdataConfig(t), "", ssa.BuilderMode(0), []string{"."})
	if err != nil {
		t.Fatalf("error loading program: %s", err)
	}
	if loaded.Program == nil {
		t.Fatalf("no SSA program")
	}
	if len(loaded.Packages) == 0 {
		t.Fatalf("no packages loaded")
	}
	funcs := ssautil.AllFunctions(loaded.Program)
	found := false
	for f := range funcs {
		if f.Name() == "count" && len(f.Blocks) > 0 {
			found = true
		}
	}
	if !found {
		t.Errorf("SSA for count was not built")
	}
}

func TestLoadProgramBadPackage(t *testing.T) {
	cfg := testdataConfig(t)
	if _, err := LoadProgram(cfg, "", ssa.BuilderMode(0), []string{"./does-not-exist"}); err == nil {
		t.Errorf("expected an error for a missing package")
	}
}

func TestAllPackages(t *testing.T) {
	loaded, err := LoadProgram(testdataConfig(t), "", ssa.BuilderMode(0), []string{"."})
	if err != nil {
		t.Fatalf("error loading program: %s", err)
	}
	funcs := ssautil.AllFunctions(loaded.Program)
	pkgs := AllPackages(funcs)
	if len(pkgs) == 0 {
		t.Fatalf("no packages")
	}
	for i := 1; i < len(pkgs); i++ {
		if pkgs[i-1].Pkg.Path() > pkgs[i].Pkg.Path() {
			t.Errorf("packages not sorted: %s before %s", pkgs[i-1].Pkg.Path(), pkgs[i].Pkg.Path())
		}
	}
}
