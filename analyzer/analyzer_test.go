// Copyright 2025-2026 Oliver Eikemeier. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package analyzer_test

import (
	"path/filepath"
	"slices"
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"

	. "fillmore-labs.com/closeguard/analyzer"
	"fillmore-labs.com/closeguard/analyzer/level"
)

func TestAnalyzer(t *testing.T) {
	t.Parallel()

	testdata := analysistest.TestData()

	tests := []struct {
		name     string
		dirs     []string
		options  Option
		findings map[string]int
	}{
		{
			name:     "Default",
			dirs:     []string{"./lib", "./a"},
			findings: map[string]int{"test/lib": 0, "test/a": 10},
		},
		{
			name: "Configured",
			dirs: []string{"./configured"},
			options: Options{
				WithTracking(level.TrackingConfigured),
				WithRulesFile(filepath.Join(testdata, "rules", "closeguard.yaml")),
			},
			findings: map[string]int{"test/configured": 2},
		},
		{
			name:     "Generated",
			dirs:     []string{"./gen"},
			options:  WithGenerated(true),
			findings: map[string]int{"test/gen": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := New(tt.options)

			for _, result := range analysistest.Run(t, testdata, a, tt.dirs...) {
				if result.Err != nil {
					t.Errorf("Analysis of %s failed: %v", result.Pass.Pkg.Path(), result.Err)

					continue
				}

				findings, ok := result.Result.(Findings)
				if !ok {
					t.Errorf("Got result type %T, want %T", result.Result, Findings{})

					continue
				}

				path := result.Pass.Pkg.Path()
				if want, ok := tt.findings[path]; ok && len(findings) != want {
					t.Errorf("Got %d findings in %s, want %d", len(findings), path, want)
				}
			}
		})
	}
}

func TestDeterministic(t *testing.T) {
	t.Parallel()

	testdata := analysistest.TestData()

	run := func() []string {
		var diagnostics []string

		for _, result := range analysistest.Run(t, testdata, New(), "./a") {
			findings, _ := result.Result.(Findings)
			for _, f := range findings {
				diagnostics = append(diagnostics, result.Pass.Fset.Position(f.Pos).String()+": "+f.Message())
			}
		}

		return diagnostics
	}

	first, second := run(), run()
	if len(first) == 0 {
		t.Fatal("Expected findings")
	}

	if !slices.Equal(first, second) {
		t.Errorf("Repeated analysis differs:\n%q\n%q", first, second)
	}
}
