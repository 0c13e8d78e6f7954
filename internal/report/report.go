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

package report

import (
	"context"
	"runtime/trace"

	"fillmore-labs.com/closeguard/internal/astutil"
)

// Reporter emits diagnostics for the findings of one pass and collects them.
type Reporter struct {
	r        astutil.Reporter
	findings Findings
}

// NewReporter creates a [Reporter] emitting diagnostics to r.
func NewReporter(r astutil.Reporter) *Reporter {
	return &Reporter{r: r}
}

// Report emits a diagnostic for f unless a //nolint:closeguard comment on the same line suppresses it.
func (r *Reporter) Report(ctx context.Context, currentFile astutil.CurrentFile, f Finding) bool {
	defer trace.StartRegion(ctx, "Report").End()

	if currentFile.NoLintComment(f.Pos) {
		return false
	}

	r.r(f.Diagnostic())
	r.findings = append(r.findings, f)

	return true
}

// Findings returns the reported findings ordered by position.
func (r *Reporter) Findings() Findings {
	fs := Findings(append([]Finding(nil), r.findings...))
	fs.Sort()

	return fs
}
