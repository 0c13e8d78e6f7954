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

package run

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"iter"
	"log/slog"
	"runtime/trace"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"fillmore-labs.com/closeguard/internal/astutil"
	"fillmore-labs.com/closeguard/internal/classify"
	"fillmore-labs.com/closeguard/internal/config"
	"fillmore-labs.com/closeguard/internal/detect"
	"fillmore-labs.com/closeguard/internal/report"
	"fillmore-labs.com/closeguard/internal/scope"
)

// ErrResultMissing is returned when a required analyzer result is missing.
// This typically indicates a configuration error where the analyzer's
// Requires field is not properly set.
var ErrResultMissing = errors.New("analyzer result missing")

// ErrClassification wraps a failure while classifying a single candidate.
var ErrClassification = errors.New("classification failed")

// Run executes the closeguard analyzer's pipeline.
func (r *Options) Run(p *analysis.Pass) (any, error) {
	// Retrieves the [inspector.Inspector] from the pass results.
	in, ok := p.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	if !ok {
		return nil, fmt.Errorf("closeguard: %s %w", inspect.Analyzer.Name, ErrResultMissing)
	}

	ctx := context.Background()

	ctx, task := trace.NewTask(ctx, "CloseGuard")
	defer task.End()

	trace.Log(ctx, "package", p.Pkg.Path())

	rules := r.Rules()

	region := trace.StartRegion(ctx, "Detect")
	d, err := detect.New(ctx, detect.Config{
		Info:       p.TypesInfo,
		Pkg:        p.Pkg,
		Rules:      rules,
		Facts:      p.ImportObjectFact,
		Structural: r.Behavior.Enabled(config.StructuralTracking),
	}, in.Root())
	region.End()

	if err != nil {
		return nil, err
	}

	// Dependent packages see the structural ownership of this one
	d.ExportFacts(p.ExportObjectFact)

	// Build inverted scope->node map for bidirectional AST/scope navigation
	scopes := scope.NewIndex(p.TypesInfo)

	e := classify.New(p.TypesInfo, d, scopes)
	rep := report.NewReporter(p.Report)

	// Loop over all files
	for f := range in.Root().Children() {
		file := f.Node().(*ast.File)

		currentFile := astutil.NewCurrentFile(p.Fset, file)
		if !currentFile.Valid() {
			astutil.InternalError(p.Report, file, "File %s without valid info", file.Name.Name)

			continue
		}

		// Skip generated files
		if currentFile.Generated() && !r.Behavior.Enabled(config.IncludeGenerated) {
			continue
		}

		// Skip files with nolint comment
		if currentFile.Excluded() {
			continue
		}

		// Loop over all top level declarations in this file
		for decl := range f.Children() {
			if excluded(decl.Node()) {
				continue
			}

			for c, v := range verdicts(ctx, e, p.Fset, p.TypesInfo, decl) {
				if finding, ok := report.New(v, c); ok {
					rep.Report(ctx, currentFile, finding)
				}
			}
		}
	}

	return rep.Findings(), nil
}

// excluded reports whether the declaration carries a nolint comment.
func excluded(n ast.Node) bool {
	switch decl := n.(type) {
	case *ast.FuncDecl:
		return astutil.HasNoLint(decl.Doc)

	case *ast.GenDecl:
		return astutil.HasNoLint(decl.Doc)

	default:
		return false
	}
}

// classifier decides the verdict of candidate expressions.
type classifier interface {
	ObjectCreation(ctx context.Context, c inspector.Cursor) (classify.Verdict, error)
	Invocation(ctx context.Context, c inspector.Cursor) (classify.Verdict, error)
}

// verdicts yields the verdicts of the candidates below root. Candidates failing
// classification are logged and skipped.
func verdicts(ctx context.Context, e classifier, fset *token.FileSet, info *types.Info, root inspector.Cursor) iter.Seq2[inspector.Cursor, classify.Verdict] {
	return func(yield func(inspector.Cursor, classify.Verdict) bool) {
		for c, source := range classify.Candidates(info, root) {
			v, err := classifySafe(ctx, e, c, source)
			if err != nil {
				slog.Debug("Candidate skipped",
					slog.String("pos", fset.Position(c.Node().Pos()).String()),
					slog.Any("error", err))

				continue
			}

			if !yield(c, v) {
				return
			}
		}
	}
}

// classifySafe classifies a single candidate, turning a panic into an error so one
// unexpected syntax shape does not abort the whole pass.
func classifySafe(ctx context.Context, e classifier, c inspector.Cursor, source classify.Source) (v classify.Verdict, err error) {
	defer func() {
		if x := recover(); x != nil {
			v, err = classify.Verdict{}, fmt.Errorf("%w: %v", ErrClassification, x)
		}
	}()

	if source == classify.ObjectCreation {
		return e.ObjectCreation(ctx, c)
	}

	return e.Invocation(ctx, c)
}
