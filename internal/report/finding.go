// Copyright 2026 Oliver Eikemeier. All Rights Reserved.
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
	"cmp"
	"fmt"
	"go/token"
	"slices"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/ast/inspector"

	"fillmore-labs.com/closeguard/internal/classify"
	"fillmore-labs.com/closeguard/internal/scope"
)

// VariableName is the property key carrying the bound variable, field or property name.
const VariableName = "variableName"

// Finding is a reported closer leak.
type Finding struct {
	Kind       classify.Kind
	Source     classify.Source
	Pos, End   token.Pos
	Properties map[string]string
	Related    []analysis.RelatedInformation

	// node is the inspector index of the candidate expression.
	node int32
}

// New maps a verdict for the candidate at c to a [Finding]. Clean verdicts yield none.
func New(v classify.Verdict, c inspector.Cursor) (Finding, bool) {
	if !v.Leak() {
		return Finding{}, false
	}

	node := c.Node()

	f := Finding{
		Kind:   v.Kind,
		Source: v.Source,
		Pos:    node.Pos(),
		End:    node.End(),
		node:   c.Index(),
	}

	if v.Name != "" && v.Kind != classify.NotDisposedAnonymousObject {
		f.Properties = map[string]string{VariableName: v.Name}
	}

	if v.Scope != nil {
		f.Related = []analysis.RelatedInformation{{
			Pos:     v.Scope.End() - 1,
			End:     v.Scope.End(),
			Message: fmt.Sprintf("'%s' goes out of %s scope here", v.Name, scope.Name(v.Scope)),
		}}
	}

	return f, true
}

// Cursor returns the candidate expression of the finding. in must be the inspector
// of the pass that produced it, usually the result of [inspect.Analyzer].
//
// [inspect.Analyzer]: https://pkg.go.dev/golang.org/x/tools/go/analysis/passes/inspect
func (f Finding) Cursor(in *inspector.Inspector) inspector.Cursor {
	return in.At(f.node)
}

// Name returns the bound name, if any.
func (f Finding) Name() string {
	return f.Properties[VariableName]
}

// Message returns the diagnostic message.
func (f Finding) Message() string {
	origin := origin(f.Source)

	switch f.Kind {
	case classify.NotDisposedAnonymousObject:
		return fmt.Sprintf("Closer from %s is never closed (cg:%s)", origin, f.Kind)

	case classify.NotDisposedLocalVariable:
		return fmt.Sprintf("Variable '%s' holds closer from %s that is never closed (cg:%s)", f.Name(), origin, f.Kind)

	case classify.NotDisposedField:
		return fmt.Sprintf("Field '%s' is assigned closer from %s not released by Close (cg:%s)", f.Name(), origin, f.Kind)

	case classify.NotDisposedProperty:
		return fmt.Sprintf("Property '%s' is assigned closer from %s not released by Close (cg:%s)", f.Name(), origin, f.Kind)

	default:
		return fmt.Sprintf("Unexpected finding %s (cg:%s)", f.Kind, f.Kind)
	}
}

func origin(s classify.Source) string {
	if s == classify.ObjectCreation {
		return "object creation"
	}

	return "call"
}

// Diagnostic converts the finding into an [analysis.Diagnostic].
func (f Finding) Diagnostic() analysis.Diagnostic {
	return analysis.Diagnostic{
		Pos:      f.Pos,
		End:      f.End,
		Category: f.Kind.String(),
		Message:  f.Message(),
		Related:  f.Related,
	}
}

// Findings are the leaks of a package, ordered by position.
type Findings []Finding

// Sort orders the findings by position.
func (fs Findings) Sort() {
	slices.SortStableFunc(fs, func(a, b Finding) int {
		return cmp.Or(cmp.Compare(a.Pos, b.Pos), cmp.Compare(a.End, b.End))
	})
}
