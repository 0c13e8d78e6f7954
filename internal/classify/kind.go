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

package classify

import "go/ast"

//go:generate go tool stringer -type Kind,Source -linecomment

// Kind classifies the verdict for a closer.
type Kind uint8

const (
	// Clean means the value is closed, tracked or handed off; no diagnostic.
	Clean Kind = iota // clean
	// NotDisposedAnonymousObject is a closer without a binding that is never closed.
	NotDisposedAnonymousObject // ano
	// NotDisposedLocalVariable is a closer in a local variable that is never closed.
	NotDisposedLocalVariable // var
	// NotDisposedField is a closer stored in an unexported field the owner's Close does not release.
	NotDisposedField // fld
	// NotDisposedProperty is a closer stored in an exported field or returned from an accessor
	// the owner's Close does not release.
	NotDisposedProperty // prp
)

// Source identifies how a closer was produced.
type Source uint8

const (
	// ObjectCreation is a composite literal or new(T).
	ObjectCreation Source = iota // creation
	// InvocationExpression is the result of a function or method call.
	InvocationExpression // invocation
)

// Verdict is the result of classifying a candidate.
type Verdict struct {
	Kind   Kind
	Source Source
	// Name is the variable, field or accessor the closer is bound to, if any.
	Name string
	// Rule names the deciding rule.
	Rule string
	// Scope is the node a leaked local variable is scoped to, if known.
	Scope ast.Node
}

// Leak reports whether the verdict calls for a diagnostic.
func (v Verdict) Leak() bool {
	return v.Kind != Clean
}

func clean(rule string) Verdict {
	return Verdict{Kind: Clean, Rule: rule}
}

func leak(kind Kind, source Source, name, rule string) Verdict {
	return Verdict{Kind: kind, Source: source, Name: name, Rule: rule}
}
