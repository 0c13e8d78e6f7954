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

import (
	"context"
	"go/ast"
	"go/types"
	"iter"

	"golang.org/x/tools/go/ast/inspector"

	"fillmore-labs.com/closeguard/internal/astutil"
	"fillmore-labs.com/closeguard/internal/detect"
	"fillmore-labs.com/closeguard/internal/scope"
)

// Engine classifies candidate expressions. It holds no mutable state and
// is safe for concurrent use.
type Engine struct {
	info   *types.Info
	d      *detect.Detector
	scopes scope.Index
}

// New creates a classification [Engine].
func New(info *types.Info, d *detect.Detector, scopes scope.Index) *Engine {
	return &Engine{info: info, d: d, scopes: scopes}
}

// candidate is an expression producing a closer.
type candidate struct {
	// expr is the creating expression.
	expr inspector.Cursor
	// value is the outermost expression passing the value on unchanged.
	value  inspector.Cursor
	source Source
	// raw is the type of the expression, typ the type of the closer it produces.
	raw, typ types.Type
	// tuple is the index of typ in a multi-valued result.
	tuple int
}

// ObjectCreation classifies a composite literal or a new(T) call.
// The only error returned is the cancellation error of ctx.
func (e *Engine) ObjectCreation(ctx context.Context, c inspector.Cursor) (Verdict, error) {
	return e.classify(ctx, c, ObjectCreation)
}

// Invocation classifies a function or method call.
// The only error returned is the cancellation error of ctx.
func (e *Engine) Invocation(ctx context.Context, c inspector.Cursor) (Verdict, error) {
	return e.classify(ctx, c, InvocationExpression)
}

func (e *Engine) classify(ctx context.Context, c inspector.Cursor, source Source) (Verdict, error) {
	if err := ctx.Err(); err != nil {
		return Verdict{}, err
	}

	expr, ok := c.Node().(ast.Expr)
	if !ok {
		return clean("unresolved"), nil
	}

	raw := e.info.TypeOf(expr)
	value := astutil.ValueParent(e.info, c)

	var verdict Verdict
	for typ, tuple := range e.resultTypes(raw) {
		cand := &candidate{
			expr:   c,
			value:  value,
			source: source,
			raw:    raw,
			typ:    typ,
			tuple:  tuple,
		}

		v, err := e.classifyValue(ctx, cand)
		if err != nil || v.Leak() {
			return v, err
		}

		verdict = v
	}

	return verdict, nil
}

// classifyValue applies the first matching rule of the table.
func (e *Engine) classifyValue(ctx context.Context, cand *candidate) (Verdict, error) {
	for i := range table {
		r := &table[i]
		if !r.sources.has(cand.source) {
			continue
		}

		applies := r.applies(e, ctx, cand)

		if err := ctx.Err(); err != nil {
			return Verdict{}, err
		}

		if !applies {
			continue
		}

		v, err := r.handle(e, ctx, cand)
		if err != nil {
			return Verdict{}, err
		}

		if v.Rule == "" {
			v.Rule = r.name
		}

		return v, nil
	}

	return leak(NotDisposedAnonymousObject, cand.source, "", "fallback"), nil
}

// resultTypes yields each closer of a multi-valued result with its index, or the first
// element when there is none. Single values are yielded as is.
func (e *Engine) resultTypes(t types.Type) iter.Seq2[types.Type, int] {
	return func(yield func(types.Type, int) bool) {
		tuple, ok := t.(*types.Tuple)
		if !ok {
			yield(t, 0)

			return
		}

		found := false
		for i := range tuple.Len() {
			if r := tuple.At(i).Type(); e.d.IsDisposalCapable(r) {
				found = true
				if !yield(r, i) {
					return
				}
			}
		}

		switch {
		case found:

		case tuple.Len() > 0:
			yield(tuple.At(0).Type(), 0)

		default:
			yield(nil, 0)
		}
	}
}
