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
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ast/edge"
	"golang.org/x/tools/go/ast/inspector"

	"fillmore-labs.com/closeguard/internal/astutil"
	"fillmore-labs.com/closeguard/internal/detect"
	"fillmore-labs.com/closeguard/internal/scope"
)

// member checks a field or accessor against the Close method of its owner.
func (e *Engine) member(c *candidate, owner types.Type, name string, kind Kind) Verdict {
	if owner != nil && e.d.ReleasedBy(owner, name) {
		return Verdict{}
	}

	return leak(kind, c.source, name, "")
}

// fieldKind distinguishes fields from properties by exportedness.
func fieldKind(name string) Kind {
	if ast.IsExported(name) {
		return NotDisposedProperty
	}

	return NotDisposedField
}

// assign checks the target of an assignment.
func (e *Engine) assign(ctx context.Context, c *candidate, p inspector.Cursor, target ast.Expr) (Verdict, error) {
	switch t := ast.Unparen(target).(type) {
	case *ast.Ident:
		if t.Name == "_" {
			return leak(NotDisposedAnonymousObject, c.source, "", ""), nil
		}

		v, ok := e.info.ObjectOf(t).(*types.Var)
		if !ok || !scope.IsLocal(v) {
			return Verdict{}, nil
		}

		return e.local(ctx, c, p, v, make(map[*types.Var]struct{}))

	case *ast.SelectorExpr:
		if s, ok := e.info.Selections[t]; ok {
			owner, _ := detect.FieldOwner(s)

			return e.member(c, owner, t.Sel.Name, fieldKind(t.Sel.Name)), nil
		}

		return Verdict{}, nil // package-qualified variable

	case *ast.IndexExpr:
		return e.assign(ctx, c, p, t.X)

	case *ast.IndexListExpr:
		return e.assign(ctx, c, p, t.X)

	case *ast.StarExpr:
		return Verdict{}, nil

	default:
		return leak(NotDisposedAnonymousObject, c.source, "", ""), nil
	}
}

// local performs the declaration analysis of a local variable: it scans every mention of v
// in its scope for a release, a hand-off or a transfer.
func (e *Engine) local(ctx context.Context, c *candidate, p inspector.Cursor, v *types.Var, visited map[*types.Var]struct{}) (Verdict, error) {
	visited[v] = struct{}{}

	root, ok := e.scopes.Root(p, v)
	if !ok {
		return Verdict{}, nil
	}

	fn, _ := astutil.EnclosingFunc(root)

	var (
		deferred, deferredLiteral, deferredTracked bool
		released                                   bool
		aliases                                    []aliasMention
	)

	for m := range scope.Mentions(ctx, e.info, root, v) {
		switch e.deferMention(m) {
		case deferDirect:
			deferred = true

		case deferLiteral:
			deferredLiteral = true

		case deferTrackedLiteral:
			deferredTracked = true
		}

		switch u := e.d.UseOf(ctx, m); u {
		case detect.Released, detect.Owned:
			released = true

		case detect.Transferred:
			if e.returnedFrom(m, fn) {
				released = true
			}

		case detect.Unused:
			if alias, ok := e.alias(m, v); ok {
				aliases = append(aliases, aliasMention{alias, m})
			}
		}

		if deferred {
			break
		}
	}

	if err := ctx.Err(); err != nil {
		return Verdict{}, err
	}

	switch {
	case deferred, deferredTracked:
		return Verdict{}, nil

	case deferredLiteral:
		return scoped(leak(NotDisposedLocalVariable, c.source, v.Name(), "deferred-literal"), root), nil

	case released:
		return Verdict{}, nil
	}

	for _, alias := range aliases {
		if _, ok := visited[alias.v]; ok {
			continue
		}

		if verdict, err := e.local(ctx, c, alias.at, alias.v, visited); err != nil || !verdict.Leak() {
			return verdict, err
		}
	}

	return scoped(leak(NotDisposedLocalVariable, c.source, v.Name(), ""), root), nil
}

func scoped(v Verdict, root inspector.Cursor) Verdict {
	v.Scope = root.Node()

	return v
}

// aliasMention is a local variable a value is copied to, at the mention copying it.
type aliasMention struct {
	v  *types.Var
	at inspector.Cursor
}

// returnedFrom reports whether the transfer at m leaves fn, which is always the case
// for sends and stores outside the function.
func (e *Engine) returnedFrom(m inspector.Cursor, fn inspector.Cursor) bool {
	p := astutil.Flow(e.info, m)
	if kind, _ := p.ParentEdge(); kind != edge.ReturnStmt_Results {
		return true
	}

	f, ok := astutil.EnclosingFunc(p)

	return ok && f == fn
}

// alias returns the local variable the mention at m is copied to.
func (e *Engine) alias(m inspector.Cursor, v *types.Var) (*types.Var, bool) {
	p := astutil.Flow(e.info, m)

	a, ok := e.boundVar(p, 0)
	if !ok || a == v || !scope.IsLocal(a) {
		return nil, false
	}

	return a, true
}

type deferUse uint8

const (
	deferNone deferUse = iota
	deferDirect
	deferLiteral
	deferTrackedLiteral
)

// deferMention classifies a mention appearing as receiver or argument of a deferred call,
// directly or as an element of a struct literal.
func (e *Engine) deferMention(m inspector.Cursor) deferUse {
	p := astutil.Flow(e.info, m)
	if e.deferredRelease(p) {
		return deferDirect
	}

	lit, elem, ok := astutil.LiteralElement(e.info, p)
	if !ok {
		return deferNone
	}

	if _, _, ok := deferredOperand(astutil.ValueParent(e.info, lit)); !ok {
		return deferNone
	}

	l := lit.Node().(*ast.CompositeLit)
	if e.d.IsTrackedType(e.info.TypeOf(l), l, elem) {
		return deferTrackedLiteral
	}

	return deferLiteral
}

// deferredRelease reports whether p is released by a deferred call: the receiver of a release
// method or of a method owning its receiver, or an argument the call takes ownership of.
func (e *Engine) deferredRelease(p inspector.Cursor) bool {
	call, index, ok := deferredOperand(p)
	if !ok {
		return false
	}

	ce := call.Node().(*ast.CallExpr)
	if index >= 0 {
		return e.d.TakesOwnership(ce, index)
	}

	return e.d.IsReleaseCall(ce) || e.d.TakesReceiver(ce)
}

// deferredOperand returns the call of a defer statement p is the receiver (index -1)
// or an argument of.
func deferredOperand(p inspector.Cursor) (call inspector.Cursor, index int, ok bool) {
	if astutil.Root(p) {
		return inspector.Cursor{}, 0, false
	}

	switch kind, i := p.ParentEdge(); kind {
	case edge.CallExpr_Args:
		call, index = p.Parent(), i

	case edge.SelectorExpr_X:
		sel := p.Parent()
		if k, _ := sel.ParentEdge(); k != edge.CallExpr_Fun {
			return inspector.Cursor{}, 0, false
		}

		call, index = sel.Parent(), -1

	default:
		return inspector.Cursor{}, 0, false
	}

	if kind, _ := call.ParentEdge(); kind != edge.DeferStmt_Call {
		return inspector.Cursor{}, 0, false
	}

	return call, index, true
}

// await handles a call whose channel result is received from.
func (e *Engine) await(ctx context.Context, c *candidate) (Verdict, error) {
	ch, _ := c.raw.Underlying().(*types.Chan)

	elem := ch.Elem()
	if !e.d.IsDisposalCapable(elem) || e.d.IsIgnored(elem) {
		return Verdict{}, nil
	}

	recv := astutil.ValueParent(e.info, c.value.Parent())
	if e.insideDefer(ctx, recv) || e.transferred(ctx, recv, 0) {
		return Verdict{}, nil
	}

	p := astutil.Flow(e.info, recv)
	if astutil.Root(p) {
		return leak(NotDisposedAnonymousObject, InvocationExpression, "", ""), nil
	}

	kind, index := p.ParentEdge()
	switch kind {
	case edge.ValueSpec_Values:
		return e.awaitDeclared(ctx, c, p)

	case edge.AssignStmt_Rhs:
		stmt := p.Parent().Node().(*ast.AssignStmt)
		if stmt.Tok == token.DEFINE {
			return e.awaitDeclared(ctx, c, p)
		}

		target, ok := astutil.AssignTarget(stmt.Lhs, stmt.Rhs, index, 0)
		if !ok {
			break
		}

		name := assignedName(target)
		if name == "" {
			break
		}

		if recvType, ok := e.receiverType(p); ok && e.d.ReleasedBy(recvType, name) {
			return Verdict{}, nil
		}

		return leak(NotDisposedLocalVariable, InvocationExpression, name, ""), nil
	}

	return leak(NotDisposedAnonymousObject, InvocationExpression, "", ""), nil
}

func (e *Engine) awaitDeclared(ctx context.Context, c *candidate, p inspector.Cursor) (Verdict, error) {
	awaited := *c
	awaited.source = InvocationExpression

	id, ok := e.boundIdent(p, 0)
	if !ok || id.Name == "_" {
		return leak(NotDisposedAnonymousObject, InvocationExpression, "", ""), nil
	}

	v, ok := e.info.ObjectOf(id).(*types.Var)
	if !ok || !scope.IsLocal(v) {
		return Verdict{}, nil
	}

	return e.local(ctx, &awaited, p, v, make(map[*types.Var]struct{}))
}

// assignedName returns the name of an assignment target: a variable or a selected field.
func assignedName(target ast.Expr) string {
	switch t := ast.Unparen(target).(type) {
	case *ast.Ident:
		if t.Name == "_" {
			return ""
		}

		return t.Name

	case *ast.SelectorExpr:
		return t.Sel.Name

	default:
		return ""
	}
}

// receiverType returns the receiver type of the method declaration enclosing p.
func (e *Engine) receiverType(p inspector.Cursor) (types.Type, bool) {
	for f := range p.Enclosing((*ast.FuncDecl)(nil)) {
		decl := f.Node().(*ast.FuncDecl)
		if decl.Recv == nil || len(decl.Recv.List) == 0 {
			return nil, false
		}

		t := e.info.TypeOf(decl.Recv.List[0].Type)

		return t, t != nil
	}

	return nil, false
}
