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

type sourceSet uint8

const (
	creations   sourceSet = 1 << ObjectCreation
	invocations sourceSet = 1 << InvocationExpression
	allSources            = creations | invocations
)

func (s sourceSet) has(source Source) bool {
	return s&(1<<source) != 0
}

// rule is an entry of the classification table.
type rule struct {
	name    string
	sources sourceSet
	applies func(e *Engine, ctx context.Context, c *candidate) bool
	handle  func(e *Engine, ctx context.Context, c *candidate) (Verdict, error)
}

// table lists the classification rules in order of precedence.
var table = [...]rule{
	{"unresolved", allSources, (*Engine).isUnresolved, decide(Clean)},
	{"closed", allSources, (*Engine).isClosed, decide(Clean)},
	{"await", invocations, (*Engine).isReceived, (*Engine).await},
	{"not-closer", allSources, (*Engine).isNotCloser, decide(Clean)},
	{"accessor", allSources, (*Engine).isAccessorResult, (*Engine).accessor},
	{"transferred", allSources, (*Engine).isTransferred, decide(Clean)},
	{"ignored", allSources, (*Engine).isIgnored, decide(Clean)},
	{"ignored-call", invocations, (*Engine).isIgnoredCall, decide(Clean)},
	{"argument", allSources, (*Engine).isArgument, (*Engine).argument},
	{"chain", allSources, (*Engine).isTrackedChain, decide(Clean)},
	{"literal", allSources, (*Engine).isLiteralElement, (*Engine).literalElement},
	{"nested-literal", allSources, (*Engine).isNestedLiteralElement, (*Engine).nestedLiteralElement},
	{"deferred", allSources, (*Engine).isDeferred, decide(Clean)},
	{"declaration", allSources, (*Engine).isDeclaration, (*Engine).declaration},
	{"assignment", allSources, (*Engine).isAssignment, (*Engine).assignment},
	{"property", allSources, (*Engine).isPropertyInit, (*Engine).propertyInit},
	{"anonymous", allSources, always, decide(NotDisposedAnonymousObject)},
}

func decide(kind Kind) func(*Engine, context.Context, *candidate) (Verdict, error) {
	return func(_ *Engine, _ context.Context, c *candidate) (Verdict, error) {
		if kind == Clean {
			return Verdict{}, nil
		}

		return Verdict{Kind: kind, Source: c.source}, nil
	}
}

func always(*Engine, context.Context, *candidate) bool { return true }

func (e *Engine) isUnresolved(_ context.Context, c *candidate) bool {
	if c.typ == nil {
		return true
	}

	b, ok := c.typ.(*types.Basic)

	return ok && b.Kind() == types.Invalid
}

// isClosed reports whether the value is the receiver of a release call.
func (e *Engine) isClosed(_ context.Context, c *candidate) bool {
	if kind, _ := c.value.ParentEdge(); kind != edge.SelectorExpr_X {
		return false
	}

	return e.d.IsReleaseSelector(c.value.Parent().Node().(*ast.SelectorExpr))
}

// isReceived reports whether the call's result is received from, `<-f()`.
func (e *Engine) isReceived(_ context.Context, c *candidate) bool {
	if kind, _ := c.value.ParentEdge(); kind != edge.UnaryExpr_X {
		return false
	}

	if c.value.Parent().Node().(*ast.UnaryExpr).Op != token.ARROW {
		return false
	}

	if c.raw == nil {
		return false
	}

	_, ok := c.raw.Underlying().(*types.Chan)

	return ok
}

func (e *Engine) isNotCloser(_ context.Context, c *candidate) bool {
	return !e.d.IsDisposalCapable(c.typ)
}

// isAccessorResult reports whether the value is returned from an accessor method.
func (e *Engine) isAccessorResult(_ context.Context, c *candidate) bool {
	_, _, ok := e.accessorOf(c)

	return ok
}

func (e *Engine) accessorOf(c *candidate) (recv types.Type, fn *types.Func, ok bool) {
	if kind, _ := c.value.ParentEdge(); kind != edge.ReturnStmt_Results {
		return nil, nil, false
	}

	f, ok := astutil.EnclosingFunc(c.value)
	if !ok {
		return nil, nil, false
	}

	decl, ok := f.Node().(*ast.FuncDecl)
	if !ok {
		return nil, nil, false
	}

	fn, ok = e.info.Defs[decl.Name].(*types.Func)
	if !ok || !detect.IsAccessor(fn) {
		return nil, nil, false
	}

	return fn.Signature().Recv().Type(), fn, true
}

func (e *Engine) accessor(_ context.Context, c *candidate) (Verdict, error) {
	recv, fn, _ := e.accessorOf(c)

	return e.member(c, recv, fn.Name(), NotDisposedProperty), nil
}

// isTransferred reports whether the value is returned, sent on a channel or bound to a variable that is returned.
func (e *Engine) isTransferred(ctx context.Context, c *candidate) bool {
	return e.transferred(ctx, c.value, c.tuple)
}

func (e *Engine) transferred(ctx context.Context, value inspector.Cursor, tuple int) bool {
	if e.insideReturn(ctx, value) {
		return true
	}

	p := astutil.Flow(e.info, value)
	if astutil.Root(p) {
		return false
	}

	if kind, _ := p.ParentEdge(); kind == edge.SendStmt_Value {
		return true
	}

	v, ok := e.boundVar(p, tuple)
	if !ok || !scope.IsLocal(v) {
		return false
	}

	return detect.IsResult(p, v) || e.returnedLater(ctx, p, v)
}

// insideReturn reports whether c is part of a return statement of its function.
func (e *Engine) insideReturn(ctx context.Context, c inspector.Cursor) bool {
	for a := range c.Enclosing() {
		if ctx.Err() != nil {
			return false
		}

		switch a.Node().(type) {
		case *ast.ReturnStmt:
			return true

		case *ast.FuncLit, *ast.FuncDecl, ast.Stmt:
			return false
		}
	}

	return false
}

// boundVar returns the variable the value at p is declared or assigned to.
func (e *Engine) boundVar(p inspector.Cursor, tuple int) (*types.Var, bool) {
	id, ok := e.boundIdent(p, tuple)
	if !ok {
		return nil, false
	}

	v, ok := e.info.ObjectOf(id).(*types.Var)

	return v, ok
}

func (e *Engine) boundIdent(p inspector.Cursor, tuple int) (*ast.Ident, bool) {
	if astutil.Root(p) {
		return nil, false
	}

	kind, index := p.ParentEdge()
	switch kind {
	case edge.AssignStmt_Rhs:
		stmt := p.Parent().Node().(*ast.AssignStmt)

		target, ok := astutil.AssignTarget(stmt.Lhs, stmt.Rhs, index, tuple)
		if !ok {
			return nil, false
		}

		id, ok := ast.Unparen(target).(*ast.Ident)

		return id, ok

	case edge.ValueSpec_Values:
		return astutil.SpecTarget(p.Parent().Node().(*ast.ValueSpec), index, tuple)

	default:
		return nil, false
	}
}

// returnedLater reports whether v is returned by the function enclosing p.
func (e *Engine) returnedLater(ctx context.Context, p inspector.Cursor, v *types.Var) bool {
	fn, ok := astutil.EnclosingFunc(p)
	if !ok {
		return false
	}

	for m := range scope.Mentions(ctx, e.info, fn, v) {
		if f, ok := astutil.EnclosingFunc(m); !ok || f != fn {
			continue
		}

		if kind, _ := astutil.Flow(e.info, m).ParentEdge(); kind == edge.ReturnStmt_Results {
			return true
		}
	}

	return false
}

func (e *Engine) isIgnored(_ context.Context, c *candidate) bool {
	return e.d.IsIgnored(c.typ)
}

// isIgnoredCall reports whether the call is a configured ignored function, e.g. a test double factory.
func (e *Engine) isIgnoredCall(_ context.Context, c *candidate) bool {
	call, ok := c.expr.Node().(*ast.CallExpr)

	return ok && e.d.IsIgnoredCall(call)
}

// isArgument reports whether the value is passed to a call.
func (e *Engine) isArgument(_ context.Context, c *candidate) bool {
	_, _, ok := e.argumentOf(c)

	return ok
}

func (e *Engine) argumentOf(c *candidate) (*ast.CallExpr, int, bool) {
	p := astutil.Flow(e.info, c.value)
	if astutil.Root(p) {
		return nil, 0, false
	}

	kind, index := p.ParentEdge()
	if kind != edge.CallExpr_Args {
		return nil, 0, false
	}

	call := p.Parent().Node().(*ast.CallExpr)
	if p == c.value && len(call.Args) == 1 {
		index = c.tuple // f(g()) spreads the results of g
	}

	return call, index, true
}

func (e *Engine) argument(_ context.Context, c *candidate) (Verdict, error) {
	call, index, _ := e.argumentOf(c)

	if e.d.TakesOwnership(call, index) || e.d.IsAtomicExchange(call) {
		return clean("argument"), nil
	}

	return leak(NotDisposedAnonymousObject, c.source, "", "argument"), nil
}

// isTrackedChain reports whether the value starts a method chain containing a tracking call,
// or is the receiver of a method taking ownership of it.
func (e *Engine) isTrackedChain(ctx context.Context, c *candidate) bool {
	if c.source == InvocationExpression && e.isMethodCall(c.expr.Node()) && e.d.IsTrackingMethodCall(c.expr.Node().(*ast.CallExpr)) {
		return true
	}

	for v := c.value; ctx.Err() == nil; {
		if kind, _ := v.ParentEdge(); kind != edge.SelectorExpr_X {
			return false
		}

		sel := v.Parent()
		if kind, _ := sel.ParentEdge(); kind != edge.CallExpr_Fun {
			return false
		}

		call := sel.Parent()
		ce := call.Node().(*ast.CallExpr)
		if e.d.IsTrackingMethodCall(ce) || v == c.value && e.d.TakesReceiver(ce) {
			return true
		}

		v = astutil.ValueParent(e.info, call)
	}

	return false
}

func (e *Engine) isMethodCall(n ast.Node) bool {
	call, ok := n.(*ast.CallExpr)
	if !ok {
		return false
	}

	sel, ok := ast.Unparen(call.Fun).(*ast.SelectorExpr)
	if !ok {
		return false
	}

	s, ok := e.info.Selections[sel]

	return ok && s.Kind() == types.MethodVal
}

// isLiteralElement reports whether the value is a positional element of a struct literal.
func (e *Engine) isLiteralElement(_ context.Context, c *candidate) bool {
	if kind, _ := c.value.ParentEdge(); kind != edge.CompositeLit_Elts {
		return false
	}

	_, _, ok := astutil.LiteralElement(e.info, c.value)

	return ok
}

func (e *Engine) literalElement(_ context.Context, c *candidate) (Verdict, error) {
	return e.trackedElement(c, c.value), nil
}

// trackedElement checks the struct literal element at p against the literal's type.
func (e *Engine) trackedElement(c *candidate, p inspector.Cursor) Verdict {
	lit, elem, ok := astutil.LiteralElement(e.info, p)
	if !ok {
		return leak(NotDisposedAnonymousObject, c.source, "", "")
	}

	l := lit.Node().(*ast.CompositeLit)
	if e.d.IsTrackedType(e.info.TypeOf(l), l, elem) {
		return Verdict{}
	}

	return leak(NotDisposedAnonymousObject, c.source, "", "")
}

// isNestedLiteralElement reports whether the value is an element of a container
// that initializes a struct literal element.
func (e *Engine) isNestedLiteralElement(_ context.Context, c *candidate) bool {
	_, ok := e.nestedLiteral(c)

	return ok
}

func (e *Engine) nestedLiteral(c *candidate) (inspector.Cursor, bool) {
	if _, ok := astutil.Container(e.info, c.value); !ok {
		return c.value, false
	}

	p := astutil.Flow(e.info, c.value)
	_, _, ok := astutil.LiteralElement(e.info, p)

	return p, ok
}

func (e *Engine) nestedLiteralElement(_ context.Context, c *candidate) (Verdict, error) {
	p, _ := e.nestedLiteral(c)

	return e.trackedElement(c, p), nil
}

// isDeferred reports whether the value is created in a defer statement.
func (e *Engine) isDeferred(ctx context.Context, c *candidate) bool {
	return e.insideDefer(ctx, astutil.Flow(e.info, c.value))
}

func (e *Engine) insideDefer(ctx context.Context, c inspector.Cursor) bool {
	for a := range c.Enclosing() {
		if ctx.Err() != nil {
			return false
		}

		switch a.Node().(type) {
		case *ast.DeferStmt:
			return true

		case *ast.FuncDecl:
			return false

		case *ast.FuncLit:
			if !deferredLiteral(a) {
				return false
			}
		}
	}

	return false
}

// deferredLiteral reports whether the function literal at c is called by a defer statement.
func deferredLiteral(c inspector.Cursor) bool {
	if kind, _ := c.ParentEdge(); kind != edge.CallExpr_Fun {
		return false
	}

	kind, _ := c.Parent().ParentEdge()

	return kind == edge.DeferStmt_Call
}

// isDeclaration reports whether the value initializes a declared variable or an unexported field.
func (e *Engine) isDeclaration(_ context.Context, c *candidate) bool {
	p := astutil.Flow(e.info, c.value)
	if astutil.Root(p) {
		return false
	}

	switch kind, _ := p.ParentEdge(); kind {
	case edge.AssignStmt_Rhs:
		return p.Parent().Node().(*ast.AssignStmt).Tok == token.DEFINE

	case edge.ValueSpec_Values:
		return true

	case edge.KeyValueExpr_Value:
		field, ok := e.keyedField(p)

		return ok && !field.Exported()

	default:
		return false
	}
}

func (e *Engine) declaration(ctx context.Context, c *candidate) (Verdict, error) {
	p := astutil.Flow(e.info, c.value)

	if kind, _ := p.ParentEdge(); kind == edge.KeyValueExpr_Value {
		field, _ := e.keyedField(p)
		lit, _, _ := astutil.LiteralElement(e.info, p)

		return e.member(c, e.info.TypeOf(lit.Node().(*ast.CompositeLit)), field.Name(), NotDisposedField), nil
	}

	tuple := c.tuple
	if p != c.value {
		tuple = 0
	}

	id, ok := e.boundIdent(p, tuple)
	if !ok || id.Name == "_" {
		return leak(NotDisposedAnonymousObject, c.source, "", ""), nil
	}

	v, ok := e.info.ObjectOf(id).(*types.Var)
	if !ok || !scope.IsLocal(v) {
		return Verdict{}, nil // package level
	}

	return e.local(ctx, c, p, v, make(map[*types.Var]struct{}))
}

// keyedField returns the struct field a keyed literal element at p initializes.
func (e *Engine) keyedField(p inspector.Cursor) (*types.Var, bool) {
	lit, elem, ok := astutil.LiteralElement(e.info, p)
	if !ok {
		return nil, false
	}

	return astutil.LiteralField(e.info, lit.Node().(*ast.CompositeLit), elem)
}

// isAssignment reports whether the value is assigned with `=`.
func (e *Engine) isAssignment(_ context.Context, c *candidate) bool {
	p := astutil.Flow(e.info, c.value)
	if astutil.Root(p) {
		return false
	}

	kind, _ := p.ParentEdge()

	return kind == edge.AssignStmt_Rhs && p.Parent().Node().(*ast.AssignStmt).Tok == token.ASSIGN
}

func (e *Engine) assignment(ctx context.Context, c *candidate) (Verdict, error) {
	p := astutil.Flow(e.info, c.value)

	_, index := p.ParentEdge()
	stmt := p.Parent().Node().(*ast.AssignStmt)

	tuple := c.tuple
	if p != c.value {
		tuple = 0
	}

	target, ok := astutil.AssignTarget(stmt.Lhs, stmt.Rhs, index, tuple)
	if !ok {
		return Verdict{}, nil
	}

	return e.assign(ctx, c, p, target)
}

// isPropertyInit reports whether the value initializes an exported field in a keyed struct literal.
func (e *Engine) isPropertyInit(_ context.Context, c *candidate) bool {
	p := astutil.Flow(e.info, c.value)
	if astutil.Root(p) {
		return false
	}

	if kind, _ := p.ParentEdge(); kind != edge.KeyValueExpr_Value {
		return false
	}

	field, ok := e.keyedField(p)

	return ok && field.Exported()
}

func (e *Engine) propertyInit(_ context.Context, c *candidate) (Verdict, error) {
	p := astutil.Flow(e.info, c.value)
	field, _ := e.keyedField(p)
	lit, _, _ := astutil.LiteralElement(e.info, p)

	return e.member(c, e.info.TypeOf(lit.Node().(*ast.CompositeLit)), field.Name(), NotDisposedProperty), nil
}
