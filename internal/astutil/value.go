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

package astutil

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ast/edge"
	"golang.org/x/tools/go/ast/inspector"
)

// IsConversion reports whether call is a type conversion.
func IsConversion(info *types.Info, call *ast.CallExpr) bool {
	tv, ok := info.Types[call.Fun]

	return ok && tv.IsType()
}

// IsBuiltin reports whether call invokes the named predeclared function.
func IsBuiltin(info *types.Info, call *ast.CallExpr, name string) bool {
	id, ok := ast.Unparen(call.Fun).(*ast.Ident)
	if !ok {
		return false
	}

	b, ok := info.Uses[id].(*types.Builtin)

	return ok && b.Name() == name
}

// Root reports whether c has no syntactic parent expression, statement or declaration.
func Root(c inspector.Cursor) bool {
	if _, ok := c.Node().(*ast.File); ok || c.Node() == nil {
		return true
	}

	kind, _ := c.ParentEdge()

	return kind == edge.Invalid
}

// ValueParent ascends from c through expressions that pass a value on unchanged:
// parentheses, conversions, type assertions and the address operator.
// It returns the outermost such expression.
func ValueParent(info *types.Info, c inspector.Cursor) inspector.Cursor {
	for !Root(c) {
		kind, _ := c.ParentEdge()
		parent := c.Parent()

		switch kind {
		case edge.ParenExpr_X, edge.TypeAssertExpr_X:

		case edge.UnaryExpr_X:
			if parent.Node().(*ast.UnaryExpr).Op != token.AND {
				return c
			}

		case edge.CallExpr_Args:
			if !IsConversion(info, parent.Node().(*ast.CallExpr)) {
				return c
			}

		default:
			return c
		}

		c = parent
	}

	return c
}

// Container returns the slice, array or map literal or the append call c is an element of.
func Container(info *types.Info, c inspector.Cursor) (inspector.Cursor, bool) {
	if Root(c) {
		return c, false
	}

	kind, index := c.ParentEdge()
	parent := c.Parent()

	switch kind {
	case edge.CompositeLit_Elts:
		lit := parent.Node().(*ast.CompositeLit)
		if _, ok := StructOf(info, lit); !ok {
			return parent, true
		}

	case edge.KeyValueExpr_Value:
		lit := parent.Parent()
		if l, ok := lit.Node().(*ast.CompositeLit); ok {
			if _, ok := StructOf(info, l); !ok {
				return lit, true
			}
		}

	case edge.CallExpr_Args:
		if index > 0 && IsBuiltin(info, parent.Node().(*ast.CallExpr), "append") {
			return parent, true
		}
	}

	return c, false
}

// Flow ascends from c through value wrappers and transparent containers
// to the position where the value is consumed.
func Flow(info *types.Info, c inspector.Cursor) inspector.Cursor {
	for {
		c = ValueParent(info, c)

		container, ok := Container(info, c)
		if !ok {
			return c
		}

		c = container
	}
}

// StructOf returns the struct type of a composite literal, looking through pointers.
func StructOf(info *types.Info, lit *ast.CompositeLit) (*types.Struct, bool) {
	t := info.TypeOf(lit)
	if t == nil {
		return nil, false
	}

	if p, ok := types.Unalias(t).(*types.Pointer); ok {
		t = p.Elem()
	}

	s, ok := t.Underlying().(*types.Struct)

	return s, ok
}

// LiteralField returns the struct field initialized by elem, an element of a struct literal.
func LiteralField(info *types.Info, lit *ast.CompositeLit, elem ast.Expr) (*types.Var, bool) {
	s, ok := StructOf(info, lit)
	if !ok {
		return nil, false
	}

	if kv, ok := elem.(*ast.KeyValueExpr); ok {
		id, ok := kv.Key.(*ast.Ident)
		if !ok {
			return nil, false
		}

		field, ok := info.Uses[id].(*types.Var)

		return field, ok && field.IsField()
	}

	for i, e := range lit.Elts {
		if e == elem && i < s.NumFields() {
			return s.Field(i), true
		}
	}

	return nil, false
}

// LiteralElement returns the struct literal and element c initializes, if any.
// c is either a positional element or the value of a keyed element.
func LiteralElement(info *types.Info, c inspector.Cursor) (lit inspector.Cursor, elem ast.Expr, ok bool) {
	if Root(c) {
		return c, nil, false
	}

	elemCursor := c
	if kind, _ := c.ParentEdge(); kind == edge.KeyValueExpr_Value {
		elemCursor = c.Parent()
	}

	if kind, _ := elemCursor.ParentEdge(); kind != edge.CompositeLit_Elts {
		return c, nil, false
	}

	lit = elemCursor.Parent()
	if _, ok := StructOf(info, lit.Node().(*ast.CompositeLit)); !ok {
		return c, nil, false
	}

	return lit, elemCursor.Node().(ast.Expr), true
}

// EnclosingFunc returns the innermost function declaration or literal containing c.
func EnclosingFunc(c inspector.Cursor) (inspector.Cursor, bool) {
	for f := range c.Enclosing((*ast.FuncDecl)(nil), (*ast.FuncLit)(nil)) {
		return f, true
	}

	return c, false
}

// FuncBody returns the body of a function declaration or literal.
func FuncBody(fn ast.Node) *ast.BlockStmt {
	switch f := fn.(type) {
	case *ast.FuncDecl:
		return f.Body

	case *ast.FuncLit:
		return f.Body

	default:
		return nil
	}
}

// FuncType returns the signature syntax of a function declaration or literal.
func FuncType(fn ast.Node) *ast.FuncType {
	switch f := fn.(type) {
	case *ast.FuncDecl:
		return f.Type

	case *ast.FuncLit:
		return f.Type

	default:
		return nil
	}
}

// AssignTarget returns the left-hand side receiving the right-hand side at index.
// For a single multi-valued right-hand side, tuple selects the result.
func AssignTarget(lhs, rhs []ast.Expr, index, tuple int) (ast.Expr, bool) {
	switch {
	case len(lhs) == len(rhs) && index < len(lhs):
		return lhs[index], true

	case len(rhs) == 1 && tuple < len(lhs):
		return lhs[tuple], true

	default:
		return nil, false
	}
}

// SpecTarget returns the name declared by the value at index of a var spec.
// For a single multi-valued value, tuple selects the result.
func SpecTarget(spec *ast.ValueSpec, index, tuple int) (*ast.Ident, bool) {
	switch {
	case len(spec.Names) == len(spec.Values) && index < len(spec.Names):
		return spec.Names[index], true

	case len(spec.Values) == 1 && tuple < len(spec.Names):
		return spec.Names[tuple], true

	default:
		return nil, false
	}
}
