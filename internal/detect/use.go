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

package detect

import (
	"context"
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/ast/edge"
	"golang.org/x/tools/go/ast/inspector"

	"fillmore-labs.com/closeguard/internal/astutil"
	"fillmore-labs.com/closeguard/internal/scope"
)

// Use describes how a value is consumed at a position.
type Use uint8

const (
	// Unused means the position is not a known sink.
	Unused Use = iota
	// Released means the value is closed.
	Released
	// Owned means the value is handed to something taking ownership.
	Owned
	// Transferred means the value leaves the function: returned, sent or stored outside.
	Transferred
)

// Releases reports whether u ends the value's lifetime within the analyzed code.
func (u Use) Releases() bool {
	return u == Released || u == Owned
}

// UseOf determines how the value of the expression at c is consumed. Values flowing into
// local variables are not followed.
func (d *Detector) UseOf(ctx context.Context, c inspector.Cursor) Use {
	p := astutil.Flow(d.info, c)
	if astutil.Root(p) {
		return Unused
	}

	kind, index := p.ParentEdge()
	parent := p.Parent()

	switch kind {
	case edge.SelectorExpr_X:
		sel := parent.Node().(*ast.SelectorExpr)
		if d.IsReleaseSelector(sel) {
			return Released
		}

		if k, _ := parent.ParentEdge(); k == edge.CallExpr_Fun && d.TakesReceiver(parent.Parent().Node().(*ast.CallExpr)) {
			return Owned
		}

	case edge.IndexExpr_X:
		if u := d.UseOf(ctx, parent); u.Releases() {
			return u
		}

	case edge.RangeStmt_X:
		if d.rangeReleases(ctx, parent) {
			return Released
		}

	case edge.CallExpr_Args:
		call := parent.Node().(*ast.CallExpr)
		if d.IsAtomicExchange(call) || d.TakesOwnership(call, index) {
			return Owned
		}

	case edge.ReturnStmt_Results, edge.SendStmt_Value:
		return Transferred

	case edge.CompositeLit_Elts, edge.KeyValueExpr_Value:
		lit, elem, ok := astutil.LiteralElement(d.info, p)
		if !ok {
			break
		}

		l := lit.Node().(*ast.CompositeLit)
		if d.IsTrackedType(d.info.TypeOf(l), l, elem) {
			return Owned
		}

	case edge.AssignStmt_Rhs:
		stmt := parent.Node().(*ast.AssignStmt)
		if target, ok := astutil.AssignTarget(stmt.Lhs, stmt.Rhs, index, 0); ok {
			return d.TargetUse(p, target)
		}
	}

	return Unused
}

// TargetUse determines how a value assigned to target is consumed,
// without following local variables. c is a cursor inside the function of the assignment.
func (d *Detector) TargetUse(c inspector.Cursor, target ast.Expr) Use {
	switch t := ast.Unparen(target).(type) {
	case *ast.StarExpr:
		return Transferred

	case *ast.Ident:
		if t.Name == "_" {
			return Unused
		}

		v, ok := d.info.ObjectOf(t).(*types.Var)
		switch {
		case !ok:
			return Unused

		case !scope.IsLocal(v), IsResult(c, v):
			return Transferred
		}

	case *ast.SelectorExpr:
		if s, ok := d.info.Selections[t]; ok {
			if owner, ok := FieldOwner(s); ok && d.ReleasedBy(owner, t.Sel.Name) {
				return Owned
			}

			return Unused
		}

		if v, ok := d.info.Uses[t.Sel].(*types.Var); ok && !scope.IsLocal(v) {
			return Transferred // package-qualified variable
		}

	case *ast.IndexExpr:
		if u := d.TargetUse(c, t.X); u != Unused {
			return u
		}
	}

	return Unused
}

// IsResult reports whether v is a named result of the function enclosing c.
func IsResult(c inspector.Cursor, v *types.Var) bool {
	fn, ok := astutil.EnclosingFunc(c)
	if !ok {
		return false
	}

	ft := astutil.FuncType(fn.Node())
	if ft == nil || ft.Results == nil {
		return false
	}

	for _, field := range ft.Results.List {
		for _, name := range field.Names {
			if name.Pos() == v.Pos() {
				return true
			}
		}
	}

	return false
}

// rangeReleases reports whether the body of a range statement releases the iteration values.
func (d *Detector) rangeReleases(ctx context.Context, c inspector.Cursor) bool {
	rs := c.Node().(*ast.RangeStmt)

	elem := rs.Value
	if t := d.info.TypeOf(rs.X); t != nil {
		if _, ok := t.Underlying().(*types.Chan); ok {
			elem = rs.Key
		}
	}

	id, ok := elem.(*ast.Ident)
	if !ok {
		return false
	}

	obj := d.info.ObjectOf(id)
	if obj == nil {
		return false
	}

	body := c.ChildAt(edge.RangeStmt_Body, -1)
	for m := range scope.Mentions(ctx, d.info, body, obj) {
		if d.UseOf(ctx, m).Releases() {
			return true
		}
	}

	return false
}
