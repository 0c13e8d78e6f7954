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
	"maps"
	"slices"

	"golang.org/x/tools/go/ast/edge"
	"golang.org/x/tools/go/ast/inspector"

	"fillmore-labs.com/closeguard/internal/scope"
)

// funcDecl is a function or method declared in the analyzed package.
type funcDecl struct {
	fn     *types.Func
	body   inspector.Cursor
	recv   *types.Var
	params []*types.Var
}

// method records what a method body releases of its receiver.
type method struct {
	fields set           // fields and accessors of the receiver released
	calls  []*types.Func // methods called on the receiver
}

type set = map[string]struct{}

// collect computes the fields released by the Close methods of the package's types
// and the parameters its functions take ownership of, repeating until stable.
func (d *Detector) collect(ctx context.Context, root inspector.Cursor) error {
	if d.info == nil || d.pkg == nil {
		return nil
	}

	decls := d.funcDecls(root)

	d.collectPromoted()

	// Each round only adds entries, bounded by the number of declarations.
	for range len(decls) + 1 {
		methods := make(map[*types.Func]*method, len(decls))

		for _, decl := range decls {
			if err := ctx.Err(); err != nil {
				return err
			}

			if decl.recv != nil {
				methods[decl.fn] = d.methodReleases(ctx, decl)
			}
		}

		changed := d.updateReleased(decls, methods)

		if d.structural {
			for _, decl := range decls {
				if err := ctx.Err(); err != nil {
					return err
				}

				if d.updateOwned(ctx, decl) {
					changed = true
				}
			}
		}

		if !changed {
			break
		}
	}

	return ctx.Err()
}

func (d *Detector) funcDecls(root inspector.Cursor) []funcDecl {
	var decls []funcDecl

	for c := range root.Preorder((*ast.FuncDecl)(nil)) {
		decl := c.Node().(*ast.FuncDecl)
		if decl.Body == nil {
			continue
		}

		fn, ok := d.info.Defs[decl.Name].(*types.Func)
		if !ok {
			continue
		}

		sig := fn.Signature()

		fd := funcDecl{fn: fn, body: c.ChildAt(edge.FuncDecl_Body, -1), recv: sig.Recv()}

		for p := range sig.Params().Variables() {
			fd.params = append(fd.params, p)
		}

		decls = append(decls, fd)
	}

	return decls
}

// collectPromoted records that a type without its own Close method, which gets Close
// promoted from an embedded field, releases that field.
func (d *Detector) collectPromoted() {
	names := d.pkg.Scope().Names()
	for _, name := range names {
		tn, ok := d.pkg.Scope().Lookup(name).(*types.TypeName)
		if !ok || tn.IsAlias() {
			continue
		}

		named, ok := tn.Type().(*types.Named)
		if !ok {
			continue
		}

		if _, ok := named.Underlying().(*types.Struct); !ok {
			continue
		}

		obj, index, _ := types.LookupFieldOrMethod(types.NewPointer(named), true, d.pkg, "Close")

		fn, ok := obj.(*types.Func)
		if !ok || len(index) < 2 || fn.Signature().Params().Len() != 0 {
			continue
		}

		st := named.Underlying().(*types.Struct)
		d.released[tn] = &ReleasedFields{Names: []string{st.Field(index[0]).Name()}}
	}
}

// methodReleases scans a method body for released fields of the receiver and calls of
// other methods on the receiver.
func (d *Detector) methodReleases(ctx context.Context, decl funcDecl) *method {
	m := &method{fields: make(set)}

	for c := range scope.Mentions(ctx, d.info, decl.body, decl.recv) {
		kind, _ := c.ParentEdge()
		if kind != edge.SelectorExpr_X {
			continue
		}

		sc := c.Parent()
		sel := sc.Node().(*ast.SelectorExpr)

		s, ok := d.info.Selections[sel]
		if !ok {
			continue
		}

		switch s.Kind() {
		case types.FieldVal:
			if len(s.Index()) == 1 && d.UseOf(ctx, sc).Releases() {
				m.fields[sel.Sel.Name] = struct{}{}
			}

		case types.MethodVal:
			k, _ := sc.ParentEdge()
			if k != edge.CallExpr_Fun {
				continue
			}

			fn, ok := s.Obj().(*types.Func)
			if !ok {
				continue
			}

			if IsAccessor(fn) && d.UseOf(ctx, sc.Parent()).Releases() {
				m.fields[fn.Name()] = struct{}{}
			}

			if fn.Pkg() == d.pkg {
				m.calls = append(m.calls, fn.Origin())
			}
		}
	}

	return m
}

// updateReleased derives the released fields of each type from its Close method and the
// receiver methods it calls, reporting whether anything changed.
func (d *Detector) updateReleased(decls []funcDecl, methods map[*types.Func]*method) bool {
	changed := false

	for _, decl := range decls {
		if decl.recv == nil || decl.fn.Name() != "Close" || decl.fn.Signature().Params().Len() != 0 {
			continue
		}

		tn, ok := TypeName(decl.recv.Type())
		if !ok {
			continue
		}

		fields := make(set)
		visited := make(map[*types.Func]struct{})

		var visit func(fn *types.Func)
		visit = func(fn *types.Func) {
			if _, ok := visited[fn]; ok {
				return
			}

			visited[fn] = struct{}{}

			m, ok := methods[fn]
			if !ok {
				return
			}

			maps.Copy(fields, m.fields)

			for _, callee := range m.calls {
				visit(callee)
			}
		}
		visit(decl.fn)

		names := slices.Sorted(maps.Keys(fields))
		if prev, ok := d.released[tn]; ok && slices.Equal(prev.Names, names) {
			continue
		}

		d.released[tn] = &ReleasedFields{Names: names}
		changed = true
	}

	return changed
}

// updateOwned determines the parameters a function takes ownership of, reporting whether anything changed.
func (d *Detector) updateOwned(ctx context.Context, decl funcDecl) bool {
	var indices []int

	if decl.recv != nil && d.paramOwned(ctx, decl, decl.recv, true) {
		indices = append(indices, -1)
	}

	for i, p := range decl.params {
		if d.paramOwned(ctx, decl, p, false) {
			indices = append(indices, i)
		}
	}

	prev, ok := d.owned[decl.fn]
	if ok && slices.Equal(prev.Indices, indices) || !ok && len(indices) == 0 {
		return false
	}

	d.owned[decl.fn] = &OwnedParams{Indices: indices}

	return true
}

func (d *Detector) paramOwned(ctx context.Context, decl funcDecl, p *types.Var, receiver bool) bool {
	if p.Name() == "" || p.Name() == "_" || !mayHoldCloser(p.Type()) {
		return false
	}

	for c := range scope.Mentions(ctx, d.info, decl.body, p) {
		switch u := d.UseOf(ctx, c); {
		case u.Releases():
			return true

		case u == Transferred && !receiver:
			return true
		}
	}

	return false
}

// mayHoldCloser reports whether a parameter of type t can carry a closer: a closer itself,
// an interface or a slice of either, which covers variadic parameters.
func mayHoldCloser(t types.Type) bool {
	switch u := t.Underlying().(type) {
	case *types.Interface:
		return true

	case *types.Slice:
		return mayHoldCloser(u.Elem())

	default:
		return IsCloser(t)
	}
}

// ExportFacts records the structural findings for dependent packages.
func (d *Detector) ExportFacts(e FactExporter) {
	for tn, fields := range d.released {
		if tn.Pkg() == d.pkg && len(fields.Names) > 0 {
			e(tn, fields)
		}
	}

	for fn, params := range d.owned {
		if fn.Pkg() == d.pkg && len(params.Indices) > 0 {
			e(fn, params)
		}
	}
}
