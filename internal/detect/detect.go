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
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/ast/inspector"

	"fillmore-labs.com/closeguard/internal/config"
)

// FactImporter retrieves facts of imported objects, usually [analysis.Pass.ImportObjectFact].
type FactImporter func(obj types.Object, fact analysis.Fact) bool

// FactExporter records facts of objects declared in the current package, usually [analysis.Pass.ExportObjectFact].
type FactExporter func(obj types.Object, fact analysis.Fact)

// Config holds the inputs of a [Detector].
type Config struct {
	Info  *types.Info
	Pkg   *types.Package
	Rules *config.Rules

	// Facts imports structural findings of dependencies. May be nil.
	Facts FactImporter

	// Structural enables ownership detection from declarations.
	Structural bool
}

// Detector classifies types and calls. It is read-only after construction
// and safe for concurrent use.
type Detector struct {
	info       *types.Info
	pkg        *types.Package
	rules      *config.Rules
	facts      FactImporter
	structural bool

	ignoredInterfaces []*types.Interface

	released map[*types.TypeName]*ReleasedFields
	owned    map[*types.Func]*OwnedParams
}

// New creates a [Detector] and collects the structural ownership of the declarations below root.
// The only error returned is the cancellation error of ctx.
func New(ctx context.Context, cfg Config, root inspector.Cursor) (*Detector, error) {
	rules := cfg.Rules
	if rules == nil {
		rules = config.Default()
	}

	d := &Detector{
		info:       cfg.Info,
		pkg:        cfg.Pkg,
		rules:      rules,
		facts:      cfg.Facts,
		structural: cfg.Structural,
		released:   make(map[*types.TypeName]*ReleasedFields),
		owned:      make(map[*types.Func]*OwnedParams),
	}

	d.ignoredInterfaces = resolveInterfaces(cfg.Pkg, rules)

	if err := d.collect(ctx, root); err != nil {
		return nil, err
	}

	return d, nil
}

// Rules returns the rule snapshot the detector was built with.
func (d *Detector) Rules() *config.Rules {
	return d.rules
}

// IsDisposalCapable reports whether t is a closer: the method set of t or *t contains
// a Close method without parameters.
func (d *Detector) IsDisposalCapable(t types.Type) bool {
	return IsCloser(t)
}

// IsCloser reports whether the method set of t or *t contains a Close method without parameters.
func IsCloser(t types.Type) bool {
	if t == nil {
		return false
	}

	if b, ok := t.Underlying().(*types.Basic); ok && (b.Kind() == types.Invalid || b.Kind() == types.UntypedNil) {
		return false
	}

	obj, _, _ := types.LookupFieldOrMethod(t, true, nil, "Close")

	fn, ok := obj.(*types.Func)

	return ok && fn.Signature().Params().Len() == 0
}

// IsIgnored reports whether t is excluded from the analysis, because it or a type it embeds
// is configured as ignored, or it implements an ignored interface.
func (d *Detector) IsIgnored(t types.Type) bool {
	if t == nil {
		return false
	}

	if d.ignoredByName(t, make(map[types.Type]struct{})) {
		return true
	}

	for _, iface := range d.ignoredInterfaces {
		if implements(t, iface) {
			return true
		}
	}

	return false
}

func (d *Detector) ignoredByName(t types.Type, visited map[types.Type]struct{}) bool {
	t = Deref(t)
	if _, ok := visited[t]; ok {
		return false
	}

	visited[t] = struct{}{}

	if name := QualifiedName(t); name != "" && (d.rules.IsIgnoredType(name) || d.rules.IsIgnoredInterface(name)) {
		return true
	}

	switch u := t.Underlying().(type) {
	case *types.Struct:
		for field := range u.Fields() {
			if field.Embedded() && d.ignoredByName(field.Type(), visited) {
				return true
			}
		}

	case *types.Interface:
		for embedded := range u.EmbeddedTypes() {
			if d.ignoredByName(embedded, visited) {
				return true
			}
		}
	}

	return false
}

func implements(t types.Type, iface *types.Interface) bool {
	if types.Implements(t, iface) {
		return true
	}

	switch t.Underlying().(type) {
	case *types.Interface, *types.Pointer:
		return false
	}

	return types.Implements(types.NewPointer(t), iface)
}

// resolveInterfaces looks up the configured ignored interfaces in pkg and its transitive imports.
// Names that can't be resolved only match by embedding.
func resolveInterfaces(pkg *types.Package, rules *config.Rules) []*types.Interface {
	if pkg == nil {
		return nil
	}

	packages := make(map[string]*types.Package)

	var visit func(p *types.Package)
	visit = func(p *types.Package) {
		if _, ok := packages[p.Path()]; ok {
			return
		}

		packages[p.Path()] = p
		for _, imp := range p.Imports() {
			visit(imp)
		}
	}
	visit(pkg)

	var ifaces []*types.Interface

	for name := range rules.IgnoredInterfaces() {
		i := strings.LastIndexByte(name, '.')
		if i < 0 {
			continue
		}

		p, ok := packages[name[:i]]
		if !ok {
			continue
		}

		tn, ok := p.Scope().Lookup(name[i+1:]).(*types.TypeName)
		if !ok {
			continue
		}

		if iface, ok := tn.Type().Underlying().(*types.Interface); ok {
			ifaces = append(ifaces, iface)
		}
	}

	return ifaces
}

// Deref strips aliases and one pointer indirection.
func Deref(t types.Type) types.Type {
	t = types.Unalias(t)
	if p, ok := t.(*types.Pointer); ok {
		return types.Unalias(p.Elem())
	}

	return t
}

// TypeName returns the declaration of the named type t or *t, for generic types its origin.
func TypeName(t types.Type) (*types.TypeName, bool) {
	if t == nil {
		return nil, false
	}

	n, ok := Deref(t).(*types.Named)
	if !ok {
		return nil, false
	}

	return n.Origin().Obj(), true
}

// QualifiedName returns the import path qualified name of the named type t or *t, e.g. "net/http.Server".
func QualifiedName(t types.Type) string {
	tn, ok := TypeName(t)
	if !ok {
		return ""
	}

	if tn.Pkg() == nil {
		return tn.Name()
	}

	return tn.Pkg().Path() + "." + tn.Name()
}
