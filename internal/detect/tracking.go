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
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/types/typeutil"

	"fillmore-labs.com/closeguard/internal/astutil"
)

// Callee returns the statically known function or method called, or nil.
func (d *Detector) Callee(call *ast.CallExpr) *types.Func {
	fn, _ := typeutil.Callee(d.info, call).(*types.Func)
	if fn == nil {
		return nil
	}

	return fn.Origin()
}

// IsIgnoredCall reports whether call invokes a configured function producing closers
// that need no closing.
func (d *Detector) IsIgnoredCall(call *ast.CallExpr) bool {
	fn := d.Callee(call)

	return fn != nil && d.rules.IsIgnoredFunction(fn.FullName())
}

// IsTrackingType reports whether t is configured as a tracking type.
func (d *Detector) IsTrackingType(t types.Type) bool {
	name := QualifiedName(t)

	return name != "" && d.rules.IsTrackingType(name)
}

// IsTrackedType reports whether the struct literal lit of type t takes ownership of its element elem:
// t is a configured tracking type, or the field elem initializes is released by t's Close method.
func (d *Detector) IsTrackedType(t types.Type, lit *ast.CompositeLit, elem ast.Expr) bool {
	if d.IsTrackingType(t) {
		return true
	}

	if !d.structural {
		return false
	}

	field, ok := astutil.LiteralField(d.info, lit, elem)

	return ok && d.ReleasedBy(t, field.Name())
}

// IsTrackingMethodCall reports whether call invokes a tracking method, either configured or
// taking ownership of one of its parameters. If not, the call one step up a method chain
// `a().b()` is checked.
func (d *Detector) IsTrackingMethodCall(call *ast.CallExpr) bool {
	if d.isTrackingCallee(call) {
		return true
	}

	sel, ok := ast.Unparen(call.Fun).(*ast.SelectorExpr)
	if !ok {
		return false
	}

	inner, ok := ast.Unparen(sel.X).(*ast.CallExpr)

	return ok && d.isTrackingCallee(inner)
}

func (d *Detector) isTrackingCallee(call *ast.CallExpr) bool {
	fn := d.Callee(call)
	if fn == nil {
		return false
	}

	if d.rules.IsTrackingMethod(fn.FullName()) {
		return true
	}

	if !d.structural {
		return false
	}

	owned, ok := d.ownedParams(fn)
	if !ok {
		return false
	}

	for _, i := range owned.Indices {
		if i >= 0 {
			return true
		}
	}

	return false
}

// TakesOwnership reports whether call takes ownership of its argument at index.
func (d *Detector) TakesOwnership(call *ast.CallExpr, index int) bool {
	fn := d.Callee(call)
	if fn == nil {
		return false
	}

	if d.rules.IsTrackingMethod(fn.FullName()) {
		return true
	}

	if !d.structural {
		return false
	}

	params := fn.Signature().Params()
	if fn.Signature().Variadic() && !call.Ellipsis.IsValid() && index >= params.Len()-1 {
		index = params.Len() - 1
	}

	return d.OwnsParam(fn, index)
}

// TakesReceiver reports whether the method called takes ownership of its receiver.
func (d *Detector) TakesReceiver(call *ast.CallExpr) bool {
	if !d.structural {
		return false
	}

	sel, ok := ast.Unparen(call.Fun).(*ast.SelectorExpr)
	if !ok {
		return false
	}

	if s, ok := d.info.Selections[sel]; !ok || s.Kind() != types.MethodVal {
		return false
	}

	fn := d.Callee(call)

	return fn != nil && d.OwnsParam(fn, -1)
}

// IsAtomicExchange reports whether call atomically stores its arguments, via sync/atomic
// Swap, CompareAndSwap or Store functions or methods of atomic.Pointer and atomic.Value.
func (d *Detector) IsAtomicExchange(call *ast.CallExpr) bool {
	fn := d.Callee(call)
	if fn == nil || fn.Pkg() == nil || fn.Pkg().Path() != "sync/atomic" {
		return false
	}

	switch name := fn.Name(); {
	case strings.HasPrefix(name, "Swap"),
		strings.HasPrefix(name, "CompareAndSwap"),
		strings.HasPrefix(name, "Store"):

	default:
		return false
	}

	recv := fn.Signature().Recv()
	if recv == nil {
		return true
	}

	tn, ok := TypeName(recv.Type())

	return ok && (tn.Name() == "Pointer" || tn.Name() == "Value")
}

// IsReleaseSelector reports whether sel selects a method releasing its operand: Close
// without parameters, or a configured alternate dispose method of the operand's type.
func (d *Detector) IsReleaseSelector(sel *ast.SelectorExpr) bool {
	s, ok := d.info.Selections[sel]
	if !ok || s.Kind() != types.MethodVal {
		return false
	}

	fn, ok := s.Obj().(*types.Func)
	if !ok {
		return false
	}

	if fn.Name() == "Close" && fn.Signature().Params().Len() == 0 {
		return true
	}

	return d.rules.IsAlternateDisposeMethod(QualifiedName(s.Recv()), fn.Name())
}

// IsReleaseCall reports whether call releases its receiver.
func (d *Detector) IsReleaseCall(call *ast.CallExpr) bool {
	sel, ok := ast.Unparen(call.Fun).(*ast.SelectorExpr)

	return ok && d.IsReleaseSelector(sel)
}

// IsAccessor reports whether fn is a method without parameters returning a single value,
// declared on a closer.
func IsAccessor(fn *types.Func) bool {
	if fn == nil {
		return false
	}

	sig := fn.Signature()
	if sig.Recv() == nil || sig.Params().Len() != 0 || sig.Results().Len() != 1 {
		return false
	}

	return IsCloser(sig.Recv().Type())
}

// ReleasedBy reports whether the Close method of the named type t releases member,
// a field or accessor method name.
func (d *Detector) ReleasedBy(t types.Type, member string) bool {
	tn, ok := TypeName(t)
	if !ok {
		return false
	}

	if r, ok := d.released[tn]; ok {
		return r.contains(member)
	}

	if d.facts == nil || tn.Pkg() == d.pkg {
		return false
	}

	var fact ReleasedFields

	return d.facts(tn, &fact) && fact.contains(member)
}

// OwnsParam reports whether fn takes ownership of its parameter at index, -1 being the receiver.
func (d *Detector) OwnsParam(fn *types.Func, index int) bool {
	owned, ok := d.ownedParams(fn)

	return ok && owned.contains(index)
}

func (d *Detector) ownedParams(fn *types.Func) (*OwnedParams, bool) {
	fn = fn.Origin()

	if o, ok := d.owned[fn]; ok {
		return o, true
	}

	if d.facts == nil || fn.Pkg() == nil || fn.Pkg() == d.pkg {
		return nil, false
	}

	var fact OwnedParams
	if !d.facts(fn, &fact) {
		return nil, false
	}

	return &fact, true
}

// FieldOwner returns the type whose struct declares the field selected by s, following embedded fields.
func FieldOwner(s *types.Selection) (types.Type, bool) {
	if s == nil || s.Kind() != types.FieldVal {
		return nil, false
	}

	t := s.Recv()

	index := s.Index()
	for _, i := range index[:len(index)-1] {
		st, ok := Deref(t).Underlying().(*types.Struct)
		if !ok || i >= st.NumFields() {
			return nil, false
		}

		t = st.Field(i).Type()
	}

	return t, true
}
