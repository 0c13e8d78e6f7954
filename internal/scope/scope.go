// Copyright 2025-2026 Oliver Eikemeier. All Rights Reserved.
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

package scope

import (
	"context"
	"go/ast"
	"go/types"
	"iter"

	"golang.org/x/tools/go/ast/inspector"

	"fillmore-labs.com/closeguard/internal/astutil"
)

// Index maps scopes to their corresponding AST nodes.
//
// It is used to find the syntax subtree in which a local variable can be mentioned,
// which bounds the scans of declaration analysis.
type Index map[*types.Scope]ast.Node

// NewIndex creates a scope index from the type checker's scope map.
func NewIndex(info *types.Info) Index {
	s := make(Index, len(info.Scopes))
	for node, scope := range info.Scopes {
		s[scope] = node
	}

	return s
}

// IsLocal reports whether v is a variable declared inside a function.
func IsLocal(v *types.Var) bool {
	if v == nil || v.IsField() || v.Pkg() == nil {
		return false
	}

	parent := v.Parent()

	return parent != nil && parent != v.Pkg().Scope() && parent != types.Universe
}

// Root returns the cursor of the syntax node bounding every mention of the local variable v.
// This is the node of the declaring scope, or the enclosing function for parameters and
// results. from must be a cursor inside that node.
func (s Index) Root(from inspector.Cursor, v *types.Var) (inspector.Cursor, bool) {
	if !IsLocal(v) {
		return from, false
	}

	node, ok := s[v.Parent()]
	if !ok {
		return from, false
	}

	ft, signature := node.(*ast.FuncType)

	for c := range from.Enclosing() {
		if signature {
			if astutil.FuncType(c.Node()) == ft {
				return c, true
			}

			continue
		}

		if c.Node() == node {
			return c, true
		}
	}

	return from, false
}

// Mentions yields the identifiers below root referring to obj.
// It stops when the context is canceled; callers check ctx.Err afterwards.
func Mentions(ctx context.Context, info *types.Info, root inspector.Cursor, obj types.Object) iter.Seq[inspector.Cursor] {
	return func(yield func(inspector.Cursor) bool) {
		for c := range root.Preorder((*ast.Ident)(nil)) {
			if ctx.Err() != nil {
				return
			}

			if info.Uses[c.Node().(*ast.Ident)] != obj {
				continue
			}

			if !yield(c) {
				return
			}
		}
	}
}
