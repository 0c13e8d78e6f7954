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
	"go/ast"
	"go/types"
	"iter"

	"golang.org/x/tools/go/ast/inspector"

	"fillmore-labs.com/closeguard/internal/astutil"
)

// Candidates yields the expressions below root that may produce a closer:
// composite literals and new(T) as [ObjectCreation], other calls as [InvocationExpression].
// Conversions and calls of other builtins are skipped.
func Candidates(info *types.Info, root inspector.Cursor) iter.Seq2[inspector.Cursor, Source] {
	return func(yield func(inspector.Cursor, Source) bool) {
		for c := range root.Preorder((*ast.CompositeLit)(nil), (*ast.CallExpr)(nil)) {
			var source Source

			switch n := c.Node().(type) {
			case *ast.CompositeLit:
				source = ObjectCreation

			case *ast.CallExpr:
				switch {
				case astutil.IsConversion(info, n):
					continue

				case astutil.IsBuiltin(info, n, "new"):
					source = ObjectCreation

				case isBuiltin(info, n):
					continue

				default:
					source = InvocationExpression
				}
			}

			if !yield(c, source) {
				return
			}
		}
	}
}

func isBuiltin(info *types.Info, call *ast.CallExpr) bool {
	id, ok := ast.Unparen(call.Fun).(*ast.Ident)
	if !ok {
		return false
	}

	_, ok = info.Uses[id].(*types.Builtin)

	return ok
}
