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

// Package testsource provides utilities for parsing and analyzing Go source code in tests.
//
// It is designed to simplify testing of the closeguard packages by handling common
// boilerplate code for parsing and type-checking Go source fragments.
package testsource

import (
	"bytes"
	"go/ast"
	"go/format"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"regexp"
	"strings"
	"testing"

	"golang.org/x/tools/go/ast/inspector"
)

const testpkg = "test"

var packageClause = regexp.MustCompile(`(?m)^package `)

// Source is a parsed and type-checked test file.
type Source struct {
	Fset *token.FileSet
	File *ast.File
	Pkg  *types.Package
	Info *types.Info
	In   *inspector.Inspector
}

// Parse parses and type checks a complete Go source file of package test.
// A missing package clause is added.
func Parse(tb testing.TB, src string) Source {
	tb.Helper()

	const filename = "test.go"

	if !packageClause.MatchString(src) {
		src = "package " + testpkg + "\n\n" + src
	}

	fset := token.NewFileSet()

	f, err := parser.ParseFile(fset, filename, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		tb.Fatalf("Failed to parse source %q: %v", src, err)
	}

	pkg, info := Check(tb, fset, f)

	return Source{Fset: fset, File: f, Pkg: pkg, Info: info, In: inspector.New([]*ast.File{f})}
}

// ParseBody parses and type checks a statement list.
// The source is wrapped in a function body `func _() { ... }` after the given declarations.
func ParseBody(tb testing.TB, decls, body string) Source {
	tb.Helper()

	var src strings.Builder
	src.Grow(len(decls) + len(body) + 32)

	src.WriteString("package " + testpkg + "\n\n") // ignore error
	src.WriteString(decls)                         // ignore error
	src.WriteString("\n\nfunc _() {\n")            // ignore error
	src.WriteString(body)                          // ignore error
	src.WriteString("\n}\n")                       // ignore error

	return Parse(tb, src.String())
}

// Check performs type checking on the provided AST files.
// It creates and returns a fully type-checked *types.Package and *types.Info.
func Check(tb testing.TB, fset *token.FileSet, f *ast.File) (*types.Package, *types.Info) {
	tb.Helper()

	info := &types.Info{
		Types:      make(map[ast.Expr]types.TypeAndValue),
		Defs:       make(map[*ast.Ident]types.Object),
		Uses:       make(map[*ast.Ident]types.Object),
		Selections: make(map[*ast.SelectorExpr]*types.Selection),
		Scopes:     make(map[ast.Node]*types.Scope),
	}

	conf := types.Config{Importer: importer.Default()}

	pkg, err := conf.Check(testpkg, fset, []*ast.File{f}, info)
	if err != nil {
		tb.Fatalf("failed to type Check source: %v", err)
	}

	return pkg, info
}

// Find returns the cursor of the first node of type T satisfying match, in preorder.
func Find[T ast.Node](tb testing.TB, s Source, match func(n T) bool) inspector.Cursor {
	tb.Helper()

	for c := range s.In.Root().Preorder() {
		if n, ok := c.Node().(T); ok && (match == nil || match(n)) {
			return c
		}
	}

	var zero T
	tb.Fatalf("Can't find %T node", zero)

	return s.In.Root()
}

// Text returns the formatted source text of a node.
func (s Source) Text(tb testing.TB, n ast.Node) string {
	tb.Helper()

	var buf bytes.Buffer
	if err := format.Node(&buf, s.Fset, n); err != nil {
		tb.Fatalf("Can't format node: %v", err)
	}

	return buf.String()
}
