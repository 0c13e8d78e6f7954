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

package astutil

import (
	"go/ast"
	"go/token"
	"regexp"
	"slices"
	"strings"
)

// closeguard is the name of the linter.
const closeguard = "closeguard"

// CurrentFile holds per-file information used while classifying candidates.
type CurrentFile struct {
	file      *ast.File
	handle    *token.File
	generated bool
}

// NewCurrentFile creates a new [CurrentFile] from a [token.FileSet] and an *[ast.File].
func NewCurrentFile(fset *token.FileSet, file *ast.File) CurrentFile {
	if file == nil {
		return CurrentFile{}
	}

	handle := fset.File(file.FileStart)
	if handle == nil {
		return CurrentFile{}
	}

	return CurrentFile{file, handle, ast.IsGenerated(file)}
}

// Valid reports whether the [CurrentFile] refers to a file with position information.
func (c CurrentFile) Valid() bool {
	return c.handle != nil
}

// Generated reports whether the file is generated code.
func (c CurrentFile) Generated() bool {
	return c.generated
}

// Excluded reports whether the whole file is excluded by a //nolint:closeguard comment
// in front of the package clause.
func (c CurrentFile) Excluded() bool {
	return c.file != nil && HasNoLint(c.file.Doc)
}

func (c CurrentFile) line(pos token.Pos) int {
	return c.handle.PositionFor(pos, false).Line
}

// NoLintComment reports whether a //nolint:closeguard comment follows pos on the same line.
func (c CurrentFile) NoLintComment(pos token.Pos) bool {
	if c.file == nil {
		return false
	}

	line := c.line(pos)

	i, _ := slices.BinarySearchFunc(c.file.Comments, pos,
		func(g *ast.CommentGroup, p token.Pos) int { return int(g.Pos() - p) })

	for _, group := range c.file.Comments[i:] {
		if c.line(group.Pos()) != line {
			break
		}

		if HasNoLint(group) {
			return true
		}
	}

	return false
}

// HasNoLint reports whether the last comment of the group is a //nolint:closeguard directive.
func HasNoLint(group *ast.CommentGroup) bool {
	if group == nil || len(group.List) == 0 {
		return false
	}

	return CommentHasNoLint(group.List[len(group.List)-1])
}

var nolintPattern = regexp.MustCompile(`^//\s*nolint:([a-zA-Z0-9,_-]+)`)

// CommentHasNoLint reports whether the comment is a //nolint directive naming closeguard or all linters.
func CommentHasNoLint(comment *ast.Comment) bool {
	matches := nolintPattern.FindStringSubmatch(comment.Text)
	if matches == nil {
		return false
	}

	for linter := range strings.SplitSeq(matches[1], ",") {
		if l := strings.ToLower(strings.TrimSpace(linter)); l == closeguard || l == "all" {
			return true
		}
	}

	return false
}
