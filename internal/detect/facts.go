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
	"fmt"
	"slices"
)

// ReleasedFields is attached to a named type and lists the fields and accessor methods
// the type's Close method releases.
type ReleasedFields struct {
	Names []string
}

// AFact implements [analysis.Fact].
func (*ReleasedFields) AFact() {}

func (f *ReleasedFields) String() string {
	return fmt.Sprintf("releases %v", f.Names)
}

func (f *ReleasedFields) contains(name string) bool {
	return slices.Contains(f.Names, name)
}

// OwnedParams is attached to a function and lists the parameters the function takes ownership of.
// Index -1 denotes the receiver of a method.
type OwnedParams struct {
	Indices []int
}

// AFact implements [analysis.Fact].
func (*OwnedParams) AFact() {}

func (f *OwnedParams) String() string {
	return fmt.Sprintf("owns %v", f.Indices)
}

func (f *OwnedParams) contains(index int) bool {
	return slices.Contains(f.Indices, index)
}
