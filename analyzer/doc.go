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

// Package analyzer implements the closeguard static analysis pass.
//
// # Overview
//
// CloseGuard detects values with a Close method that are created but never closed,
// never handed to a type or function taking ownership and never returned to the caller.
//
// # Example
//
//	func load(name string) ([]byte, error) {
//	    f, err := os.Open(name) // Variable 'f' holds closer from call that is never closed
//	    if err != nil {
//	        return nil, err
//	    }
//	    return io.ReadAll(f)
//	}
//
// Closing the file with defer f.Close() silences the diagnostic.
//
// # Diagnostics
//
// Every diagnostic carries a code in its message and as its category:
//
//   - ano: a closer without binding, e.g. a discarded call result
//   - var: a local variable never closed
//   - fld: an unexported field the owner's Close does not release
//   - prp: an exported field or accessor result the owner's Close does not release
//
// # Ownership
//
// A closer is considered handed off when it is passed to a tracking type or
// method, either configured (see [WithTrackingTypes] and [WithTrackingMethods]) or,
// with structural tracking, detected from a type's Close method releasing the field
// the value is stored in, or from a function closing or storing its parameter.
// Structural findings are exported as facts, so they work across packages.
//
// Closers of ignored types and interfaces are skipped, as are results of ignored
// functions like test double factories (see [WithIgnoredFunctions]).
package analyzer
