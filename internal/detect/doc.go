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

// Package detect classifies types and calls for the closeguard analyzer.
//
// A [Detector] answers which types are closers, which are excluded from the analysis, which
// types and functions take ownership of closers handed to them, and which calls release a
// value. Besides the configured rules it inspects the declarations of the analyzed package
// to find the struct fields a type's Close method releases and the parameters a function takes
// ownership of. These findings are exported as facts, so dependent packages see them too.
package detect
