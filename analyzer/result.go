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

package analyzer

import "fillmore-labs.com/closeguard/internal/report"

// Finding is a reported closer leak, part of the analyzer result.
type Finding = report.Finding

// Findings is the result of a closeguard pass: all reported leaks ordered by position.
// Downstream analyzers listing closeguard in their Requires receive it as the pass result.
type Findings = report.Findings

// VariableName is the [Finding] property key carrying the bound variable, field or property name.
const VariableName = report.VariableName
