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

// Package classify decides whether a closer produced by an expression is correctly
// closed, handed to a tracking type or function, or transferred to the caller.
//
// The [Engine] walks the syntactic context of a candidate expression through an ordered
// table of rules; the first applicable rule decides. Rules delegating to a bound name
// scan the name's usage scope.
package classify
