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

package config

// BehaviorFlags represents behavioral options of the analyzer.
type BehaviorFlags uint8

const (
	// IncludeGenerated specifies whether to include analysis of generated files.
	IncludeGenerated BehaviorFlags = 1 << iota

	// StructuralTracking enables detection of tracking types and ownership-taking functions
	// by inspecting their declarations, in addition to the configured rules.
	StructuralTracking
)

// Behavior is the set of enabled [BehaviorFlags].
type Behavior = BitMask[BehaviorFlags]

// DefaultBehavior returns the behavior used when no options are given.
func DefaultBehavior() Behavior {
	return NewBitMask(StructuralTracking)
}
