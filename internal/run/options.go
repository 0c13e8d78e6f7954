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

package run

import (
	"sync"

	"fillmore-labs.com/closeguard/internal/config"
)

// Options represent configuration options for the closeguard analyzer.
type Options struct {
	// Behavior holds behavioral options.
	Behavior config.Behavior

	// RulesFile is the path of a rule document unioned with the built-in defaults. May be empty.
	RulesFile string

	// Entries are additional rules unioned with the built-in defaults.
	Entries config.Entries

	once  sync.Once
	store *config.Store
}

// DefaultOptions initializes and returns a new Options instance with default values.
func DefaultOptions() *Options {
	return &Options{
		Behavior: config.DefaultBehavior(),
	}
}

// Rules returns the current rule snapshot. The rule store is created on first use,
// after all options have been applied.
func (r *Options) Rules() *config.Rules {
	r.once.Do(func() { r.store = config.NewStore(r.RulesFile, r.Entries) })

	return r.store.Rules()
}
