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

package analyzer

import (
	"flag"

	"fillmore-labs.com/closeguard/internal/config"
	"fillmore-labs.com/closeguard/internal/run"
)

// registerFlags binds the [run.Options] values to command line flag values.
// A nil flag set value defaults to the program's command line.
func registerFlags(flags *flag.FlagSet, r *run.Options) {
	if flags == nil {
		flags = flag.CommandLine
	}

	flags.Var(newBehaviorValue(&r.Behavior, config.IncludeGenerated), "generated", "check generated files")
	flags.Var(newTrackingValue(&r.Behavior), "tracking", "recognition of ownership: structural or configured")
	flags.StringVar(&r.RulesFile, "rules", r.RulesFile, "YAML, TOML or JSON rule document")

	flags.Var(newListValue(&r.Entries.IgnoredTypes), "ignored-types", "comma separated types that need no closing")
	flags.Var(newListValue(&r.Entries.IgnoredInterfaces), "ignored-interfaces", "comma separated interfaces whose implementations need no closing")
	flags.Var(newListValue(&r.Entries.IgnoredFunctions), "ignored-functions", "comma separated functions whose closers need no closing")
	flags.Var(newListValue(&r.Entries.TrackingTypes), "tracking-types", "comma separated types taking ownership of closers")
	flags.Var(newListValue(&r.Entries.TrackingMethods), "tracking-methods", "comma separated functions taking ownership of closers")
	flags.Var(newMethodsValue(&r.Entries.AlternateDisposeMethods), "dispose-methods", "comma separated type=method pairs of alternate dispose methods")
}
