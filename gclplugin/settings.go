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

package gclplugin

import (
	closeguard "fillmore-labs.com/closeguard/analyzer"
	"fillmore-labs.com/closeguard/analyzer/level"
)

// Settings represents the configuration options for an instance of the [Plugin].
type Settings struct {
	// Tracking selects how ownership is recognized: "structural" or "configured".
	Tracking *level.Tracking `json:"tracking,omitzero"`
	// Rules is the path of a YAML, TOML or JSON rule document.
	Rules *string `json:"rules,omitzero"`
	// IgnoredTypes lists types whose closers need no closing.
	IgnoredTypes []string `json:"ignored-types,omitzero"`
	// IgnoredInterfaces lists interfaces whose implementations need no closing.
	IgnoredInterfaces []string `json:"ignored-interfaces,omitzero"`
	// IgnoredFunctions lists functions whose closers need no closing.
	IgnoredFunctions []string `json:"ignored-functions,omitzero"`
	// TrackingTypes lists types taking ownership of closers passed in their literal.
	TrackingTypes []string `json:"tracking-types,omitzero"`
	// TrackingMethods lists functions taking ownership of closers passed as arguments.
	TrackingMethods []string `json:"tracking-methods,omitzero"`
	// AlternateDisposeMethods maps types to methods releasing them like Close.
	AlternateDisposeMethods map[string][]string `json:"alternate-dispose-methods,omitzero"`
}

// Options converts [Settings] into a list of [closeguard.Option] for the closeguard analyzer.
// It processes settings and applies them only when explicitly set (non-nil).
func (s Settings) Options() []closeguard.Option {
	var opts []closeguard.Option

	opts = appendOption(opts, s.Tracking, closeguard.WithTracking)
	opts = appendOption(opts, s.Rules, closeguard.WithRulesFile)
	opts = appendList(opts, s.IgnoredTypes, closeguard.WithIgnoredTypes)
	opts = appendList(opts, s.IgnoredInterfaces, closeguard.WithIgnoredInterfaces)
	opts = appendList(opts, s.IgnoredFunctions, closeguard.WithIgnoredFunctions)
	opts = appendList(opts, s.TrackingTypes, closeguard.WithTrackingTypes)
	opts = appendList(opts, s.TrackingMethods, closeguard.WithTrackingMethods)

	if s.AlternateDisposeMethods != nil {
		opts = append(opts, closeguard.WithAlternateDisposeMethods(s.AlternateDisposeMethods))
	}

	return opts
}

// appendOption appends a non-nil setting to a [closeguard.Option] list.
func appendOption[T any](opts []closeguard.Option, value *T, constructor func(T) closeguard.Option) []closeguard.Option {
	if value == nil {
		return opts
	}

	return append(opts, constructor(*value))
}

// appendList appends a non-nil list setting to a [closeguard.Option] list.
func appendList(opts []closeguard.Option, values []string, constructor func(...string) closeguard.Option) []closeguard.Option {
	if values == nil {
		return opts
	}

	return append(opts, constructor(values...))
}
