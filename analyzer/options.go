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
	"log/slog"
	"maps"
	"slices"

	"fillmore-labs.com/closeguard/analyzer/level"
	"fillmore-labs.com/closeguard/internal/config"
	"fillmore-labs.com/closeguard/internal/run"
)

// Option configures specific behavior of a [New] closeguard analyzer.
type Option interface {
	apply(r *run.Options)
	LogAttr() slog.Attr
}

// Options is a list of [Option] values that itself satisfies the [Option] interface.
type Options []Option

// LogValue implements [slog.LogValuer].
func (o Options) LogValue() slog.Value {
	as := make([]slog.Attr, 0, len(o))
	as = appendOptions(as, o)

	return slog.GroupValue(as...)
}

func appendOptions(as []slog.Attr, o Options) []slog.Attr {
	for _, opt := range o {
		switch opt := opt.(type) {
		case nil:
			as = append(as, slog.String("nil", "<nil>"))

		case Options:
			as = appendOptions(as, opt)

		default:
			as = append(as, opt.LogAttr())
		}
	}

	return as
}

func (o Options) apply(r *run.Options) {
	for _, opt := range o {
		if opt == nil {
			continue
		}

		opt.apply(r)
	}
}

// LogAttr is for logging with [slog.Logger.LogAttrs].
func (o Options) LogAttr() slog.Attr {
	return slog.Any("options", o)
}

// WithGenerated is an [Option] to configure diagnostics in generated files.
func WithGenerated(generated bool) Option { return generatedOption{generated: generated} }

type generatedOption struct{ generated bool }

func (o generatedOption) apply(r *run.Options) {
	r.Behavior.Set(config.IncludeGenerated, o.generated)
}

func (o generatedOption) LogAttr() slog.Attr {
	return slog.Bool("generated", o.generated)
}

// WithTracking is an [Option] to configure how tracking types and ownership-taking functions are recognized.
func WithTracking(tracking level.Tracking) Option { return trackingOption{tracking: tracking} }

type trackingOption struct{ tracking level.Tracking }

func (o trackingOption) apply(r *run.Options) {
	r.Behavior.Set(config.StructuralTracking, o.tracking.Structural())
}

func (o trackingOption) LogAttr() slog.Attr {
	return slog.String("tracking", o.tracking.String())
}

// WithRulesFile is an [Option] to read additional rules from a YAML, TOML or JSON document.
// The document is reloaded when it changes; an unreadable document leaves the built-in rules in effect.
func WithRulesFile(path string) Option { return rulesFileOption{path: path} }

type rulesFileOption struct{ path string }

func (o rulesFileOption) apply(r *run.Options) {
	r.RulesFile = o.path
}

func (o rulesFileOption) LogAttr() slog.Attr {
	return slog.String("rules", o.path)
}

// WithIgnoredTypes is an [Option] adding types, like "bytes.Buffer", whose closers need no closing.
func WithIgnoredTypes(types ...string) Option { return ignoredTypesOption{types: types} }

type ignoredTypesOption struct{ types []string }

func (o ignoredTypesOption) apply(r *run.Options) {
	r.Entries.IgnoredTypes = append(r.Entries.IgnoredTypes, o.types...)
}

func (o ignoredTypesOption) LogAttr() slog.Attr {
	return slog.Any("ignored-types", o.types)
}

// WithIgnoredInterfaces is an [Option] adding interfaces whose implementations need no closing.
func WithIgnoredInterfaces(interfaces ...string) Option {
	return ignoredInterfacesOption{interfaces: interfaces}
}

type ignoredInterfacesOption struct{ interfaces []string }

func (o ignoredInterfacesOption) apply(r *run.Options) {
	r.Entries.IgnoredInterfaces = append(r.Entries.IgnoredInterfaces, o.interfaces...)
}

func (o ignoredInterfacesOption) LogAttr() slog.Attr {
	return slog.Any("ignored-interfaces", o.interfaces)
}

// WithIgnoredFunctions is an [Option] adding functions and methods, like test double factories,
// whose closers need no closing.
func WithIgnoredFunctions(functions ...string) Option {
	return ignoredFunctionsOption{functions: functions}
}

type ignoredFunctionsOption struct{ functions []string }

func (o ignoredFunctionsOption) apply(r *run.Options) {
	r.Entries.IgnoredFunctions = append(r.Entries.IgnoredFunctions, o.functions...)
}

func (o ignoredFunctionsOption) LogAttr() slog.Attr {
	return slog.Any("ignored-functions", o.functions)
}

// WithTrackingTypes is an [Option] adding types that take ownership of closers passed in their literal.
func WithTrackingTypes(types ...string) Option { return trackingTypesOption{types: types} }

type trackingTypesOption struct{ types []string }

func (o trackingTypesOption) apply(r *run.Options) {
	r.Entries.TrackingTypes = append(r.Entries.TrackingTypes, o.types...)
}

func (o trackingTypesOption) LogAttr() slog.Attr {
	return slog.Any("tracking-types", o.types)
}

// WithTrackingMethods is an [Option] adding functions and methods, in [go/types.Func.FullName] form
// like "(*net/http.Server).Serve", that take ownership of closers passed as arguments.
func WithTrackingMethods(methods ...string) Option { return trackingMethodsOption{methods: methods} }

type trackingMethodsOption struct{ methods []string }

func (o trackingMethodsOption) apply(r *run.Options) {
	r.Entries.TrackingMethods = append(r.Entries.TrackingMethods, o.methods...)
}

func (o trackingMethodsOption) LogAttr() slog.Attr {
	return slog.Any("tracking-methods", o.methods)
}

// WithAlternateDisposeMethods is an [Option] adding methods that release a type like Close does,
// keyed by type name, e.g. "net/http.Server": {"Shutdown"}.
func WithAlternateDisposeMethods(methods map[string][]string) Option {
	return alternateDisposeOption{methods: methods}
}

type alternateDisposeOption struct{ methods map[string][]string }

func (o alternateDisposeOption) apply(r *run.Options) {
	if len(o.methods) == 0 {
		return
	}

	if r.Entries.AlternateDisposeMethods == nil {
		r.Entries.AlternateDisposeMethods = make(map[string][]string, len(o.methods))
	}

	for typ, methods := range o.methods {
		r.Entries.AlternateDisposeMethods[typ] = append(r.Entries.AlternateDisposeMethods[typ], methods...)
	}
}

func (o alternateDisposeOption) LogAttr() slog.Attr {
	as := make([]slog.Attr, 0, len(o.methods))
	for _, typ := range slices.Sorted(maps.Keys(o.methods)) {
		as = append(as, slog.Any(typ, o.methods[typ]))
	}

	return slog.Attr{Key: "alternate-dispose-methods", Value: slog.GroupValue(as...)}
}
