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

package config

import (
	"iter"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// Entries is the document form of a rule set. Names are qualified by their import path,
// e.g. "net/http.Server" for types and "(*net/http.Server).Serve" or "crypto/tls.Client"
// for functions and methods. Pointer indirections are ignored when matching.
type Entries struct {
	// IgnoredTypes are closer types excluded from the analysis.
	IgnoredTypes []string `json:"ignored-types,omitempty" toml:"ignored-types,omitempty" yaml:"ignored-types,omitempty"`
	// IgnoredInterfaces exclude every type implementing or embedding them.
	IgnoredInterfaces []string `json:"ignored-interfaces,omitempty" toml:"ignored-interfaces,omitempty" yaml:"ignored-interfaces,omitempty"`
	// IgnoredFunctions produce closers that need no closing, e.g. test doubles.
	IgnoredFunctions []string `json:"ignored-functions,omitempty" toml:"ignored-functions,omitempty" yaml:"ignored-functions,omitempty"`
	// TrackingTypes close the closers they are constructed with.
	TrackingTypes []string `json:"tracking-types,omitempty" toml:"tracking-types,omitempty" yaml:"tracking-types,omitempty"`
	// TrackingMethods take ownership of their closer arguments or receiver.
	TrackingMethods []string `json:"tracking-methods,omitempty" toml:"tracking-methods,omitempty" yaml:"tracking-methods,omitempty"`
	// AlternateDisposeMethods maps a type to methods that release it like Close does.
	AlternateDisposeMethods map[string][]string `json:"alternate-dispose-methods,omitempty" toml:"alternate-dispose-methods,omitempty" yaml:"alternate-dispose-methods,omitempty"`
}

// Defaults returns the built-in rule entries.
func Defaults() Entries {
	return Entries{
		IgnoredTypes: []string{
			"io.nopCloser",
			"io.nopCloserWriterTo",
			"net/http.noBody",
		},
		TrackingTypes: []string{
			"crypto/tls.Conn",
			"net/http/httputil.ClientConn",
			"net/rpc.Client",
			"net/smtp.Client",
			"net/textproto.Conn",
		},
		TrackingMethods: []string{
			"crypto/tls.Client",
			"crypto/tls.Server",
			"net/http.Serve",
			"net/http.ServeTLS",
			"(*net/http.Server).Serve",
			"(*net/http.Server).ServeTLS",
			"net/rpc.NewClient",
			"net/smtp.NewClient",
			"net/textproto.NewConn",
			"runtime.SetFinalizer",
		},
		AlternateDisposeMethods: map[string][]string{
			"io.PipeReader":   {"CloseWithError"},
			"io.PipeWriter":   {"CloseWithError"},
			"net/http.Server": {"Shutdown"},
		},
	}
}

type set map[string]struct{}

func (s set) add(names []string) {
	for _, name := range names {
		if name = normalize(name); name != "" {
			s[name] = struct{}{}
		}
	}
}

func (s set) contains(name string) bool {
	_, ok := s[normalize(name)]

	return ok
}

// normalize strips whitespace and pointer indirections from a qualified name.
func normalize(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), "*", "")
}

// Rules is an immutable rule set. The zero value has no rules; use [New] or [Default].
type Rules struct {
	ignoredTypes      set
	ignoredInterfaces set
	ignoredFunctions  set
	trackingTypes     set
	trackingMethods   set
	alternate         map[string]set
}

// New builds a [Rules] snapshot from the union of all entries.
func New(entries ...Entries) *Rules {
	r := &Rules{
		ignoredTypes:      make(set),
		ignoredInterfaces: make(set),
		ignoredFunctions:  make(set),
		trackingTypes:     make(set),
		trackingMethods:   make(set),
		alternate:         make(map[string]set),
	}

	for _, e := range entries {
		r.ignoredTypes.add(e.IgnoredTypes)
		r.ignoredInterfaces.add(e.IgnoredInterfaces)
		r.ignoredFunctions.add(e.IgnoredFunctions)
		r.trackingTypes.add(e.TrackingTypes)
		r.trackingMethods.add(e.TrackingMethods)

		for typ, methods := range e.AlternateDisposeMethods {
			typ = normalize(typ)

			m, ok := r.alternate[typ]
			if !ok {
				m = make(set, len(methods))
				r.alternate[typ] = m
			}

			m.add(methods)
		}
	}

	return r
}

// Default returns the built-in rules.
func Default() *Rules {
	return New(Defaults())
}

// IsIgnoredType reports whether the qualified type name is ignored.
func (r *Rules) IsIgnoredType(name string) bool { return r.ignoredTypes.contains(name) }

// IgnoredInterfaces yields the qualified names of ignored interfaces in sorted order.
func (r *Rules) IgnoredInterfaces() iter.Seq[string] {
	return slices.Values(slices.Sorted(maps.Keys(r.ignoredInterfaces)))
}

// IsIgnoredInterface reports whether the qualified interface name is ignored.
func (r *Rules) IsIgnoredInterface(name string) bool { return r.ignoredInterfaces.contains(name) }

// IsIgnoredFunction reports whether the full function name produces closers that need no closing.
func (r *Rules) IsIgnoredFunction(fullName string) bool { return r.ignoredFunctions.contains(fullName) }

// IsTrackingType reports whether the qualified type name is a configured tracking type.
func (r *Rules) IsTrackingType(name string) bool { return r.trackingTypes.contains(name) }

// IsTrackingMethod reports whether the full function name is a configured tracking method.
func (r *Rules) IsTrackingMethod(fullName string) bool { return r.trackingMethods.contains(fullName) }

// IsAlternateDisposeMethod reports whether method releases values of the qualified type.
func (r *Rules) IsAlternateDisposeMethod(typeName, method string) bool {
	m, ok := r.alternate[normalize(typeName)]

	return ok && m.contains(method)
}

// HasAlternateDisposeMethods reports whether the qualified type has configured alternate dispose methods.
func (r *Rules) HasAlternateDisposeMethods(typeName string) bool {
	_, ok := r.alternate[normalize(typeName)]

	return ok
}

// LogValue implements [slog.LogValuer].
func (r *Rules) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("ignored-types", len(r.ignoredTypes)),
		slog.Int("ignored-interfaces", len(r.ignoredInterfaces)),
		slog.Int("ignored-functions", len(r.ignoredFunctions)),
		slog.Int("tracking-types", len(r.trackingTypes)),
		slog.Int("tracking-methods", len(r.trackingMethods)),
		slog.Int("alternate-dispose-methods", len(r.alternate)),
	)
}
