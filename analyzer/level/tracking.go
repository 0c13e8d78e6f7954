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

// Package level defines the text-valued settings of the closeguard analyzer.
package level

import (
	"fmt"
	"strings"
)

// Tracking specifies how tracking types and ownership-taking functions are recognized.
type Tracking uint8

const (
	// TrackingStructural recognizes configured tracking types and methods, plus types whose
	// Close releases a field and functions that close or store a parameter.
	TrackingStructural Tracking = iota

	// TrackingConfigured recognizes only configured tracking types and methods.
	TrackingConfigured
)

// Structural reports whether declarations are inspected for ownership.
func (o Tracking) Structural() bool {
	return o == TrackingStructural
}

// String returns the text form of the tracking level.
func (o Tracking) String() string {
	text, err := o.MarshalText()
	if err != nil {
		return fmt.Sprintf("Tracking(%d)", o)
	}

	return string(text)
}

// MarshalText implements [encoding.TextMarshaler].
func (o Tracking) MarshalText() ([]byte, error) {
	switch o {
	case TrackingStructural:
		return []byte("structural"), nil

	case TrackingConfigured:
		return []byte("configured"), nil

	default:
		return nil, fmt.Errorf("unknown tracking level %d", o)
	}
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (o *Tracking) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "", "true", "on", "structural":
		*o = TrackingStructural

	case "configured", "config", "off", "false":
		*o = TrackingConfigured

	default:
		return fmt.Errorf("unknown tracking level %q", string(text))
	}

	return nil
}
