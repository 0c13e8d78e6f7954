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

package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "fillmore-labs.com/closeguard/internal/config"
)

const (
	yamlRules = `
tracking-types:
  - example.com/a.Pool
ignored-functions:
  - example.com/fake.Closer
alternate-dispose-methods:
  example.com/a.Conn: [Release]
`

	tomlRules = `
tracking-types = ["example.com/a.Pool"]
ignored-functions = ["example.com/fake.Closer"]

[alternate-dispose-methods]
"example.com/a.Conn" = ["Release"]
`

	jsonRules = `{
	"tracking-types": ["example.com/a.Pool"],
	"ignored-functions": ["example.com/fake.Closer"],
	"alternate-dispose-methods": {"example.com/a.Conn": ["Release"]}
}`
)

func TestDecodeEntries(t *testing.T) {
	t.Parallel()

	tests := [...]struct {
		name   string
		format Format
		doc    string
	}{
		{"yaml", FormatYAML, yamlRules},
		{"toml", FormatTOML, tomlRules},
		{"json", FormatJSON, jsonRules},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e, err := DecodeEntries(strings.NewReader(tt.doc), tt.format)
			if err != nil {
				t.Fatalf("Can't decode rules: %v", err)
			}

			r := New(e)
			if !r.IsTrackingType("example.com/a.Pool") {
				t.Error("Expected tracking type example.com/a.Pool")
			}

			if !r.IsAlternateDisposeMethod("example.com/a.Conn", "Release") {
				t.Error("Expected alternate dispose method Release")
			}

			if !r.IsIgnoredFunction("example.com/fake.Closer") {
				t.Error("Expected ignored function example.com/fake.Closer")
			}
		})
	}
}

func TestDecodeEntriesMalformed(t *testing.T) {
	t.Parallel()

	tests := [...]struct {
		name   string
		format Format
		doc    string
	}{
		{"yaml unknown key", FormatYAML, "tracking-typez: []\n"},
		{"yaml syntax", FormatYAML, "tracking-types: [\n"},
		{"toml unknown key", FormatTOML, "tracking-typez = []\n"},
		{"toml syntax", FormatTOML, "tracking-types = [\n"},
		{"json unknown key", FormatJSON, `{"tracking-typez": []}`},
		{"json syntax", FormatJSON, `{"tracking-types": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := DecodeEntries(strings.NewReader(tt.doc), tt.format); !errors.Is(err, ErrMalformedRules) {
				t.Errorf("Got error %v, want %v", err, ErrMalformedRules)
			}
		})
	}
}

func TestDecodeEntriesEmpty(t *testing.T) {
	t.Parallel()

	for _, format := range [...]Format{FormatYAML, FormatTOML, FormatJSON} {
		if _, err := DecodeEntries(strings.NewReader(""), format); err != nil {
			t.Errorf("Empty document %d: %v", format, err)
		}
	}
}

func TestReadEntries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	path := filepath.Join(dir, "rules.yml")
	if err := os.WriteFile(path, []byte(yamlRules), 0o600); err != nil {
		t.Fatal(err)
	}

	e, err := ReadEntries(path)
	if err != nil {
		t.Fatalf("Can't read rules: %v", err)
	}

	if len(e.TrackingTypes) != 1 {
		t.Errorf("Got tracking types %v, want one", e.TrackingTypes)
	}

	if _, err := ReadEntries(filepath.Join(dir, "rules.ini")); !errors.Is(err, ErrMalformedRules) {
		t.Errorf("Got error %v for unsupported extension, want %v", err, ErrMalformedRules)
	}

	if _, err := ReadEntries(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Got error %v for missing file, want %v", err, os.ErrNotExist)
	}
}
