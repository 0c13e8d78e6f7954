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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrMalformedRules is returned when a rule document cannot be decoded.
var ErrMalformedRules = errors.New("malformed rule document")

// Format is the encoding of a rule document.
type Format uint8

const (
	// FormatYAML is a YAML document.
	FormatYAML Format = iota
	// FormatTOML is a TOML document.
	FormatTOML
	// FormatJSON is a JSON document.
	FormatJSON
)

// FormatOf determines the document format from the file name extension.
func FormatOf(name string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil

	case ".toml":
		return FormatTOML, nil

	case ".json":
		return FormatJSON, nil

	default:
		return 0, fmt.Errorf("%w: unsupported extension %q", ErrMalformedRules, ext)
	}
}

// DecodeEntries decodes a rule document. Unknown keys are rejected.
func DecodeEntries(r io.Reader, format Format) (Entries, error) {
	var e Entries

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)

		if err := dec.Decode(&e); err != nil && !errors.Is(err, io.EOF) {
			return Entries{}, fmt.Errorf("%w: %w", ErrMalformedRules, err)
		}

	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&e)
		if err != nil {
			return Entries{}, fmt.Errorf("%w: %w", ErrMalformedRules, err)
		}

		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Entries{}, fmt.Errorf("%w: unknown key %q", ErrMalformedRules, undecoded[0].String())
		}

	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()

		if err := dec.Decode(&e); err != nil && !errors.Is(err, io.EOF) {
			return Entries{}, fmt.Errorf("%w: %w", ErrMalformedRules, err)
		}

	default:
		return Entries{}, fmt.Errorf("%w: unknown format %d", ErrMalformedRules, format)
	}

	return e, nil
}

// ReadEntries reads the rule document at path, choosing the decoder by file extension.
func ReadEntries(path string) (Entries, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Entries{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Entries{}, fmt.Errorf("can't read rules: %w", err)
	}

	return DecodeEntries(bytes.NewReader(data), format)
}
