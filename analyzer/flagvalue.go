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
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"fillmore-labs.com/closeguard/analyzer/level"
	"fillmore-labs.com/closeguard/internal/config"
)

type boolValue[F any, B boolFlag[F]] struct {
	flags B
	value F
}

type boolFlag[F any] interface {
	comparable
	Set(flag F, value bool)
	Enabled(flag F) bool
}

func newBehaviorValue(flags *config.Behavior, value config.BehaviorFlags) boolValue[config.BehaviorFlags, *config.Behavior] {
	return boolValue[config.BehaviorFlags, *config.Behavior]{flags: flags, value: value}
}

// Set implements [flag.Value].
func (f boolValue[_, B]) Set(s string) error {
	b, err := parseBool(s)
	if err != nil {
		return err
	}

	f.flags.Set(f.value, b)

	return nil
}

// String implements [flag.Value].
func (f boolValue[_, B]) String() string {
	var null B
	if f.flags == null {
		return "false"
	}

	return strconv.FormatBool(f.flags.Enabled(f.value))
}

// Get implements [flag.Getter].
func (f boolValue[_, B]) Get() any {
	var null B
	if f.flags == null {
		return false
	}

	return f.flags.Enabled(f.value)
}

// IsBoolFlag returns true to indicate that this is a boolean [flag.Value].
func (f boolValue[_, _]) IsBoolFlag() bool { return true }

// parseBool returns the boolean value represented by the string.
func parseBool(str string) (bool, error) {
	switch str {
	case "1", "t", "T", "true", "TRUE", "True", "on", "On", "full", "Full":
		return true, nil
	case "0", "f", "F", "false", "FALSE", "False", "off", "Off":
		return false, nil
	}

	return false, &strconv.NumError{Func: "ParseBool", Num: str, Err: strconv.ErrSyntax}
}

// trackingValue maps a [level.Tracking] onto the structural tracking behavior flag.
type trackingValue struct {
	flags *config.Behavior
}

func newTrackingValue(flags *config.Behavior) trackingValue {
	return trackingValue{flags: flags}
}

func (f trackingValue) level() level.Tracking {
	if f.flags != nil && f.flags.Enabled(config.StructuralTracking) {
		return level.TrackingStructural
	}

	return level.TrackingConfigured
}

// Set implements [flag.Value].
func (f trackingValue) Set(s string) error {
	var l level.Tracking
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return err
	}

	f.flags.Set(config.StructuralTracking, l.Structural())

	return nil
}

// String implements [flag.Value].
func (f trackingValue) String() string { return f.level().String() }

// Get implements [flag.Getter].
func (f trackingValue) Get() any { return f.level() }

// listValue appends comma separated entries to a string list.
type listValue struct {
	list *[]string
}

func newListValue(list *[]string) listValue {
	return listValue{list: list}
}

// Set implements [flag.Value].
func (f listValue) Set(s string) error {
	for entry := range strings.SplitSeq(s, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			*f.list = append(*f.list, entry)
		}
	}

	return nil
}

// String implements [flag.Value].
func (f listValue) String() string {
	if f.list == nil {
		return ""
	}

	return strings.Join(*f.list, ",")
}

// Get implements [flag.Getter].
func (f listValue) Get() any {
	if f.list == nil {
		return []string(nil)
	}

	return slices.Clone(*f.list)
}

var errMethodSyntax = errors.New("expected type=method")

// methodsValue adds comma separated type=method pairs to a method map.
type methodsValue struct {
	methods *map[string][]string
}

func newMethodsValue(methods *map[string][]string) methodsValue {
	return methodsValue{methods: methods}
}

// Set implements [flag.Value].
func (f methodsValue) Set(s string) error {
	for entry := range strings.SplitSeq(s, ",") {
		if entry = strings.TrimSpace(entry); entry == "" {
			continue
		}

		typ, method, ok := strings.Cut(entry, "=")
		if typ, method = strings.TrimSpace(typ), strings.TrimSpace(method); !ok || typ == "" || method == "" {
			return fmt.Errorf("%w: %q", errMethodSyntax, entry)
		}

		if *f.methods == nil {
			*f.methods = make(map[string][]string)
		}

		(*f.methods)[typ] = append((*f.methods)[typ], method)
	}

	return nil
}

// String implements [flag.Value].
func (f methodsValue) String() string {
	if f.methods == nil {
		return ""
	}

	var pairs []string
	for _, typ := range slices.Sorted(maps.Keys(*f.methods)) {
		for _, method := range (*f.methods)[typ] {
			pairs = append(pairs, typ+"="+method)
		}
	}

	return strings.Join(pairs, ",")
}
