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

package analyzer

import (
	"flag"

	"fillmore-labs.com/closeguard/internal/config"
	"fillmore-labs.com/closeguard/internal/run"
)

func NewBehaviorValue(flags *config.Behavior, value config.BehaviorFlags) flag.Getter {
	return newBehaviorValue(flags, value)
}

func NewTrackingValue(flags *config.Behavior) flag.Getter { return newTrackingValue(flags) }

func NewListValue(list *[]string) flag.Getter { return newListValue(list) }

func NewMethodsValue(methods *map[string][]string) flag.Value { return newMethodsValue(methods) }

func RunOptions(opts ...Option) *run.Options {
	r := run.DefaultOptions()
	Options(opts).apply(r)

	return r
}
