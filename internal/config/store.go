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
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Store holds the current [Rules] snapshot for a rule document and replaces it as a whole
// when the document changes. Readers never observe a partially built rule set.
type Store struct {
	path  string
	extra []Entries

	mu      sync.Mutex // serializes reloads
	current atomic.Pointer[snapshot]
}

type snapshot struct {
	rules   *Rules
	modTime time.Time
	size    int64
	missing bool
}

func (s *snapshot) matches(fi os.FileInfo, err error) bool {
	if err != nil {
		return s.missing
	}

	return !s.missing && s.modTime.Equal(fi.ModTime()) && s.size == fi.Size()
}

// NewStore creates a rule store for the document at path, which may be empty.
// The built-in defaults and extra are unioned with the document's entries.
func NewStore(path string, extra ...Entries) *Store {
	return &Store{path: path, extra: extra}
}

// Rules returns the current rule snapshot, reloading the document if it changed since the last call.
func (s *Store) Rules() *Rules {
	if s.path == "" {
		if cur := s.current.Load(); cur != nil {
			return cur.rules
		}

		return s.reload()
	}

	if cur := s.current.Load(); cur != nil && cur.matches(os.Stat(s.path)) {
		return cur.rules
	}

	return s.reload()
}

func (s *Store) reload() *Rules {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		if cur := s.current.Load(); cur != nil {
			return cur.rules
		}

		next := &snapshot{rules: s.build()}
		s.current.Store(next)

		return next.rules
	}

	fi, err := os.Stat(s.path)
	if cur := s.current.Load(); cur != nil && cur.matches(fi, err) {
		return cur.rules // reloaded concurrently
	}

	next := &snapshot{missing: err != nil}
	if err == nil {
		next.modTime, next.size = fi.ModTime(), fi.Size()
	}

	entries, err := ReadEntries(s.path)
	if err != nil {
		slog.Warn("Using default rules", slog.String("path", s.path), slog.Any("error", err))
		next.rules = s.build()
	} else {
		next.rules = s.build(entries)
	}

	s.current.Store(next)

	return next.rules
}

func (s *Store) build(entries ...Entries) *Rules {
	all := make([]Entries, 0, 1+len(s.extra)+len(entries))
	all = append(all, Defaults())
	all = append(all, s.extra...)
	all = append(all, entries...)

	return New(all...)
}
