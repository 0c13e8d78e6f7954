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
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	. "fillmore-labs.com/closeguard/internal/config"
)

func TestStoreReload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.json")

	write := func(doc string, mtime time.Time) {
		t.Helper()

		if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
			t.Fatal(err)
		}

		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatal(err)
		}
	}

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	write(`{"tracking-types": ["example.com/a.Pool"]}`, start)

	s := NewStore(path)

	first := s.Rules()
	if !first.IsTrackingType("example.com/a.Pool") {
		t.Fatal("Expected tracking type from document")
	}

	if s.Rules() != first {
		t.Error("Unchanged document must keep the snapshot")
	}

	write(`{"tracking-types": ["example.com/a.Other"]}`, start.Add(time.Minute))

	second := s.Rules()
	if second == first {
		t.Fatal("Changed document must replace the snapshot")
	}

	if second.IsTrackingType("example.com/a.Pool") || !second.IsTrackingType("example.com/a.Other") {
		t.Error("Reloaded snapshot has stale entries")
	}

	if !first.IsTrackingType("example.com/a.Pool") {
		t.Error("Previous snapshot was modified")
	}
}

func TestStoreFallback(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("tracking-types: [\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	extra := Entries{TrackingTypes: []string{"example.com/a.Pool"}}
	r := NewStore(path, extra).Rules()

	if !r.IsTrackingType("crypto/tls.Conn") {
		t.Error("Expected default rules on malformed document")
	}

	if !r.IsTrackingType("example.com/a.Pool") {
		t.Error("Expected extra entries on malformed document")
	}
}

func TestStoreNoPath(t *testing.T) {
	t.Parallel()

	s := NewStore("")

	var wg sync.WaitGroup

	results := make([]*Rules, 8)
	for i := range results {
		wg.Add(1)

		go func() {
			defer wg.Done()

			results[i] = s.Rules()
		}()
	}

	wg.Wait()

	for i, r := range results {
		if r != results[0] {
			t.Errorf("Reader %d observed a different snapshot", i)
		}
	}
}
