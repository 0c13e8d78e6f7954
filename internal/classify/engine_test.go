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

package classify_test

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"golang.org/x/tools/go/ast/inspector"

	"fillmore-labs.com/closeguard/internal/config"
	"fillmore-labs.com/closeguard/internal/detect"
	"fillmore-labs.com/closeguard/internal/scope"
	"fillmore-labs.com/closeguard/internal/testsource"

	. "fillmore-labs.com/closeguard/internal/classify"
)

const streamDecls = `
import (
	"io"
	"os"
	"sync/atomic"
)

type Stream struct{}

func (*Stream) Close() error { return nil }

func open() *Stream { return &Stream{} }

func consume(c io.Closer) { _ = c.Close() }

func inspect(io.Closer) {}

func fetch() chan *Stream { return nil }

var (
	_ = os.Open
	_ atomic.Value
)
`

func classifyAll(tb testing.TB, ctx context.Context, src string, entries ...config.Entries) []string {
	tb.Helper()

	s := testsource.Parse(tb, streamDecls+src)

	d, err := detect.New(ctx, detect.Config{
		Info:       s.Info,
		Pkg:        s.Pkg,
		Rules:      config.New(append([]config.Entries{config.Defaults()}, entries...)...),
		Structural: true,
	}, s.In.Root())
	if err != nil {
		tb.Fatalf("Can't create detector: %v", err)
	}

	e := New(s.Info, d, scope.NewIndex(s.Info))

	var leaks []string

	for c, source := range Candidates(s.Info, s.In.Root()) {
		v, err := classifyCandidate(ctx, e, c, source)
		if err != nil {
			tb.Fatalf("Classify failed: %v", err)
		}

		if v.Leak() {
			leaks = append(leaks, fmt.Sprintf("%s/%s/%s", v.Kind, v.Source, v.Name))
		}
	}

	return leaks
}

func classifyCandidate(ctx context.Context, e *Engine, c inspector.Cursor, source Source) (Verdict, error) {
	if source == ObjectCreation {
		return e.ObjectCreation(ctx, c)
	}

	return e.Invocation(ctx, c)
}

func TestEngine(t *testing.T) {
	t.Parallel()

	tests := [...]struct {
		name string
		src  string
		want []string
	}{
		{
			name: "nil guarded close",
			src:  `func _() { m := open(); if m != nil { m.Close() } }`,
		},
		{
			name: "property closed",
			src: `
type C struct{ P *Stream }

func (c *C) Close() error { return c.P.Close() }

func _() { c := &C{P: open()}; defer c.Close() }
`,
		},
		{
			name: "literal in deferred non-tracking type",
			src: `
type nonTracking struct{ c io.Closer }

func (n *nonTracking) Close() error { return nil }

func _() {
	mem := open()
	defer (&nonTracking{mem}).Close()
}
`,
			want: []string{"var/invocation/mem"},
		},
		{
			name: "standalone",
			src:  `func _() { open(); _ = &Stream{}; _ = new(Stream) }`,
			want: []string{"ano/invocation/", "ano/creation/", "ano/creation/"},
		},
		{
			name: "factory assigned to closed property",
			src: `
type Holder struct {
	Res *Stream
	log *Stream
}

func (h *Holder) Close() error { return h.Res.Close() }

func (h *Holder) init() { h.Res = open(); h.log = open() }
`,
			want: []string{"fld/invocation/log"},
		},
		{
			name: "returned",
			src:  `func mk() *Stream { s := open(); return s }`,
		},
		{
			name: "named result",
			src:  `func mk() (s *Stream) { s = open(); return }`,
		},
		{
			name: "sent",
			src:  `func _(ch chan<- *Stream) { ch <- open() }`,
		},
		{
			name: "tracked by structure",
			src: `
type Wrapper struct{ s *Stream }

func (w *Wrapper) Close() error { return w.s.Close() }

func _() { w := &Wrapper{open()}; defer w.Close() }
`,
		},
		{
			name: "untracked literal",
			src: `
type plain struct{ s *Stream }

func _() { p := &plain{open()}; _ = p }
`,
			want: []string{"ano/invocation/"},
		},
		{
			name: "owned argument",
			src:  `func _() { consume(open()) }`,
		},
		{
			name: "unowned argument",
			src:  `func _() { inspect(open()) }`,
			want: []string{"ano/invocation/"},
		},
		{
			name: "deferred",
			src:  `func _() { defer open().Close(); defer func() { s := open(); _ = s }() }`,
		},
		{
			name: "closed through container",
			src: `
func _() {
	var all []*Stream
	all = append(all, open())
	for _, s := range all {
		s.Close()
	}
}
`,
		},
		{
			name: "received",
			src:  `func _() { s := <-fetch(); _ = s }`,
			want: []string{"var/invocation/s"},
		},
		{
			name: "received and closed",
			src:  `func _() { s := <-fetch(); defer s.Close() }`,
		},
		{
			name: "accessor",
			src: `
type Client struct{ conn *Stream }

func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) Conn() *Stream { return open() }
`,
			want: []string{"prp/invocation/Conn"},
		},
		{
			name: "released accessor",
			src: `
type Client struct{}

func (c *Client) Close() error { return c.Conn().Close() }

func (c *Client) Conn() *Stream { return open() }
`,
		},
		{
			name: "field initializer",
			src: `
type Client struct{ conn, spare *Stream }

func (c *Client) Close() error { return c.conn.Close() }

func _() {
	c := &Client{conn: open(), spare: open()}
	defer c.Close()
}
`,
			want: []string{"fld/invocation/spare"},
		},
		{
			name: "atomic exchange",
			src:  `var p atomic.Pointer[Stream]; func _() { p.Store(open()) }`,
		},
		{
			name: "alias",
			src:  `func _() { s := open(); var c io.Closer = s; c.Close() }`,
		},
		{
			name: "package variable",
			src:  `var global *Stream; func _() { global = open() }`,
		},
		{
			name: "blank package variable",
			src:  `var _ = open()`,
			want: []string{"ano/invocation/"},
		},
		{
			name: "tuple",
			src:  `func _() { f, err := os.Open("x"); if err != nil { return }; _ = f.Name() }`,
			want: []string{"var/invocation/f"},
		},
		{
			name: "assigned in nested block",
			src:  `func _() { var s *Stream; if true { s = open() }; _ = s }`,
			want: []string{"var/invocation/s"},
		},
		{
			name: "stored through pointer",
			src:  `func _(out **Stream) { *out = open() }`,
		},
		{
			name: "deferred non-release method",
			src: `
func (*Stream) Name() string { return "" }

func _() { s := open(); defer s.Name() }
`,
			want: []string{"var/invocation/s"},
		},
		{
			name: "deferred unowned argument",
			src:  `func _() { s := open(); defer inspect(s) }`,
			want: []string{"var/invocation/s"},
		},
		{
			name: "deferred owned argument",
			src:  `func _() { s := open(); defer consume(s) }`,
		},
		{
			name: "every closer of a tuple",
			src:  `func _() { pr, pw := io.Pipe(); defer pr.Close(); _ = pw }`,
			want: []string{"var/invocation/pw"},
		},
		{
			name: "tuple closed with alternate method",
			src:  `func _() { pr, pw := io.Pipe(); defer pr.Close(); pw.CloseWithError(nil) }`,
		},
		{
			name: "method owning receiver",
			src: `
func (s *Stream) Finish() { s.Close() }

func _() { open().Finish(); t := open(); t.Finish() }
`,
		},
		{
			name: "received into field",
			src: `
type H struct{ s, spare *Stream }

func (h *H) Close() error { return h.s.Close() }

func (h *H) load() { h.s = <-fetch(); h.spare = <-fetch() }
`,
			want: []string{"var/invocation/spare"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := classifyAll(t, t.Context(), tt.src)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Got leaks %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngineRules(t *testing.T) {
	t.Parallel()

	const src = `
type Pool struct{ items []io.Closer }

func (p *Pool) Close() error { return nil }

func (p *Pool) Add(c io.Closer) { p.items = append(p.items, c) }

func _() {
	s := open()
	_ = s
	p := &Pool{items: []io.Closer{open()}}
	defer p.Close()
	p.Add(open())
}
`

	tests := [...]struct {
		name    string
		entries config.Entries
		want    []string
	}{
		{
			name: "defaults",
			want: []string{"var/invocation/s", "ano/invocation/", "ano/invocation/"},
		},
		{
			name:    "ignored type",
			entries: config.Entries{IgnoredTypes: []string{"test.Stream"}},
		},
		{
			name: "tracking",
			entries: config.Entries{
				TrackingTypes:   []string{"test.Pool"},
				TrackingMethods: []string{"(*test.Pool).Add"},
			},
			want: []string{"var/invocation/s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := classifyAll(t, t.Context(), src, tt.entries)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Got leaks %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngineConfigured(t *testing.T) {
	t.Parallel()

	tests := [...]struct {
		name    string
		src     string
		entries config.Entries
		want    []string
	}{
		{
			name: "chain without tracking method",
			src:  `func (*Stream) Track() {}; func _() { open().Track() }`,
			want: []string{"ano/invocation/"},
		},
		{
			name:    "chain ending in tracking method",
			src:     `func (*Stream) Track() {}; func _() { open().Track() }`,
			entries: config.Entries{TrackingMethods: []string{"(*test.Stream).Track"}},
		},
		{
			name: "factory",
			src:  `func fake() *Stream { return &Stream{} }; func _() { fake() }`,
			want: []string{"ano/invocation/"},
		},
		{
			name:    "ignored factory",
			src:     `func fake() *Stream { return &Stream{} }; func _() { fake() }`,
			entries: config.Entries{IgnoredFunctions: []string{"test.fake"}},
		},
		{
			name: "ignored factory method",
			src: `
type Factory struct{}

func (Factory) Fake() *Stream { return nil }

func _() { s := Factory{}.Fake(); _ = s }
`,
			entries: config.Entries{IgnoredFunctions: []string{"(test.Factory).Fake"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := classifyAll(t, t.Context(), tt.src, tt.entries)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Got leaks %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngineCanceled(t *testing.T) {
	t.Parallel()

	s := testsource.Parse(t, streamDecls+`func _() { s := open(); _ = s }`)

	d, err := detect.New(t.Context(), detect.Config{Info: s.Info, Pkg: s.Pkg}, s.In.Root())
	if err != nil {
		t.Fatalf("Can't create detector: %v", err)
	}

	e := New(s.Info, d, scope.NewIndex(s.Info))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	for c, source := range Candidates(s.Info, s.In.Root()) {
		if _, err := classifyCandidate(ctx, e, c, source); err != context.Canceled {
			t.Errorf("Got error %v, want %v", err, context.Canceled)
		}
	}

	if _, err := detect.New(ctx, detect.Config{Info: s.Info, Pkg: s.Pkg}, s.In.Root()); err != context.Canceled {
		t.Errorf("Detector: got error %v, want %v", err, context.Canceled)
	}
}
