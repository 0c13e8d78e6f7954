// Copyright 2026 Oliver Eikemeier. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package a

import (
	"io"
	"os"
	"sync/atomic"

	"test/lib"
)

type Stream struct{ name string }

func (s *Stream) Close() error { return nil }

func open() *Stream { return &Stream{} }

func nilGuarded() {
	m := &Stream{}
	if m != nil {
		_ = m.Close()
	}
}

type C struct { // want C:`releases \[P\]`
	P io.Closer
}

func (c *C) Close() error { return c.P.Close() }

func (c *C) reset() { c.P = open() }

type nonTracking struct{ c io.Closer }

func (n *nonTracking) Close() error { return nil }

func wrapped() {
	mem := open() // want "Variable 'mem' holds closer from call that is never closed"
	defer (&nonTracking{mem}).Close()
}

func standalone() {
	open()          // want "Closer from call is never closed"
	_ = &Stream{}   // want "Closer from object creation is never closed"
	_ = new(Stream) // want "Closer from object creation is never closed"
}

type Holder struct { // want Holder:`releases \[Res\]`
	Res *Stream
	log *Stream
}

func (h *Holder) Close() error { return h.Res.Close() }

func (h *Holder) reset() {
	h.Res = open()
	h.log = open() // want "Field 'log' is assigned closer from call not released by Close"
}

func readFile(name string) ([]byte, error) {
	f, err := os.Open(name) // want "Variable 'f' holds closer from call that is never closed"
	if err != nil {
		return nil, err
	}

	return io.ReadAll(f)
}

func readClosed(name string) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

func pipe() {
	pr, pw := io.Pipe() // want "Variable 'pw' holds closer from call that is never closed"
	defer pr.Close()
	_ = pw
}

func create(name string) (*os.File, error) {
	return os.Create(name)
}

func pooled(p *lib.Pool) {
	p.Add(open())
	lib.Consume(open())
	lib.Inspect(open()) // want "Closer from call is never closed"
}

func wrapperTracked() {
	w := &lib.Wrapper{Inner: open()}
	defer w.Close()
}

type Client struct { // want Client:`releases \[conn\]`
	conn *Stream
}

func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) Conn() *Stream { return open() } // want "Property 'Conn' is assigned closer from call not released by Close"

func newClient() *Client {
	c := &Client{}
	c.conn = open()

	return c
}

func streams() chan *Stream { return make(chan *Stream) }

func receive() {
	s := <-streams() // want "Variable 's' holds closer from call that is never closed"
	_ = s
}

var current atomic.Pointer[Stream]

func swap() {
	if old := current.Swap(open()); old != nil {
		_ = old.Close()
	}
}

func suppressed() {
	open() //nolint:closeguard
}

//nolint:closeguard
func excluded() {
	open()
}
