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
package configured

import "io"

type Borrowed struct{}

func (*Borrowed) Close() error { return nil }

type Registry struct { // want Registry:`releases \[items\]`
	items []io.Closer
}

func (r *Registry) Close() error {
	for _, c := range r.items {
		_ = c.Close()
	}

	return nil
}

func (r *Registry) Register(c io.Closer) { r.items = append(r.items, c) }

func (r *Registry) Track(c io.Closer) { r.items = append(r.items, c) }

type Stream struct{}

func (*Stream) Close() error { return nil }

func open() *Stream { return &Stream{} }

func consume(c io.Closer) { _ = c.Close() }

func fakeStream() *Stream { return &Stream{} }

func use(r *Registry) {
	_ = &Borrowed{}
	r.Register(open())
	r.Track(open()) // want "Closer from call is never closed"
	consume(open()) // want "Closer from call is never closed"
	fakeStream()
}
