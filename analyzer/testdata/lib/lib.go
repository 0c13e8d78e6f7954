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
package lib

import "io"

// Pool closes all closers added to it.
type Pool struct { // want Pool:`releases \[items\]`
	items []io.Closer
}

func (p *Pool) Close() error {
	for _, c := range p.items {
		_ = c.Close()
	}

	return nil
}

func (p *Pool) Add(c io.Closer) { // want Add:`owns \[0\]`
	p.items = append(p.items, c)
}

// Wrapper closes the wrapped closer.
type Wrapper struct { // want Wrapper:`releases \[Inner\]`
	Inner io.Closer
}

func (w *Wrapper) Close() error { return w.Inner.Close() }

func Consume(c io.Closer) { // want Consume:`owns \[0\]`
	_ = c.Close()
}

func Inspect(c io.Closer) bool { return c != nil }
