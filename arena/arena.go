/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


// Package arena provides the heap-growth primitives a buddy heap extends
// itself with. A Source hands out fresh, contiguous regions of memory on
// demand, the way sbrk(2) grows the program break, and takes them back only
// when the owning heap is released.
package arena

import (
	"errors"
	"fmt"
)

// ErrExhausted is returned by Extend when a source cannot supply more memory.
var ErrExhausted = errors.New("arena: exhausted")

// Source is the heap-growth primitive used by malloc.Heap.
type Source interface {
	// Extend returns a fresh region of exactly n bytes. The content of the
	// region is indeterminate.
	Extend(n int) ([]byte, error)

	// Release gives back a region previously returned by Extend.
	Release(mem []byte) error

	// Name identifies the source in logs and statistics.
	Name() string
}

// New returns the source registered under name: "mmap" or "go".
func New(name string) (Source, error) {
	switch name {
	case "mmap":
		return NewMmap(), nil
	case "go":
		return NewGo(), nil
	}
	return nil, fmt.Errorf("arena: unknown source %q", name)
}
