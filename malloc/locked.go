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


package malloc

import (
	"sync"
	"unsafe"
)

// LockedHeap serializes every operation on a Heap with a single mutex.
type LockedHeap struct {
	mu   sync.Mutex
	heap *Heap
}

// NewLockedHeap guards heap, heap must not be used directly afterwards.
func NewLockedHeap(heap *Heap) *LockedHeap {
	return &LockedHeap{heap: heap}
}

func (l *LockedHeap) Malloc(n int) (unsafe.Pointer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.heap.Malloc(n)
}

func (l *LockedHeap) Calloc(count, size int) (unsafe.Pointer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.heap.Calloc(count, size)
}

func (l *LockedHeap) Realloc(ptr unsafe.Pointer, n int) (unsafe.Pointer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.heap.Realloc(ptr, n)
}

func (l *LockedHeap) Free(ptr unsafe.Pointer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.heap.Free(ptr)
}

func (l *LockedHeap) Usable(ptr unsafe.Pointer) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.heap.Usable(ptr)
}

func (l *LockedHeap) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.heap.Stats()
}

func (l *LockedHeap) Validate() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.heap.Validate()
}

func (l *LockedHeap) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.heap.Release()
}
