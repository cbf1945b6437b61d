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

import "unsafe"

// Allocator is the heap API implemented by Heap and LockedHeap.
type Allocator interface {
	// Malloc allocates n bytes.
	Malloc(n int) (unsafe.Pointer, error)

	// Calloc allocates count*size zeroed bytes.
	Calloc(count, size int) (unsafe.Pointer, error)

	// Realloc resizes an allocation, moving it when it does not fit.
	Realloc(ptr unsafe.Pointer, n int) (unsafe.Pointer, error)

	// Free releases an allocation, nil is a no-op.
	Free(ptr unsafe.Pointer) error

	// Usable returns the bytes available at an allocation.
	Usable(ptr unsafe.Pointer) (int, error)

	// Stats return heap accounting.
	Stats() Stats
}

var (
	_ Allocator = (*Heap)(nil)
	_ Allocator = (*LockedHeap)(nil)
)
