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


// Package malloc implements a buddy-system heap over a growable arena.
//
// Memory is obtained from an arena.Source in extensions and is never given
// back while the heap lives. Each extension starts out as one free block,
// blocks are split in halves to serve smaller requests and merged with their
// buddy when released:
//
//	heap, err := malloc.NewHeap(s.Settings{"source": "mmap"})
//	ptr, err := heap.Malloc(100)
//	buf := malloc.Bytes(ptr, 100)
//	...
//	heap.Free(ptr)
//
// Every block carries a header in front of the pointer handed out, so the
// usable size of an allocation is its block size minus the header. Free
// blocks are filed per order in bounded buckets, see "freelist.capacity" in
// Defaultsettings.
//
// Heap is not safe for concurrent use, wrap it with NewLockedHeap when it is
// shared between goroutines.
package malloc
