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
	"fmt"
	"unsafe"
)

// walk visits every block of every extension in address order. Blocks tile
// their extension, so the next block starts right after the current one.
func (heap *Heap) walk(fn func(block unsafe.Pointer, h *header) error) error {
	for _, ext := range heap.extents {
		base := unsafe.Pointer(unsafe.SliceData(ext.mem))
		for off := uintptr(0); off < ext.end-ext.head; {
			block := unsafe.Add(base, int(off))
			h := hdr(block)
			if h.magic != blockMagic {
				return fmt.Errorf("block %p: bad magic %#x: %w", block, h.magic, ErrCorrupted)
			} else if h.size == 0 || off+h.size > ext.end-ext.head {
				return fmt.Errorf("block %p: size %v overruns extension: %w", block, h.size, ErrCorrupted)
			}
			if err := fn(block, h); err != nil {
				return err
			}
			off += h.size
		}
	}
	return nil
}

// Validate checks the heap metadata:
//
//   - every block size is unit*2^k with k in [minorder, maxorder],
//   - blocks are aligned to their size within their extension,
//   - no free block has a free buddy of the same size,
//   - free-list entries address free blocks of the bucket's order and
//     occupied blocks are never filed.
//
// Free blocks missing from a full bucket are allowed.
func (heap *Heap) Validate() error {
	free := make(map[unsafe.Pointer]int)
	err := heap.walk(func(block unsafe.Pointer, h *header) error {
		order, err := heap.orders.sizeToOrder(h.size)
		if err != nil {
			return fmt.Errorf("block %p: %v: %w", block, err, ErrCorrupted)
		}
		off := uintptr(block) - h.head
		if ext := heap.extentOf(uintptr(block)); ext == nil || ext.head != h.head || ext.end != h.end {
			return fmt.Errorf("block %p: extension bounds [%#x,%#x): %w", block, h.head, h.end, ErrCorrupted)
		} else if off%h.size != 0 {
			return fmt.Errorf("block %p: offset %v not aligned to %v: %w", block, off, h.size, ErrCorrupted)
		}

		switch h.state {
		case blockOccupied:
			if heap.freelist.contains(block, order) {
				return fmt.Errorf("occupied block %p in free-list: %w", block, ErrCorrupted)
			}
		case blockFree:
			free[block] = order
			if buddy, ok := buddyOf(block); ok {
				if bh := hdr(buddy); bh.magic == blockMagic && bh.free() && bh.size == h.size {
					return fmt.Errorf("free block %p and buddy %p not coalesced: %w", block, buddy, ErrCorrupted)
				}
			}
		default:
			return fmt.Errorf("block %p: state %v: %w", block, h.state, ErrCorrupted)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i, bucket := range heap.freelist.buckets {
		order := i + heap.freelist.minorder
		for _, block := range bucket {
			if o, ok := free[block]; !ok {
				return fmt.Errorf("free-list order %v: %p is not a free block: %w", order, block, ErrCorrupted)
			} else if o != order {
				return fmt.Errorf("free-list order %v: %p has order %v: %w", order, block, o, ErrCorrupted)
			}
		}
	}
	return nil
}
