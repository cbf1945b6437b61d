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
	"errors"
	"fmt"
	"unsafe"
)

// track registers a free block in its bucket. A full bucket leaves the block
// free but untracked: it can still merge with its buddy later on, it just
// cannot be handed out by firstFit.
func (heap *Heap) track(block unsafe.Pointer, size uintptr) {
	err := heap.freelist.add(block, heap.orders.mustOrder(size))
	switch {
	case err == nil:
	case errors.Is(err, ErrBucketFull):
		heap.dropped++
		heap.droppedBytes += int64(size)
		heap.logger.Warnf("%v dropping free block %p: %v\n", heap.name, block, err)
	default:
		heap.logger.Debugf("%v track %p: %v\n", heap.name, block, err)
	}
}

func (heap *Heap) untrack(block unsafe.Pointer, size uintptr) {
	if !heap.freelist.remove(block, heap.orders.mustOrder(size)) {
		heap.logger.Tracef("%v untrack %p: not in free-list order %v\n",
			heap.name, block, heap.orders.mustOrder(size))
	}
}

// split halves block until it is target bytes long. Every back half becomes
// a new free block, the front half is returned. A free block is re-filed
// under its new order on every halving.
func (heap *Heap) split(block unsafe.Pointer, target uintptr) (unsafe.Pointer, error) {
	h := hdr(block)
	if h.size < target {
		return nil, fmt.Errorf("split %d bytes into %d: %w", h.size, target, ErrSplitUnderflow)
	} else if h.size == target {
		return block, nil
	} else if !halves(target, h.size) {
		return nil, fmt.Errorf("split %d bytes into %d: %w", h.size, target, ErrSplitRatio)
	}

	if h.occupied() {
		heap.logger.Tracef("%v splitting occupied block %p\n", heap.name, block)
	}
	for h.size > target {
		free := h.free()
		if free {
			heap.untrack(block, h.size)
		}
		h.size /= 2
		if free {
			heap.track(block, h.size)
		}
		back := unsafe.Add(block, int(h.size))
		initblock(back, h.size, h.head, h.end)
		heap.track(back, h.size)
	}
	if h.size != target {
		panic(fmt.Errorf("split %p overshot to %d bytes, want %d", block, h.size, target))
	}
	return block, nil
}

// coalesce frees block and merges it with its buddy for as long as the
// buddy is free and of the same size. Returns the resulting block.
func (heap *Heap) coalesce(block unsafe.Pointer) unsafe.Pointer {
	h := hdr(block)
	h.state = blockFree
	heap.track(block, h.size)

	for {
		buddy, ok := buddyOf(block)
		if !ok {
			break
		}
		bh := hdr(buddy)
		if bh.magic != blockMagic {
			panic(fmt.Errorf("%v buddy %p of %p has no block header", heap.name, buddy, block))
		}
		if bh.size != h.size || !bh.free() {
			break
		}
		heap.untrack(block, h.size)
		heap.untrack(buddy, bh.size)

		lower, upper := block, buddy
		if uintptr(upper) < uintptr(lower) {
			lower, upper = upper, lower
		}
		hdr(upper).magic = 0
		h = hdr(lower)
		h.size *= 2
		h.state = blockFree
		heap.track(lower, h.size)
		block = lower
	}
	return block
}
