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

// blockMagic marks the first word pair of every live block header.
const blockMagic uint32 = 0xB0DD1E5

const (
	blockFree uint32 = iota + 1
	blockOccupied
)

// header is placed at the start of every block, free or occupied. The user
// payload follows it immediately, see headerSize.
type header struct {
	size  uintptr // block size in bytes, unit<<order
	head  uintptr // first byte of the extension this block belongs to
	end   uintptr // one past the last byte of that extension
	state uint32
	magic uint32
}

// headerSize is the distance between a block and the pointer handed out
// for it.
const headerSize = unsafe.Sizeof(header{})

func hdr(block unsafe.Pointer) *header {
	return (*header)(block)
}

func (h *header) free() bool {
	return h.state == blockFree
}

func (h *header) occupied() bool {
	return h.state == blockOccupied
}

// initblock writes a fresh header for a free block.
func initblock(block unsafe.Pointer, size, head, end uintptr) {
	*hdr(block) = header{size: size, head: head, end: end, state: blockFree, magic: blockMagic}
}

// buddyOf returns the buddy of block, or false when the buddy would fall
// outside the block's extension.
func buddyOf(block unsafe.Pointer) (unsafe.Pointer, bool) {
	h := hdr(block)
	off := uintptr(block) - h.head
	boff := ((off / h.size) ^ 1) * h.size
	if boff >= h.end-h.head {
		return nil, false
	}
	return unsafe.Add(block, int(boff)-int(off)), true
}

// payload returns the user pointer for block.
func payload(block unsafe.Pointer) unsafe.Pointer {
	return unsafe.Add(block, int(headerSize))
}

// Bytes returns the n bytes at ptr as a slice. ptr must come from Malloc,
// Calloc or Realloc and n must not exceed the allocation's usable size.
func Bytes(ptr unsafe.Pointer, n int) []byte {
	if ptr == nil {
		return nil
	}
	return unsafe.Slice((*byte)(ptr), n)
}
