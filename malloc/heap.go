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
	"math"
	"math/bits"
	"sort"
	"unsafe"

	s "github.com/bnclabs/gosettings"

	"github.com/cloudwego/buddymalloc/arena"
)

// extent is one region obtained from the source.
type extent struct {
	mem  []byte
	head uintptr
	end  uintptr
}

// Heap is a buddy allocator over a growable arena. Every block, free or
// occupied, starts with a header and is unit<<k bytes long. Free blocks are
// filed by order in a free-list; allocation takes the smallest fitting free
// block and splits it down, release merges a block with its buddy for as
// long as possible. When no free block fits, the arena is extended through
// its arena.Source.
//
// Heap is not safe for concurrent use, see LockedHeap.
type Heap struct {
	name     string
	src      arena.Source
	orders   orders
	growth   growth
	freelist *freelist
	extents  []extent // sorted by head
	validate bool
	logger   Logger

	// stats
	mallocs      int64
	frees        int64
	dropped      int64
	droppedBytes int64
}

// NewHeap creates a heap from settings, missing settings are taken from
// Defaultsettings(). The source is picked by the "source" setting and capped
// at "capacity" bytes.
func NewHeap(setts s.Settings) (*Heap, error) {
	setts = Defaultsettings().Mixin(setts)
	src, err := arena.New(setts.String("source"))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidConfig)
	}
	return NewHeapWith(src, setts)
}

// NewHeapWith creates a heap that extends itself through src.
func NewHeapWith(src arena.Source, setts s.Settings) (*Heap, error) {
	setts = Defaultsettings().Mixin(setts)
	cfg, err := newconfig(setts)
	if err != nil {
		return nil, err
	}
	heap := &Heap{
		name:     cfg.name,
		src:      arena.NewLimited(src, cfg.capacity),
		orders:   cfg.orders,
		growth:   newGrowth(cfg.extmin, cfg.extmax),
		freelist: newFreelist(cfg.orders.minorder, cfg.orders.maxorder, cfg.bucketcap),
		validate: cfg.validate,
		logger:   DefaultLogger(),
	}
	heap.logger.Infof("%v new heap over %q, blocks [%v,%v] bytes, extensions [%v,%v] bytes\n",
		heap.name, src.Name(), cfg.orders.minblock(), cfg.orders.maxblock(), cfg.extmin, cfg.extmax)
	return heap, nil
}

// SetLogger replaces the diagnostic sink. A nil logger discards diagnostics.
func (heap *Heap) SetLogger(logger Logger) *Heap {
	if logger == nil {
		logger = nolog{}
	}
	heap.logger = logger
	return heap
}

// Malloc allocates n bytes and returns a pointer to them. The content of the
// allocation is indeterminate. Fails with ErrNoMemory for n <= 0, for n
// beyond the largest block and when the source is exhausted.
func (heap *Heap) Malloc(n int) (unsafe.Pointer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("malloc %d bytes: %w", n, ErrNoMemory)
	}
	required, err := heap.orders.roundup(uintptr(n) + headerSize)
	if err != nil {
		return nil, err
	}
	block, err := heap.acquire(required)
	if err != nil {
		return nil, err
	}
	h := hdr(block)
	h.state = blockOccupied
	heap.untrack(block, h.size)
	heap.mallocs++
	heap.check("malloc")
	return payload(block), nil
}

// Calloc allocates count*size zeroed bytes.
func (heap *Heap) Calloc(count, size int) (unsafe.Pointer, error) {
	if count < 0 || size < 0 {
		return nil, fmt.Errorf("calloc %d*%d bytes: %w", count, size, ErrNoMemory)
	}
	hi, total := bits.Mul64(uint64(count), uint64(size))
	if hi != 0 || total > math.MaxInt {
		return nil, fmt.Errorf("calloc %d*%d bytes overflows: %w", count, size, ErrNoMemory)
	}
	ptr, err := heap.Malloc(int(total))
	if err != nil {
		return nil, err
	}
	clear(Bytes(ptr, int(total)))
	return ptr, nil
}

// Free releases an allocation. Freeing nil is a no-op. Pointers that were
// not handed out by this heap fail with ErrInvalidPointer, freeing an
// allocation twice fails with ErrNotOccupied.
func (heap *Heap) Free(ptr unsafe.Pointer) error {
	if ptr == nil {
		return nil
	}
	block, err := heap.occupiedBlock(ptr)
	if err != nil {
		heap.logger.Errorf("%v free %p: %v\n", heap.name, ptr, err)
		return err
	}
	heap.coalesce(block)
	heap.frees++
	heap.check("free")
	return nil
}

// Realloc resizes the allocation at ptr to n bytes. A nil ptr behaves as
// Malloc(n), n == 0 behaves as Free(ptr) and returns nil. When the block
// already has room for n bytes the same pointer is returned, blocks are
// never shrunk in place. Otherwise the content is moved to a new allocation
// and the old one is released. On failure ptr is left untouched.
func (heap *Heap) Realloc(ptr unsafe.Pointer, n int) (unsafe.Pointer, error) {
	if ptr == nil {
		return heap.Malloc(n)
	} else if n == 0 {
		return nil, heap.Free(ptr)
	} else if n < 0 {
		return nil, fmt.Errorf("realloc %d bytes: %w", n, ErrNoMemory)
	}

	block, err := heap.occupiedBlock(ptr)
	if err != nil {
		return nil, err
	}
	required, err := heap.orders.roundup(uintptr(n) + headerSize)
	if err != nil {
		return nil, err
	}
	h := hdr(block)
	if h.size >= required {
		return ptr, nil
	}

	nptr, err := heap.Malloc(n)
	if err != nil {
		return nil, err
	}
	m := min(int(h.size-headerSize), n)
	copy(Bytes(nptr, m), Bytes(ptr, m))
	heap.coalesce(block)
	heap.frees++
	heap.check("realloc")
	return nptr, nil
}

// Usable returns the number of bytes available at ptr, which is at least
// the size it was allocated with.
func (heap *Heap) Usable(ptr unsafe.Pointer) (int, error) {
	block, err := heap.occupiedBlock(ptr)
	if err != nil {
		return 0, err
	}
	return int(hdr(block).size - headerSize), nil
}

// Release hands every extension back to the source. The heap is empty
// afterwards and all pointers obtained from it are invalid.
func (heap *Heap) Release() error {
	var errs []error
	for _, ext := range heap.extents {
		if err := heap.src.Release(ext.mem); err != nil {
			errs = append(errs, err)
		}
	}
	heap.extents = nil
	heap.freelist.reset()
	heap.growth.reset()
	return errors.Join(errs...)
}

//---- local functions

// acquire returns a free block of exactly required bytes, still filed in the
// free-list.
func (heap *Heap) acquire(required uintptr) (unsafe.Pointer, error) {
	if block, _, ok := heap.freelist.firstFit(heap.orders.mustOrder(required)); ok {
		return heap.split(block, required)
	}
	block, err := heap.extend(required)
	if err != nil {
		return nil, err
	}
	if hdr(block).size > required {
		return heap.split(block, required)
	}
	return block, nil
}

// extend grows the arena and installs the new extension as a single free
// block.
func (heap *Heap) extend(required uintptr) (unsafe.Pointer, error) {
	n := heap.growth.size(required)
	mem, err := heap.src.Extend(int(n))
	if err != nil {
		heap.logger.Warnf("%v extend by %v bytes: %v\n", heap.name, n, err)
		return nil, fmt.Errorf("extend by %d bytes: %w: %w", n, ErrNoMemory, err)
	} else if uintptr(len(mem)) != n {
		heap.src.Release(mem)
		return nil, fmt.Errorf("extend by %d bytes, got %d: %w", n, len(mem), ErrNoMemory)
	}

	block := unsafe.Pointer(unsafe.SliceData(mem))
	head := uintptr(block)
	initblock(block, n, head, head+n)
	heap.addExtent(extent{mem: mem, head: head, end: head + n})
	heap.track(block, n)
	heap.logger.Debugf("%v extended by %v bytes at %p, %v extensions\n",
		heap.name, n, block, len(heap.extents))
	return block, nil
}

func (heap *Heap) addExtent(ext extent) {
	i := sort.Search(len(heap.extents), func(i int) bool {
		return heap.extents[i].head > ext.head
	})
	heap.extents = append(heap.extents, extent{})
	copy(heap.extents[i+1:], heap.extents[i:])
	heap.extents[i] = ext
}

func (heap *Heap) extentOf(addr uintptr) *extent {
	i := sort.Search(len(heap.extents), func(i int) bool {
		return heap.extents[i].end > addr
	})
	if i < len(heap.extents) && heap.extents[i].head <= addr {
		return &heap.extents[i]
	}
	return nil
}

// occupiedBlock maps a user pointer back to its block header.
func (heap *Heap) occupiedBlock(ptr unsafe.Pointer) (unsafe.Pointer, error) {
	if ptr == nil {
		return nil, fmt.Errorf("nil pointer: %w", ErrInvalidPointer)
	}
	addr := uintptr(ptr)
	ext := heap.extentOf(addr)
	if ext == nil || addr < ext.head+headerSize {
		return nil, fmt.Errorf("%p outside heap: %w", ptr, ErrInvalidPointer)
	}
	off := addr - headerSize - ext.head
	if off%heap.orders.minblock() != 0 {
		return nil, fmt.Errorf("%p misaligned: %w", ptr, ErrInvalidPointer)
	}
	block := unsafe.Add(ptr, -int(headerSize))
	h := hdr(block)
	if h.magic != blockMagic || h.head != ext.head || h.size == 0 || off%h.size != 0 {
		return nil, fmt.Errorf("%p has no block header: %w", ptr, ErrInvalidPointer)
	} else if !h.occupied() {
		return nil, fmt.Errorf("%p: %w", ptr, ErrNotOccupied)
	}
	return block, nil
}

func (heap *Heap) check(op string) {
	if !heap.validate {
		return
	}
	if err := heap.Validate(); err != nil {
		heap.logger.Errorf("%v after %v: %v\n", heap.name, op, err)
		panic(fmt.Errorf("%v after %v: %w", heap.name, op, err))
	}
}
