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

	humanize "github.com/dustin/go-humanize"
)

// Stats is a snapshot of heap accounting. Byte counts include block
// headers.
type Stats struct {
	Source        string
	Extensions    int
	Heap          int64 // bytes obtained from the source
	Allocated     int64 // bytes in occupied blocks
	Free          int64 // bytes in free blocks filed in the free-list
	Untracked     int64 // bytes in free blocks missing from the free-list
	Dropped       int64 // free blocks that did not fit their bucket
	DroppedBytes  int64
	Mallocs       int64
	Frees         int64
	NextExtension int64
}

// Stats walks the heap and returns its accounting.
func (heap *Heap) Stats() Stats {
	st := Stats{
		Source:        heap.src.Name(),
		Extensions:    len(heap.extents),
		Dropped:       heap.dropped,
		DroppedBytes:  heap.droppedBytes,
		Mallocs:       heap.mallocs,
		Frees:         heap.frees,
		NextExtension: int64(heap.growth.next),
	}
	for _, ext := range heap.extents {
		st.Heap += int64(ext.end - ext.head)
	}
	heap.walk(func(block unsafe.Pointer, h *header) error {
		switch {
		case h.occupied():
			st.Allocated += int64(h.size)
		case heap.freelist.contains(block, heap.orders.mustOrder(h.size)):
			st.Free += int64(h.size)
		default:
			st.Untracked += int64(h.size)
		}
		return nil
	})
	return st
}

// Utilization returns the percentage of heap bytes held by occupied blocks.
func (st Stats) Utilization() float64 {
	if st.Heap == 0 {
		return 0
	}
	return float64(st.Allocated) / float64(st.Heap) * 100
}

func (st Stats) String() string {
	fmsg := "%v: %v extensions heap %v allocated %v free %v untracked %v " +
		"dropped %v(%v) mallocs %v frees %v next extension %v"
	return fmt.Sprintf(fmsg,
		st.Source, st.Extensions, humanize.Bytes(uint64(st.Heap)),
		humanize.Bytes(uint64(st.Allocated)), humanize.Bytes(uint64(st.Free)),
		humanize.Bytes(uint64(st.Untracked)), st.Dropped,
		humanize.Bytes(uint64(st.DroppedBytes)), st.Mallocs, st.Frees,
		humanize.Bytes(uint64(st.NextExtension)))
}

// Log heap statistics at info level.
func (heap *Heap) Log() {
	st := heap.Stats()
	heap.logger.Infof("%v %v, utilization %.2f%%\n", heap.name, st, st.Utilization())
}
