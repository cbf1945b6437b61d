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

// freelist keeps one bucket of free block addresses per order. Buckets are
// bounded by capacity, zero means unbounded.
type freelist struct {
	minorder int
	capacity int
	buckets  [][]unsafe.Pointer
}

func newFreelist(minorder, maxorder, capacity int) *freelist {
	fl := &freelist{
		minorder: minorder,
		capacity: capacity,
		buckets:  make([][]unsafe.Pointer, maxorder-minorder+1),
	}
	if capacity > 0 {
		for i := range fl.buckets {
			fl.buckets[i] = make([]unsafe.Pointer, 0, capacity)
		}
	}
	return fl
}

func (fl *freelist) bucket(order int) (int, error) {
	i := order - fl.minorder
	if i < 0 || i >= len(fl.buckets) {
		return 0, fmt.Errorf("free-list order %d: %w", order, ErrOrderRange)
	}
	return i, nil
}

func (fl *freelist) add(block unsafe.Pointer, order int) error {
	i, err := fl.bucket(order)
	if err != nil {
		return err
	}
	if fl.capacity > 0 && len(fl.buckets[i]) >= fl.capacity {
		return fmt.Errorf("order %d holds %d blocks: %w", order, len(fl.buckets[i]), ErrBucketFull)
	}
	for _, b := range fl.buckets[i] {
		if b == block {
			return fmt.Errorf("block %p order %d: %w", block, order, errDuplicate)
		}
	}
	fl.buckets[i] = append(fl.buckets[i], block)
	return nil
}

func (fl *freelist) remove(block unsafe.Pointer, order int) bool {
	i, err := fl.bucket(order)
	if err != nil {
		return false
	}
	bucket := fl.buckets[i]
	for j, b := range bucket {
		if b == block {
			n := len(bucket) - 1
			bucket[j] = bucket[n]
			bucket[n] = nil
			fl.buckets[i] = bucket[:n]
			return true
		}
	}
	return false
}

func (fl *freelist) contains(block unsafe.Pointer, order int) bool {
	i, err := fl.bucket(order)
	if err != nil {
		return false
	}
	for _, b := range fl.buckets[i] {
		if b == block {
			return true
		}
	}
	return false
}

// firstFit returns the lowest addressed block from the first non-empty
// bucket at or above order.
func (fl *freelist) firstFit(order int) (unsafe.Pointer, int, bool) {
	i, err := fl.bucket(order)
	if err != nil {
		return nil, 0, false
	}
	for ; i < len(fl.buckets); i++ {
		var lowest unsafe.Pointer
		for _, b := range fl.buckets[i] {
			if lowest == nil || uintptr(b) < uintptr(lowest) {
				lowest = b
			}
		}
		if lowest != nil {
			return lowest, i + fl.minorder, true
		}
	}
	return nil, 0, false
}

func (fl *freelist) count(order int) int {
	i, err := fl.bucket(order)
	if err != nil {
		return 0
	}
	return len(fl.buckets[i])
}

func (fl *freelist) reset() {
	for i := range fl.buckets {
		clear(fl.buckets[i])
		fl.buckets[i] = fl.buckets[i][:0]
	}
}

// tracked returns the number of blocks held across all buckets.
func (fl *freelist) tracked() (n int) {
	for _, bucket := range fl.buckets {
		n += len(bucket)
	}
	return n
}
