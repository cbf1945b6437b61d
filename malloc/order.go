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
	"math/bits"
)

// orders converts between block sizes and orders. A block of order k is
// unit<<k bytes, k in [minorder, maxorder].
type orders struct {
	unit     uintptr
	minorder int
	maxorder int
}

func (o orders) minblock() uintptr {
	return o.unit << uint(o.minorder)
}

func (o orders) maxblock() uintptr {
	return o.unit << uint(o.maxorder)
}

func (o orders) orderToSize(order int) (uintptr, error) {
	if order < o.minorder || order > o.maxorder {
		return 0, fmt.Errorf("order %d not in [%d,%d]: %w", order, o.minorder, o.maxorder, ErrOrderRange)
	}
	return o.unit << uint(order), nil
}

func (o orders) sizeToOrder(size uintptr) (int, error) {
	if size < o.unit || size%o.unit != 0 {
		return 0, fmt.Errorf("size %d, unit %d: %w", size, o.unit, ErrNotPowerOfTwo)
	}
	q := size / o.unit
	if q&(q-1) != 0 {
		return 0, fmt.Errorf("size %d, unit %d: %w", size, o.unit, ErrNotPowerOfTwo)
	}
	order := bits.TrailingZeros64(uint64(q))
	if order < o.minorder || order > o.maxorder {
		return 0, fmt.Errorf("size %d is order %d, not in [%d,%d]: %w",
			size, order, o.minorder, o.maxorder, ErrOrderRange)
	}
	return order, nil
}

// roundup returns the smallest block size that holds n bytes.
func (o orders) roundup(n uintptr) (uintptr, error) {
	if n <= o.minblock() {
		return o.minblock(), nil
	}
	q := (n + o.unit - 1) / o.unit
	order := bits.Len64(uint64(q - 1))
	if order > o.maxorder {
		return 0, fmt.Errorf("%d bytes exceeds maxblock %d: %w", n, o.maxblock(), ErrNoMemory)
	}
	return o.unit << uint(order), nil
}

// mustOrder is sizeToOrder for sizes read back from block headers, a
// failure there means the metadata is corrupted.
func (o orders) mustOrder(size uintptr) int {
	order, err := o.sizeToOrder(size)
	if err != nil {
		panic(fmt.Errorf("corrupted block size: %w", err))
	}
	return order
}

// halves reports whether large can be halved down to exactly small.
func halves(small, large uintptr) bool {
	if small == 0 {
		return false
	}
	for small < large {
		small *= 2
	}
	return small == large
}
