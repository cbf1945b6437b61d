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

import "errors"

var (
	// ErrNoMemory is returned when a request cannot be served: zero sized
	// requests, requests above the largest block and source exhaustion.
	ErrNoMemory = errors.New("malloc: no memory")

	// ErrInvalidPointer is returned for pointers that do not address a block
	// handed out by this heap.
	ErrInvalidPointer = errors.New("malloc: invalid pointer")

	// ErrNotOccupied is returned when releasing a block that is already free.
	ErrNotOccupied = errors.New("malloc: block not occupied")

	// ErrOrderRange is returned for orders outside [minorder, maxorder].
	ErrOrderRange = errors.New("malloc: order out of range")

	// ErrNotPowerOfTwo is returned for sizes that are not unit*2^k.
	ErrNotPowerOfTwo = errors.New("malloc: size is not a power of two multiple of unit")

	// ErrSplitRatio is returned when a block cannot be halved down to the
	// requested size.
	ErrSplitRatio = errors.New("malloc: split ratio is not a power of two")

	// ErrSplitUnderflow is returned when the split target exceeds the block.
	ErrSplitUnderflow = errors.New("malloc: split target larger than block")

	// ErrBucketFull reports a free block that could not be registered because
	// its free-list bucket is at capacity.
	ErrBucketFull = errors.New("malloc: free-list bucket full")

	// ErrInvalidConfig is returned by NewHeap for inconsistent settings.
	ErrInvalidConfig = errors.New("malloc: invalid config")

	// ErrCorrupted is returned by Validate when heap metadata is inconsistent.
	ErrCorrupted = errors.New("malloc: heap corrupted")

	errDuplicate = errors.New("malloc: duplicate free-list entry")
)
