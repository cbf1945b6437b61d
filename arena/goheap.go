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


package arena

import (
	"fmt"

	"github.com/bytedance/gopkg/lang/dirtmake"
)

// goSource grows from the Go heap. Regions are not zeroed, which keeps
// Extend cheap and matches what a freshly grown program break looks like to
// an allocator that never assumes zeroed memory.
type goSource struct{}

// NewGo returns a Source backed by the Go heap.
func NewGo() Source {
	return goSource{}
}

func (goSource) Extend(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("arena: invalid extend size %d", n)
	}
	return dirtmake.Bytes(n, n), nil
}

// Release drops the region, the garbage collector reclaims it once the heap
// stops referencing it.
func (goSource) Release(mem []byte) error {
	return nil
}

func (goSource) Name() string {
	return "go"
}
