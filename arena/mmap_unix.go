//go:build unix

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
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// mmapSource grows with anonymous private mappings. Every extension is its own
// mapping, page aligned and invisible to the garbage collector.
type mmapSource struct{}

// NewMmap returns a Source backed by anonymous memory mappings.
func NewMmap() Source {
	return mmapSource{}
}

func (mmapSource) Extend(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("arena: invalid extend size %d", n)
	}
	mem, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		if errors.Is(err, unix.ENOMEM) {
			return nil, fmt.Errorf("mmap %d bytes: %w", n, ErrExhausted)
		}
		return nil, fmt.Errorf("arena: mmap %d bytes: %w", n, err)
	}
	return mem, nil
}

func (mmapSource) Release(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	err := unix.Munmap(mem)
	if errors.Is(err, unix.EINVAL) {
		// double unmap
		return nil
	}
	return err
}

func (mmapSource) Name() string {
	return "mmap"
}
