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

import "fmt"

// Limited caps the total number of bytes a Source may hand out.
type Limited struct {
	src      Source
	capacity int64
	used     int64
}

// NewLimited wraps src so that at most capacity bytes are outstanding.
func NewLimited(src Source, capacity int64) *Limited {
	return &Limited{src: src, capacity: capacity}
}

// Extend implements Source.
func (l *Limited) Extend(n int) ([]byte, error) {
	if l.used+int64(n) > l.capacity {
		return nil, fmt.Errorf("extend %d bytes, %d of %d in use: %w", n, l.used, l.capacity, ErrExhausted)
	}
	mem, err := l.src.Extend(n)
	if err != nil {
		return nil, err
	}
	l.used += int64(len(mem))
	return mem, nil
}

// Release implements Source.
func (l *Limited) Release(mem []byte) error {
	if err := l.src.Release(mem); err != nil {
		return err
	}
	l.used -= int64(len(mem))
	return nil
}

// Name implements Source.
func (l *Limited) Name() string {
	return l.src.Name()
}

// Used returns the number of bytes currently handed out.
func (l *Limited) Used() int64 {
	return l.used
}

// Capacity returns the configured limit.
func (l *Limited) Capacity() int64 {
	return l.capacity
}
