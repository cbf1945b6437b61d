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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeToOrder(t *testing.T) {
	o := orders{unit: 1, minorder: 5, maxorder: 35}
	tests := []struct {
		size  uintptr
		order int
		err   error
	}{
		{32, 5, nil},
		{64, 6, nil},
		{16384, 14, nil},
		{1 << 35, 35, nil},
		{48, 0, ErrNotPowerOfTwo},
		{0, 0, ErrNotPowerOfTwo},
		{16, 0, ErrOrderRange},
		{1 << 36, 0, ErrOrderRange},
	}
	for _, tt := range tests {
		order, err := o.sizeToOrder(tt.size)
		if tt.err != nil {
			assert.True(t, errors.Is(err, tt.err), "size=%d err=%v", tt.size, err)
			continue
		}
		require.NoError(t, err, "size=%d", tt.size)
		assert.Equal(t, tt.order, order, "size=%d", tt.size)
	}

	o = orders{unit: 16, minorder: 1, maxorder: 10}
	order, err := o.sizeToOrder(64)
	require.NoError(t, err)
	assert.Equal(t, 2, order)
	_, err = o.sizeToOrder(8)
	assert.True(t, errors.Is(err, ErrNotPowerOfTwo))
	_, err = o.sizeToOrder(48)
	assert.True(t, errors.Is(err, ErrNotPowerOfTwo))
	_, err = o.sizeToOrder(16)
	assert.True(t, errors.Is(err, ErrOrderRange))
}

func TestOrderToSize(t *testing.T) {
	o := orders{unit: 1, minorder: 5, maxorder: 35}
	size, err := o.orderToSize(10)
	require.NoError(t, err)
	assert.Equal(t, uintptr(1024), size)

	for _, order := range []int{-1, 4, 36} {
		_, err := o.orderToSize(order)
		assert.True(t, errors.Is(err, ErrOrderRange), "order=%d", order)
	}

	// round trip every legal order
	for order := o.minorder; order <= o.maxorder; order++ {
		size, err := o.orderToSize(order)
		require.NoError(t, err)
		back, err := o.sizeToOrder(size)
		require.NoError(t, err)
		assert.Equal(t, order, back)
	}
	assert.Equal(t, uintptr(32), o.minblock())
	assert.Equal(t, uintptr(1<<35), o.maxblock())
}

func TestRoundup(t *testing.T) {
	o := orders{unit: 1, minorder: 5, maxorder: 35}
	tests := []struct {
		n    uintptr
		want uintptr
	}{
		{1, 32},
		{32, 32},
		{33, 64},
		{40, 64},
		{4128, 8192},
		{20032, 32768},
		{1 << 35, 1 << 35},
	}
	for _, tt := range tests {
		size, err := o.roundup(tt.n)
		require.NoError(t, err, "n=%d", tt.n)
		assert.Equal(t, tt.want, size, "n=%d", tt.n)
	}
	_, err := o.roundup(1<<35 + 1)
	assert.True(t, errors.Is(err, ErrNoMemory))

	o = orders{unit: 16, minorder: 1, maxorder: 10}
	size, err := o.roundup(33)
	require.NoError(t, err)
	assert.Equal(t, uintptr(64), size)
	size, err = o.roundup(1)
	require.NoError(t, err)
	assert.Equal(t, uintptr(32), size)
}

func TestMustOrder(t *testing.T) {
	o := orders{unit: 1, minorder: 5, maxorder: 35}
	assert.Equal(t, 6, o.mustOrder(64))
	assert.Panics(t, func() { o.mustOrder(100) })
}

func TestHalves(t *testing.T) {
	assert.True(t, halves(64, 1024))
	assert.True(t, halves(1024, 1024))
	assert.False(t, halves(48, 1024))
	assert.False(t, halves(2048, 1024))
	assert.False(t, halves(0, 1024))
}
