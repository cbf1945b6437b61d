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

	s "github.com/bnclabs/gosettings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsettings(t *testing.T) {
	setts := Defaultsettings()
	for _, key := range []string{
		"name", "unit", "minorder", "maxorder", "extension.min",
		"extension.max", "freelist.capacity", "capacity", "source", "validate",
	} {
		assert.Contains(t, setts, key)
	}
	assert.Greater(t, setts.Int64("capacity"), int64(0))

	cfg, err := newconfig(setts)
	require.NoError(t, err)
	assert.Equal(t, uintptr(32), cfg.orders.minblock())
	assert.Equal(t, uintptr(16384), cfg.extmin)
	assert.Equal(t, uintptr(64<<20), cfg.extmax)
	assert.Equal(t, 40, cfg.bucketcap)
	assert.False(t, cfg.validate)
}

func TestConfigUnit(t *testing.T) {
	setts := Defaultsettings().Mixin(s.Settings{
		"unit":          int64(16),
		"minorder":      int64(1),
		"maxorder":      int64(30),
		"extension.min": int64(16 * 1024),
		"extension.max": int64(16 * 1024 * 1024),
	})
	cfg, err := newconfig(setts)
	require.NoError(t, err)
	assert.Equal(t, uintptr(32), cfg.orders.minblock())
	assert.Equal(t, uintptr(16<<30), cfg.orders.maxblock())
}

func TestConfigInvalid(t *testing.T) {
	tests := []struct {
		name  string
		setts s.Settings
	}{
		{"unit", s.Settings{"unit": int64(0)}},
		{"orders", s.Settings{"minorder": int64(10), "maxorder": int64(9)}},
		{"negative order", s.Settings{"minorder": int64(-1)}},
		{"overflow", s.Settings{"unit": int64(1 << 40), "maxorder": int64(30)}},
		{"minblock", s.Settings{"minorder": int64(3)}},
		{"extension pow2", s.Settings{"extension.min": int64(1000)}},
		{"extension zero", s.Settings{"extension.min": int64(0)}},
		{"extension order", s.Settings{"maxorder": int64(20)}},
		{"extension swap", s.Settings{"extension.min": int64(1 << 20), "extension.max": int64(1 << 16)}},
		{"capacity", s.Settings{"capacity": int64(0)}},
		{"freelist", s.Settings{"freelist.capacity": int64(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newconfig(Defaultsettings().Mixin(tt.setts))
			assert.True(t, errors.Is(err, ErrInvalidConfig), "%v", err)

			_, err = NewHeap(testsettings().Mixin(tt.setts))
			assert.True(t, errors.Is(err, ErrInvalidConfig), "%v", err)
		})
	}
}
