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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	rec := newRecorder()
	heap := newTestHeap(t, nil).SetLogger(rec)
	assert.Equal(t, float64(0), heap.Stats().Utilization())

	ptr, err := heap.Malloc(8000)
	require.NoError(t, err)
	st := heap.Stats()
	assert.Equal(t, int64(8192), st.Allocated)
	assert.Equal(t, float64(50), st.Utilization())

	out := st.String()
	assert.True(t, strings.HasPrefix(out, "go: 1 extensions heap 16 kB"), out)
	assert.Contains(t, out, "allocated 8.2 kB")
	assert.Contains(t, out, "mallocs 1 frees 0")

	heap.Log()
	require.Equal(t, 1, rec.count("info"))
	assert.Contains(t, rec.msgs["info"][0], "utilization 50.00%")
	require.NoError(t, heap.Free(ptr))
}
