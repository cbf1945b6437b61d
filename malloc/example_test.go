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


package malloc_test

import (
	"fmt"

	s "github.com/bnclabs/gosettings"

	"github.com/cloudwego/buddymalloc/malloc"
)

func ExampleHeap() {
	heap, err := malloc.NewHeap(s.Settings{"source": "go"})
	if err != nil {
		panic(err)
	}
	defer heap.Release()

	ptr, _ := heap.Malloc(100)
	n, _ := heap.Usable(ptr)
	fmt.Println("usable:", n)

	copy(malloc.Bytes(ptr, 5), "hello")
	ptr, _ = heap.Realloc(ptr, 1000)
	fmt.Println(string(malloc.Bytes(ptr, 5)))

	heap.Free(ptr)
	st := heap.Stats()
	fmt.Println("allocated:", st.Allocated, "free:", st.Free)
	// Output:
	// usable: 224
	// hello
	// allocated: 0 free: 16384
}
