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


// buddystat replays an allocation workload against a buddy heap and
// reports heap statistics: every round allocates n objects of the given
// size, fills them, verifies them and frees them again.
package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"time"
	"unsafe"

	"github.com/bnclabs/golog"
	s "github.com/bnclabs/gosettings"
	"github.com/bytedance/gopkg/util/gopool"
	humanize "github.com/dustin/go-humanize"

	"github.com/cloudwego/buddymalloc/malloc"
)

var options struct {
	source   string
	n        int
	size     int
	loop     int
	capacity int64
	workers  int
	validate bool
	log      string
}

func argParse() {
	flag.StringVar(&options.source, "source", "mmap",
		"heap-growth primitive, mmap or go")
	flag.IntVar(&options.n, "n", 50000,
		"number of allocations per round")
	flag.IntVar(&options.size, "size", 4,
		"size of every allocation in bytes")
	flag.IntVar(&options.loop, "loop", 1,
		"number of rounds")
	flag.Int64Var(&options.capacity, "capacity", 0,
		"maximum heap size in bytes, 0 for system memory")
	flag.IntVar(&options.workers, "workers", 1,
		"number of concurrent workers sharing the heap")
	flag.BoolVar(&options.validate, "validate", false,
		"validate heap invariants after every operation")
	flag.StringVar(&options.log, "log", "warn", "log level")
	flag.Parse()
}

func main() {
	argParse()
	log.SetLogger(nil, map[string]interface{}{
		"log.level": options.log,
		"log.file":  "",
	})

	setts := s.Settings{
		"name":     "buddystat",
		"source":   options.source,
		"validate": options.validate,
	}
	if options.capacity > 0 {
		setts["capacity"] = options.capacity
	}
	heap, err := malloc.NewHeap(setts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer heap.Release()

	var alloc malloc.Allocator = heap
	if options.workers > 1 {
		alloc = malloc.NewLockedHeap(heap)
	}

	now := time.Now()
	for round := 0; round < options.loop; round++ {
		if err := replay(alloc); err != nil {
			fmt.Fprintf(os.Stderr, "round %v: %v\n", round, err)
			os.Exit(2)
		}
	}
	elapsed := time.Since(now)

	st := alloc.Stats()
	ops := int64(options.loop) * int64(options.n) * 2
	fmt.Printf("%v rounds of %v x %v allocations took %v, %v per op\n",
		options.loop, humanize.Comma(int64(options.n)),
		humanize.Bytes(uint64(options.size)), elapsed,
		elapsed/time.Duration(max(ops, 1)))
	fmt.Println(st)
	fmt.Printf("peak heap %v across %v extensions\n",
		humanize.Bytes(uint64(st.Heap)), st.Extensions)
}

// replay splits one round across the workers.
func replay(alloc malloc.Allocator) error {
	workers := max(options.workers, 1)
	pool := gopool.NewPool("buddystat", int32(workers), gopool.NewConfig())

	var wg sync.WaitGroup
	errs := make([]error, workers)
	share := (options.n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		from, till := w*share, min((w+1)*share, options.n)
		if from >= till {
			break
		}
		wg.Add(1)
		pool.Go(func() {
			defer wg.Done()
			errs[w] = workload(alloc, from, till)
		})
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// workload allocates objects [from, till), keeping their addresses in a
// table that itself lives on the heap.
func workload(alloc malloc.Allocator, from, till int) error {
	count := till - from
	tptr, err := alloc.Calloc(count, int(unsafe.Sizeof(uintptr(0))))
	if err != nil {
		return fmt.Errorf("allocating table of %v entries: %w", count, err)
	}
	table := unsafe.Slice((*unsafe.Pointer)(tptr), count)

	for i := range table {
		ptr, err := alloc.Malloc(options.size)
		if err != nil {
			return fmt.Errorf("allocation %v: %w", from+i, err)
		}
		stamp(malloc.Bytes(ptr, options.size), from+i)
		table[i] = ptr
	}
	for i, ptr := range table {
		if !stamped(malloc.Bytes(ptr, options.size), from+i) {
			return fmt.Errorf("allocation %v at %p lost its content", from+i, ptr)
		}
	}
	for i, ptr := range table {
		if err := alloc.Free(ptr); err != nil {
			return fmt.Errorf("free %v: %w", from+i, err)
		}
	}
	return alloc.Free(tptr)
}

func stamp(b []byte, i int) {
	for j := range b {
		b[j] = byte(i >> (8 * (j % 8)))
	}
}

func stamped(b []byte, i int) bool {
	for j := range b {
		if b[j] != byte(i>>(8*(j%8))) {
			return false
		}
	}
	return true
}
