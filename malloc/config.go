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

	s "github.com/bnclabs/gosettings"
	sigar "github.com/cloudfoundry/gosigar"
)

// Maxcapacity is used as default "capacity" when system memory cannot be
// queried.
const Maxcapacity = int64(1024 * 1024 * 1024 * 1024) // 1TB

// Defaultsettings for a buddy heap.
//
// "name" (string, default: "heap")
//		Prefix for log messages.
//
// "unit" (int64, default: 1)
//		Minimum unit, every block is unit*2^order bytes.
//
// "minorder" (int64, default: 5)
//		Smallest block order, unit*2^minorder must hold a block header.
//
// "maxorder" (int64, default: 35)
//		Largest block order, requests beyond unit*2^maxorder fail.
//
// "extension.min" (int64, default: 16KB)
//		Smallest arena extension, must be a legal block size.
//
// "extension.max" (int64, default: 64MB)
//		Extensions are sized adaptively between extension.min and
//		extension.max. Larger requests extend the arena by exactly
//		what they need.
//
// "freelist.capacity" (int64, default: 40)
//		Maximum number of free blocks tracked per order, 0 for unbounded.
//		Free blocks that do not fit their bucket stay untracked until they
//		coalesce.
//
// "capacity" (int64, default: <total system memory>)
//		Maximum number of bytes the heap may obtain from its source.
//
// "source" (string, default: "mmap")
//		Heap-growth primitive, "mmap" or "go".
//
// "validate" (bool, default: false)
//		Check heap invariants after every operation, panic on violation.
func Defaultsettings() s.Settings {
	capacity := Maxcapacity
	if total, _, _ := getsysmem(); total > 0 {
		capacity = int64(total)
	}
	return s.Settings{
		"name":              "heap",
		"unit":              int64(1),
		"minorder":          int64(5),
		"maxorder":          int64(35),
		"extension.min":     int64(16 * 1024),
		"extension.max":     int64(64 * 1024 * 1024),
		"freelist.capacity": int64(40),
		"capacity":          capacity,
		"source":            "mmap",
		"validate":          false,
	}
}

type config struct {
	name      string
	orders    orders
	extmin    uintptr
	extmax    uintptr
	capacity  int64
	bucketcap int
	validate  bool
}

func newconfig(setts s.Settings) (config, error) {
	unit := setts.Int64("unit")
	minorder, maxorder := setts.Int64("minorder"), setts.Int64("maxorder")
	extmin, extmax := setts.Int64("extension.min"), setts.Int64("extension.max")
	cfg := config{
		name:      setts.String("name"),
		capacity:  setts.Int64("capacity"),
		bucketcap: int(setts.Int64("freelist.capacity")),
		validate:  setts.Bool("validate"),
	}

	if unit <= 0 {
		return cfg, invalidf("unit %v", unit)
	} else if minorder < 0 || minorder > maxorder {
		return cfg, invalidf("orders [%v,%v]", minorder, maxorder)
	} else if int(maxorder)+bits.Len64(uint64(unit)) >= bits.UintSize {
		return cfg, invalidf("unit %v << maxorder %v overflows", unit, maxorder)
	}
	cfg.orders = orders{unit: uintptr(unit), minorder: int(minorder), maxorder: int(maxorder)}
	if minblock := cfg.orders.minblock(); minblock < headerSize {
		return cfg, invalidf("minblock %v smaller than block header %v", minblock, headerSize)
	}

	for _, size := range []int64{extmin, extmax} {
		if size <= 0 {
			return cfg, invalidf("extension size %v", size)
		} else if _, err := cfg.orders.sizeToOrder(uintptr(size)); err != nil {
			return cfg, invalidf("extension size: %v", err)
		}
	}
	if extmin > extmax {
		return cfg, invalidf("extension.min %v > extension.max %v", extmin, extmax)
	}
	cfg.extmin, cfg.extmax = uintptr(extmin), uintptr(extmax)

	if cfg.capacity <= 0 {
		return cfg, invalidf("capacity %v", cfg.capacity)
	} else if cfg.bucketcap < 0 {
		return cfg, invalidf("freelist.capacity %v", cfg.bucketcap)
	}
	return cfg, nil
}

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%v: %w", fmt.Sprintf(format, args...), ErrInvalidConfig)
}

func getsysmem() (total, used, free uint64) {
	mem := sigar.Mem{}
	if err := mem.Get(); err != nil {
		return 0, 0, 0
	}
	return mem.Total, mem.Used, mem.Free
}
