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

// growth sizes arena extensions. Small requests are served from extensions of
// `next` bytes, which halves after each such extension so that a burst of
// small allocations does not keep growing the heap in ever larger steps.
// Requests larger than `next` get exactly what they need and double `next`,
// requests at or above `max` never touch it.
type growth struct {
	min  uintptr
	max  uintptr
	next uintptr
}

func newGrowth(min, max uintptr) growth {
	return growth{min: min, max: max, next: min}
}

// size returns the number of bytes to extend the arena by, for a block of
// `required` bytes, and adapts the next extension size.
func (g *growth) size(required uintptr) uintptr {
	switch {
	case required <= g.next:
		n := g.next
		g.next = max(g.next/2, g.min)
		return n

	case required < g.max:
		g.next = min(g.next*2, g.max)
		return required
	}
	return required
}

func (g *growth) reset() {
	g.next = g.min
}
