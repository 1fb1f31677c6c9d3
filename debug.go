// Copyright 2026 The Linear Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package linear

import "io"

// DebugMap wraps a Map with diagnostics for inspecting probe behavior. The
// wrapper adds no state and does not change the map; it only reads the
// table's storage. Not intended for production paths.
type DebugMap[K comparable, V any] struct {
	*Map[K, V]
}

// Debug wraps m for diagnostics.
func Debug[K comparable, V any](m *Map[K, V]) DebugMap[K, V] {
	return DebugMap[K, V]{Map: m}
}

// CountCollisions reports how many occupied slots the probe sequence for
// key crosses before reaching the key or an empty slot. A key sitting in
// its home slot reports zero.
func (d DebugMap[K, V]) CountCollisions(key K) int {
	start, mask := d.probeStart(key)
	count := 0
	for i := start; ; i = (i + 1) & mask {
		if !*d.used.At(i) || key == *d.keys.At(i) {
			return count
		}
		count++
	}
}

// WriteDistribution writes the occupancy layout of the table to w, three
// bytes per slot: "  1" for an occupied slot and "  0" for an empty one, in
// index order. Plotting the output makes clustering visible.
func (d DebugMap[K, V]) WriteDistribution(w io.Writer) error {
	cell := [3]byte{' ', ' ', '0'}
	for i := uintptr(0); i < d.capacity; i++ {
		if *d.used.At(i) {
			cell[2] = '1'
		} else {
			cell[2] = '0'
		}
		if _, err := w.Write(cell[:]); err != nil {
			return err
		}
	}
	return nil
}
