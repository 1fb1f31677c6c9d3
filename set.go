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

import (
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Set is the presence-only variant of Map: the same probing engine composed
// with a zero-byte value type, so the value array costs nothing. A Set
// tolerates a slightly denser fill than a map (load factor 0.7) before
// doubling.
//
// A Set is NOT goroutine-safe.
type Set[K comparable] struct {
	m *Map[K, struct{}]
}

// NewSet constructs a Set with at least the specified initial capacity,
// rounded up to a power of two with a floor of 8.
func NewSet[K comparable](initialCapacity int, options ...option[K, struct{}]) *Set[K] {
	m := New[K, struct{}](initialCapacity, options...)
	m.maxLoad = setMaxLoadFactor
	return &Set[K]{m: m}
}

// NewIntSet constructs a Set for integer keys using an identity hash, the
// set counterpart of NewIntMap.
func NewIntSet[K constraints.Integer](initialCapacity int) *Set[K] {
	m := NewIntMap[K, struct{}](initialCapacity)
	m.maxLoad = setMaxLoadFactor
	return &Set[K]{m: m}
}

// Emplace adds key to the set. Adding a present key is a no-op.
func (s *Set[K]) Emplace(key K) {
	s.m.Emplace(key, struct{}{})
}

// TryEmplace adds key only if it is absent and reports whether the
// insertion occurred.
func (s *Set[K]) TryEmplace(key K) bool {
	return s.m.TryEmplace(key, struct{}{})
}

// EmplaceAll adds every key, growing at most once up front.
func (s *Set[K]) EmplaceAll(keys []K) {
	s.m.ensureCapacity(len(keys))
	for _, key := range keys {
		s.m.emplaceNoGrow(key, struct{}{})
	}
}

// EmplaceAllPtr is EmplaceAll over a raw array of count keys. It is a no-op
// if the pointer is nil or count is not positive.
func (s *Set[K]) EmplaceAllPtr(keys *K, count int) {
	if keys == nil || count <= 0 {
		return
	}
	s.EmplaceAll(unsafe.Slice(keys, count))
}

// Contains reports whether key is present.
func (s *Set[K]) Contains(key K) bool {
	return s.m.Contains(key)
}

// Erase removes key from the set and reports whether it was present. The
// deletion policy is the same backward shift the map uses.
func (s *Set[K]) Erase(key K) bool {
	return s.m.Erase(key)
}

// All calls yield for each key in the set, scanning the slots in index
// order. If yield returns false, iteration stops.
func (s *Set[K]) All(yield func(key K) bool) {
	s.m.All(func(key K, _ struct{}) bool {
		return yield(key)
	})
}

// Size returns the number of keys in the set.
func (s *Set[K]) Size() int {
	return s.m.Size()
}

// Capacity returns the total number of slots.
func (s *Set[K]) Capacity() int {
	return s.m.Capacity()
}

// LoadFactor returns the ratio of occupied slots to capacity.
func (s *Set[K]) LoadFactor() float64 {
	return s.m.LoadFactor()
}

// HomeSlot returns the index a key maps to before any probing.
func (s *Set[K]) HomeSlot(key K) int {
	return s.m.HomeSlot(key)
}

// Clear removes all keys. The backing arrays are retained for reuse.
func (s *Set[K]) Clear() {
	s.m.Clear()
}

// Rehash resizes the set to hold at least capacity slots, preserving every
// key. It returns an error if the target is smaller than the current Size.
func (s *Set[K]) Rehash(capacity int) error {
	return s.m.Rehash(capacity)
}

// Reserve discards the contents of the set and reallocates storage for at
// least capacity keys.
func (s *Set[K]) Reserve(capacity int) {
	s.m.Reserve(capacity)
}

// Clone returns a deep copy of the set.
func (s *Set[K]) Clone() *Set[K] {
	return &Set[K]{m: s.m.Clone()}
}
