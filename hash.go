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
	"math/bits"
	"unsafe"
)

const (
	// minCapacity is the smallest backing-array size a table will use. All
	// capacities are powers of two so the probe index can be computed with a
	// bitwise AND against capacity-1 instead of a modulo.
	minCapacity = 8

	// goldenRatio is 2^64 divided by the golden ratio. Multiplying a raw
	// hash by it spreads low-entropy hashes (e.g. small sequential
	// integers) across the table before the capacity mask selects the home
	// slot. See https://en.wikipedia.org/wiki/Hash_function#Fibonacci_hashing.
	goldenRatio = 0x9E3779B97F4A7C15

	// defaultMaxLoadFactor is the occupancy threshold at which a map
	// doubles its capacity. The set variant tolerates a denser fill since
	// it carries no value array.
	defaultMaxLoadFactor = 0.6
	setMaxLoadFactor     = 0.7
)

// formatCapacity rounds n up to the next power of two, with minCapacity as
// the floor.
func formatCapacity(n uintptr) uintptr {
	if n < minCapacity {
		return minCapacity
	}
	return uintptr(1) << bits.Len(uint(n-1))
}

// hashFn matches the signature of the hash functions stored in the Go
// runtime's type descriptors: (pointer to key, seed) -> hash.
type hashFn func(unsafe.Pointer, uintptr) uintptr

// getRuntimeHasher extracts the hash function for K from the runtime's
// implementation of map[K]struct{} by reaching into the internals of the
// type. This might break in a future version of Go, but is likely fixable
// unless the runtime does something drastic.
func getRuntimeHasher[K comparable]() hashFn {
	a := any(make(map[K]struct{}))
	return (*mapiface)(unsafe.Pointer(&a)).typ.hasher
}

type mapiface struct {
	typ *maptype
	val unsafe.Pointer
}

// maptype mirrors go/src/runtime/type.go. Only the fields up to hasher need
// to be present.
type maptype struct {
	typ    _type
	key    *_type
	elem   *_type
	bucket *_type
	// hasher is the function for hashing keys (ptr to key, seed) -> hash.
	hasher func(unsafe.Pointer, uintptr) uintptr
}

// go/src/runtime/type.go
type tflag uint8
type nameOff int32
type typeOff int32

// _type mirrors go/src/runtime/type.go. It is embedded by value in maptype,
// so its size must match exactly for the hasher field offset to line up.
type _type struct {
	size       uintptr
	ptrdata    uintptr
	hash       uint32
	tflag      tflag
	align      uint8
	fieldAlign uint8
	kind       uint8
	equal      func(unsafe.Pointer, unsafe.Pointer) bool
	gcdata     *byte
	str        nameOff
	ptrToThis  typeOff
}

// noescape hides a pointer from escape analysis. noescape is the identity
// function but escape analysis doesn't think the output depends on the
// input. noescape is inlined and currently compiles down to zero
// instructions.
// USE CAREFULLY!
//
//go:nosplit
//go:nocheckptr
func noescape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
