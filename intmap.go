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

import "golang.org/x/exp/constraints"

// NewIntMap constructs a Map for integer keys that uses the key itself as
// its hash. The golden-ratio mixing step in slot addressing spreads even
// small sequential keys across the table, so no further hashing is needed.
// All other behavior is identical to a Map built with New.
func NewIntMap[K constraints.Integer, V any](initialCapacity int, options ...option[K, V]) *Map[K, V] {
	opts := make([]option[K, V], 0, len(options)+1)
	opts = append(opts, WithHash[K, V](func(key *K, _ uintptr) uintptr {
		return uintptr(*key)
	}))
	opts = append(opts, options...)
	return New[K, V](initialCapacity, opts...)
}
