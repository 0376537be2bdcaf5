// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package scoring

import (
	"maps"
	"slices"
)

// Table is a sparse name→value map. Absent keys read as 0; Has tells an
// absent key from a stored zero.
type Table map[string]float64

// Get returns the stored value, or 0 if key is absent.
func (t Table) Get(key string) float64 {
	return t[key]
}

// Has reports whether key has been materialized.
func (t Table) Has(key string) bool {
	_, ok := t[key]
	return ok
}

// Add adds delta to key, materializing it if needed.
func (t Table) Add(key string, delta float64) float64 {
	v := t[key] + delta
	t[key] = v
	return v
}

// Keys returns the stored keys sorted.
func (t Table) Keys() []string {
	return slices.Sorted(maps.Keys(t))
}
