// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

package layout

// Vars holds a player's variable state. Every variable is an integer and
// absent keys read as zero everywhere in the engine; GetOrZero makes that
// default explicit at call sites instead of relying on map semantics.
type Vars map[string]int

// GetOrZero returns the value of the named variable, or 0 when unset.
func (v Vars) GetOrZero(name string) int {
	return v[name]
}

// Set stores a value, overwriting any previous one.
func (v Vars) Set(name string, value int) {
	v[name] = value
}

// Add adds delta to the named variable, treating an absent key as 0.
func (v Vars) Add(name string, delta int) {
	v[name] += delta
}

// Clone returns an independent copy of the variable map.
// A nil receiver clones to an empty, usable map.
func (v Vars) Clone() Vars {
	out := make(Vars, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
