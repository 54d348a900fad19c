// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

package layout

import "math/rand/v2"

// ChangeOp mutates a player's variable map. Ops are applied in declared
// order on room entry; a single bad op is a no-op, never an abort.
type ChangeOp interface {
	Apply(vars Vars)
}

// Set stores a value unconditionally.
type Set struct {
	Var   string
	Value int
}

// Apply implements ChangeOp.
func (s Set) Apply(vars Vars) {
	vars.Set(s.Var, s.Value)
}

// Add adds a delta, treating an absent variable as 0. Overflow follows
// native integer semantics.
type Add struct {
	Var   string
	Delta int
}

// Apply implements ChangeOp.
func (a Add) Apply(vars Vars) {
	vars.Add(a.Var, a.Delta)
}

// SetRandom stores a uniformly distributed integer in [Low, High] inclusive,
// drawn from the process-wide random source. The draw is intentionally not
// reproducible; tests assert bounds, not values.
type SetRandom struct {
	Var  string
	Low  int
	High int
}

// Apply implements ChangeOp. An inverted range is a no-op.
func (s SetRandom) Apply(vars Vars) {
	if s.High < s.Low {
		return
	}
	vars.Set(s.Var, s.Low+rand.IntN(s.High-s.Low+1))
}

// AddRandom adds a uniformly distributed integer in [Low, High] inclusive.
type AddRandom struct {
	Var  string
	Low  int
	High int
}

// Apply implements ChangeOp. An inverted range is a no-op.
func (a AddRandom) Apply(vars Vars) {
	if a.High < a.Low {
		return
	}
	vars.Add(a.Var, a.Low+rand.IntN(a.High-a.Low+1))
}

// Apply runs every op in order against the variable map.
func Apply(changes []ChangeOp, vars Vars) {
	for _, op := range changes {
		op.Apply(vars)
	}
}
