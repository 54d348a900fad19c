// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

// Package layout contains the room-graph domain model: rooms, exits, the
// condition rule trees that gate exits, and the change ops that mutate
// player state on room entry.
//
// The graph is loaded once at startup and is immutable afterwards, so it is
// shared across request workers without synchronization.
package layout

// Room is a single room in the game area.
type Room struct {
	Name    string
	Desc    string // template text, may contain {var} placeholders
	Exits   []Exit
	Changes []ChangeOp // applied in order on room entry
}

// Exit is a conditional connection to another room.
type Exit struct {
	Target string // destination room name
	Verb   string // label text, may contain {var} placeholders
	Cond   Condition
}

// IsOpen reports whether the exit should be offered under the given
// variable snapshot. An exit with no condition is always open.
func (e Exit) IsOpen(vars Vars) bool {
	if e.Cond == nil {
		return true
	}
	return e.Cond.Eval(vars)
}

// OpenExits returns the exits visible under the given snapshot, in
// declaration order.
func (r *Room) OpenExits(vars Vars) []Exit {
	open := make([]Exit, 0, len(r.Exits))
	for _, e := range r.Exits {
		if e.IsOpen(vars) {
			open = append(open, e)
		}
	}
	return open
}

// RenderDesc returns the room description with placeholders substituted.
func (r *Room) RenderDesc(vars Vars) string {
	return RenderTemplate(r.Desc, vars)
}
