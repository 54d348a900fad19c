// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

// Package nav advances sessions through the room graph.
package nav

import (
	"log/slog"

	"github.com/unidavemeyer/web-adventure/internal/layout"
	"github.com/unidavemeyer/web-adventure/internal/session"
)

// Dispatcher applies room-entry changes and moves sessions between rooms.
// It receives the graph at construction; nothing here reaches into
// process-wide shared state.
type Dispatcher struct {
	graph *layout.Graph
}

// NewDispatcher creates a dispatcher over the given graph.
func NewDispatcher(graph *layout.Graph) *Dispatcher {
	return &Dispatcher{graph: graph}
}

// TryAdvance moves the session to the named destination room.
//
// An empty destination is a no-op (render the current room unchanged). A
// destination that does not resolve is also a silent no-op and does not
// dirty the session. Otherwise the destination room's changes are applied
// to the session's variables and the session is moved, leaving it dirty.
//
// The caller holds the session lock across TryAdvance and the following
// save.
func (d *Dispatcher) TryAdvance(s *session.Session, destination string) {
	if destination == "" {
		return
	}

	room, ok := d.graph.Lookup(destination)
	if !ok {
		slog.Debug("navigation to unknown room ignored",
			"uid", s.UID,
			"destination", destination,
		)
		return
	}

	layout.Apply(room.Changes, s.Vars)
	s.MarkDirty()
	s.SetRoom(room)
}
