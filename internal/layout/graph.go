// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

package layout

import (
	"errors"
	"io"
	"os"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// ErrNoStartRoom indicates that no room loaded successfully, leaving the
// graph without a start room. This is fatal at startup.
var ErrNoStartRoom = oops.Code("LAYOUT_NO_START_ROOM").Errorf("layout contains no valid rooms")

// Graph is the immutable-after-load mapping from room name to Room. The
// first validly inserted room is the designated start room.
type Graph struct {
	rooms map[string]*Room
	start *Room
}

// Load reads a stream of YAML room documents and builds a graph.
//
// Loading is best-effort: a rejected document or duplicate name is reported
// in the returned error list and skipped, and the load continues through
// the remaining documents. Duplicate names keep the first room, never
// overwriting it.
func Load(r io.Reader) (*Graph, []error) {
	g := &Graph{rooms: make(map[string]*Room)}
	var errs []error

	dec := yaml.NewDecoder(r)
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// The decoder cannot resume past a syntax error.
			errs = append(errs, oops.Code("LAYOUT_BAD_YAML").Wrap(err))
			break
		}
		if doc.Kind == 0 || doc.IsZero() {
			continue
		}

		room, roomErrs := parseRoom(&doc)
		errs = append(errs, roomErrs...)
		if room == nil {
			continue
		}

		if _, exists := g.rooms[room.Name]; exists {
			errs = append(errs, oops.Code("LAYOUT_DUPLICATE_ROOM").
				With("room", room.Name).
				Errorf("room %q defined more than once", room.Name))
			continue
		}

		g.rooms[room.Name] = room
		if g.start == nil {
			g.start = room
		}
	}

	return g, errs
}

// LoadFile loads a graph from a layout file. A file that cannot be opened
// yields a nil graph and a single error.
func LoadFile(path string) (*Graph, []error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, []error{oops.Code("LAYOUT_OPEN_FAILED").With("path", path).Wrap(err)}
	}
	defer f.Close()
	return Load(f)
}

// Lookup returns the room with the given name.
func (g *Graph) Lookup(name string) (*Room, bool) {
	room, ok := g.rooms[name]
	return room, ok
}

// StartRoom returns the first validly loaded room, or ErrNoStartRoom when
// the graph is empty.
func (g *Graph) StartRoom() (*Room, error) {
	if g.start == nil {
		return nil, ErrNoStartRoom
	}
	return g.start, nil
}

// Len returns the number of rooms in the graph.
func (g *Graph) Len() int {
	return len(g.rooms)
}
