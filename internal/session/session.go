// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

// Package session owns the table of player sessions and their durable
// persistence: one YAML record per identity in the store directory, written
// with an atomic backup-generation protocol.
package session

import (
	"sync"

	"github.com/unidavemeyer/web-adventure/internal/layout"
)

// Session is the state for a single player identity.
//
// Room is volatile and restored from the persisted room name by
// Store.ResolveRooms after load. The mutex serializes the whole
// evaluate -> apply -> persist sequence for one identity: callers lock the
// session before navigating and keep it held through Save, so two requests
// for the same uid can never persist a half-updated variable map.
type Session struct {
	UID        string
	Credential string // "<hexKey>,<hexSalt>"
	Room       *layout.Room
	Vars       layout.Vars

	mu       sync.Mutex
	roomName string // persisted surrogate for Room
	dirty    bool
	path     string
}

// record is the on-disk shape of a session.
type record struct {
	UID  string         `yaml:"uid"`
	Pwd  string         `yaml:"pwd"`
	Room string         `yaml:"room"`
	Vars map[string]int `yaml:"vars"`
}

// Lock acquires the per-session lock.
func (s *Session) Lock() {
	s.mu.Lock()
}

// Unlock releases the per-session lock.
func (s *Session) Unlock() {
	s.mu.Unlock()
}

// SetRoom moves the session to the given room and marks it dirty.
func (s *Session) SetRoom(room *layout.Room) {
	s.Room = room
	s.roomName = room.Name
	s.dirty = true
}

// CurrentRoomName returns the name of the session's room, falling back to
// the persisted surrogate while room references are unresolved.
func (s *Session) CurrentRoomName() string {
	if s.Room != nil {
		return s.Room.Name
	}
	return s.roomName
}

// MarkDirty flags that in-memory state diverges from the on-disk record.
func (s *Session) MarkDirty() {
	s.dirty = true
}

// Dirty reports whether the session needs saving.
func (s *Session) Dirty() bool {
	return s.dirty
}

// Path returns the session's storage path.
func (s *Session) Path() string {
	return s.path
}
