// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

package web

import (
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/unidavemeyer/web-adventure/internal/session"
)

// sidTable maps ephemeral per-login identifiers to sessions. Entries are
// never persisted and never expire; the table lives for the process
// lifetime.
type sidTable struct {
	mu   sync.RWMutex
	byID map[string]*session.Session
}

func newSIDTable() *sidTable {
	return &sidTable{byID: make(map[string]*session.Session)}
}

// create issues a fresh sid for the session.
func (t *sidTable) create(sess *session.Session) string {
	sid := ulid.Make().String()
	t.mu.Lock()
	t.byID[sid] = sess
	t.mu.Unlock()
	return sid
}

// lookup resolves a sid to its session.
func (t *sidTable) lookup(sid string) (*session.Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	sess, ok := t.byID[sid]
	return sess, ok
}
