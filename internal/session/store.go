// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

package session

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/unidavemeyer/web-adventure/internal/layout"
)

// Protocol suffixes for the atomic save sequence.
const (
	tmpSuffix    = ".tmp"
	backupSuffix = ".bak"
)

// skipPatterns match directory entries that are save-protocol artifacts,
// not session records.
var skipPatterns = []glob.Glob{
	glob.MustCompile("*" + tmpSuffix),
	glob.MustCompile("*" + backupSuffix),
}

// Store owns the uid -> Session table and the backing directory. At most
// one Session object is ever live per uid.
type Store struct {
	mu       sync.RWMutex
	dir      string
	sessions map[string]*Session
}

// LoadAll scans the directory, recovers any interrupted save, and parses
// every session record. Invalid records and duplicate uids are reported and
// dropped; loading never aborts on a single bad record.
func LoadAll(dir string) (*Store, []error) {
	st := &Store{
		dir:      dir,
		sessions: make(map[string]*Session),
	}

	var errs []error
	errs = append(errs, st.recoverInterrupted()...)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return st, append(errs, oops.Code("SESSION_DIR_UNREADABLE").With("dir", dir).Wrap(err))
	}

	for _, entry := range entries {
		if entry.IsDir() || skipEntry(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		sess, err := loadRecord(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, exists := st.sessions[sess.UID]; exists {
			errs = append(errs, oops.Code("SESSION_DUPLICATE_UID").
				With("uid", sess.UID).
				With("path", path).
				Errorf("duplicate session record for uid %q", sess.UID))
			continue
		}
		st.sessions[sess.UID] = sess
	}

	return st, errs
}

// recoverInterrupted repairs the directory after a crash mid-save: an
// orphaned backup whose target is missing is the latest fully-written
// generation and gets promoted back; stray temp files are incomplete
// writes and get removed.
func (st *Store) recoverInterrupted() []error {
	entries, err := os.ReadDir(st.dir)
	if err != nil {
		// Reported by the main scan.
		return nil
	}

	var errs []error
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, tmpSuffix):
			if err := os.Remove(filepath.Join(st.dir, name)); err != nil {
				errs = append(errs, oops.Code("SESSION_RECOVER_FAILED").With("path", name).Wrap(err))
			}
		case strings.HasSuffix(name, backupSuffix):
			target := filepath.Join(st.dir, strings.TrimSuffix(name, backupSuffix))
			backup := filepath.Join(st.dir, name)
			if _, err := os.Stat(target); err == nil {
				// Target survived the crash; the backup is stale.
				if err := os.Remove(backup); err != nil {
					errs = append(errs, oops.Code("SESSION_RECOVER_FAILED").With("path", name).Wrap(err))
				}
				continue
			}
			slog.Warn("promoting orphaned session backup", "path", backup)
			if err := os.Rename(backup, target); err != nil {
				errs = append(errs, oops.Code("SESSION_RECOVER_FAILED").With("path", name).Wrap(err))
			}
		}
	}
	return errs
}

// loadRecord parses and validates one session file.
func loadRecord(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Code("SESSION_INVALID_RECORD").With("path", path).Wrap(err)
	}

	var rec record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, oops.Code("SESSION_INVALID_RECORD").
			With("path", path).
			Wrapf(err, "session record %s does not decode", filepath.Base(path))
	}

	switch {
	case rec.UID == "":
		return nil, oops.Code("SESSION_INVALID_RECORD").
			With("path", path).Errorf("session record %s is missing uid", filepath.Base(path))
	case rec.Room == "":
		return nil, oops.Code("SESSION_INVALID_RECORD").
			With("path", path).Errorf("session record %s is missing room", filepath.Base(path))
	case rec.Pwd == "":
		return nil, oops.Code("SESSION_INVALID_RECORD").
			With("path", path).Errorf("session record %s is missing pwd", filepath.Base(path))
	}

	vars := layout.Vars(rec.Vars)
	if vars == nil {
		vars = make(layout.Vars)
	}

	return &Session{
		UID:        rec.UID,
		Credential: rec.Pwd,
		Vars:       vars,
		roomName:   rec.Room,
		path:       path,
	}, nil
}

// ResolveRooms replaces each session's persisted room name with a live room
// reference. Runs once after load. A session whose room no longer exists is
// reported and placed in the start room so a renamed room never strands an
// identity; with an empty graph the session is left unresolved.
func (st *Store) ResolveRooms(graph *layout.Graph) []error {
	st.mu.Lock()
	defer st.mu.Unlock()

	var errs []error
	for _, sess := range st.sessions {
		if room, ok := graph.Lookup(sess.roomName); ok {
			sess.Room = room
			continue
		}

		errs = append(errs, oops.Code("SESSION_UNKNOWN_ROOM").
			With("uid", sess.UID).
			With("room", sess.roomName).
			Errorf("session %q references unknown room %q", sess.UID, sess.roomName))

		start, err := graph.StartRoom()
		if err != nil {
			continue
		}
		sess.SetRoom(start)
	}
	return errs
}

// Save durably writes the session record. The protocol keeps a recoverable
// generation on disk at every step: write the temp file, clear any stale
// backup, rename the current file to the backup name, rename the temp file
// into place, delete the backup. On any failure the session stays dirty and
// the previous generation remains intact.
//
// Callers serialize saves for one session via the session lock; Save does
// not take it.
func (st *Store) Save(s *Session) error {
	rec := record{
		UID:  s.UID,
		Pwd:  s.Credential,
		Room: s.CurrentRoomName(),
		Vars: s.Vars,
	}
	data, err := yaml.Marshal(&rec)
	if err != nil {
		return oops.Code("SESSION_SAVE_FAILED").With("uid", s.UID).Wrap(err)
	}

	target := s.path
	tmp := target + tmpSuffix
	backup := target + backupSuffix

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return oops.Code("SESSION_SAVE_FAILED").With("uid", s.UID).With("path", tmp).Wrap(err)
	}
	if err := os.Remove(backup); err != nil && !os.IsNotExist(err) {
		return oops.Code("SESSION_SAVE_FAILED").With("uid", s.UID).With("path", backup).Wrap(err)
	}
	if err := os.Rename(target, backup); err != nil && !os.IsNotExist(err) {
		return oops.Code("SESSION_SAVE_FAILED").With("uid", s.UID).With("path", target).Wrap(err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return oops.Code("SESSION_SAVE_FAILED").With("uid", s.UID).With("path", target).Wrap(err)
	}
	if err := os.Remove(backup); err != nil && !os.IsNotExist(err) {
		return oops.Code("SESSION_SAVE_FAILED").With("uid", s.UID).With("path", backup).Wrap(err)
	}

	s.dirty = false
	return nil
}

// CreateUnregistered produces a session with a fresh storage path that is
// not yet in the table. The account-creation flow fills in the identity and
// calls Register once validation completes.
func (st *Store) CreateUnregistered() *Session {
	return &Session{
		Vars:  make(layout.Vars),
		dirty: true,
		path:  filepath.Join(st.dir, ulid.Make().String()+".yml"),
	}
}

// Register inserts the session into the live table, rejecting a uid
// collision.
func (st *Store) Register(s *Session) error {
	if s.UID == "" {
		return oops.Code("SESSION_INVALID_RECORD").Errorf("cannot register a session without a uid")
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if _, exists := st.sessions[s.UID]; exists {
		return oops.Code("SESSION_DUPLICATE_UID").
			With("uid", s.UID).
			Errorf("session %q is already registered", s.UID)
	}
	st.sessions[s.UID] = s
	return nil
}

// FindByUID returns the live session for the uid.
func (st *Store) FindByUID(uid string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sess, ok := st.sessions[uid]
	return sess, ok
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Dir returns the backing directory path.
func (st *Store) Dir() string {
	return st.dir
}

func skipEntry(name string) bool {
	for _, p := range skipPatterns {
		if p.Match(name) {
			return true
		}
	}
	return false
}
