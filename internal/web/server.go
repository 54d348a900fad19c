// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

// Package web is the HTTP transport shim over the state engine: it turns
// wire requests into engine calls and renders the resulting room. All
// decision logic lives in the engine packages.
package web

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/unidavemeyer/web-adventure/internal/auth"
	"github.com/unidavemeyer/web-adventure/internal/layout"
	"github.com/unidavemeyer/web-adventure/internal/nav"
	"github.com/unidavemeyer/web-adventure/internal/observability"
	"github.com/unidavemeyer/web-adventure/internal/session"
)

// Save retry policy. Retrying failed disk writes is transport policy, not
// engine policy; the engine leaves the session dirty on failure.
const (
	saveRetries    = 2
	saveRetryDelay = 25 * time.Millisecond
)

const sidCookieName = "sid"

// Server handles player-facing HTTP traffic.
type Server struct {
	graph      *layout.Graph
	store      *session.Store
	dispatcher *nav.Dispatcher
	hasher     auth.Hasher
	metrics    *observability.Metrics
	sids       *sidTable
}

// NewServer wires the transport over the engine components.
func NewServer(
	graph *layout.Graph,
	store *session.Store,
	dispatcher *nav.Dispatcher,
	hasher auth.Hasher,
	metrics *observability.Metrics,
) *Server {
	return &Server{
		graph:      graph,
		store:      store,
		dispatcher: dispatcher,
		hasher:     hasher,
		metrics:    metrics,
		sids:       newSIDTable(),
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /create", s.handleCreatePage)
	mux.HandleFunc("POST /create", s.handleCreate)
	mux.HandleFunc("GET /play", s.handlePlay)
	return mux
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, loginTemplate, pageData{Error: r.URL.Query().Get("err")})
}

// handleLogin verifies credentials and issues a sid. The response never
// distinguishes an unknown identity from a wrong password, and neither
// does the work performed: unknown identities still cost a full dummy
// derivation.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	uid := r.FormValue("uid")
	password := r.FormValue("password")

	sess, ok := s.store.FindByUID(uid)
	if !ok {
		s.hasher.VerifyDummy(password)
		s.rejectLogin(w, r)
		return
	}
	if !s.hasher.Verify(password, sess.Credential) {
		s.rejectLogin(w, r)
		return
	}

	s.metrics.AuthTotal.WithLabelValues("ok").Inc()
	s.issueSID(w, sess)
	http.Redirect(w, r, "/play", http.StatusSeeOther)
}

func (s *Server) rejectLogin(w http.ResponseWriter, r *http.Request) {
	s.metrics.AuthTotal.WithLabelValues("rejected").Inc()
	http.Redirect(w, r, "/?err=bad+credentials", http.StatusSeeOther)
}

func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, createTemplate, pageData{Error: r.URL.Query().Get("err")})
}

// handleCreate runs the account-creation flow: validate the form, derive a
// credential, seed the session at the start room, register and persist it.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	uid := r.FormValue("uid")
	password := r.FormValue("password")
	confirm := r.FormValue("confirm")

	if uid == "" || password == "" || password != confirm {
		http.Redirect(w, r, "/create?err=check+the+form", http.StatusSeeOther)
		return
	}
	if _, exists := s.store.FindByUID(uid); exists {
		http.Redirect(w, r, "/create?err=name+unavailable", http.StatusSeeOther)
		return
	}

	credential, err := s.hasher.Derive(password)
	if err != nil {
		s.fail(w, oops.Wrapf(err, "deriving credential"))
		return
	}
	start, err := s.graph.StartRoom()
	if err != nil {
		s.fail(w, err)
		return
	}

	sess := s.store.CreateUnregistered()
	sess.UID = uid
	sess.Credential = credential
	sess.SetRoom(start)

	// Register re-checks the uid under the store lock; the FindByUID above
	// only exists to give a friendly error for the common case.
	if err := s.store.Register(sess); err != nil {
		http.Redirect(w, r, "/create?err=name+unavailable", http.StatusSeeOther)
		return
	}

	sess.Lock()
	err = s.saveSession(r.Context(), sess)
	sess.Unlock()
	if err != nil {
		s.fail(w, err)
		return
	}

	s.issueSID(w, sess)
	http.Redirect(w, r, "/play", http.StatusSeeOther)
}

// handlePlay renders the session's room, first applying a requested
// transition. Exit visibility is computed against the room after the
// transition.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	sess.Lock()
	defer sess.Unlock()

	before := sess.Room
	s.dispatcher.TryAdvance(sess, r.URL.Query().Get("go"))
	if sess.Room != before {
		s.metrics.NavigationsTotal.Inc()
	}

	if sess.Dirty() {
		if err := s.saveSession(r.Context(), sess); err != nil {
			s.fail(w, err)
			return
		}
	}

	room := sess.Room
	if room == nil {
		s.fail(w, oops.Errorf("session %q has no current room", sess.UID))
		return
	}

	data := roomData{
		UID:  sess.UID,
		Desc: room.RenderDesc(sess.Vars),
	}
	for _, exit := range room.OpenExits(sess.Vars) {
		data.Exits = append(data.Exits, exitData{
			Target: exit.Target,
			Verb:   layout.RenderTemplate(exit.Verb, sess.Vars),
		})
	}
	renderPage(w, roomTemplate, data)
}

// saveSession persists a dirty session with a bounded retry. The caller
// holds the session lock.
func (s *Server) saveSession(ctx context.Context, sess *session.Session) error {
	backoff := retry.WithMaxRetries(saveRetries, retry.NewConstant(saveRetryDelay))
	err := retry.Do(ctx, backoff, func(_ context.Context) error {
		if saveErr := s.store.Save(sess); saveErr != nil {
			return retry.RetryableError(saveErr)
		}
		return nil
	})
	if err != nil {
		s.metrics.SavesTotal.WithLabelValues("error").Inc()
		return err
	}
	s.metrics.SavesTotal.WithLabelValues("ok").Inc()
	return nil
}

func (s *Server) issueSID(w http.ResponseWriter, sess *session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sidCookieName,
		Value:    s.sids.create(sess),
		Path:     "/",
		HttpOnly: true,
	})
}

func (s *Server) sessionFromRequest(r *http.Request) (*session.Session, bool) {
	cookie, err := r.Cookie(sidCookieName)
	if err != nil {
		return nil, false
	}
	return s.sids.lookup(cookie.Value)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	slog.Error("request failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

type pageData struct {
	Error string
}

type roomData struct {
	UID   string
	Desc  string
	Exits []exitData
}

type exitData struct {
	Target string
	Verb   string
}

func renderPage(w http.ResponseWriter, tpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		slog.Debug("page render failed", "error", err)
	}
}

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html><head><title>web-adventure</title></head><body>
<h1>web-adventure</h1>
{{if .Error}}<p>{{.Error}}</p>{{end}}
<form method="post" action="/login">
<label>Name <input name="uid"></label>
<label>Password <input type="password" name="password"></label>
<button type="submit">Enter</button>
</form>
<p><a href="/create">Create an account</a></p>
</body></html>
`))

var createTemplate = template.Must(template.New("create").Parse(`<!DOCTYPE html>
<html><head><title>web-adventure - create</title></head><body>
<h1>Create an account</h1>
{{if .Error}}<p>{{.Error}}</p>{{end}}
<form method="post" action="/create">
<label>Name <input name="uid"></label>
<label>Password <input type="password" name="password"></label>
<label>Again <input type="password" name="confirm"></label>
<button type="submit">Create</button>
</form>
</body></html>
`))

var roomTemplate = template.Must(template.New("room").Parse(`<!DOCTYPE html>
<html><head><title>web-adventure</title></head><body>
<p>{{.Desc}}</p>
<ul>
{{range .Exits}}<li><a href="/play?go={{.Target}}">{{.Verb}}</a></li>
{{end}}</ul>
</body></html>
`))
