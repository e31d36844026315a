// Package session keeps each browser's grid state across requests.
//
// State lives in memory keyed by a client id stored in a signed cookie, so
// a long-lived SSE stream sees changes made by later requests. The durable
// parts (sorting, filters, page, search, visibility, sizes) are also
// mirrored into the cookie and restored after a server restart.
package session

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/admingrid/pkg/datatable"
)

const (
	// CookieName is the session cookie name.
	CookieName = "admingrid"
	clientKey  = "client"
	gridPrefix = "grid."
)

// Store is the per-browser grid state store.
type Store struct {
	cookies sessions.Store
	logger  *slog.Logger

	mu     sync.Mutex
	states map[string]datatable.State
}

// NewCookieStore builds the signed cookie store sessions are kept in.
func NewCookieStore(secret string) *sessions.CookieStore {
	cs := sessions.NewCookieStore([]byte(secret))
	cs.MaxAge(86400 * 30)
	cs.Options.Path = "/"
	cs.Options.HttpOnly = true
	cs.Options.SameSite = http.SameSiteLaxMode
	return cs
}

// New creates a store over cookies.
func New(cookies sessions.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		cookies: cookies,
		logger:  logger,
		states:  make(map[string]datatable.State),
	}
}

func stateKey(client, resource string) string {
	return client + "/" + resource
}

// get returns the cookie session. A cookie that fails to decode yields a
// fresh session.
func (s *Store) get(r *http.Request) *sessions.Session {
	sess, err := s.cookies.Get(r, CookieName)
	if err != nil {
		s.logger.Debug("discarding unreadable session", "error", err)
	}
	return sess
}

// Client returns the browser's id, assigning one on the first visit. It may
// set a cookie, so it must run before the response is written.
func (s *Store) Client(w http.ResponseWriter, r *http.Request) string {
	sess := s.get(r)
	if id, ok := sess.Values[clientKey].(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	sess.Values[clientKey] = id
	if err := sess.Save(r, w); err != nil {
		s.logger.Warn("failed to save session", "error", err)
	}
	return id
}

// Load returns the client's state for resource: memory first, then the
// cookie mirror, then the zero state.
func (s *Store) Load(r *http.Request, client, resource string) datatable.State {
	s.mu.Lock()
	st, ok := s.states[stateKey(client, resource)]
	s.mu.Unlock()
	if ok {
		return st.Clone()
	}

	raw, ok := s.get(r).Values[gridPrefix+resource].(string)
	if !ok {
		return datatable.State{}
	}
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		s.logger.Debug("discarding unreadable grid state", "resource", resource, "error", err)
		return datatable.State{}
	}
	return st
}

// Peek returns the in-memory state without touching cookies.
func (s *Store) Peek(client, resource string) (datatable.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[stateKey(client, resource)]
	return st.Clone(), ok
}

// Save records the client's state and mirrors its durable part into the
// cookie. It must run before the response is written.
func (s *Store) Save(w http.ResponseWriter, r *http.Request, client, resource string, st datatable.State) error {
	s.mu.Lock()
	s.states[stateKey(client, resource)] = st.Clone()
	s.mu.Unlock()

	durable := st.Clone()
	durable.RowSelection = nil
	durable.Expanded = nil
	data, err := json.Marshal(durable)
	if err != nil {
		return err
	}

	sess := s.get(r)
	sess.Values[clientKey] = client
	sess.Values[gridPrefix+resource] = string(data)
	return sess.Save(r, w)
}

// Forget drops a client's in-memory state for resource.
func (s *Store) Forget(client, resource string) {
	s.mu.Lock()
	delete(s.states, stateKey(client, resource))
	s.mu.Unlock()
}
