// Package storage keeps selection sessions in memory with a sliding TTL.
package storage

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/lehigh-university-libraries/plantcare/internal/selection"
)

// DefaultTTL is used when New is given a non-positive ttl
const DefaultTTL = 30 * time.Minute

// SessionStore maps session IDs to selection flows. Entries expire ttl after
// their last access; an expired flow is reset so a pending request is
// cancelled.
type SessionStore struct {
	sessions *cache.Cache
	ttl      time.Duration
}

func New(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := cache.New(ttl, ttl/2)
	c.OnEvicted(func(id string, v interface{}) {
		if flow, ok := v.(*selection.Flow); ok {
			flow.Reset()
		}
		slog.Debug("Session evicted", "id", id)
	})
	return &SessionStore{sessions: c, ttl: ttl}
}

// Create stores flow under a fresh ID and returns the ID
func (s *SessionStore) Create(flow *selection.Flow) string {
	id := uuid.NewString()
	s.sessions.Set(id, flow, s.ttl)
	return id
}

// Get returns the flow for id and extends its lifetime
func (s *SessionStore) Get(id string) (*selection.Flow, bool) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, false
	}
	flow, ok := v.(*selection.Flow)
	if !ok {
		return nil, false
	}
	s.sessions.Set(id, flow, s.ttl)
	return flow, true
}

// Delete removes id. Deleting an unknown id is a no-op.
func (s *SessionStore) Delete(id string) {
	s.sessions.Delete(id)
}

// Count returns the number of stored sessions, expired ones included until
// the janitor runs
func (s *SessionStore) Count() int {
	return s.sessions.ItemCount()
}
