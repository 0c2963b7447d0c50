package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/plantcare/internal/selection"
)

func TestSessionStore(t *testing.T) {
	s := New(time.Minute)
	flow := selection.New(nil)

	id := s.Create(flow)
	require.NotEmpty(t, id)
	assert.Equal(t, 1, s.Count())

	got, ok := s.Get(id)
	require.True(t, ok)
	assert.Same(t, flow, got)

	other := s.Create(selection.New(nil))
	assert.NotEqual(t, id, other)
	assert.Equal(t, 2, s.Count())

	s.Delete(id)
	_, ok = s.Get(id)
	assert.False(t, ok)
	s.Delete("missing")
	assert.Equal(t, 1, s.Count())
}

func TestSessionStoreExpiry(t *testing.T) {
	s := New(30 * time.Millisecond)
	id := s.Create(selection.New(nil))

	// Get slides the expiry, so only look once the ttl has passed
	time.Sleep(80 * time.Millisecond)
	_, ok := s.Get(id)
	assert.False(t, ok)
}

func TestEvictionResetsFlow(t *testing.T) {
	s := New(time.Minute)
	flow := selection.New(nil)
	id := s.Create(flow)
	before := flow.Snapshot().Generation

	s.Delete(id)
	assert.Equal(t, before+1, flow.Snapshot().Generation)
}

func TestDefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultTTL, New(0).ttl)
}
