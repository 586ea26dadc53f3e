package session_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xinzhang-hello/meet-your-dog/internal/session"
)

type stubConn struct{ id int }

func (s *stubConn) Enqueue(message []byte) bool { return true }

func TestRegistry_SetReplacesExisting(t *testing.T) {
	registry := session.NewRegistry()
	first := &stubConn{id: 1}
	second := &stubConn{id: 2}

	registry.Set("user-1", first)
	registry.Set("user-1", second)

	got, ok := registry.Get("user-1")
	require.True(t, ok)
	assert.Same(t, session.Conn(second), got)
	assert.Equal(t, 1, registry.Len())
}

func TestRegistry_RemoveConn_OnlyRemovesMatching(t *testing.T) {
	registry := session.NewRegistry()
	old := &stubConn{id: 1}
	current := &stubConn{id: 2}
	registry.Set("user-1", old)
	registry.Set("user-1", current)

	// The stale connection cannot evict its replacement.
	assert.False(t, registry.RemoveConn("user-1", old))
	got, ok := registry.Get("user-1")
	require.True(t, ok)
	assert.Same(t, session.Conn(current), got)

	// The live connection can.
	assert.True(t, registry.RemoveConn("user-1", current))
	_, ok = registry.Get("user-1")
	assert.False(t, ok)
}

func TestRegistry_RemoveUnknownUser(t *testing.T) {
	registry := session.NewRegistry()

	registry.Remove("nobody")
	assert.False(t, registry.RemoveConn("nobody", &stubConn{}))
	assert.Equal(t, 0, registry.Len())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := session.NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			conn := &stubConn{id: n}
			userID := string(rune('a' + n%8))
			registry.Set(userID, conn)
			registry.Get(userID)
			registry.RemoveConn(userID, conn)
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, registry.Len(), 8)
}
