// Package memory provides in-memory implementations of outbound ports.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sockgate/sockgate/internal/domain/connection"
)

// ConnectionStore implements connection.Store with an in-memory map.
// Thread-safe for concurrent access. For development/testing only.
type ConnectionStore struct {
	mu    sync.RWMutex
	conns map[string]*connection.Connection
}

// NewConnectionStore creates an empty in-memory connection store.
func NewConnectionStore() *ConnectionStore {
	return &ConnectionStore{
		conns: make(map[string]*connection.Connection),
	}
}

// FindIdentityByConnectionID returns the identity recorded for the
// connection. Returns connection.ErrConnectionNotFound for unknown ids.
func (s *ConnectionStore) FindIdentityByConnectionID(ctx context.Context, connectionID string) (connection.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conn, ok := s.conns[connectionID]
	if !ok {
		return connection.Identity{}, connection.ErrConnectionNotFound
	}
	return connection.Identity{ID: conn.IdentityID, Name: conn.IdentityName}, nil
}

// RecordConnection upserts a connection record. Reconnecting with the same
// id replaces the previous record.
func (s *ConnectionStore) RecordConnection(ctx context.Context, identity connection.Identity, connectionID, channel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conns[connectionID] = &connection.Connection{
		ConnectionID: connectionID,
		IdentityID:   identity.ID,
		IdentityName: identity.Name,
		Channel:      channel,
		Connected:    true,
		ConnectedAt:  time.Now().UTC(),
	}
	return nil
}

// MarkDisconnected flags a connection as disconnected. Unknown ids are a
// no-op, keeping disconnect idempotent.
func (s *ConnectionStore) MarkDisconnected(ctx context.Context, connectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, ok := s.conns[connectionID]
	if !ok || !conn.Connected {
		return nil
	}
	conn.Connected = false
	conn.DisconnectedAt = time.Now().UTC()
	return nil
}

// Get returns a copy of the stored connection record. Useful for tests.
func (s *ConnectionStore) Get(connectionID string) (connection.Connection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conn, ok := s.conns[connectionID]
	if !ok {
		return connection.Connection{}, false
	}
	return *conn, true
}

// Size returns the number of stored connection records.
func (s *ConnectionStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

// Compile-time check that ConnectionStore implements connection.Store.
var _ connection.Store = (*ConnectionStore)(nil)
