// Package sqlite provides the durable connection store on an embedded
// SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sockgate/sockgate/internal/domain/connection"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

const schema = `
CREATE TABLE IF NOT EXISTS connections (
	connection_id   TEXT PRIMARY KEY,
	identity_id     TEXT NOT NULL DEFAULT '',
	identity_name   TEXT NOT NULL DEFAULT '',
	channel         TEXT NOT NULL DEFAULT '',
	connected       INTEGER NOT NULL DEFAULT 1,
	connected_at    TEXT NOT NULL,
	disconnected_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_connections_identity ON connections (identity_id);
`

// ConnectionStore implements connection.Store backed by SQLite.
type ConnectionStore struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and bootstraps
// the schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*ConnectionStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}
	// modernc.org/sqlite serializes writes internally; a single connection
	// avoids SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap connections schema: %w", err)
	}
	return &ConnectionStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *ConnectionStore) Close() error {
	return s.db.Close()
}

// FindIdentityByConnectionID returns the identity recorded for the
// connection. Returns connection.ErrConnectionNotFound for unknown ids.
func (s *ConnectionStore) FindIdentityByConnectionID(ctx context.Context, connectionID string) (connection.Identity, error) {
	var identity connection.Identity
	err := s.db.QueryRowContext(ctx,
		`SELECT identity_id, identity_name FROM connections WHERE connection_id = ?`,
		connectionID,
	).Scan(&identity.ID, &identity.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return connection.Identity{}, connection.ErrConnectionNotFound
	}
	if err != nil {
		return connection.Identity{}, fmt.Errorf("find identity for connection %s: %w", connectionID, err)
	}
	return identity, nil
}

// RecordConnection upserts a connection record. Reconnecting with the same
// id replaces the previous record and clears any disconnect marker.
func (s *ConnectionStore) RecordConnection(ctx context.Context, identity connection.Identity, connectionID, channel string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO connections (connection_id, identity_id, identity_name, channel, connected, connected_at, disconnected_at)
		VALUES (?, ?, ?, ?, 1, ?, NULL)
		ON CONFLICT(connection_id) DO UPDATE SET
			identity_id = excluded.identity_id,
			identity_name = excluded.identity_name,
			channel = excluded.channel,
			connected = 1,
			connected_at = excluded.connected_at,
			disconnected_at = NULL`,
		connectionID, identity.ID, identity.Name, channel, now,
	)
	if err != nil {
		return fmt.Errorf("record connection %s: %w", connectionID, err)
	}
	return nil
}

// MarkDisconnected flags a connection as disconnected. Unknown or
// already-disconnected ids are a no-op, keeping disconnect idempotent.
func (s *ConnectionStore) MarkDisconnected(ctx context.Context, connectionID string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`UPDATE connections SET connected = 0, disconnected_at = ? WHERE connection_id = ? AND connected = 1`,
		now, connectionID,
	)
	if err != nil {
		return fmt.Errorf("mark connection %s disconnected: %w", connectionID, err)
	}
	return nil
}

// Compile-time check that ConnectionStore implements connection.Store.
var _ connection.Store = (*ConnectionStore)(nil)
