package connection

import (
	"context"
	"errors"
)

// ErrConnectionNotFound is returned when no record exists for a connection id.
var ErrConnectionNotFound = errors.New("connection not found")

// Store persists connection-to-identity associations. The dispatch core
// calls it only as an extension hook: a failing or absent store must not
// break the connect/disconnect success paths.
// Implementations: SQLite (prod), in-memory (dev/test), Nop.
type Store interface {
	// FindIdentityByConnectionID returns the identity associated with a
	// connection. Returns ErrConnectionNotFound when the connection is
	// unknown.
	FindIdentityByConnectionID(ctx context.Context, connectionID string) (Identity, error)

	// RecordConnection upserts a connection record for the identity.
	// Identity may be zero when the connection is anonymous.
	RecordConnection(ctx context.Context, identity Identity, connectionID, channel string) error

	// MarkDisconnected flags a connection as disconnected. Idempotent:
	// unknown or already-disconnected ids are not errors.
	MarkDisconnected(ctx context.Context, connectionID string) error
}

// NopStore is a Store that persists nothing. It keeps the dispatch core's
// success-path contract intact when no persistence is configured.
type NopStore struct{}

// FindIdentityByConnectionID always reports the connection as unknown.
func (NopStore) FindIdentityByConnectionID(ctx context.Context, connectionID string) (Identity, error) {
	return Identity{}, ErrConnectionNotFound
}

// RecordConnection discards the record.
func (NopStore) RecordConnection(ctx context.Context, identity Identity, connectionID, channel string) error {
	return nil
}

// MarkDisconnected discards the update.
func (NopStore) MarkDisconnected(ctx context.Context, connectionID string) error {
	return nil
}

// Compile-time check that NopStore implements Store.
var _ Store = NopStore{}
