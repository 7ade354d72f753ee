// Package connection defines the connection-to-identity storage port the
// dispatch core delegates persistence to.
package connection

import "time"

// Identity is the caller an established connection belongs to.
type Identity struct {
	// ID is the stable identity identifier.
	ID string
	// Name is the human-readable identity name.
	Name string
}

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool {
	return i.ID == "" && i.Name == ""
}

// Connection is one gateway connection record.
type Connection struct {
	// ConnectionID is the gateway-assigned connection identifier.
	ConnectionID string
	// IdentityID references the Identity this connection belongs to.
	// Empty when the connection was established anonymously.
	IdentityID string
	// IdentityName is cached from the Identity for display.
	IdentityName string
	// Channel is the optional channel requested on connect.
	Channel string
	// Connected is false once the connection has disconnected.
	Connected bool
	// ConnectedAt is when the connection was recorded (UTC).
	ConnectedAt time.Time
	// DisconnectedAt is when the connection disconnected (UTC), zero
	// while still connected.
	DisconnectedAt time.Time
}
