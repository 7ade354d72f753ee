// Package ctxkey defines shared context key types used across multiple packages.
// This package should have no dependencies on other internal packages to avoid import cycles.
package ctxkey

// LoggerKey is the context key type for the enriched logger.
// Used by HTTP middleware to store and retrieve the logger with request_id fields.
type LoggerKey struct{}

// RequestIDKey is the context key type for the per-request identifier.
type RequestIDKey struct{}

// IdentityKey is the context key type for the caller identity resolved by
// the dispatcher on disconnect and message paths.
type IdentityKey struct{}
