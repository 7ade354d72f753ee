// Package config provides configuration types and loading for sockgate.
//
// Configuration is file-based (sockgate.yaml) with environment variable
// overrides under the SOCKGATE_ prefix. Everything has a working default:
// a bare `sockgate start` serves on localhost with an in-memory connection
// store and the standard gateway header contracts.
package config

import (
	"time"
)

// Config is the top-level configuration for sockgate.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Gateway configures the dispatch and security contracts.
	Gateway GatewayConfig `yaml:"gateway" mapstructure:"gateway"`

	// Store configures connection persistence.
	Store StoreConfig `yaml:"store" mapstructure:"store"`
}

// ServerConfig configures the HTTP server listener.
type ServerConfig struct {
	// Addr is the listen address. Default: "127.0.0.1:8080" (localhost only).
	Addr string `yaml:"addr" mapstructure:"addr"`

	// LogLevel is one of debug, info, warn, error. Default: "info".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// ShutdownTimeout bounds graceful shutdown (e.g. "10s"). Default: "10s".
	ShutdownTimeout string `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout" validate:"omitempty,duration"`
}

// GatewayConfig configures the dispatch core: which headers the gateway
// must forward, which gateway identity to trust, and how message routes
// are selected.
type GatewayConfig struct {
	// RouteSelectionKey is the body field naming the handler for message
	// events. Default: "action".
	RouteSelectionKey string `yaml:"route_selection_key" mapstructure:"route_selection_key"`

	// ExpectedGatewayID is the trusted gateway deployment id. Empty
	// accepts any gateway deployment (prefix check only).
	ExpectedGatewayID string `yaml:"expected_gateway_id" mapstructure:"expected_gateway_id"`

	// ExpectedUserAgentPrefix is the User-Agent prefix the trusted
	// gateway sends. Default: "AmazonAPIGateway_".
	ExpectedUserAgentPrefix string `yaml:"expected_useragent_prefix" mapstructure:"expected_useragent_prefix"`

	// AllowedHosts is the Host header allow-list checked on connect.
	// Empty allows any host.
	AllowedHosts []string `yaml:"allowed_hosts" mapstructure:"allowed_hosts" validate:"omitempty,dive,required"`

	// RequiredHeaders overrides the general required header set. Empty
	// uses the standard gateway set.
	RequiredHeaders []string `yaml:"required_headers" mapstructure:"required_headers" validate:"omitempty,dive,required"`

	// RequiredConnectionHeaders overrides the connect-handshake header
	// set. Empty uses the standard set.
	RequiredConnectionHeaders []string `yaml:"required_connection_headers" mapstructure:"required_connection_headers" validate:"omitempty,dive,required"`

	// Methods is the allowed HTTP verb set. Empty uses the standard verbs.
	Methods []string `yaml:"methods" mapstructure:"methods" validate:"omitempty,dive,required"`
}

// Store backends.
const (
	StoreBackendMemory = "memory"
	StoreBackendSQLite = "sqlite"
	StoreBackendNone   = "none"
)

// StoreConfig configures connection persistence.
type StoreConfig struct {
	// Backend selects the store implementation: memory, sqlite, or none.
	// Default: "memory".
	Backend string `yaml:"backend" mapstructure:"backend" validate:"omitempty,oneof=memory sqlite none"`

	// Path is the SQLite database file. Required when backend is sqlite.
	Path string `yaml:"path" mapstructure:"path"`
}

// SetDefaults fills zero fields with their documented defaults.
func (c *Config) SetDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8080"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Gateway.RouteSelectionKey == "" {
		c.Gateway.RouteSelectionKey = "action"
	}
	if c.Gateway.ExpectedUserAgentPrefix == "" {
		c.Gateway.ExpectedUserAgentPrefix = "AmazonAPIGateway_"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = StoreBackendMemory
	}
}

// ShutdownTimeoutDuration parses the shutdown timeout. Call after
// Validate; an unparseable value falls back to 10 seconds.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}
