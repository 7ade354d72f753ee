package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// chdir changes the working directory for the duration of the test.
// Equivalent to t.Chdir, which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir(%q) error = %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("Chdir(%q) error = %v", old, err)
		}
	})
}

func TestSetDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	if cfg.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("Server.Addr = %q, want 127.0.0.1:8080", cfg.Server.Addr)
	}
	if cfg.Server.LogLevel != "info" {
		t.Errorf("Server.LogLevel = %q, want info", cfg.Server.LogLevel)
	}
	if cfg.Server.ShutdownTimeout != "10s" {
		t.Errorf("Server.ShutdownTimeout = %q, want 10s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Gateway.RouteSelectionKey != "action" {
		t.Errorf("Gateway.RouteSelectionKey = %q, want action", cfg.Gateway.RouteSelectionKey)
	}
	if cfg.Gateway.ExpectedUserAgentPrefix != "AmazonAPIGateway_" {
		t.Errorf("Gateway.ExpectedUserAgentPrefix = %q, want AmazonAPIGateway_", cfg.Gateway.ExpectedUserAgentPrefix)
	}
	if cfg.Store.Backend != StoreBackendMemory {
		t.Errorf("Store.Backend = %q, want memory", cfg.Store.Backend)
	}
}

func TestSetDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Addr = ":9090"
	cfg.Gateway.RouteSelectionKey = "route"
	cfg.SetDefaults()

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Gateway.RouteSelectionKey != "route" {
		t.Errorf("Gateway.RouteSelectionKey = %q, want route", cfg.Gateway.RouteSelectionKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults valid", mutate: func(c *Config) {}},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Server.LogLevel = "verbose" },
			wantErr: "must be one of",
		},
		{
			name:    "bad shutdown timeout",
			mutate:  func(c *Config) { c.Server.ShutdownTimeout = "soon" },
			wantErr: "positive duration",
		},
		{
			name:    "negative shutdown timeout",
			mutate:  func(c *Config) { c.Server.ShutdownTimeout = "-5s" },
			wantErr: "positive duration",
		},
		{
			name:    "bad store backend",
			mutate:  func(c *Config) { c.Store.Backend = "redis" },
			wantErr: "must be one of",
		},
		{
			name: "sqlite without path",
			mutate: func(c *Config) {
				c.Store.Backend = StoreBackendSQLite
			},
			wantErr: "requires path",
		},
		{
			name: "path without sqlite",
			mutate: func(c *Config) {
				c.Store.Path = "/tmp/conns.db"
			},
			wantErr: "only valid with backend sqlite",
		},
		{
			name: "sqlite with path valid",
			mutate: func(c *Config) {
				c.Store.Backend = StoreBackendSQLite
				c.Store.Path = "/tmp/conns.db"
			},
		},
		{
			name:    "empty allowed host entry",
			mutate:  func(c *Config) { c.Gateway.AllowedHosts = []string{"a.com", ""} },
			wantErr: "must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.SetDefaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestShutdownTimeoutDuration(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()
	if got := cfg.ShutdownTimeoutDuration(); got != 10*time.Second {
		t.Errorf("ShutdownTimeoutDuration() = %v, want 10s", got)
	}

	cfg.Server.ShutdownTimeout = "30s"
	if got := cfg.ShutdownTimeoutDuration(); got != 30*time.Second {
		t.Errorf("ShutdownTimeoutDuration() = %v, want 30s", got)
	}

	cfg.Server.ShutdownTimeout = "garbage"
	if got := cfg.ShutdownTimeoutDuration(); got != 10*time.Second {
		t.Errorf("ShutdownTimeoutDuration() fallback = %v, want 10s", got)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	raw, err := yaml.Marshal(map[string]any{
		"server": map[string]any{
			"addr":      ":9090",
			"log_level": "debug",
		},
		"gateway": map[string]any{
			"expected_gateway_id": "G1",
			"allowed_hosts":       []string{"a.com", "b.com"},
		},
		"store": map[string]any{
			"backend": "sqlite",
			"path":    "/tmp/conns.db",
		},
	})
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "sockgate.yaml")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	viper.Reset()
	t.Cleanup(viper.Reset)
	InitViper(path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Server.LogLevel != "debug" {
		t.Errorf("Server.LogLevel = %q, want debug", cfg.Server.LogLevel)
	}
	if cfg.Gateway.ExpectedGatewayID != "G1" {
		t.Errorf("Gateway.ExpectedGatewayID = %q, want G1", cfg.Gateway.ExpectedGatewayID)
	}
	if len(cfg.Gateway.AllowedHosts) != 2 || cfg.Gateway.AllowedHosts[0] != "a.com" {
		t.Errorf("Gateway.AllowedHosts = %v, want [a.com b.com]", cfg.Gateway.AllowedHosts)
	}
	if cfg.Store.Backend != StoreBackendSQLite || cfg.Store.Path != "/tmp/conns.db" {
		t.Errorf("Store = %+v, want sqlite:/tmp/conns.db", cfg.Store)
	}
	// Unset fields still get defaults.
	if cfg.Gateway.RouteSelectionKey != "action" {
		t.Errorf("Gateway.RouteSelectionKey = %q, want default action", cfg.Gateway.RouteSelectionKey)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on loaded config error = %v", err)
	}
}

func TestLoadConfigNoFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	// Search from an empty directory; a missing config file is not an error.
	chdir(t, t.TempDir())
	InitViper("")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}
}

func TestEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("SOCKGATE_SERVER_ADDR", ":7070")
	t.Setenv("SOCKGATE_GATEWAY_EXPECTED_GATEWAY_ID", "G9")
	t.Setenv("SOCKGATE_STORE_BACKEND", "none")

	chdir(t, t.TempDir())
	InitViper("")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("Server.Addr = %q, want :7070", cfg.Server.Addr)
	}
	if cfg.Gateway.ExpectedGatewayID != "G9" {
		t.Errorf("Gateway.ExpectedGatewayID = %q, want G9", cfg.Gateway.ExpectedGatewayID)
	}
	if cfg.Store.Backend != StoreBackendNone {
		t.Errorf("Store.Backend = %q, want none", cfg.Store.Backend)
	}
}

func TestFindConfigFileInPaths(t *testing.T) {
	dir := t.TempDir()
	if got := findConfigFileInPaths([]string{dir}); got != "" {
		t.Errorf("findConfigFileInPaths() = %q, want empty", got)
	}

	path := filepath.Join(dir, "sockgate.yml")
	if err := os.WriteFile(path, []byte("server:\n  addr: :1\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if got := findConfigFileInPaths([]string{dir}); got != path {
		t.Errorf("findConfigFileInPaths() = %q, want %q", got, path)
	}
}
