package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment variables.
// If configFile is empty, it searches for sockgate.yaml/.yml in standard locations.
// The search requires an explicit YAML extension to avoid matching the binary
// itself, which Viper's built-in SetConfigName would match (same base name,
// no extension).
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// No config file found in any standard location.
		// Set name/type without search paths so ReadInConfig returns
		// ConfigFileNotFoundError (handled gracefully by callers).
		viper.SetConfigName("sockgate")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: SOCKGATE_SERVER_ADDR
	viper.SetEnvPrefix("SOCKGATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for a sockgate config file
// with an explicit YAML extension (.yaml or .yml).
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".sockgate"),
	}
	if runtime.GOOS == "windows" {
		if pd := os.Getenv("ProgramData"); pd != "" {
			paths = append(paths, filepath.Join(pd, "sockgate"))
		}
	} else {
		paths = append(paths, "/etc/sockgate")
	}
	return findConfigFileInPaths(paths)
}

// findConfigFileInPaths searches the given directories for sockgate.yaml or
// .yml. Returns the full path of the first match, or empty string if none found.
func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "sockgate"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds all config keys for environment variable support.
// Example: SOCKGATE_GATEWAY_EXPECTED_GATEWAY_ID overrides gateway.expected_gateway_id
func bindNestedEnvKeys() {
	// Server config
	_ = viper.BindEnv("server.addr")
	_ = viper.BindEnv("server.log_level")
	_ = viper.BindEnv("server.shutdown_timeout")

	// Gateway config
	_ = viper.BindEnv("gateway.route_selection_key")
	_ = viper.BindEnv("gateway.expected_gateway_id")
	_ = viper.BindEnv("gateway.expected_useragent_prefix")
	// Note: allowed_hosts, required_headers, required_connection_headers and
	// methods are arrays; use the config file for these.

	// Store config
	_ = viper.BindEnv("store.backend")
	_ = viper.BindEnv("store.path")
}

// LoadConfig reads the configuration file, applies environment overrides,
// fills defaults, and returns the Config. The caller applies any CLI flag
// overrides and then calls Validate.
func LoadConfig() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found: continue with env vars and defaults only.
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()
	return cfg, nil
}

// ConfigFileUsed returns the config file Viper loaded, or "" if none.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
