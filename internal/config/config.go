// Package config wraps viper for taskbed's configuration surface.
//
// Precedence: environment (TASKBED_*) > config.yaml > defaults. The config
// file is discovered in $XDG_CONFIG_HOME/taskbed/config.yaml, then
// ~/.taskbed/config.yaml.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/andrewblevins/taskbed/internal/debug"
)

var v *viper.Viper

// Initialize sets up the viper configuration singleton.
// Should be called once at application startup.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")

	configFileSet := false
	if configDir, err := os.UserConfigDir(); err == nil {
		configPath := filepath.Join(configDir, "taskbed", "config.yaml")
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			configFileSet = true
		}
	}
	if !configFileSet {
		if homeDir, err := os.UserHomeDir(); err == nil {
			configPath := filepath.Join(homeDir, ".taskbed", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	// Environment variables take precedence over the config file.
	// E.g. TASKBED_SERVER_URL maps to the "server-url" key.
	v.SetEnvPrefix("TASKBED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			// A broken config file should not brick the CLI; fall back to
			// env + defaults and tell the user.
			debug.Logf("config file unreadable: %v", err)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data-dir", "")
	v.SetDefault("identity", "local")
	v.SetDefault("server-url", "http://localhost:3847")
	v.SetDefault("server-listen", ":3847")
	v.SetDefault("server-data-file", "")
	v.SetDefault("remote-url", "")
	v.SetDefault("remote-anon-key", "")
	v.SetDefault("flush-debounce", "1s")
	v.SetDefault("undo-limit", 50)
	v.SetDefault("sink-timeout", "10s")
}

func ensure() {
	if v == nil {
		_ = Initialize()
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	ensure()
	return v.GetString(key)
}

// GetInt returns an integer config value.
func GetInt(key string) int {
	ensure()
	return v.GetInt(key)
}

// GetBool returns a boolean config value.
func GetBool(key string) bool {
	ensure()
	return v.GetBool(key)
}

// GetDuration returns a duration config value ("1s", "500ms").
func GetDuration(key string) time.Duration {
	ensure()
	return v.GetDuration(key)
}

// Set overrides a config value (used by tests and command flags).
func Set(key string, value interface{}) {
	ensure()
	v.Set(key, value)
}

// DataDir returns the directory holding the local cache database and any
// auth session files. Defaults to ~/.taskbed.
func DataDir() string {
	ensure()
	if dir := v.GetString("data-dir"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskbed"
	}
	return filepath.Join(home, ".taskbed")
}

// RemoteConfigured reports whether remote-sink credentials are present.
// All sync and auth logic must be a safe no-op when this is false.
func RemoteConfigured() bool {
	ensure()
	return v.GetString("remote-url") != "" && v.GetString("remote-anon-key") != ""
}
