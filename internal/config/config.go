// Package config loads application configuration from environment
// variables. There is no hidden global state: Load returns a Config
// that the entry point passes to whoever needs it.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds all configuration values for Reqwire.
type Config struct {
	// StorageBackend selects the persistence engine: "sqlite" (default)
	// or "json". Unknown values fall back to json with a warning.
	StorageBackend string

	// DataDir is where the active backend keeps its files.
	// Defaults to ~/.reqwire.
	DataDir string

	// Port is the TCP port the REST API listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins
	// for the REST API. Defaults to ["*"].
	CORSOrigins []string
}

// Load reads configuration from environment variables, applying
// defaults for anything unset.
func Load() Config {
	return Config{
		StorageBackend: getEnv("REQWIRE_STORAGE", "sqlite"),
		DataDir:        getEnv("REQWIRE_DATA_DIR", defaultDataDir()),
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		CORSOrigins:    splitCSV(getEnv("CORS_ORIGINS", "*")),
	}
}

// defaultDataDir returns ~/.reqwire, or ./reqwire-data if the home
// directory cannot be resolved.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "reqwire-data"
	}
	return filepath.Join(home, ".reqwire")
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice,
// ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
