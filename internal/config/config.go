// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr     string
	DBPath         string
	RequestTimeout time.Duration
	PatternsFile   string
}

// Load reads configuration from environment variables and returns a validated
// Config. All variables are optional: JENKINSINSIGHTS_LISTEN_ADDR
// (127.0.0.1:8080), JENKINSINSIGHTS_DB_PATH (jenkinsinsights.db),
// JENKINSINSIGHTS_REQUEST_TIMEOUT (30s), and JENKINSINSIGHTS_PATTERNS_FILE,
// a YAML file of additional console error patterns.
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("JENKINSINSIGHTS_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "jenkinsinsights.db"
	if v, ok := os.LookupEnv("JENKINSINSIGHTS_DB_PATH"); ok {
		dbPath = v
	}

	requestTimeout := 30 * time.Second
	if v, ok := os.LookupEnv("JENKINSINSIGHTS_REQUEST_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("JENKINSINSIGHTS_REQUEST_TIMEOUT has invalid duration %q: %w", v, err)
		}
		requestTimeout = parsed
	}

	return &Config{
		ListenAddr:     listenAddr,
		DBPath:         dbPath,
		RequestTimeout: requestTimeout,
		PatternsFile:   os.Getenv("JENKINSINSIGHTS_PATTERNS_FILE"),
	}, nil
}
