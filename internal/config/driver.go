package config

import "time"

// DriverConfig contains tuning parameters for the Neo4j driver created per query.
// Use DefaultDriverConfig() to get sensible defaults, then override as needed.
type DriverConfig struct {
	ConnectTimeout     time.Duration // Socket connect timeout (default: 5s)
	AcquisitionTimeout time.Duration // Max wait for a pooled connection (default: 30s)
	MaxPoolSize        int           // Connections per driver; one session per query needs one (default: 1)
	FetchSize          int           // Records pulled per batch while streaming (default: 1000)
	UserAgent          string        // Reported to the server (default: "neo4jpg")
}

// DefaultDriverConfig returns a DriverConfig with sensible defaults.
func DefaultDriverConfig() DriverConfig {
	return DriverConfig{
		ConnectTimeout:     5 * time.Second,
		AcquisitionTimeout: 30 * time.Second,
		MaxPoolSize:        1,
		FetchSize:          1000,
		UserAgent:          "neo4jpg",
	}
}

// WithConnectTimeout returns a copy of the config with modified connect timeout.
func (c DriverConfig) WithConnectTimeout(d time.Duration) DriverConfig {
	c.ConnectTimeout = d
	return c
}

// WithFetchSize returns a copy of the config with modified fetch size.
func (c DriverConfig) WithFetchSize(n int) DriverConfig {
	c.FetchSize = n
	return c
}

// WithMaxPoolSize returns a copy of the config with modified pool size.
func (c DriverConfig) WithMaxPoolSize(n int) DriverConfig {
	c.MaxPoolSize = n
	return c
}

// Validate checks if the configuration is valid and returns an error if not.
func (c DriverConfig) Validate() error {
	if c.ConnectTimeout <= 0 {
		return &ConfigError{Field: "ConnectTimeout", Message: "must be positive"}
	}
	if c.AcquisitionTimeout <= 0 {
		return &ConfigError{Field: "AcquisitionTimeout", Message: "must be positive"}
	}
	if c.MaxPoolSize <= 0 {
		return &ConfigError{Field: "MaxPoolSize", Message: "must be positive"}
	}
	// -1 asks the server for everything at once
	if c.FetchSize == 0 || c.FetchSize < -1 {
		return &ConfigError{Field: "FetchSize", Message: "must be positive or -1"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + " " + e.Message
}
