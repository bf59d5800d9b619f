package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb" // Register DuckDB driver
)

// DuckDBConfig holds tuning options for the embedded catalog database.
type DuckDBConfig struct {
	Threads       int           // DuckDB worker threads (0 = DuckDB default)
	MemoryLimitMB int           // Memory limit in MB (0 = DuckDB default)
	Timeout       time.Duration // Timeout for opening the database (0 = none)
}

// DuckDBClient owns the connection to a DuckDB catalog file.
type DuckDBClient struct {
	db     *sql.DB
	config DuckDBConfig
}

// DuckDBOption configures the DuckDB client.
type DuckDBOption func(*DuckDBConfig)

// WithThreads sets the number of DuckDB threads.
func WithThreads(n int) DuckDBOption {
	return func(c *DuckDBConfig) {
		c.Threads = n
	}
}

// WithMemoryLimit sets the DuckDB memory limit in megabytes.
func WithMemoryLimit(mb int) DuckDBOption {
	return func(c *DuckDBConfig) {
		c.MemoryLimitMB = mb
	}
}

// WithTimeout bounds the time spent opening and pinging the database.
func WithTimeout(d time.Duration) DuckDBOption {
	return func(c *DuckDBConfig) {
		c.Timeout = d
	}
}

// NewDuckDBClient opens the catalog at dsn. An empty dsn or ":memory:"
// opens a private in-memory database.
func NewDuckDBClient(dsn string, opts ...DuckDBOption) (*DuckDBClient, error) {
	var cfg DuckDBConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	ctx := context.Background()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	// A single connection keeps an in-memory catalog visible to every caller.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	client := &DuckDBClient{db: db, config: cfg}
	if err := client.configure(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure duckdb: %w", err)
	}
	return client, nil
}

// NewInMemoryDB opens an in-memory catalog.
func NewInMemoryDB(opts ...DuckDBOption) (*DuckDBClient, error) {
	return NewDuckDBClient(":memory:", opts...)
}

// NewFileDB opens or creates a catalog file.
func NewFileDB(path string, opts ...DuckDBOption) (*DuckDBClient, error) {
	if path == "" {
		return nil, fmt.Errorf("database path required")
	}
	return NewDuckDBClient(path, opts...)
}

func (c *DuckDBClient) configure(ctx context.Context) error {
	if c.config.Threads > 0 {
		if _, err := c.db.ExecContext(ctx, fmt.Sprintf("PRAGMA threads=%d", c.config.Threads)); err != nil {
			return fmt.Errorf("setting threads: %w", err)
		}
	}
	if c.config.MemoryLimitMB > 0 {
		if _, err := c.db.ExecContext(ctx, fmt.Sprintf("PRAGMA memory_limit='%dMB'", c.config.MemoryLimitMB)); err != nil {
			return fmt.Errorf("setting memory limit: %w", err)
		}
	}
	return nil
}

// DB returns the underlying sql.DB.
func (c *DuckDBClient) DB() *sql.DB {
	return c.db
}

// Close releases database resources.
func (c *DuckDBClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
