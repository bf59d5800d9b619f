package catalog

import (
	"context"
	"fmt"

	pgxpoolprometheus "github.com/IBM/pgxpoolprometheus"
	zerologadapter "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/prometheus/client_golang/prometheus"

	"neo4jpg/internal/logging"
)

const (
	queryAllServerOptions = `SELECT unnest(srvoptions) AS conf FROM pg_foreign_server ORDER BY srvname`
	queryServerOptions    = `SELECT unnest(srvoptions) AS conf FROM pg_foreign_server WHERE srvname = $1`
)

// Querier is the subset of *pgxpool.Pool used by PostgresCatalog.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresCatalog reads server options from pg_foreign_server.
type PostgresCatalog struct {
	q    Querier
	pool *pgxpool.Pool
}

// PostgresOption configures the connection pool.
type PostgresOption func(*pgxpool.Config)

// WithMaxConns limits the number of pooled connections.
func WithMaxConns(n int32) PostgresOption {
	return func(c *pgxpool.Config) {
		if n > 0 {
			c.MaxConns = n
		}
	}
}

// WithQueryLogging routes pgx query traces to the global logger at debug level.
func WithQueryLogging() PostgresOption {
	return func(c *pgxpool.Config) {
		l := zerologadapter.NewLogger(logging.Logger,
			zerologadapter.WithoutPGXModule(),
			zerologadapter.WithSubDictionary("pgx"))
		c.ConnConfig.Tracer = &tracelog.TraceLog{Logger: l, LogLevel: tracelog.LogLevelDebug}
	}
}

// NewPostgresCatalog connects a pool to the database at url.
func NewPostgresCatalog(ctx context.Context, url string, opts ...PostgresOption) (*PostgresCatalog, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres url: %w", err)
	}
	for _, opt := range opts {
		opt(cfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresCatalog{q: pool, pool: pool}, nil
}

// NewPostgresCatalogFromQuerier wraps an existing querier such as a pool or a
// transaction. Close is a no-op for catalogs created this way.
func NewPostgresCatalogFromQuerier(q Querier) *PostgresCatalog {
	return &PostgresCatalog{q: q}
}

// RegisterMetrics exposes pool statistics on reg.
func (c *PostgresCatalog) RegisterMetrics(reg prometheus.Registerer) error {
	if c.pool == nil {
		return nil
	}
	return reg.Register(pgxpoolprometheus.NewCollector(c.pool, map[string]string{"db_name": "catalog"}))
}

// ServerOptions implements Source. Unknown servers yield no options.
func (c *PostgresCatalog) ServerOptions(ctx context.Context, server string) ([]string, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if server == "" {
		rows, err = c.q.Query(ctx, queryAllServerOptions)
	} else {
		rows, err = c.q.Query(ctx, queryServerOptions, server)
	}
	if err != nil {
		return nil, fmt.Errorf("query foreign server options: %w", err)
	}

	opts, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("read foreign server options: %w", err)
	}

	logging.Debug().Str("server", server).Int("options", len(opts)).Msg("loaded server options from postgres")
	return opts, nil
}

// Close releases the pool if the catalog owns one.
func (c *PostgresCatalog) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}
