package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"neo4jpg/internal/config"
	"neo4jpg/internal/database/catalog"
	"neo4jpg/internal/database/graph"
	"neo4jpg/internal/output"
)

// Environment variables consulted when the matching flag is unset.
const (
	EnvURL      = "NEO4J_URI"
	EnvDatabase = "NEO4J_DATABASE"
	EnvUser     = "NEO4J_USER"
	EnvPassword = "NEO4J_PASSWORD"
)

// ConnectionConfig holds the flags shared by every command that talks to Neo4j.
type ConnectionConfig struct {
	URL      string
	Database string
	User     string
	Password string
	Options  []string
	Server   string
	Catalog  string

	CatalogThreads  int
	CatalogMemoryMB int
	CatalogTimeout  time.Duration

	ConnectTimeout time.Duration
	FetchSize      int
}

// RegisterConnectionFlags registers the connection flags on flags.
func RegisterConnectionFlags(flags *pflag.FlagSet, cfg *ConnectionConfig) {
	defaults := config.DefaultDriverConfig()

	flags.StringVar(&cfg.URL, "url", "", "Neo4j URL, e.g. bolt://localhost:7687 (env "+EnvURL+")")
	flags.StringVar(&cfg.Database, "database", "", "database name (env "+EnvDatabase+")")
	flags.StringVar(&cfg.User, "user", "", "login user (env "+EnvUser+")")
	flags.StringVar(&cfg.Password, "password", "", "login password (env "+EnvPassword+")")
	flags.StringArrayVarP(&cfg.Options, "option", "o", nil, "extra key=value connection option, may be repeated")
	flags.StringVar(&cfg.Server, "server", "", "catalog server whose options are used")
	flags.StringVar(&cfg.Catalog, "catalog", "", `server catalog: "duckdb:<path>" or a postgres:// URL`)
	flags.IntVar(&cfg.CatalogThreads, "catalog-threads", 0, "DuckDB catalog worker threads (0 for the DuckDB default)")
	flags.IntVar(&cfg.CatalogMemoryMB, "catalog-memory-mb", 0, "DuckDB catalog memory limit in MB (0 for the DuckDB default)")
	flags.DurationVar(&cfg.CatalogTimeout, "catalog-timeout", 5*time.Second, "time allowed for opening a DuckDB catalog")
	flags.DurationVar(&cfg.ConnectTimeout, "connect-timeout", defaults.ConnectTimeout, "Neo4j socket connect timeout")
	flags.IntVar(&cfg.FetchSize, "fetch-size", defaults.FetchSize, "records fetched per batch, -1 for all")
}

// Overrides returns the option entries given by flags, environment and
// --option, in increasing order of precedence: environment, --option, then
// the dedicated flags.
func (c *ConnectionConfig) Overrides() []string {
	var entries []string
	add := func(key, value string) {
		if value != "" {
			entries = append(entries, config.Entry(key, value))
		}
	}

	add(config.KeyURL, os.Getenv(EnvURL))
	add(config.KeyDatabase, os.Getenv(EnvDatabase))
	add(config.KeyUser, os.Getenv(EnvUser))
	add(config.KeyPassword, os.Getenv(EnvPassword))

	entries = append(entries, c.Options...)

	add(config.KeyURL, c.URL)
	add(config.KeyDatabase, c.Database)
	add(config.KeyUser, c.User)
	add(config.KeyPassword, c.Password)
	return entries
}

// Validate checks the --option entries.
func (c *ConnectionConfig) Validate() error {
	for _, opt := range c.Options {
		if !strings.Contains(opt, "=") {
			return fmt.Errorf("invalid --option %q: expected key=value", opt)
		}
	}
	return nil
}

// NewExecutor creates the Neo4j executor for the configured driver settings.
func (c *ConnectionConfig) NewExecutor() (*graph.Executor, error) {
	driverCfg := config.DefaultDriverConfig().
		WithConnectTimeout(c.ConnectTimeout).
		WithFetchSize(c.FetchSize)
	connector, err := graph.NewNeo4jConnector(driverCfg)
	if err != nil {
		return nil, err
	}
	return graph.NewExecutor(connector), nil
}

// OpenSource opens the configured catalog. It returns a nil source when no
// catalog is configured. The returned close function is never nil.
func (c *ConnectionConfig) OpenSource(ctx context.Context) (output.OptionSource, func(), error) {
	return OpenCatalog(ctx, c.Catalog, c.DuckDBOptions()...)
}

// DuckDBOptions returns the tuning options for a DuckDB catalog.
func (c *ConnectionConfig) DuckDBOptions() []catalog.DuckDBOption {
	return []catalog.DuckDBOption{
		catalog.WithThreads(c.CatalogThreads),
		catalog.WithMemoryLimit(c.CatalogMemoryMB),
		catalog.WithTimeout(c.CatalogTimeout),
	}
}

// OpenCatalog opens a catalog by location: "duckdb:<path>", a postgres URL, or ""
// for none. opts only apply to DuckDB catalogs.
func OpenCatalog(ctx context.Context, dsn string, opts ...catalog.DuckDBOption) (output.OptionSource, func(), error) {
	noop := func() {}

	switch {
	case dsn == "":
		return nil, noop, nil

	case strings.HasPrefix(dsn, "duckdb:"):
		client, err := catalog.NewFileDB(strings.TrimPrefix(dsn, "duckdb:"), opts...)
		if err != nil {
			return nil, noop, err
		}
		repo := catalog.NewRepo(client)
		if err := repo.Migrate(ctx); err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		return repo, func() { _ = client.Close() }, nil

	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		pg, err := catalog.NewPostgresCatalog(ctx, dsn, catalog.WithMaxConns(2), catalog.WithQueryLogging())
		if err != nil {
			return nil, noop, err
		}
		return pg, pg.Close, nil

	default:
		return nil, noop, fmt.Errorf("unsupported catalog %q: expected duckdb:<path> or a postgres:// URL", dsn)
	}
}
