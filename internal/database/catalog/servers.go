package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"neo4jpg/internal/logging"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS foreign_server_options (
  srvname   VARCHAR NOT NULL,
  position  INTEGER NOT NULL,
  conf      VARCHAR NOT NULL,
  PRIMARY KEY (srvname, position)
);
`

// Repo is a Source backed by a DuckDB catalog.
type Repo struct {
	db *sql.DB
}

// NewRepo creates a repository over an open client.
func NewRepo(client *DuckDBClient) *Repo {
	return &Repo{db: client.DB()}
}

// Migrate creates the catalog table if needed.
func (r *Repo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate catalog: %w", err)
	}
	return nil
}

// AddServer stores options for server, replacing any previous definition.
// Every option must have the form key=value.
func (r *Repo) AddServer(ctx context.Context, server string, options []string) (err error) {
	if server == "" {
		return errors.New("server name required")
	}
	for _, opt := range options {
		if !strings.Contains(opt, "=") {
			return fmt.Errorf("option %q is not of the form key=value", opt)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM foreign_server_options WHERE srvname = ?`, server); err != nil {
		return fmt.Errorf("clear options for %q: %w", server, err)
	}
	for i, opt := range options {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO foreign_server_options (srvname, position, conf) VALUES (?, ?, ?)`,
			server, i, opt); err != nil {
			return fmt.Errorf("insert option for %q: %w", server, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit options for %q: %w", server, err)
	}

	logging.Info().Str("server", server).Int("options", len(options)).Msg("stored server options")
	return nil
}

// RemoveServer deletes every option of server.
func (r *Repo) RemoveServer(ctx context.Context, server string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM foreign_server_options WHERE srvname = ?`, server)
	if err != nil {
		return fmt.Errorf("remove server %q: %w", server, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("remove server %q: %w", server, ErrServerNotFound)
	}
	return nil
}

// Servers lists the defined server names in sorted order.
func (r *Repo) Servers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT srvname FROM foreign_server_options ORDER BY srvname`)
	if err != nil {
		return nil, fmt.Errorf("list servers: %w", err)
	}
	defer rows.Close()

	servers := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan server name: %w", err)
		}
		servers = append(servers, name)
	}
	return servers, rows.Err()
}

// ServerOptions implements Source. Options come back in insertion order.
// Unknown servers yield no options.
func (r *Repo) ServerOptions(ctx context.Context, server string) ([]string, error) {
	query := `SELECT conf FROM foreign_server_options ORDER BY srvname, position`
	var args []any
	if server != "" {
		query = `SELECT conf FROM foreign_server_options WHERE srvname = ? ORDER BY position`
		args = append(args, server)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query server options: %w", err)
	}
	defer rows.Close()

	var opts []string
	for rows.Next() {
		var conf string
		if err := rows.Scan(&conf); err != nil {
			return nil, fmt.Errorf("scan server option: %w", err)
		}
		opts = append(opts, conf)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logging.Debug().Str("server", server).Int("options", len(opts)).Msg("loaded server options from duckdb")
	return opts, nil
}
