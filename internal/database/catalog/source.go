// Package catalog stores and looks up the key=value connection options of
// named Neo4j servers.
//
// Three sources are provided: Static for fixed option sets, Repo for a local
// DuckDB catalog and PostgresCatalog for the srvoptions of foreign servers
// defined in a PostgreSQL database. All of them return options in the order
// they were defined, so later entries override earlier ones on resolution.
package catalog

import (
	"context"
	"errors"
	"slices"
)

// ErrServerNotFound is returned when a named server has no catalog entry.
var ErrServerNotFound = errors.New("server not found")

// Source supplies the option entries for a server. An empty server name
// selects the entries of every server, ordered by server name.
type Source interface {
	ServerOptions(ctx context.Context, server string) ([]string, error)
}

// Static is an in-memory Source keyed by server name.
type Static map[string][]string

// ServerOptions implements Source.
func (s Static) ServerOptions(_ context.Context, server string) ([]string, error) {
	if server != "" {
		opts, ok := s[server]
		if !ok {
			return nil, ErrServerNotFound
		}
		return slices.Clone(opts), nil
	}

	var all []string
	for _, name := range s.Servers() {
		all = append(all, s[name]...)
	}
	return all, nil
}

// Servers returns the server names in sorted order.
func (s Static) Servers() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
