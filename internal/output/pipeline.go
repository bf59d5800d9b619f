package output

import (
	"context"
	"fmt"
	"iter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"neo4jpg/internal/config"
	"neo4jpg/internal/database/graph"
)

var (
	recordsEncoded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "neo4jpg",
		Subsystem: "output",
		Name:      "records_encoded_total",
		Help:      "number of records encoded as JSON",
	})

	encodingErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "neo4jpg",
		Subsystem: "output",
		Name:      "encoding_errors_total",
		Help:      "number of records that could not be encoded as JSON",
	})
)

// QueryRunner executes a query and streams its records.
// *graph.Executor implements it.
type QueryRunner interface {
	Execute(ctx context.Context, profile config.Profile, query, params string) (iter.Seq2[graph.Record, error], error)
}

// OptionSource supplies key=value connection entries for a named server.
// An empty server name selects the entries of every server.
type OptionSource interface {
	ServerOptions(ctx context.Context, server string) ([]string, error)
}

// Stream executes query against profile and yields one JSON object per record.
// The first error, whether from execution or encoding, is yielded once and
// ends the sequence; JSON already yielded stays valid.
func Stream(ctx context.Context, runner QueryRunner, profile config.Profile, query, params string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		records, err := runner.Execute(ctx, profile, query, params)
		if err != nil {
			yield("", err)
			return
		}

		for rec, err := range records {
			if err != nil {
				yield("", err)
				return
			}
			line, err := EncodeRecord(rec)
			if err != nil {
				encodingErrors.Inc()
				yield("", err)
				return
			}
			recordsEncoded.Inc()
			if !yield(line, nil) {
				return
			}
		}
	}
}

// StreamWithServer resolves the profile from the options stored for server,
// followed by overrides, then streams the query results.
func StreamWithServer(ctx context.Context, runner QueryRunner, source OptionSource, server, query, params string, overrides ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		profile, err := ResolveServer(ctx, source, server, overrides...)
		if err != nil {
			yield("", err)
			return
		}
		for line, err := range Stream(ctx, runner, profile, query, params) {
			if !yield(line, err) {
				return
			}
		}
	}
}

// StreamDefaultServer is StreamWithServer over the options of every server.
func StreamDefaultServer(ctx context.Context, runner QueryRunner, source OptionSource, query, params string, overrides ...string) iter.Seq2[string, error] {
	return StreamWithServer(ctx, runner, source, "", query, params, overrides...)
}

// ResolveServer loads the options for server and resolves them into a profile.
// A nil source contributes no options.
func ResolveServer(ctx context.Context, source OptionSource, server string, overrides ...string) (config.Profile, error) {
	var entries []string
	if source != nil {
		opts, err := source.ServerOptions(ctx, server)
		if err != nil {
			return config.Profile{}, fmt.Errorf("load options for server %q: %w", server, err)
		}
		entries = append(entries, opts...)
	}
	entries = append(entries, overrides...)
	return config.Resolve(entries), nil
}
