// Package graph executes Cypher queries against Neo4j and converts the driver's
// result values into a closed set of graph value types.
package graph

import (
	"context"
	"iter"

	"neo4jpg/internal/config"
	"neo4jpg/internal/logging"
)

// Executor runs queries and streams their records lazily.
type Executor struct {
	connector Connector
}

// NewExecutor creates an executor that opens sessions through c.
func NewExecutor(c Connector) *Executor {
	return &Executor{connector: c}
}

// Execute parses params and returns a pull-driven sequence of records.
//
// Malformed params fail immediately with *ParameterError and no session is
// opened. Otherwise the session is opened on the first pull and closed exactly
// once: when the sequence is exhausted, when it yields an error, or when the
// consumer stops ranging early. Syntax and type errors from the server are
// yielded as *QueryError; other faults are yielded unmodified.
func (e *Executor) Execute(ctx context.Context, profile config.Profile, query, params string) (iter.Seq2[Record, error], error) {
	parsed, err := ParseParams(params)
	if err != nil {
		queryErrors.WithLabelValues(errorKind(err)).Inc()
		return nil, err
	}

	return func(yield func(Record, error) bool) {
		logging.Debug().
			Str("query", query).
			Any("params", parsed).
			Str("profile", profile.String()).
			Msg("executing cypher")

		session, err := e.connector.Open(ctx, profile)
		if err != nil {
			queryErrors.WithLabelValues(errorKind(err)).Inc()
			yield(Record{}, err)
			return
		}
		sessionsOpen.Inc()
		defer func() {
			if err := session.Close(context.WithoutCancel(ctx)); err != nil {
				logging.Warn().Err(err).Msg("closing neo4j session")
			}
			sessionsOpen.Dec()
		}()

		cursor, err := session.Run(ctx, query, parsed)
		if err != nil {
			e.fail(yield, query, err)
			return
		}

		for cursor.Next(ctx) {
			if !yield(NewRecord(cursor.Record()), nil) {
				return
			}
		}
		if err := cursor.Err(); err != nil {
			e.fail(yield, query, err)
		}
	}, nil
}

func (e *Executor) fail(yield func(Record, error) bool, query string, err error) {
	err = classifyError(query, err)
	queryErrors.WithLabelValues(errorKind(err)).Inc()
	yield(Record{}, err)
}
