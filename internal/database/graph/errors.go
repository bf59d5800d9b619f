package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Cypher status codes promoted to *QueryError.
const (
	CodeSyntaxError = "Neo.ClientError.Statement.SyntaxError"
	CodeTypeError   = "Neo.ClientError.Statement.TypeError"
)

// QueryError reports a query the server rejected as syntactically invalid or
// type-incompatible. It is not retried.
type QueryError struct {
	Query   string
	Code    string
	Message string
	Err     error
}

func (e *QueryError) Error() string {
	if e.Code == CodeTypeError {
		return fmt.Sprintf("bad cypher type in query: %s - error message: %s", e.Query, e.Message)
	}
	return fmt.Sprintf("bad cypher query: %s - error message: %s", e.Query, e.Message)
}

func (e *QueryError) Unwrap() error { return e.Err }

// ParameterError reports a parameter string that is not a well-formed mapping.
type ParameterError struct {
	Params string
	Err    error
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid query parameters %q: %v", e.Params, e.Err)
}

func (e *ParameterError) Unwrap() error { return e.Err }

// classifyError promotes syntax and type failures to *QueryError and returns
// every other error unmodified.
func classifyError(query string, err error) error {
	var neoErr *neo4j.Neo4jError
	if !errors.As(err, &neoErr) {
		return err
	}
	switch neoErr.Code {
	case CodeSyntaxError, CodeTypeError:
		return &QueryError{Query: query, Code: neoErr.Code, Message: neoErr.Msg, Err: err}
	}
	return err
}

// IsConnectionError reports whether err is a transport or authentication fault.
func IsConnectionError(err error) bool {
	if neo4j.IsConnectivityError(err) {
		return true
	}
	var neoErr *neo4j.Neo4jError
	return errors.As(err, &neoErr) && strings.HasPrefix(neoErr.Code, "Neo.ClientError.Security.")
}

// IsProtocolError reports whether err is a server-reported fault other than a
// query error or an authentication failure.
func IsProtocolError(err error) bool {
	var queryErr *QueryError
	if errors.As(err, &queryErr) || IsConnectionError(err) {
		return false
	}
	var neoErr *neo4j.Neo4jError
	return errors.As(err, &neoErr) || neo4j.IsUsageError(err)
}

// errorKind labels err for metrics and logs.
func errorKind(err error) string {
	var (
		queryErr *QueryError
		paramErr *ParameterError
	)
	switch {
	case errors.As(err, &queryErr):
		return "query"
	case errors.As(err, &paramErr):
		return "parameter"
	case IsConnectionError(err):
		return "connection"
	case IsProtocolError(err):
		return "protocol"
	default:
		return "other"
	}
}
