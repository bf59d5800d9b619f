package output

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"neo4jpg/internal/config"
	"neo4jpg/internal/database/graph"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeConnector serves canned records and records how it was used.
type fakeConnector struct {
	records  []*neo4j.Record
	runErr   error
	late     error
	profiles []config.Profile
	closed   int
}

func (f *fakeConnector) Open(_ context.Context, profile config.Profile) (graph.Session, error) {
	f.profiles = append(f.profiles, profile)
	return &fakeSession{conn: f}, nil
}

type fakeSession struct {
	conn *fakeConnector
}

func (s *fakeSession) Run(context.Context, string, map[string]any) (graph.Cursor, error) {
	if s.conn.runErr != nil {
		return nil, s.conn.runErr
	}
	return &fakeCursor{records: s.conn.records, err: s.conn.late, pos: -1}, nil
}

func (s *fakeSession) Close(context.Context) error {
	s.conn.closed++
	return nil
}

type fakeCursor struct {
	records []*neo4j.Record
	err     error
	pos     int
}

func (c *fakeCursor) Next(context.Context) bool {
	c.pos++
	return c.pos < len(c.records)
}

func (c *fakeCursor) Record() *neo4j.Record { return c.records[c.pos] }

func (c *fakeCursor) Err() error {
	if c.pos >= len(c.records) {
		return c.err
	}
	return nil
}

type staticSource map[string][]string

func (s staticSource) ServerOptions(_ context.Context, server string) ([]string, error) {
	if server == "" {
		var all []string
		for _, opts := range s {
			all = append(all, opts...)
		}
		return all, nil
	}
	opts, ok := s[server]
	if !ok {
		return nil, errors.New("no such server")
	}
	return opts, nil
}

func collect(t *testing.T, seq func(func(string, error) bool)) ([]string, error) {
	t.Helper()
	var lines []string
	for line, err := range seq {
		if err != nil {
			return lines, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func nameRecord(name string) *neo4j.Record {
	return &neo4j.Record{Keys: []string{"name"}, Values: []any{name}}
}

func TestStream_EncodesEachRecordInOrder(t *testing.T) {
	conn := &fakeConnector{records: []*neo4j.Record{nameRecord("Ann"), nameRecord("Bob")}}
	exec := graph.NewExecutor(conn)

	lines, err := collect(t, Stream(context.Background(), exec, config.Resolve(nil), "MATCH (p) RETURN p.name AS name", ""))
	require.NoError(t, err)
	assert.Equal(t, []string{`{"name":"Ann"}`, `{"name":"Bob"}`}, lines)
	assert.Equal(t, 1, conn.closed)
}

func TestStream_GraphValues(t *testing.T) {
	ann := dbtype.Node{Id: 1, Labels: []string{"Person"}, Props: map[string]any{"name": "Ann"}}
	bob := dbtype.Node{Id: 2, Labels: []string{"Person"}, Props: map[string]any{"name": "Bob"}}
	knows := dbtype.Relationship{Id: 3, StartId: 1, EndId: 2, Type: "KNOWS", Props: map[string]any{}}

	conn := &fakeConnector{records: []*neo4j.Record{{Keys: []string{"a", "r", "b"}, Values: []any{ann, knows, bob}}}}

	lines, err := collect(t, Stream(context.Background(), graph.NewExecutor(conn), config.Resolve(nil), "q", ""))
	require.NoError(t, err)
	require.Len(t, lines, 1)

	a := `{"id":1,"labels":["Person"],"properties":{"name":"Ann"}}`
	b := `{"id":2,"labels":["Person"],"properties":{"name":"Bob"}}`
	assert.Equal(t, `{"a":`+a+`,"r":{"id":3,"type":"KNOWS","nodes":[`+a+`,`+b+`],"properties":{}},"b":`+b+`}`, lines[0])
}

func TestStream_EmptyResult(t *testing.T) {
	conn := &fakeConnector{}
	lines, err := collect(t, Stream(context.Background(), graph.NewExecutor(conn), config.Resolve(nil), "q", ""))
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Equal(t, 1, conn.closed)
}

func TestStream_EarlyBreakReleasesSession(t *testing.T) {
	conn := &fakeConnector{records: []*neo4j.Record{nameRecord("Ann"), nameRecord("Bob"), nameRecord("Cy")}}

	var got []string
	for line, err := range Stream(context.Background(), graph.NewExecutor(conn), config.Resolve(nil), "q", "") {
		require.NoError(t, err)
		got = append(got, line)
		break
	}

	assert.Equal(t, []string{`{"name":"Ann"}`}, got)
	assert.Equal(t, 1, conn.closed)
}

func TestStream_BadParamsOpensNoSession(t *testing.T) {
	conn := &fakeConnector{}
	lines, err := collect(t, Stream(context.Background(), graph.NewExecutor(conn), config.Resolve(nil), "q", "{'x': "))

	var paramErr *graph.ParameterError
	require.ErrorAs(t, err, &paramErr)
	assert.Empty(t, lines)
	assert.Empty(t, conn.profiles)
	assert.Zero(t, conn.closed)
}

func TestStream_QueryErrorEndsSequence(t *testing.T) {
	conn := &fakeConnector{runErr: &neo4j.Neo4jError{Code: graph.CodeSyntaxError, Msg: "Invalid input"}}

	_, err := collect(t, Stream(context.Background(), graph.NewExecutor(conn), config.Resolve(nil), "RETURN", ""))
	var queryErr *graph.QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Equal(t, "RETURN", queryErr.Query)
	assert.Equal(t, 1, conn.closed)
}

func TestStream_LateErrorKeepsEarlierLines(t *testing.T) {
	conn := &fakeConnector{
		records: []*neo4j.Record{nameRecord("Ann")},
		late:    &neo4j.Neo4jError{Code: graph.CodeTypeError, Msg: "cannot add"},
	}

	lines, err := collect(t, Stream(context.Background(), graph.NewExecutor(conn), config.Resolve(nil), "q", ""))
	assert.Equal(t, []string{`{"name":"Ann"}`}, lines)
	var queryErr *graph.QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Equal(t, graph.CodeTypeError, queryErr.Code)
}

func TestStream_EncodingErrorReleasesSession(t *testing.T) {
	conn := &fakeConnector{records: []*neo4j.Record{{Keys: []string{"c"}, Values: []any{make(chan int)}}}}

	_, err := collect(t, Stream(context.Background(), graph.NewExecutor(conn), config.Resolve(nil), "q", ""))
	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "c", encErr.Column)
	assert.Equal(t, 1, conn.closed)
}

func TestStreamWithServer_ResolvesProfile(t *testing.T) {
	source := staticSource{
		"graph": {"url=bolt://db:7687/?database=films", "user=neo4j", "password=secret"},
	}
	conn := &fakeConnector{records: []*neo4j.Record{nameRecord("Ann")}}

	lines, err := collect(t, StreamWithServer(context.Background(), graph.NewExecutor(conn), source, "graph", "q", "", "database=people"))
	require.NoError(t, err)
	assert.Equal(t, []string{`{"name":"Ann"}`}, lines)

	require.Len(t, conn.profiles, 1)
	assert.Equal(t, config.Profile{
		URL:      "bolt://db:7687/?database=films",
		Database: "people",
		Login:    "neo4j",
		Password: "secret",
	}, conn.profiles[0])
}

func TestStreamWithServer_UnknownServer(t *testing.T) {
	conn := &fakeConnector{}
	_, err := collect(t, StreamWithServer(context.Background(), graph.NewExecutor(conn), staticSource{}, "missing", "q", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"missing"`)
	assert.Empty(t, conn.profiles)
}

func TestStreamDefaultServer_UsesAllOptions(t *testing.T) {
	source := staticSource{"only": {"url=neo4j://cluster"}}
	conn := &fakeConnector{}

	_, err := collect(t, StreamDefaultServer(context.Background(), graph.NewExecutor(conn), source, "q", ""))
	require.NoError(t, err)
	require.Len(t, conn.profiles, 1)
	assert.Equal(t, "neo4j://cluster", conn.profiles[0].URL)
	assert.Equal(t, config.DefaultDatabase, conn.profiles[0].Database)
}

func TestResolveServer_NilSource(t *testing.T) {
	p, err := ResolveServer(context.Background(), nil, "ignored", "user=u")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultURL, p.URL)
	assert.Equal(t, "u", p.Login)
}
