// Package mcpserver exposes Cypher execution as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"neo4jpg/internal/config"
	"neo4jpg/internal/logging"
	"neo4jpg/internal/output"
)

// Server wraps the MCP server with Cypher tools.
type Server struct {
	mcpServer *mcp.Server
	runner    output.QueryRunner
	source    output.OptionSource
	cfg       Config
}

// Config holds configuration for the MCP server.
type Config struct {
	ServerName    string
	ServerVersion string
	// DefaultServer is used when a tool call names no server. When both are
	// empty the options of every catalog server are used.
	DefaultServer string
	// Overrides are appended after the catalog options of every call.
	Overrides    []string
	DefaultLimit int
	MaxLimit     int
}

// DefaultConfig returns the configuration used by `neo4jpg serve`.
func DefaultConfig() Config {
	return Config{
		ServerName:    "neo4jpg",
		ServerVersion: "0.1.0",
		DefaultLimit:  100,
		MaxLimit:      1000,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.ServerName == "" {
		return &config.ConfigError{Field: "ServerName", Message: "must not be empty"}
	}
	if c.DefaultLimit <= 0 {
		return &config.ConfigError{Field: "DefaultLimit", Message: "must be positive"}
	}
	if c.MaxLimit < c.DefaultLimit {
		return &config.ConfigError{Field: "MaxLimit", Message: "must be at least DefaultLimit"}
	}
	return nil
}

// NewServer creates a new MCP server instance. source may be nil, in which
// case profiles are resolved from Overrides alone.
func NewServer(cfg Config, runner output.QueryRunner, source output.OptionSource) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	impl := &mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}

	s := &Server{
		mcpServer: mcp.NewServer(impl, nil),
		runner:    runner,
		source:    source,
		cfg:       cfg,
	}
	s.registerTools()
	return s, nil
}

// CypherArgs defines the input for the cypher tool.
type CypherArgs struct {
	Query  string `json:"query" jsonschema:"Cypher query to execute"`
	Params string `json:"params,omitempty" jsonschema:"query parameters as a map literal, e.g. {'name': 'Ann'}"`
	Server string `json:"server,omitempty" jsonschema:"catalog server whose connection options to use"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of records to return"`
}

// CypherResult holds one JSON document per returned record.
type CypherResult struct {
	Records   []string `json:"records" jsonschema:"one JSON object per record"`
	Truncated bool     `json:"truncated,omitempty" jsonschema:"true when more records were available than the limit"`
}

// ProfileArgs defines the input for the resolve_profile tool.
type ProfileArgs struct {
	Server string `json:"server,omitempty" jsonschema:"catalog server to resolve"`
}

// ProfileResult describes a resolved connection profile without its password.
type ProfileResult struct {
	URL         string `json:"url"`
	Database    string `json:"database"`
	User        string `json:"user,omitempty"`
	HasPassword bool   `json:"has_password"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "cypher",
		Description: "Execute a Cypher query against Neo4j and return each record as a JSON object. Nodes render as {id, labels, properties}, relationships as {id, type, nodes, properties} and paths as arrays of relationships.",
	}, s.handleCypher)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "resolve_profile",
		Description: "Show the Neo4j URL, database and user that a catalog server resolves to. The password is never returned.",
	}, s.handleResolveProfile)
}

func (s *Server) limit(requested int) int {
	switch {
	case requested <= 0:
		return s.cfg.DefaultLimit
	case requested > s.cfg.MaxLimit:
		return s.cfg.MaxLimit
	default:
		return requested
	}
}

func (s *Server) server(requested string) string {
	if requested != "" {
		return requested
	}
	return s.cfg.DefaultServer
}

// handleCypher streams the query and stops pulling once the limit is reached,
// which releases the Neo4j session.
func (s *Server) handleCypher(ctx context.Context, _ *mcp.CallToolRequest, args CypherArgs) (*mcp.CallToolResult, CypherResult, error) {
	if args.Query == "" {
		return nil, CypherResult{}, fmt.Errorf("query must not be empty")
	}

	limit := s.limit(args.Limit)
	result := CypherResult{Records: []string{}}

	lines := output.StreamWithServer(ctx, s.runner, s.source, s.server(args.Server), args.Query, args.Params, s.cfg.Overrides...)
	for line, err := range lines {
		// Anything past the limit, a failure included, only marks truncation.
		if len(result.Records) == limit {
			result.Truncated = true
			break
		}
		if err != nil {
			logging.Warn().Err(err).Str("tool", "cypher").Msg("query failed")
			return nil, CypherResult{}, err
		}
		result.Records = append(result.Records, line)
	}

	logging.Debug().Int("records", len(result.Records)).Bool("truncated", result.Truncated).Msg("cypher tool finished")
	return nil, result, nil
}

func (s *Server) handleResolveProfile(ctx context.Context, _ *mcp.CallToolRequest, args ProfileArgs) (*mcp.CallToolResult, ProfileResult, error) {
	p, err := output.ResolveServer(ctx, s.source, s.server(args.Server), s.cfg.Overrides...)
	if err != nil {
		return nil, ProfileResult{}, err
	}
	return nil, ProfileResult{
		URL:         p.URL,
		Database:    p.Database,
		User:        p.Login,
		HasPassword: p.Password != "",
	}, nil
}

// Connect serves a single session over t. It is used by tests and embedders
// that supply their own transport.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcpServer.Connect(ctx, t, nil)
}

// Start runs the MCP server on stdio until ctx is done or the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	logging.Info().Str("name", s.cfg.ServerName).Str("version", s.cfg.ServerVersion).Msg("starting MCP server on stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
