package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"neo4jpg/internal/config"
)

// Connector opens a session for one query invocation.
type Connector interface {
	Open(ctx context.Context, profile config.Profile) (Session, error)
}

// Session runs queries against one database. Close releases the session and
// any resources opened alongside it.
type Session interface {
	Run(ctx context.Context, query string, params map[string]any) (Cursor, error)
	Close(ctx context.Context) error
}

// Cursor iterates over the records of a running query.
// neo4j.ResultWithContext satisfies it.
type Cursor interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
	Err() error
}

// Neo4jConnector creates a driver and session per Open call.
type Neo4jConnector struct {
	cfg config.DriverConfig
}

// NewNeo4jConnector creates a connector with the given driver settings.
func NewNeo4jConnector(cfg config.DriverConfig) (*Neo4jConnector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Neo4jConnector{cfg: cfg}, nil
}

// ErrEncryptedScheme is returned for +s and +ssc URLs. Sessions are always
// opened over unencrypted transport.
var ErrEncryptedScheme = errors.New("encrypted neo4j schemes are not supported, use bolt:// or neo4j://")

func checkScheme(rawURL string) error {
	scheme, _, _ := strings.Cut(strings.ToLower(rawURL), "://")
	if strings.HasSuffix(scheme, "+s") || strings.HasSuffix(scheme, "+ssc") {
		return fmt.Errorf("%s: %w", rawURL, ErrEncryptedScheme)
	}
	return nil
}

// Open creates a driver for the profile endpoint and a session scoped to the
// profile database.
func (c *Neo4jConnector) Open(ctx context.Context, profile config.Profile) (Session, error) {
	if err := checkScheme(profile.URL); err != nil {
		return nil, err
	}

	auth := neo4j.NoAuth()
	if profile.Login != "" || profile.Password != "" {
		auth = neo4j.BasicAuth(profile.Login, profile.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(profile.DriverURL(), auth, func(dc *neo4j.Config) {
		dc.SocketConnectTimeout = c.cfg.ConnectTimeout
		dc.ConnectionAcquisitionTimeout = c.cfg.AcquisitionTimeout
		dc.MaxConnectionPoolSize = c.cfg.MaxPoolSize
		dc.UserAgent = c.cfg.UserAgent
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: profile.Database,
		FetchSize:    c.cfg.FetchSize,
	})

	return &neo4jSession{driver: driver, session: session}, nil
}

type neo4jSession struct {
	driver  neo4j.DriverWithContext
	session neo4j.SessionWithContext
}

func (s *neo4jSession) Run(ctx context.Context, query string, params map[string]any) (Cursor, error) {
	return s.session.Run(ctx, query, params)
}

func (s *neo4jSession) Close(ctx context.Context) error {
	return errors.Join(s.session.Close(ctx), s.driver.Close(ctx))
}
