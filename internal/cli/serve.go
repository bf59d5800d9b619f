package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"neo4jpg/internal/database/catalog"
	"neo4jpg/internal/logging"
	"neo4jpg/internal/mcpserver"
)

// ServeConfig holds the flags of the serve command.
type ServeConfig struct {
	Connection   ConnectionConfig
	MetricsAddr  string
	DefaultLimit int
	MaxLimit     int
}

func RegisterServeFlags(cmd *cobra.Command, cfg *ServeConfig) {
	defaults := mcpserver.DefaultConfig()
	RegisterConnectionFlags(cmd.Flags(), &cfg.Connection)
	cmd.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on, e.g. :9090 (disabled when empty)")
	cmd.Flags().IntVar(&cfg.DefaultLimit, "default-limit", defaults.DefaultLimit, "records returned when a tool call sets no limit")
	cmd.Flags().IntVar(&cfg.MaxLimit, "max-limit", defaults.MaxLimit, "upper bound on the records returned by one tool call")
}

func NewServeCommand(programName string, cfg *ServeConfig) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Short:   "serve Cypher tools over the Model Context Protocol on stdio",
		Example: fmt.Sprintf("  %s serve --catalog duckdb:catalog.duckdb --metrics-addr :9090", programName),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}
}

// NewMetricsServer exposes the default Prometheus registry on /metrics.
func NewMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func runServe(ctx context.Context, cfg *ServeConfig) error {
	if err := cfg.Connection.Validate(); err != nil {
		return err
	}

	exec, err := cfg.Connection.NewExecutor()
	if err != nil {
		return err
	}
	source, closeSource, err := cfg.Connection.OpenSource(ctx)
	if err != nil {
		return err
	}
	defer closeSource()

	if pg, ok := source.(*catalog.PostgresCatalog); ok && cfg.MetricsAddr != "" {
		if err := pg.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
			logging.Warn().Err(err).Msg("registering catalog pool metrics")
		}
	}

	serverCfg := mcpserver.DefaultConfig()
	serverCfg.DefaultServer = cfg.Connection.Server
	serverCfg.Overrides = cfg.Connection.Overrides()
	serverCfg.DefaultLimit = cfg.DefaultLimit
	serverCfg.MaxLimit = cfg.MaxLimit

	srv, err := mcpserver.NewServer(serverCfg, exec, source)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		metrics := NewMetricsServer(cfg.MetricsAddr)
		go func() {
			logging.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server started")
			if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error().Err(err).Msg("metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := metrics.Shutdown(shutdownCtx); err != nil {
				logging.Warn().Err(err).Msg("stopping metrics server")
			}
		}()
	}

	return srv.Start(ctx)
}
