// Package cli defines the neo4jpg command tree.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"neo4jpg/internal/logging"
)

// RegisterRootFlags registers the persistent logging flags.
func RegisterRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("log-level", "warn", `verbosity of logging ("trace", "debug", "info", "warn", "error")`)
	cmd.PersistentFlags().String("log-format", "console", `format of logs ("console", "json")`)
}

// LoggingPreRunE configures the global logger from the persistent flags.
func LoggingPreRunE(cmd *cobra.Command, _ []string) error {
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		return err
	}
	return logging.Configure(cmd.ErrOrStderr(), level, format)
}

// NewRootCommand creates the top-level command with every subcommand attached.
func NewRootCommand(programName string) *cobra.Command {
	root := &cobra.Command{
		Use:               programName,
		Short:             "Run Cypher queries against Neo4j and stream the results as JSON",
		Long:              "Runs Cypher queries against Neo4j and renders every record as a JSON object.\nConnection settings come from flags, NEO4J_* environment variables or a server catalog.",
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: LoggingPreRunE,
	}
	RegisterRootFlags(root)

	queryCfg := &QueryConfig{}
	queryCmd := NewQueryCommand(programName, queryCfg)
	RegisterQueryFlags(queryCmd, queryCfg)
	root.AddCommand(queryCmd)

	serveCfg := &ServeConfig{}
	serveCmd := NewServeCommand(programName, serveCfg)
	RegisterServeFlags(serveCmd, serveCfg)
	root.AddCommand(serveCmd)

	replCfg := &ReplConfig{}
	replCmd := NewReplCommand(programName, replCfg)
	RegisterReplFlags(replCmd, replCfg)
	root.AddCommand(replCmd)

	root.AddCommand(NewCatalogCommand(programName))

	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, programName string, args []string) int {
	root := NewRootCommand(programName)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		root.PrintErrln("Error:", err)
		return 1
	}
	return 0
}
