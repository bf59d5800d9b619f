package cli

import (
	"github.com/spf13/cobra"

	"neo4jpg/ui/tui"
)

// ReplConfig holds the flags of the repl command.
type ReplConfig struct {
	Connection ConnectionConfig
	Params     string
	Limit      int
	Compact    bool
}

func RegisterReplFlags(cmd *cobra.Command, cfg *ReplConfig) {
	RegisterConnectionFlags(cmd.Flags(), &cfg.Connection)
	cmd.Flags().StringVarP(&cfg.Params, "params", "p", "", "initial query parameters as a map literal")
	cmd.Flags().IntVarP(&cfg.Limit, "limit", "n", tui.DefaultConfig().Limit, "records shown per query")
	cmd.Flags().BoolVar(&cfg.Compact, "compact", false, "show records on a single line")
}

func NewReplCommand(_ string, cfg *ReplConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "run Cypher queries interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Connection.Validate(); err != nil {
				return err
			}
			exec, err := cfg.Connection.NewExecutor()
			if err != nil {
				return err
			}
			source, closeSource, err := cfg.Connection.OpenSource(cmd.Context())
			if err != nil {
				return err
			}
			defer closeSource()

			tuiCfg := tui.DefaultConfig()
			tuiCfg.Server = cfg.Connection.Server
			tuiCfg.Params = cfg.Params
			tuiCfg.Overrides = cfg.Connection.Overrides()
			tuiCfg.Limit = cfg.Limit
			tuiCfg.Pretty = !cfg.Compact
			return tui.Start(exec, source, tuiCfg)
		},
	}
}
