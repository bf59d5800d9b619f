package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"neo4jpg/internal/config"
	"neo4jpg/internal/database/catalog"
)

const defaultCatalogPath = "neo4jpg-catalog.duckdb"

// NewCatalogCommand creates the catalog command group, which manages a local
// DuckDB server catalog.
func NewCatalogCommand(programName string) *cobra.Command {
	var (
		path    string
		threads int
		timeout time.Duration
	)

	withRepo := func(cmd *cobra.Command, fn func(*catalog.Repo) error) error {
		client, err := catalog.NewFileDB(path, catalog.WithThreads(threads), catalog.WithTimeout(timeout))
		if err != nil {
			return err
		}
		defer client.Close()

		repo := catalog.NewRepo(client)
		if err := repo.Migrate(cmd.Context()); err != nil {
			return err
		}
		return fn(repo)
	}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "manage the local server catalog",
		Long: fmt.Sprintf("Manages named Neo4j servers in a DuckDB catalog file.\nUse it with `%s query --catalog duckdb:<path> --server <name>`.", programName),
	}
	cmd.PersistentFlags().StringVar(&path, "db", defaultCatalogPath, "catalog file")
	cmd.PersistentFlags().IntVar(&threads, "threads", 0, "DuckDB worker threads (0 for the DuckDB default)")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Second, "time allowed for opening the catalog")

	cmd.AddCommand(&cobra.Command{
		Use:     "add <server> <key=value>...",
		Short:   "define a server, replacing any previous options",
		Example: fmt.Sprintf("  %s catalog add films url=bolt://db:7687 database=films user=neo4j password=secret", programName),
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(repo *catalog.Repo) error {
				return repo.AddServer(cmd.Context(), args[0], args[1:])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <server>",
		Short: "delete a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(repo *catalog.Repo) error {
				return repo.RemoveServer(cmd.Context(), args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list [server]",
		Short: "list servers, or the options of one server with passwords masked",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(repo *catalog.Repo) error {
				out := cmd.OutOrStdout()
				if len(args) == 0 {
					servers, err := repo.Servers(cmd.Context())
					if err != nil {
						return err
					}
					for _, s := range servers {
						fmt.Fprintln(out, s)
					}
					return nil
				}

				opts, err := repo.ServerOptions(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(opts) == 0 {
					return fmt.Errorf("server %q: %w", args[0], catalog.ErrServerNotFound)
				}
				for _, opt := range opts {
					fmt.Fprintln(out, maskOption(opt))
				}
				return nil
			})
		},
	})

	return cmd
}

func maskOption(opt string) string {
	key, _, ok := strings.Cut(opt, "=")
	if ok && key == config.KeyPassword {
		return key + "=****"
	}
	return opt
}
