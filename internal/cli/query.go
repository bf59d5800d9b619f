package cli

import (
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"neo4jpg/internal/output"
	"neo4jpg/ui/console"
)

// QueryConfig holds the flags of the query command.
type QueryConfig struct {
	Connection ConnectionConfig
	Params     string
	Limit      int
	Pretty     bool
	Color      string
}

func RegisterQueryFlags(cmd *cobra.Command, cfg *QueryConfig) {
	RegisterConnectionFlags(cmd.Flags(), &cfg.Connection)
	cmd.Flags().StringVarP(&cfg.Params, "params", "p", "", `query parameters as a map literal, e.g. "{'name': 'Ann'}"`)
	cmd.Flags().IntVarP(&cfg.Limit, "limit", "n", 0, "stop after this many records (0 for all)")
	cmd.Flags().BoolVar(&cfg.Pretty, "pretty", false, "indent each record")
	cmd.Flags().StringVar(&cfg.Color, "color", "auto", `colorize pretty output ("auto", "always", "never")`)
}

func NewQueryCommand(programName string, cfg *QueryConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "query <cypher|->",
		Short: "run a Cypher query and print one JSON object per record",
		Example: fmt.Sprintf(`  %[1]s query 'MATCH (p:Person) RETURN p LIMIT 3'
  %[1]s query --server films --params "{'title': 'Heat'}" 'MATCH (m:Movie {title: $title}) RETURN m'
  echo 'RETURN 1 AS one' | %[1]s query -`, programName),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := readQuery(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runQuery(cmd, cfg, query)
		},
	}
}

func readQuery(arg string, stdin io.Reader) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read query from stdin: %w", err)
	}
	query := strings.TrimSpace(string(data))
	if query == "" {
		return "", fmt.Errorf("empty query on stdin")
	}
	return query, nil
}

func runQuery(cmd *cobra.Command, cfg *QueryConfig, query string) error {
	if err := cfg.Connection.Validate(); err != nil {
		return err
	}
	if cfg.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	colored, err := useColor(cfg.Color, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	exec, err := cfg.Connection.NewExecutor()
	if err != nil {
		return err
	}
	source, closeSource, err := cfg.Connection.OpenSource(ctx)
	if err != nil {
		return err
	}
	defer closeSource()

	printer := console.NewPrinter(cmd.OutOrStdout(), cfg.Pretty, colored)
	lines := output.StreamWithServer(ctx, exec, source, cfg.Connection.Server, query, cfg.Params, cfg.Connection.Overrides()...)
	truncated, err := printLines(printer, lines, cfg.Limit)
	if err != nil {
		return err
	}

	if cfg.Pretty {
		printer.Summary(truncated)
	}
	return nil
}

// printLines prints at most limit lines (all when limit is 0). Once limit
// lines are printed the next pull only reports truncation, even if it failed.
func printLines(printer *console.Printer, lines iter.Seq2[string, error], limit int) (bool, error) {
	for line, err := range lines {
		if limit > 0 && printer.Count() == limit {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		if err := printer.Print(line); err != nil {
			return false, err
		}
	}
	return false, nil
}

func useColor(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		f, ok := w.(*os.File)
		return ok && isatty.IsTerminal(f.Fd()), nil
	default:
		return false, fmt.Errorf("invalid --color %q", mode)
	}
}
