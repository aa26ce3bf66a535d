package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/blast-imager/internal/fmt6"
	"github.com/inodb/blast-imager/internal/store"
)

func newImportCmd() *cobra.Command {
	var (
		dbPath     string
		clearFirst bool
	)

	cmd := &cobra.Command{
		Use:   "import [flags] <fmt6-file>",
		Short: "Store a BLAST tabular report in a hit database",
		Long: `Import every hit of a BLAST+ -outfmt 6 report into a DuckDB database.

Reports covering several queries can be imported once and rendered one query
at a time with 'blast-imager render --db <path> --query <id>'.

Hits already stored for a query id that appears in the report are replaced,
so re-importing a report does not duplicate bars. Other queries are kept
unless --clear is given.`,
		Example: `  blast-imager import --db hits.duckdb all-queries.fmt6
  blast-imager import --db hits.duckdb --clear rerun.fmt6.gz`,
		Args: argsAtMost(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &usageError{cmd: cmd.CommandPath(), err: fmt.Errorf("input file argument required")}
			}
			if dbPath == "" {
				dbPath = viper.GetString("db")
			}
			if dbPath == "" {
				return &usageError{cmd: cmd.CommandPath(), err: fmt.Errorf("--db required")}
			}

			p, err := fmt6.NewParser(args[0])
			if err != nil {
				return err
			}
			defer p.Close()

			s, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			if clearFirst {
				if err := s.Clear(); err != nil {
					return fmt.Errorf("clear database: %w", err)
				}
			}

			stats, err := s.Import(p)
			if err != nil {
				return err
			}

			qs, err := s.Queries()
			if err != nil {
				return err
			}
			logger.Info("imported hits",
				zap.String("file", args[0]),
				zap.String("db", dbPath),
				zap.String("hsps", humanize.Comma(int64(stats.Hits))),
				zap.String("replaced", humanize.Comma(int64(stats.Replaced))),
				zap.Int("queries", len(qs)))

			out := cmd.OutOrStdout()
			for _, q := range qs {
				fmt.Fprintf(out, "%s\t%d\n", q.QueryID, q.Hits)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "database path (created if missing)")
	cmd.Flags().BoolVar(&clearFirst, "clear", false, "remove previously imported hits first")

	return cmd
}
