package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/inodb/blast-imager/internal/summary"
)

func newSummaryCmd() *cobra.Command {
	var (
		src        sourceOptions
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "summary [flags] <fmt6-file>",
		Short: "Print per-subject HSP statistics",
		Long: `Print one tab-delimited row per subject: HSP count, aligned query length,
percent identity statistics, best bit score and strands.`,
		Example: `  blast-imager summary hits.fmt6
  blast-imager summary --db hits.duckdb --query contig_12 -o contig_12.tsv`,
		Args: argsAtMost(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, _, err := src.load(cmd, args)
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if outputFile != "" {
				f, err := os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("creating output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			return summary.NewTabWriter(out, set.QueryID).WriteAll(summary.Summarize(set))
		},
	}

	src.addFlags(cmd)
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")

	return cmd
}
