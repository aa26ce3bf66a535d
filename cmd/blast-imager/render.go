package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/blast-imager/internal/fmt6"
	"github.com/inodb/blast-imager/internal/layout"
	"github.com/inodb/blast-imager/internal/palette"
	"github.com/inodb/blast-imager/internal/render"
	"github.com/inodb/blast-imager/internal/store"
)

// sourceOptions selects where hits are read from: a report file or a
// query stored in a hit database.
type sourceOptions struct {
	dbPath            string
	queryID           string
	allowMixedQueries bool
}

func (o *sourceOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.dbPath, "db", "", "read hits from a database created by 'blast-imager import'")
	cmd.Flags().StringVarP(&o.queryID, "query", "q", "", "query id to read from --db (default: the only stored query)")
	cmd.Flags().BoolVar(&o.allowMixedQueries, "allow-mixed-queries", false, "pool hits of several query ids into one diagram instead of failing")
}

// load returns the alignment set named by args or the database flags, and
// a name for it usable in output paths.
func (o *sourceOptions) load(cmd *cobra.Command, args []string) (*fmt6.AlignmentSet, string, error) {
	if len(args) == 1 {
		path := args[0]
		set, err := fmt6.ParseFile(path, fmt6.Options{
			AllowMixedQueries: o.allowMixedQueries,
			Logger:            logger,
		})
		if err != nil {
			return nil, "", err
		}
		logger.Info("parsed report",
			zap.String("file", path),
			zap.String("query", set.QueryID),
			zap.String("hsps", humanize.Comma(int64(set.HitCount()))),
			zap.Int("subjects", set.SubjectCount()))
		return set, path, nil
	}

	dbPath := o.dbPath
	if dbPath == "" {
		dbPath = viper.GetString("db")
	}
	if dbPath == "" {
		return nil, "", &usageError{cmd: cmd.CommandPath(), err: fmt.Errorf("input file argument or --db required")}
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return nil, "", err
	}
	defer s.Close()

	queryID := o.queryID
	if queryID == "" {
		qs, err := s.Queries()
		if err != nil {
			return nil, "", err
		}
		if len(qs) != 1 {
			return nil, "", &usageError{cmd: cmd.CommandPath(),
				err: fmt.Errorf("database %s holds %d queries; choose one with --query", dbPath, len(qs))}
		}
		queryID = qs[0].QueryID
	}

	set, err := s.LoadAlignmentSet(queryID)
	if err != nil {
		return nil, "", err
	}
	logger.Info("loaded query from database",
		zap.String("db", dbPath),
		zap.String("query", queryID),
		zap.String("hsps", humanize.Comma(int64(set.HitCount()))))
	return set, safeName(queryID) + ".fmt6", nil
}

func newRenderCmd() *cobra.Command {
	var (
		src         sourceOptions
		outputFile  string
		outdir      string
		besideInput bool
		layoutFile  string
		paletteName string
	)

	cmd := &cobra.Command{
		Use:   "render [flags] <fmt6-file>",
		Short: "Render a BLAST tabular report as a PNG diagram",
		Long: `Render the hits of one query as a PNG alignment diagram.

The input is a BLAST+ -outfmt 6 report (optionally gzipped, '-' for stdin)
with the standard 12 columns. The diagram is written to <stem>-imager.png in
the current directory unless --output, --outdir or --beside-input is given.`,
		Example: `  blast-imager render hits.fmt6
  blast-imager render --beside-input results/hits.fmt6.gz
  blast-imager render --layout wide.toml -o diagram.png hits.fmt6
  blast-imager render --palette heat hits.fmt6
  blast-imager render --db hits.duckdb --query contig_12`,
		Args: argsAtMost(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outdir == "" {
				outdir = viper.GetString("outdir")
			}
			if layoutFile == "" {
				layoutFile = viper.GetString("layout")
			}
			if paletteName == "" {
				paletteName = viper.GetString("palette")
			}

			pal, err := palette.Named(paletteName)
			if err != nil {
				return &usageError{cmd: cmd.CommandPath(), err: err}
			}

			cfg := layout.DefaultConfig()
			if layoutFile != "" {
				if cfg, err = layout.LoadConfigFile(layoutFile); err != nil {
					return err
				}
				logger.Debug("loaded layout", zap.String("file", layoutFile))
			}

			set, name, err := src.load(cmd, args)
			if err != nil {
				return err
			}

			out := outputFile
			if out == "" {
				out = OutputPath(name, outdir, besideInput)
			}

			composer := render.NewComposer(cfg, pal)
			composer.SetLogger(logger)

			res, err := composer.Render(set, out)
			if err != nil {
				return err
			}

			if set.Empty() {
				logger.Warn("no hits found; wrote header and legend only", zap.String("output", out))
			}
			if res.Clamped > 0 {
				logger.Warn("identities outside the palette range were clamped", zap.Int("hsps", res.Clamped))
			}
			logger.Info("diagram written",
				zap.String("output", out),
				zap.Int("width", res.Geometry.Width),
				zap.Int("height", res.Geometry.Height),
				zap.Int("max_depth", res.MaxDepth))
			fmt.Fprintln(cmd.OutOrStdout(), out, "generated.")
			return nil
		},
	}

	src.addFlags(cmd)
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output PNG path (overrides --outdir)")
	cmd.Flags().StringVarP(&outdir, "outdir", "d", "", "directory for the output PNG")
	cmd.Flags().BoolVar(&besideInput, "beside-input", false, "write the PNG next to the input file")
	cmd.Flags().StringVar(&layoutFile, "layout", "", "TOML file overriding layout constants")
	cmd.Flags().StringVar(&paletteName, "palette", "", fmt.Sprintf("identity color scheme, one of %v (default \"default\")", palette.Names()))

	return cmd
}
