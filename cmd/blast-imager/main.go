// Package main provides the blast-imager command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// configName is the config file looked up in the home directory.
const configName = ".blast-imager"

var logger = zap.NewNop()

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var uerr *usageError
		if errors.As(err, &uerr) {
			fmt.Fprintf(os.Stderr, "Run '%s --help' for usage.\n", uerr.cmd)
			return ExitUsage
		}
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Hint: Check that the file path is correct\n")
		}
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "blast-imager",
		Short: "Draw BLAST tabular hits as an alignment diagram",
		Long: `blast-imager draws the HSPs of a BLAST+ -outfmt 6 report as a PNG diagram:
the query is a horizontal line, each subject's HSPs are bars placed by query
coordinates and colored by percent identity, and a dot plot above the rows
shows coverage depth.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cfgFile); err != nil {
				return err
			}
			l, err := newLogger(verbose)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.blast-imager.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newSummaryCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig reads the config file and environment. A missing default
// config file is not an error.
func initConfig(cfgFile string) error {
	viper.SetEnvPrefix("BLAST_IMAGER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	viper.SetDefault("log.level", "info")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// newLogger builds a console logger on stderr. Levels are colored when
// stderr is a terminal. An unparsable log.level falls back to info with a
// warning so that 'config set' can still repair it.
func newLogger(verbose bool) (*zap.Logger, error) {
	raw := viper.GetString("log.level")
	level, levelErr := zapcore.ParseLevel(raw)
	if levelErr != nil {
		level = zapcore.InfoLevel
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	cfg.EncoderConfig.TimeKey = ""
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if isatty.IsTerminal(os.Stderr.Fd()) {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if levelErr != nil {
		l.Warn("invalid log.level, using info", zap.String("value", raw))
	}
	return l, nil
}

// usageError marks errors caused by bad command-line arguments.
type usageError struct {
	cmd string
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

// argsAtMost wraps cobra.MaximumNArgs so argument errors exit with ExitUsage.
func argsAtMost(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MaximumNArgs(n)(cmd, args); err != nil {
			return &usageError{cmd: cmd.CommandPath(), err: err}
		}
		return nil
	}
}

// OutputPath names the diagram for an input report: "<stem>-imager.png" in
// outdir if given, next to the input if besideInput is set, and in the
// working directory otherwise.
func OutputPath(input, outdir string, besideInput bool) string {
	base := filepath.Base(input)
	if input == "-" || input == "" {
		base = "stdin"
	}
	base = strings.TrimSuffix(base, ".gz")
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	name := stem + "-imager.png"

	switch {
	case outdir != "":
		return filepath.Join(outdir, name)
	case besideInput && input != "-":
		return filepath.Join(filepath.Dir(input), name)
	}
	return name
}

// safeName makes a query id usable as a file name stem.
func safeName(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '|', '*', '?', '"', '<', '>', ' ':
			return '_'
		}
		return r
	}, id)
}
