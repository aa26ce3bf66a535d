package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/inodb/blast-imager/internal/layout"
	"github.com/inodb/blast-imager/internal/palette"
)

// configKeys are the settable keys. A non-nil check validates the value
// before it is written.
var configKeys = map[string]func(value string) error{
	"outdir": nil,
	"db":     nil,
	"layout": func(v string) error {
		_, err := layout.LoadConfigFile(v)
		return err
	},
	"palette": func(v string) error {
		_, err := palette.Named(v)
		return err
	},
	"log.level": func(v string) error {
		_, err := zapcore.ParseLevel(v)
		return err
	},
}

func configKeyNames() []string {
	names := make([]string, 0, len(configKeys))
	for k := range configKeys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage blast-imager configuration",
		Long: `Show, get, or set configuration values. Config is stored in ~/.blast-imager.yaml.

Keys:
  outdir     default directory for rendered diagrams
  layout     TOML layout file applied to every render
  palette    identity color scheme (default, heat)
  db         hit database used when no input file is given
  log.level  debug, info, warn or error`,
		Example: `  blast-imager config                       # show all config
  blast-imager config set outdir ~/diagrams  # default output directory
  blast-imager config set palette heat       # color scheme
  blast-imager config get layout             # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd, args[0])
		},
	}
}

func runConfigShow(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Fprintln(out, "# No configuration set. Config file: ~/.blast-imager.yaml")
		return nil
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(out, string(data))
	return nil
}

func runConfigSet(cmd *cobra.Command, key, value string) error {
	check, ok := configKeys[key]
	if !ok {
		return &usageError{cmd: cmd.CommandPath(),
			err: fmt.Errorf("unknown config key %q (choose from %v)", key, configKeyNames())}
	}
	if check != nil {
		if err := check(value); err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
	}

	viper.Set(key, value)

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, configName+".yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(cmd *cobra.Command, key string) error {
	if !viper.IsSet(key) {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), viper.Get(key))
	return nil
}
