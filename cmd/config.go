package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/anpconf/internal/config"
	"github.com/zjrosen/anpconf/internal/flags"
)

var (
	configInitForce bool
	configInitPath  string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the anpconf configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := configInitPath
		if path == "" {
			path = defaultWriteConfigPath()
		}
		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return err
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a config value",
	Long: `Set a dotted key in the config file. VALUE is read as YAML, so numbers,
booleans, durations and [lists] keep their types.

Examples:
  anpconf config set runner.binary /opt/anp/bin/runModule
  anpconf config set files.listing_cache_ttl 30m
  anpconf config set runner.args '[-q, --batch]'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := defaultWriteConfigPath()
		if err := config.SetValue(path, args[0], args[1]); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[0], path)
		return err
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(settings.AllSettings()); err != nil {
			return err
		}
		return enc.Close()
	},
}

var configFlagCmd = &cobra.Command{
	Use:   "flag NAME [on|off]",
	Short: "Show or toggle a feature flag",
	Long: `Without a value, print whether the flag is enabled. With one, store it in
the flags section of the config file.

Known flags:
` + knownFlagsHelp(),
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if _, ok := flags.Lookup(name); !ok {
			return fmt.Errorf("unknown flag %q", name)
		}
		if len(args) == 1 {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), onOff(features.Enabled(name)))
			return err
		}
		on, err := parseOnOff(args[1])
		if err != nil {
			return err
		}
		all := features.All()
		all[name] = on
		path := defaultWriteConfigPath()
		if err := config.SaveFlags(path, all); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", name, onOff(on))
		return err
	},
}

func knownFlagsHelp() string {
	var sb strings.Builder
	for _, f := range flags.Known() {
		fmt.Fprintf(&sb, "  %-15s %s (default %s)\n", f.Name, f.Usage, onOff(f.Default))
	}
	return sb.String()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.New("flag value must be on or off")
	}
	return b, nil
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")
	configInitCmd.Flags().StringVar(&configInitPath, "path", "", "file to write (default: the loaded config or .anpconf/config.yaml)")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configFlagCmd)
	rootCmd.AddCommand(configCmd)
}
