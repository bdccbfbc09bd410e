package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/anpconf/internal/config"
	"github.com/zjrosen/anpconf/internal/flags"
	"github.com/zjrosen/anpconf/internal/log"
	"github.com/zjrosen/anpconf/internal/tracing"
)

// localConfigPath is the project-local config file checked before the
// user config.
const localConfigPath = ".anpconf/config.yaml"

var (
	version  = "dev"
	cfgFile  string
	logFile  string
	debug    bool
	plain    bool
	cfg      config.Config
	features *flags.Registry
	provider *tracing.Provider
	cleanups []func()
	settings *viper.Viper
)

var rootCmd = &cobra.Command{
	Use:   "anpconf",
	Short: "Build configuration registries for the ntuple analysis engine",
	Long: `anpconf assembles configuration registries for the ntuple analysis engine
from declarative YAML job files, exports them as XML, YAML or text, and drives
the engine through its Config, Init, Exec and Done steps.

Configuration is read from --config, .anpconf/config.yaml or
~/.config/anpconf/config.yaml. Environment variables prefixed with ANPCONF_
override file values (ANPCONF_LOG_LEVEL=DEBUG).`,
	Version:            version,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .anpconf/config.yaml, then ~/.config/anpconf/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to this file instead of stderr")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false,
		"disable colored output")
}

func setDefaults(v *viper.Viper) {
	defaults := config.Defaults()
	v.SetDefault("files.castor", defaults.Files.Castor)
	v.SetDefault("files.eos", defaults.Files.EOS)
	v.SetDefault("files.srm", defaults.Files.SRM)
	v.SetDefault("files.listing_cache_ttl", defaults.Files.ListingCacheTTL)
	v.SetDefault("files.listing_cache_path", defaults.Files.ListingCachePath)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	v.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	v.SetDefault("history.enabled", defaults.History.Enabled)
	v.SetDefault("history.path", defaults.History.Path)
	v.SetDefault("flags", defaults.Flags)
}

// loadConfig reads the config file into cfg. A missing file is not an
// error; the defaults apply.
func loadConfig(cmd *cobra.Command) error {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("ANPCONF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlag("log.file", cmd.Flags().Lookup("log-file"))
	_ = v.BindPFlag("log.debug", cmd.Flags().Lookup("debug"))

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .anpconf/config.yaml (current directory)
		// 2. ~/.config/anpconf/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			v.SetConfigFile(localConfigPath)
		} else if dir := config.DefaultConfigDir(); dir != "" {
			v.AddConfigPath(dir)
			v.SetConfigName("config")
			v.SetConfigType("yaml")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(cfgFile == "" && errors.Is(err, os.ErrNotExist)) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	settings = v

	cfg = config.Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return cfg.Validate()
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := loadConfig(cmd); err != nil {
		return err
	}

	log.SetOutput(cmd.ErrOrStderr())
	log.SetMinLevel(cfg.LogLevel())
	if cfg.Log.File != "" {
		closeLog, err := log.InitShared(cfg.Log.File, "anpconf")
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		cleanups = append(cleanups, closeLog)
	}
	log.Debug(log.CatConfig, "Loaded config", "file", settings.ConfigFileUsed())

	features = flags.New(cfg.Flags)

	tc := cfg.Tracing.Tracing()
	if tc.Enabled && tc.Exporter == "file" && tc.FilePath == "" {
		tc.FilePath = config.DefaultTracesFilePath()
	}
	p, err := tracing.NewProvider(tc)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	provider = p
	if p.Enabled() {
		log.Debug(log.CatTrace, "Tracing enabled", "exporter", tc.Exporter)
	}
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	var errs []error
	if err := saveListingCache(); err != nil {
		errs = append(errs, err)
	}
	if provider != nil {
		if err := provider.Shutdown(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("flushing traces: %w", err))
		}
	}
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
	return errors.Join(errs...)
}

// defaultWriteConfigPath is where `config init` and `config set` write when
// no config file was loaded.
func defaultWriteConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if settings != nil && settings.ConfigFileUsed() != "" {
		return settings.ConfigFileUsed()
	}
	return filepath.FromSlash(localConfigPath)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
