// Package config provides configuration types, defaults, and persistence for anpconf.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/anpconf/internal/files"
	"github.com/zjrosen/anpconf/internal/log"
	"github.com/zjrosen/anpconf/internal/tracing"
)

// Config holds all anpconf settings.
type Config struct {
	Runner  RunnerConfig    `mapstructure:"runner"`
	Files   FilesConfig     `mapstructure:"files"`
	Log     LogConfig       `mapstructure:"log"`
	Output  OutputConfig    `mapstructure:"output"`
	Tracing TracingConfig   `mapstructure:"tracing"`
	History HistoryConfig   `mapstructure:"history"`
	Flags   map[string]bool `mapstructure:"flags"`
}

// RunnerConfig selects the engine executable `anpconf run` drives.
type RunnerConfig struct {
	// Binary is the engine executable. It receives the exported XML
	// configuration as its last argument.
	Binary string `mapstructure:"binary"`

	// Args are passed before the configuration path.
	Args []string `mapstructure:"args"`

	// WorkDir is where per-run directories are created.
	// Default: system temp directory
	WorkDir string `mapstructure:"work_dir"`

	// KeepConfig leaves the written configuration in place after the run.
	KeepConfig bool `mapstructure:"keep_config"`
}

// FilesConfig holds input file discovery settings.
type FilesConfig struct {
	// FileKey and DirKey are the default filters of `anpconf files`.
	FileKey string `mapstructure:"file_key"`
	DirKey  string `mapstructure:"dir_key"`

	// Listing commands for remote storage. "{path}" is replaced by the
	// directory being listed.
	Castor []string `mapstructure:"castor"`
	EOS    []string `mapstructure:"eos"`
	SRM    []string `mapstructure:"srm"`

	// ListingCacheTTL is how long remote listings are reused.
	// Default: 10m
	ListingCacheTTL time.Duration `mapstructure:"listing_cache_ttl"`

	// ListingCachePath persists listings between invocations.
	// Default: ~/.config/anpconf/cache/listings.yaml
	ListingCachePath string `mapstructure:"listing_cache_path"`
}

// Commands returns the listing commands with defaults for unset backends.
func (f FilesConfig) Commands() files.Commands {
	c := files.DefaultCommands()
	if len(f.Castor) > 0 {
		c.Castor = f.Castor
	}
	if len(f.EOS) > 0 {
		c.EOS = f.EOS
	}
	if len(f.SRM) > 0 {
		c.SRM = f.SRM
	}
	return c
}

// LogConfig controls the global logger.
type LogConfig struct {
	// Level is DEBUG, INFO, WARNING or ERROR.
	Level string `mapstructure:"level"`
	// File redirects log output; empty logs to stdout.
	File string `mapstructure:"file"`
	// Debug forces DEBUG level.
	Debug bool `mapstructure:"debug"`
}

// OutputConfig controls how `anpconf build` writes registries.
type OutputConfig struct {
	// Format is "xml", "yaml" or "text".
	Format string `mapstructure:"format"`
}

// TracingConfig holds distributed tracing configuration for runner calls.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/anpconf/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// 1.0 = all traces, 0.1 = 10% of traces
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// Tracing converts to the tracing package's configuration.
func (t TracingConfig) Tracing() tracing.Config {
	cfg := tracing.DefaultConfig()
	cfg.Enabled = t.Enabled
	if t.Exporter != "" {
		cfg.Exporter = t.Exporter
	}
	cfg.FilePath = t.FilePath
	if cfg.FilePath == "" {
		cfg.FilePath = DefaultTracesFilePath()
	}
	if t.OTLPEndpoint != "" {
		cfg.OTLPEndpoint = t.OTLPEndpoint
	}
	cfg.SampleRate = t.SampleRate
	return cfg
}

// HistoryConfig controls the build history database.
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Path is the SQLite file. Default: ~/.config/anpconf/history.db
	Path string `mapstructure:"path"`
}

// Output formats accepted by `anpconf build`.
const (
	FormatXML  = "xml"
	FormatYAML = "yaml"
	FormatText = "text"
)

// DefaultConfigDir returns ~/.config/anpconf or empty string if the home
// dir is unavailable.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "anpconf")
}

func underConfigDir(parts ...string) string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(append([]string{dir}, parts...)...)
}

// DefaultTracesFilePath returns the default path for trace file export.
func DefaultTracesFilePath() string { return underConfigDir("traces", "traces.jsonl") }

// DefaultHistoryPath returns the default build history database path.
func DefaultHistoryPath() string { return underConfigDir("history.db") }

// DefaultListingCachePath returns the default listing cache file.
func DefaultListingCachePath() string { return underConfigDir("cache", "listings.yaml") }

// ValidateRunner checks runner configuration for errors.
func ValidateRunner(r RunnerConfig) error {
	for i, a := range r.Args {
		if a == "" {
			return fmt.Errorf("runner.args[%d] must not be empty", i)
		}
	}
	return nil
}

// ValidateFiles checks file discovery configuration for errors.
func ValidateFiles(f FilesConfig) error {
	if f.ListingCacheTTL < 0 {
		return fmt.Errorf("files.listing_cache_ttl must not be negative, got %v", f.ListingCacheTTL)
	}
	for name, cmd := range map[string][]string{"castor": f.Castor, "eos": f.EOS, "srm": f.SRM} {
		if len(cmd) > 0 && cmd[0] == "" {
			return fmt.Errorf("files.%s must start with a command", name)
		}
	}
	return nil
}

// ValidateLog checks logging configuration for errors.
func ValidateLog(l LogConfig) error {
	if _, err := log.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// ValidateOutput checks output configuration for errors.
func ValidateOutput(o OutputConfig) error {
	switch o.Format {
	case "", FormatXML, FormatYAML, FormatText:
		return nil
	default:
		return fmt.Errorf("output.format must be \"xml\", \"yaml\", or \"text\", got %q", o.Format)
	}
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	// Validate SampleRate is in range [0.0, 1.0]
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
			// Valid
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate endpoint requirements when tracing is enabled
	if tracing.Enabled && tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}

	return nil
}

// Validate runs every section validator.
func (c Config) Validate() error {
	if err := ValidateRunner(c.Runner); err != nil {
		return err
	}
	if err := ValidateFiles(c.Files); err != nil {
		return err
	}
	if err := ValidateLog(c.Log); err != nil {
		return err
	}
	if err := ValidateOutput(c.Output); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// LogLevel returns the configured level, DEBUG when Debug is set.
func (c Config) LogLevel() log.Level {
	if c.Log.Debug {
		return log.LevelDebug
	}
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.LevelInfo
	}
	return lvl
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	cmds := files.DefaultCommands()
	return Config{
		Files: FilesConfig{
			Castor:           cmds.Castor,
			EOS:              cmds.EOS,
			SRM:              cmds.SRM,
			ListingCacheTTL:  10 * time.Minute,
			ListingCachePath: DefaultListingCachePath(),
		},
		Log: LogConfig{
			Level: "INFO",
		},
		Output: OutputConfig{
			Format: FormatXML,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    DefaultHistoryPath(),
		},
		Flags: map[string]bool{
			"history":       false,
			"listing-cache": true,
		},
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# anpconf Configuration

# Engine executable driven by "anpconf run" and "anpconf execute".
# It is invoked as: <binary> <args...> <config.xml>
runner:
  # binary: /opt/anp/bin/runModule
  args: []
  # work_dir: /scratch/anpconf   # Default: system temp directory
  keep_config: false             # Keep the written config.xml after the run

# Input file discovery
files:
  # file_key: '\.root$'          # Default file filter for "anpconf files"
  # dir_key: 'data'              # Default directory filter
  castor: [nsls, "{path}"]
  eos: [eos, ls, "{path}"]
  srm: [xrd, hn.at3f, dirlist, "{path}"]
  listing_cache_ttl: 10m
  # listing_cache_path: ~/.config/anpconf/cache/listings.yaml

# Logging
log:
  level: INFO                    # DEBUG, INFO, WARNING, ERROR
  # file: /tmp/anpconf.log       # Default: stderr
  debug: false

# Output of "anpconf build"
output:
  format: xml                    # xml, yaml, text

# Build history database
history:
  enabled: false
  # path: ~/.config/anpconf/history.db

# Feature flags
flags:
  history: false
  listing-cache: true

# Distributed tracing of runner calls
# tracing:
#   enabled: false
#   exporter: file               # none, file, stdout, otlp
#   file_path: ~/.config/anpconf/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
