package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/anpconf/internal/files"
	"github.com/zjrosen/anpconf/internal/log"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, FormatXML, cfg.Output.Format)
	assert.Equal(t, 10*time.Minute, cfg.Files.ListingCacheTTL)
	assert.Equal(t, files.DefaultCommands(), cfg.Files.Commands())
	assert.True(t, cfg.Flags["listing-cache"])
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, log.LevelInfo, cfg.LogLevel())
}

func TestValidateOutput(t *testing.T) {
	for _, f := range []string{"", "xml", "yaml", "text"} {
		require.NoError(t, ValidateOutput(OutputConfig{Format: f}), f)
	}
	err := ValidateOutput(OutputConfig{Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `got "json"`)
}

func TestValidateTracing(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TracingConfig
		wantErr string
	}{
		{"defaults", Defaults().Tracing, ""},
		{"sample rate too high", TracingConfig{SampleRate: 1.5}, "sample_rate"},
		{"sample rate negative", TracingConfig{SampleRate: -0.1}, "sample_rate"},
		{"bad exporter", TracingConfig{Exporter: "jaeger", SampleRate: 1}, "exporter"},
		{"otlp without endpoint", TracingConfig{Enabled: true, Exporter: "otlp", SampleRate: 1}, "otlp_endpoint"},
		{"otlp disabled without endpoint", TracingConfig{Exporter: "otlp", SampleRate: 1}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTracing(tt.cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateFilesAndRunner(t *testing.T) {
	require.Error(t, ValidateFiles(FilesConfig{ListingCacheTTL: -time.Second}))
	require.Error(t, ValidateFiles(FilesConfig{EOS: []string{"", "ls"}}))
	require.NoError(t, ValidateFiles(FilesConfig{EOS: []string{"xrdfs", "ls", "{path}"}}))

	require.Error(t, ValidateRunner(RunnerConfig{Args: []string{"-v", ""}}))
	require.NoError(t, ValidateRunner(RunnerConfig{Binary: "runModule", Args: []string{"-v"}}))
}

func TestValidateLogAndLevel(t *testing.T) {
	require.Error(t, ValidateLog(LogConfig{Level: "LOUD"}))

	cfg := Defaults()
	cfg.Log.Level = "WARNING"
	assert.Equal(t, log.LevelWarn, cfg.LogLevel())
	cfg.Log.Debug = true
	assert.Equal(t, log.LevelDebug, cfg.LogLevel())
}

func TestValidate_ReportsFirstSection(t *testing.T) {
	cfg := Defaults()
	cfg.Output.Format = "json"
	cfg.Tracing.SampleRate = 2
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.format")
}

func TestFilesConfig_CommandsOverride(t *testing.T) {
	f := FilesConfig{EOS: []string{"xrdfs", "eosatlas", "ls", "{path}"}}
	c := f.Commands()
	assert.Equal(t, []string{"xrdfs", "eosatlas", "ls", "{path}"}, c.EOS)
	assert.Equal(t, files.DefaultCommands().Castor, c.Castor)
}

func TestTracingConfig_Tracing(t *testing.T) {
	cfg := TracingConfig{Enabled: true, Exporter: "stdout", SampleRate: 0.5}.Tracing()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "stdout", cfg.Exporter)
	assert.Equal(t, 0.5, cfg.SampleRate)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.Equal(t, DefaultTracesFilePath(), cfg.FilePath)
}

func TestWriteDefaultConfig_LoadsWithViper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	require.NoError(t, cfg.Validate())
	assert.Equal(t, FormatXML, cfg.Output.Format)
	assert.Equal(t, 10*time.Minute, cfg.Files.ListingCacheTTL)
	assert.Equal(t, []string{"eos", "ls", "{path}"}, cfg.Files.EOS)
	assert.Equal(t, "INFO", cfg.Log.Level)
	assert.True(t, cfg.Flags["listing-cache"])
	assert.False(t, cfg.Runner.KeepConfig)
}

func TestWriteDefaultConfig_BadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	require.Error(t, WriteDefaultConfig(filepath.Join(file, "config.yaml")))
}
