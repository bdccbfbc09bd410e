package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/anpconf/internal/config"
	"github.com/zjrosen/anpconf/internal/files"
	"github.com/zjrosen/anpconf/internal/flags"
	"github.com/zjrosen/anpconf/internal/history"
	"github.com/zjrosen/anpconf/internal/job"
	"github.com/zjrosen/anpconf/internal/log"
	"github.com/zjrosen/anpconf/internal/registry"
	"github.com/zjrosen/anpconf/internal/run"
)

var listingCache *files.ListingCache

// newSearcher builds the remote file searcher from the files config. The
// listing cache is loaded on first use and saved when the command ends.
func newSearcher() *files.Searcher {
	opts := []files.SearcherOption{files.WithCommands(cfg.Files.Commands())}
	if features.Enabled(flags.FlagListingCache) && cfg.Files.ListingCacheTTL > 0 {
		if listingCache == nil {
			c, err := files.LoadListingCache(cfg.Files.ListingCachePath)
			if err != nil {
				log.Warn(log.CatCache, "Ignoring unreadable listing cache", "path", cfg.Files.ListingCachePath, "error", err)
				c = files.NewListingCache()
			}
			listingCache = c
		}
		opts = append(opts, files.WithCache(listingCache, cfg.Files.ListingCacheTTL))
	}
	return files.NewSearcher(opts...)
}

func saveListingCache() error {
	if listingCache == nil || cfg.Files.ListingCachePath == "" {
		return nil
	}
	defer func() { listingCache = nil }()
	if err := files.SaveListingCache(cfg.Files.ListingCachePath, listingCache); err != nil {
		return err
	}
	log.Debug(log.CatCache, "Saved listing cache", "path", cfg.Files.ListingCachePath, "entries", listingCache.Len())
	return nil
}

// newRunner returns the engine runner described by the runner config.
func newRunner() *run.ProcessRunner {
	return &run.ProcessRunner{
		Binary:     cfg.Runner.Binary,
		Args:       cfg.Runner.Args,
		WorkDir:    cfg.Runner.WorkDir,
		KeepConfig: cfg.Runner.KeepConfig,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
}

func tracer() trace.Tracer {
	if provider == nil {
		return nil
	}
	return provider.Tracer()
}

// buildJob loads the job file at path and builds its wrapper.
func buildJob(ctx context.Context, path string, runner run.Runner) (*job.Result, error) {
	f, err := job.Load(path)
	if err != nil {
		return nil, err
	}
	return job.Build(ctx, f, job.Options{
		Runner:   runner,
		Tracer:   tracer(),
		Searcher: newSearcher(),
		Path:     path,
	})
}

// render encodes reg in one of the output formats.
func render(reg *registry.Registry, format string) ([]byte, error) {
	switch format {
	case "", config.FormatXML:
		var buf bytes.Buffer
		if err := reg.WriteXML(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case config.FormatYAML:
		return reg.MarshalYAMLBytes()
	case config.FormatText:
		return []byte(reg.String()), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// parse decodes text written by render. Text dumps cannot be read back.
func parse(data []byte, format string) (*registry.Registry, error) {
	switch format {
	case "", config.FormatXML:
		return registry.ReadXML(bytes.NewReader(data))
	case config.FormatYAML:
		return registry.UnmarshalYAMLBytes(data)
	default:
		return nil, fmt.Errorf("cannot read a registry from %q output", format)
	}
}

// formatForPath picks the output format from a file extension.
func formatForPath(path, fallback string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return config.FormatXML
	case ".yaml", ".yml":
		return config.FormatYAML
	case ".txt":
		return config.FormatText
	}
	return fallback
}

func historyEnabled() bool {
	return cfg.History.Enabled || features.Enabled(flags.FlagHistory)
}

func openHistory() (*history.DB, error) {
	path := cfg.History.Path
	if path == "" {
		path = config.DefaultHistoryPath()
	}
	return history.NewDB(path)
}

// recordBuild stores an exported configuration in the history database
// when history is enabled. Failures are logged, not returned.
func recordBuild(ctx context.Context, jobPath string, res *job.Result, format string, text []byte) {
	if !historyEnabled() {
		return
	}
	db, err := openHistory()
	if err != nil {
		log.ErrorErr(log.CatHistory, "Failed to open history", err)
		return
	}
	defer func() { _ = db.Close() }()

	w := res.Wrapper()
	entry := history.Entry{
		Job:    jobPath,
		Kind:   res.Kind,
		Format: format,
		Config: string(text),
		Files:  w.StoredFiles(),
	}
	if abs, err := filepath.Abs(jobPath); err == nil {
		entry.Job = abs
	}
	if top := w.TopAlg(); top != nil {
		entry.TopAlg = top.Name()
	}
	stored, err := db.Builds().Record(ctx, entry)
	if err != nil {
		log.ErrorErr(log.CatHistory, "Failed to record build", err)
		return
	}
	log.Info(log.CatHistory, "Recorded build", "id", stored.ID)
}
