package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/anpconf/internal/log"
	"github.com/zjrosen/anpconf/internal/watcher"
)

var (
	buildOutput string
	buildFormat string
	buildWatch  bool
)

var buildCmd = &cobra.Command{
	Use:   "build JOB",
	Short: "Export the configuration registry a job file describes",
	Long: `Build the run wrapper described by a YAML job file and export its
configuration registry.

The format defaults to output.format from the config file, or is taken from
the extension of --output (.xml, .yaml, .txt). With --watch the job file is
rebuilt every time it is saved.

Examples:
  # Print the XML registry
  anpconf build muons.yaml

  # Write YAML next to the job
  anpconf build muons.yaml -o muons.config.yaml

  # Rebuild on every save
  anpconf build muons.yaml -o config.xml --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "write the registry to this file instead of stdout")
	buildCmd.Flags().StringVarP(&buildFormat, "format", "f", "", "output format: xml, yaml or text")
	buildCmd.Flags().BoolVarP(&buildWatch, "watch", "w", false, "rebuild when the job file changes")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	path := args[0]
	format := buildFormat
	if format == "" {
		format = formatForPath(buildOutput, cfg.Output.Format)
	}

	ctx := contextOf(cmd)
	if err := buildOnce(ctx, path, format, cmd.OutOrStdout()); err != nil {
		if !buildWatch {
			return err
		}
		log.ErrorErr(log.CatJob, "Build failed", err, "path", path)
	}
	if !buildWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchJob(ctx, path, func() {
		if err := buildOnce(ctx, path, format, cmd.OutOrStdout()); err != nil {
			log.ErrorErr(log.CatJob, "Build failed", err, "path", path)
		}
	})
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func buildOnce(ctx context.Context, path, format string, stdout io.Writer) error {
	res, err := buildJob(ctx, path, nil)
	if err != nil {
		return err
	}
	reg, err := res.Wrapper().RegistryConfig()
	if err != nil {
		return err
	}
	text, err := render(reg, format)
	if err != nil {
		return err
	}

	if buildOutput == "" {
		if _, err := stdout.Write(text); err != nil {
			return err
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(buildOutput), 0o750); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		if err := os.WriteFile(buildOutput, text, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", buildOutput, err)
		}
		log.Info(log.CatJob, "Wrote configuration", "path", buildOutput, "format", format)
	}

	recordBuild(ctx, path, res, format, text)
	return nil
}

// watchJob calls rebuild after every debounced change of path until ctx
// is done.
func watchJob(ctx context.Context, path string, rebuild func()) error {
	w, err := watcher.New(watcher.DefaultConfig(path))
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()
	changes, err := w.Start()
	if err != nil {
		return err
	}

	log.Info(log.CatWatcher, "Watching job file", "path", path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			log.Info(log.CatWatcher, "Job file changed, rebuilding", "path", path)
			rebuild()
		}
	}
}
