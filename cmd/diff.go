package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/anpconf/internal/config"
	"github.com/zjrosen/anpconf/internal/job"
	"github.com/zjrosen/anpconf/internal/presentation"
	"github.com/zjrosen/anpconf/internal/registry"
)

// ErrConfigsDiffer is returned by `diff --exit-code` when the inputs differ.
var ErrConfigsDiffer = errors.New("configurations differ")

var diffExitCode bool

var diffCmd = &cobra.Command{
	Use:   "diff A B",
	Short: "Compare two configurations",
	Long: `Compare two configurations line by line.

Each side is one of:
  - an exported registry (.xml, or .yaml written by "anpconf build -f yaml")
  - a job file, which is built first
  - a history id or id prefix, when history is enabled

Examples:
  anpconf diff muons.yaml muons-2012.yaml
  anpconf diff config.xml 3f2a9c1d
  anpconf diff muons.yaml 3f2a --exit-code`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := contextOf(cmd)
		a, err := loadRegistry(ctx, args[0])
		if err != nil {
			return err
		}
		b, err := loadRegistry(ctx, args[1])
		if err != nil {
			return err
		}

		lines := presentation.DiffRegistries(a, b)
		if err := writeDiff(cmd.OutOrStdout(), lines); err != nil {
			return err
		}
		if diffExitCode && presentation.HasChanges(lines) {
			return ErrConfigsDiffer
		}
		return nil
	},
}

func init() {
	diffCmd.Flags().BoolVar(&diffExitCode, "exit-code", false, "fail when the configurations differ")
	rootCmd.AddCommand(diffCmd)
}

func writeDiff(w io.Writer, lines []presentation.DiffLine) error {
	if !presentation.HasChanges(lines) {
		_, err := fmt.Fprintln(w, "No differences")
		return err
	}
	_, err := io.WriteString(w, presentation.RenderDiff(lines, plain))
	return err
}

// loadRegistry resolves a diff argument to a registry.
func loadRegistry(ctx context.Context, arg string) (*registry.Registry, error) {
	if _, err := os.Stat(arg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return loadHistoryRegistry(ctx, arg)
	}

	switch strings.ToLower(filepath.Ext(arg)) {
	case ".xml":
		return registry.ReadXMLFile(arg)
	case ".yaml", ".yml":
		return loadYAMLRegistry(ctx, arg)
	default:
		return nil, fmt.Errorf("%s: expected an .xml or .yaml file", arg)
	}
}

// loadYAMLRegistry builds arg as a job file, or reads it as an exported
// registry when it is not one.
func loadYAMLRegistry(ctx context.Context, path string) (*registry.Registry, error) {
	res, err := buildJob(ctx, path, nil)
	if err == nil {
		return res.Wrapper().RegistryConfig()
	}
	var typeErr *yaml.TypeError
	if !errors.Is(err, job.ErrInvalid) && !errors.As(err, &typeErr) {
		return nil, err
	}
	data, readErr := os.ReadFile(path) //nolint:gosec // user-supplied path
	if readErr != nil {
		return nil, readErr
	}
	reg, regErr := parse(data, config.FormatYAML)
	if regErr != nil {
		return nil, fmt.Errorf("%s is neither a job nor a registry: %w", path, err)
	}
	return reg, nil
}

func loadHistoryRegistry(ctx context.Context, id string) (*registry.Registry, error) {
	if !historyEnabled() {
		return nil, fmt.Errorf("%s: no such file (history is disabled)", id)
	}
	db, err := openHistory()
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	e, err := db.Builds().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	return parse([]byte(e.Config), e.Format)
}
