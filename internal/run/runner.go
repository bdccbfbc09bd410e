// Package run hands a configured algorithm tree to the event-processing
// engine. Module and Ntuple collect the top algorithm, histogram sources and
// input files, export them as one registry and forward the lifecycle calls
// to a Runner.
package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/zjrosen/anpconf/internal/log"
	"github.com/zjrosen/anpconf/internal/registry"
)

// Runner is the engine that consumes an exported registry.
type Runner interface {
	Config(ctx context.Context, reg *registry.Registry) error
	Init(ctx context.Context) error
	Exec(ctx context.Context) error
	Done(ctx context.Context) error
	Execute(ctx context.Context, path string) error
	AddInputFile(path string)
	ClearInputFiles()
}

var (
	ErrNoBinary       = errors.New("runner binary not configured")
	ErrNotConfigured  = errors.New("runner has no configuration")
	ErrNotInitialized = errors.New("runner is not initialized")
)

// ConfigFileName is the name of the registry file written by Init.
const ConfigFileName = "config.xml"

// ProcessRunner drives an external engine executable. Init writes the
// configuration as XML into a fresh work directory and Exec runs
// Binary Args... <config.xml>.
type ProcessRunner struct {
	Binary     string
	Args       []string
	WorkDir    string // parent of the per-run directory; empty means os.TempDir()
	KeepConfig bool
	Stdout     io.Writer
	Stderr     io.Writer

	reg    *registry.Registry
	inputs []string
	dir    string
	config string
}

var _ Runner = (*ProcessRunner)(nil)

// Config stores a copy of reg for Init.
func (p *ProcessRunner) Config(_ context.Context, reg *registry.Registry) error {
	if reg == nil {
		return ErrNotConfigured
	}
	p.reg = reg.Clone()
	return nil
}

// Init writes the stored configuration, with files added by AddInputFile
// merged into InputFiles.
func (p *ProcessRunner) Init(_ context.Context) error {
	if p.reg == nil {
		return ErrNotConfigured
	}

	reg := p.reg.Clone()
	if len(p.inputs) > 0 {
		inputs, ok := reg.GetRegistry("InputFiles")
		if !ok {
			inputs = registry.New()
			inputs.AllowNonUniqueKeys()
		}
		for _, f := range p.inputs {
			inputs.SetVal("File", f)
		}
		reg.SetRegistry("InputFiles", inputs)
	}

	parent := p.WorkDir
	if parent == "" {
		parent = os.TempDir()
	}
	dir := filepath.Join(parent, "anpconf-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating work directory: %w", err)
	}
	config := filepath.Join(dir, ConfigFileName)
	if err := reg.WriteXMLFile(config); err != nil {
		_ = os.RemoveAll(dir)
		return err
	}

	p.dir = dir
	p.config = config
	log.Debug(log.CatRun, "Runner initialized", "config", config, "inputs", len(p.inputs))
	return nil
}

// Exec runs the engine on the configuration written by Init.
func (p *ProcessRunner) Exec(ctx context.Context) error {
	if p.config == "" {
		return ErrNotInitialized
	}
	return p.run(ctx, p.config)
}

// Execute runs the engine on an existing configuration file.
func (p *ProcessRunner) Execute(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("configuration file: %w", err)
	}
	return p.run(ctx, path)
}

func (p *ProcessRunner) run(ctx context.Context, config string) error {
	if p.Binary == "" {
		return ErrNoBinary
	}
	args := append(append([]string(nil), p.Args...), config)

	//nolint:gosec // G204: binary and args come from the user's config
	cmd := exec.CommandContext(ctx, p.Binary, args...)
	cmd.Stdout = p.Stdout
	cmd.Stderr = p.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	log.Info(log.CatRun, "Run engine", "binary", p.Binary, "config", config)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", p.Binary, err)
	}
	return nil
}

// Done removes the work directory unless KeepConfig is set.
func (p *ProcessRunner) Done(_ context.Context) error {
	if p.dir == "" {
		return nil
	}
	if p.KeepConfig {
		log.Info(log.CatRun, "Keeping runner configuration", "config", p.config)
	} else if err := os.RemoveAll(p.dir); err != nil {
		return fmt.Errorf("removing work directory: %w", err)
	}
	p.dir = ""
	p.config = ""
	return nil
}

// ConfigPath returns the file written by the last Init, or "" after Done.
func (p *ProcessRunner) ConfigPath() string { return p.config }

func (p *ProcessRunner) AddInputFile(path string) {
	p.inputs = append(p.inputs, path)
}

func (p *ProcessRunner) ClearInputFiles() {
	p.inputs = nil
}
