package run

import (
	"context"
	"fmt"

	"github.com/zjrosen/anpconf/internal/registry"
)

// Module configures an engine run module: the exported registry names the
// top algorithm through AlgType and AlgName.
type Module struct {
	wrapper
}

// NewModule returns a Module forwarding to runner.
func NewModule(runner Runner, opts ...Option) *Module {
	return &Module{wrapper: newWrapper("RunModule", runner, opts)}
}

// RegistryConfig exports parameters, AlgType, AlgName, HistMan, the top
// algorithm under its own name and InputFiles, in that order.
func (m *Module) RegistryConfig() (*registry.Registry, error) {
	if m.top == nil {
		m.log.Warn("Missing top algorithm")
		return nil, ErrNoTopAlg
	}

	reg := registry.New()
	reg.Merge(m.params)
	reg.SetVal("AlgType", m.top.Type())
	reg.SetVal("AlgName", m.top.Name())
	reg.SetRegistry(KeyHistMan, m.hist)

	top, err := m.top.ConfigRegistry()
	if err != nil {
		return nil, fmt.Errorf("exporting %s: %w", m.top.Name(), err)
	}
	reg.SetRegistry(m.top.Name(), top)
	reg.SetRegistry(KeyInputFiles, m.inputFiles())
	return reg, nil
}

// Config exports the module and hands the registry to the runner.
func (m *Module) Config(ctx context.Context) error {
	reg, err := m.RegistryConfig()
	if err != nil {
		return err
	}
	return m.config(ctx, reg)
}

// ConfigWith hands reg to the runner instead of the module's own export.
func (m *Module) ConfigWith(ctx context.Context, reg *registry.Registry) error {
	if reg == nil {
		return m.Config(ctx)
	}
	return m.config(ctx, reg)
}

// AddInputFile passes path straight to the runner.
func (m *Module) AddInputFile(path string) {
	m.runner.AddInputFile(path)
}

// ClearInputFiles clears the files added with AddInputFile.
func (m *Module) ClearInputFiles() {
	m.runner.ClearInputFiles()
}

// AddInputDir passes every file found in target to the runner.
func (m *Module) AddInputDir(ctx context.Context, target string, keys []string) int {
	found := m.searcher.SearchInputDir(ctx, target, keys, "")
	for _, f := range found {
		m.runner.AddInputFile(f)
	}
	return len(found)
}
