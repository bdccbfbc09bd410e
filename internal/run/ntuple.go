package run

import (
	"context"
	"fmt"

	"github.com/zjrosen/anpconf/internal/alg"
	"github.com/zjrosen/anpconf/internal/registry"
)

// TypeReadNtuple is the AlgType an Ntuple exports for itself.
const TypeReadNtuple = "ReadNtuple"

// Ntuple configures an ntuple reader. It exports itself as AlgType
// ReadNtuple and names the top algorithm through SubAlgType and SubAlgName.
type Ntuple struct {
	wrapper
}

// NewNtuple returns an Ntuple named name forwarding to runner.
func NewNtuple(name string, runner Runner, opts ...Option) (*Ntuple, error) {
	n := &Ntuple{wrapper: newWrapper(TypeReadNtuple, runner, opts)}
	if err := n.SetPar("AlgName", alg.String(name)); err != nil {
		return nil, err
	}
	if err := n.SetPar("AlgType", alg.String(TypeReadNtuple)); err != nil {
		return nil, err
	}
	return n, nil
}

// RegistryConfig exports parameters, then SubAlgType, SubAlgName and the top
// algorithm when one is attached, then HistMan and InputFiles.
func (n *Ntuple) RegistryConfig() (*registry.Registry, error) {
	reg := registry.New()
	reg.Merge(n.params)

	if n.top != nil {
		reg.SetVal("SubAlgType", n.top.Type())
		reg.SetVal("SubAlgName", n.top.Name())
		top, err := n.top.ConfigRegistry()
		if err != nil {
			return nil, fmt.Errorf("exporting %s: %w", n.top.Name(), err)
		}
		reg.SetRegistry(n.top.Name(), top)
	} else {
		n.log.Warn("Missing top algorithm")
	}

	reg.SetRegistry(KeyHistMan, n.hist)
	reg.SetRegistry(KeyInputFiles, n.inputFiles())
	return reg, nil
}

// ExecuteRegistry exports the ntuple and runs the full Config, Init, Exec,
// Done cycle.
func (n *Ntuple) ExecuteRegistry(ctx context.Context) error {
	reg, err := n.RegistryConfig()
	if err != nil {
		return err
	}
	if err := n.config(ctx, reg); err != nil {
		return err
	}
	if err := n.Init(ctx); err != nil {
		return err
	}
	if err := n.Exec(ctx); err != nil {
		_ = n.Done(ctx)
		return err
	}
	return n.Done(ctx)
}
