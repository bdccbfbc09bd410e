package job

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/anpconf/internal/alg"
	"github.com/zjrosen/anpconf/internal/cut"
	"github.com/zjrosen/anpconf/internal/files"
	"github.com/zjrosen/anpconf/internal/log"
	"github.com/zjrosen/anpconf/internal/registry"
	"github.com/zjrosen/anpconf/internal/run"
	"github.com/zjrosen/anpconf/internal/tracing"
)

// ErrSelectKey is returned when a select key entry is rejected.
var ErrSelectKey = errors.New("select key rejected")

// Wrapper is the part of run.Module and run.Ntuple a built job exposes.
type Wrapper interface {
	Name() string
	RegistryConfig() (*registry.Registry, error)
	TopAlg() *alg.AlgConfig
	StoredFiles() []string
	HistFiles() []string
	Print()
}

// CutList is a cut list attached to an algorithm.
type CutList struct {
	Alg   string
	Key   string
	Items []*cut.Item
}

// Result is a built job.
type Result struct {
	Kind   string
	Module *run.Module
	Ntuple *run.Ntuple
	Cuts   []CutList
}

// Options configures Build.
type Options struct {
	Runner   run.Runner
	Tracer   trace.Tracer
	Searcher *files.Searcher
	// Path is recorded on the build span.
	Path string
}

// Wrapper returns the built module or ntuple.
func (r *Result) Wrapper() Wrapper {
	if r.Ntuple != nil {
		return r.Ntuple
	}
	return r.Module
}

// AllCuts returns the items of every cut list in build order.
func (r *Result) AllCuts() []*cut.Item {
	var out []*cut.Item
	for _, l := range r.Cuts {
		out = append(out, l.Items...)
	}
	return out
}

// Run exports the registry and drives the runner through Config, Init,
// Exec and Done. Done runs even when Exec fails.
func (r *Result) Run(ctx context.Context) error {
	if r.Ntuple != nil {
		return r.Ntuple.ExecuteRegistry(ctx)
	}
	m := r.Module
	if err := m.Config(ctx); err != nil {
		return err
	}
	if err := m.Init(ctx); err != nil {
		return err
	}
	if err := m.Exec(ctx); err != nil {
		_ = m.Done(ctx)
		return err
	}
	return m.Done(ctx)
}

// wrapperSetup is the configuration surface shared by both wrapper kinds.
type wrapperSetup interface {
	SetPar(key string, v alg.Value) error
	SetGlobalPar(key string, v alg.Value) error
	AddTopAlg(name string, algs alg.Algs, printAlgs bool) bool
	TopAlg() *alg.AlgConfig
	AddHistFile(path string)
	StoreInputFile(paths ...string)
	StoreInputDir(ctx context.Context, target string, keys []string, option string) int
	StoreRecursiveDir(target, key string) int
	StoreLocalFiles(paths []string, f files.Filter) (int, error)
}

// Build creates the wrapper f describes. Input directories are searched
// while building, so the stored file list reflects the file system at the
// time of the call.
func Build(ctx context.Context, f *File, opts Options) (res *Result, err error) {
	ctx, span := tracing.Start(ctx, opts.Tracer, tracing.SpanBuild,
		attribute.String(tracing.AttrJobPath, opts.Path),
		attribute.String(tracing.AttrJobKind, f.Kind),
	)
	defer func() { tracing.End(span, err) }()

	var runOpts []run.Option
	if opts.Tracer != nil {
		runOpts = append(runOpts, run.WithTracer(opts.Tracer))
	}
	if opts.Searcher != nil {
		runOpts = append(runOpts, run.WithSearcher(opts.Searcher))
	}

	res = &Result{Kind: f.Kind}
	var w wrapperSetup
	switch f.Kind {
	case KindNtuple:
		n, err := run.NewNtuple(f.Name, opts.Runner, runOpts...)
		if err != nil {
			return nil, err
		}
		res.Ntuple, w = n, n
	default:
		m := run.NewModule(opts.Runner, runOpts...)
		res.Module, w = m, m
	}

	b := &builder{res: res}
	if err := b.configure(ctx, w, f); err != nil {
		return nil, err
	}

	log.Debug(log.CatJob, "Built job",
		"kind", f.Kind, "files", len(res.Wrapper().StoredFiles()), "cuts", len(res.Cuts))
	return res, nil
}

type builder struct {
	res *Result
}

func (b *builder) configure(ctx context.Context, w wrapperSetup, f *File) error {
	for _, p := range f.Params {
		if err := w.SetPar(p.Key, p.Value); err != nil {
			return fmt.Errorf("params: %w", err)
		}
	}
	for _, p := range f.GlobalParams {
		if err := w.SetGlobalPar(p.Key, p.Value); err != nil {
			return fmt.Errorf("global_params: %w", err)
		}
	}

	if f.Top != nil {
		algs := make(alg.Algs, 0, len(f.Top.Algs))
		for _, def := range f.Top.Algs {
			a, err := b.buildAlg(def)
			if err != nil {
				return err
			}
			algs = append(algs, a)
		}
		w.AddTopAlg(f.Top.Name, algs, f.Top.Print == nil || *f.Top.Print)
		for _, p := range f.Top.Params {
			if err := w.TopAlg().SetPar(p.Key, p.Value); err != nil {
				return fmt.Errorf("top %s: %w", f.Top.Name, err)
			}
		}
	}

	for _, h := range f.HistFiles {
		w.AddHistFile(h)
	}
	w.StoreInputFile(f.Files...)
	for _, d := range f.InputDirs {
		if n := w.StoreInputDir(ctx, d.Path, d.Keys, d.Option); n == 0 {
			log.Warn(log.CatJob, "No input files found", "path", d.Path, "keys", d.Keys)
		}
	}
	for _, d := range f.RecursiveDirs {
		w.StoreRecursiveDir(d.Path, d.Key)
	}
	if f.Local != nil {
		filter := files.Filter{File: f.Local.FileKey, Dir: f.Local.DirKey}
		if _, err := w.StoreLocalFiles(f.Local.Paths, filter); err != nil {
			return fmt.Errorf("local: %w", err)
		}
	}
	return nil
}

func (b *builder) buildAlg(def AlgDef) (*alg.AlgConfig, error) {
	a := alg.New(def.Name, def.Type)

	for _, p := range def.Params {
		if err := a.SetPar(p.Key, p.Value); err != nil {
			return nil, fmt.Errorf("alg %s: %w", def.Name, err)
		}
	}

	for _, sk := range def.SelectKeys {
		keyType := alg.KeyAND
		if sk.Type != "" {
			kt, err := alg.ParseKeyType(sk.Type)
			if err != nil {
				return nil, fmt.Errorf("alg %s: %w", def.Name, err)
			}
			keyType = kt
		}
		for _, sel := range sk.Selections {
			decision := true
			if sel.Decision != nil {
				decision = *sel.Decision
			}
			if !a.AddSelectKeyDecision(sk.Key, keyType, sel.Expr, decision) {
				return nil, fmt.Errorf("alg %s: %w: %s", def.Name, ErrSelectKey, sk.Key)
			}
		}
	}

	for _, list := range def.Cuts {
		items := make([]*cut.Item, 0, len(list.Items))
		for _, cd := range list.Items {
			c, err := buildCut(cd)
			if err != nil {
				return nil, fmt.Errorf("alg %s: %w", def.Name, err)
			}
			items = append(items, c)
		}
		if err := a.AddCuts(list.Key, items); err != nil {
			return nil, err
		}
		b.res.Cuts = append(b.res.Cuts, CutList{Alg: def.Name, Key: list.Key, Items: items})
	}

	for _, child := range def.Algs {
		c, err := b.buildAlg(child)
		if err != nil {
			return nil, err
		}
		a.AddAlg(c)
	}
	return a, nil
}

func buildCut(def CutDef) (*cut.Item, error) {
	var opts []cut.Option
	if def.Abs {
		opts = append(opts, cut.WithAbs())
	}
	if def.Dummy {
		opts = append(opts, cut.WithDummy())
	}
	if def.Debug != nil {
		opts = append(opts, cut.WithDebug(*def.Debug))
	}

	c, err := cut.New(def.Name, def.Conf, opts...)
	if err != nil {
		return nil, err
	}
	for _, sub := range def.And {
		s, err := buildCut(sub)
		if err != nil {
			return nil, err
		}
		if err := c.AddCut(s, cut.And); err != nil {
			return nil, err
		}
	}
	for _, sub := range def.Or {
		s, err := buildCut(sub)
		if err != nil {
			return nil, err
		}
		if err := c.AddCut(s, cut.Or); err != nil {
			return nil, err
		}
	}
	return c, nil
}
