package run

import (
	"context"
	"errors"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/anpconf/internal/alg"
	"github.com/zjrosen/anpconf/internal/files"
	"github.com/zjrosen/anpconf/internal/log"
	"github.com/zjrosen/anpconf/internal/registry"
	"github.com/zjrosen/anpconf/internal/tracing"
)

// ErrNoTopAlg is returned when a Module is exported before a top algorithm
// is attached.
var ErrNoTopAlg = errors.New("missing top algorithm")

// Registry keys written by the run wrappers.
const (
	KeyHistMan    = "HistMan"
	KeyInputFiles = "InputFiles"
	KeyFile       = "File"
	KeyReadFile   = "ReadFile"
	KeyPrint      = "Print"
	TypeRunAlgs   = "RunAlgs"
)

// Option configures a Module or Ntuple.
type Option func(*wrapper)

// WithTracer records one span per lifecycle call.
func WithTracer(t trace.Tracer) Option {
	return func(w *wrapper) { w.tracer = t }
}

// WithSearcher sets the searcher used by StoreInputDir and AddInputDir.
func WithSearcher(s *files.Searcher) Option {
	return func(w *wrapper) { w.searcher = s }
}

type globalPar struct {
	key string
	val alg.Value
}

// wrapper holds what Module and Ntuple share.
type wrapper struct {
	name     string
	runner   Runner
	tracer   trace.Tracer
	searcher *files.Searcher
	log      *log.Named

	params *registry.Registry
	hist   *registry.Registry
	top    *alg.AlgConfig
	files  []string
	gpar   []globalPar
}

func newWrapper(name string, runner Runner, opts []Option) wrapper {
	hist := registry.New()
	hist.AllowNonUniqueKeys()

	w := wrapper{
		name:   name,
		runner: runner,
		log:    log.Get(name, log.CatRun),
		params: registry.New(),
		hist:   hist,
	}
	for _, opt := range opts {
		opt(&w)
	}
	if w.searcher == nil {
		w.searcher = files.NewSearcher()
	}
	return w
}

// Name returns the wrapper's logger name.
func (w *wrapper) Name() string { return w.name }

// SetPar sets a parameter on the exported top-level registry.
func (w *wrapper) SetPar(key string, v alg.Value) error {
	return alg.SetRegistryKey(w.params, key, v)
}

// SetKey is SetPar.
func (w *wrapper) SetKey(key string, v alg.Value) error {
	return w.SetPar(key, v)
}

// SetGlobalPar sets key on the wrapper and on every algorithm of the tree.
// Before a top algorithm is attached the value is held back and applied
// once when it is.
func (w *wrapper) SetGlobalPar(key string, v alg.Value) error {
	if err := w.SetPar(key, v); err != nil {
		return err
	}
	if w.top != nil {
		return w.top.SetGlobalPar(key, v)
	}
	for i := range w.gpar {
		if w.gpar[i].key == key {
			w.gpar[i].val = v
			return nil
		}
	}
	w.gpar = append(w.gpar, globalPar{key: key, val: v})
	return nil
}

// SetTopAlg attaches the top algorithm. A second call is ignored with a
// warning.
func (w *wrapper) SetTopAlg(a *alg.AlgConfig) bool {
	if a == nil {
		w.log.Warn("SetTopAlg - invalid top algorithm")
		return false
	}
	if w.top != nil {
		w.log.Warn("SetTopAlg - top algorithm is already configured", "current", w.top.Name(), "ignored", a.Name())
		return false
	}
	w.attach(a)
	return true
}

// AddTopAlg attaches a new RunAlgs algorithm named name that runs algs.
func (w *wrapper) AddTopAlg(name string, algs alg.Algs, printAlgs bool) bool {
	if w.top != nil {
		w.log.Warn("AddTopAlg - Top algorithm is already configured", "current", w.top.Name(), "ignored", name)
		return false
	}
	top := alg.New(name, TypeRunAlgs)
	if err := top.SetKey(KeyPrint, alg.Bool(printAlgs)); err != nil {
		w.log.Error("AddTopAlg - failed to set Print", "error", err)
		return false
	}
	top.AddAlg(algs)
	w.attach(top)
	return true
}

func (w *wrapper) attach(a *alg.AlgConfig) {
	w.top = a
	for _, p := range w.gpar {
		if err := a.SetGlobalPar(p.key, p.val); err != nil {
			w.log.Error("SetTopAlg - failed to apply global parameter", "key", p.key, "error", err)
		}
	}
	w.gpar = nil
}

// TopAlg returns the attached top algorithm, or nil.
func (w *wrapper) TopAlg() *alg.AlgConfig { return w.top }

// AddHistFile adds a histogram source file read by the histogram manager.
func (w *wrapper) AddHistFile(path string) {
	w.hist.SetVal(KeyReadFile, path)
}

// StoreInputFile appends paths to the exported input file list.
func (w *wrapper) StoreInputFile(paths ...string) {
	for _, p := range paths {
		w.log.Debug("StoreInputFile", "path", p)
		w.files = append(w.files, p)
	}
}

// StoreInputDir stores the files SearchInputDir finds in target and returns
// how many were added.
func (w *wrapper) StoreInputDir(ctx context.Context, target string, keys []string, option string) int {
	found := w.searcher.SearchInputDir(ctx, target, keys, option)
	w.files = append(w.files, found...)
	return len(found)
}

// StoreRecursiveDir stores every file below target whose name contains key.
func (w *wrapper) StoreRecursiveDir(target, key string) int {
	found := files.SearchRecursive(target, key)
	w.files = append(w.files, found...)
	return len(found)
}

// StoreLocalFiles stores the files FindLocal returns for paths and f.
func (w *wrapper) StoreLocalFiles(paths []string, f files.Filter) (int, error) {
	found, err := files.FindLocal(paths, f)
	if err != nil {
		return 0, err
	}
	w.files = append(w.files, found...)
	return len(found), nil
}

// StoredFiles returns a copy of the input file list.
func (w *wrapper) StoredFiles() []string { return slices.Clone(w.files) }

// ClearStoredFiles empties the input file list.
func (w *wrapper) ClearStoredFiles() { w.files = nil }

// HistFiles returns the histogram source files in insertion order.
func (w *wrapper) HistFiles() []string { return w.hist.GetAll(KeyReadFile) }

func (w *wrapper) inputFiles() *registry.Registry {
	reg := registry.New()
	reg.AllowNonUniqueKeys()
	for _, f := range w.files {
		reg.SetVal(KeyFile, f)
	}
	return reg
}

// Print logs the algorithm tree.
func (w *wrapper) Print() {
	w.log.Info("print children algorithms:", "files", len(w.files), "hist_files", len(w.HistFiles()))
	if w.top == nil {
		w.log.Warn("Print - missing top algorithm")
		return
	}
	w.top.Print()
}

func (w *wrapper) start(ctx context.Context, span string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String(tracing.AttrRunName, w.name),
		attribute.Int(tracing.AttrRunFiles, len(w.files)),
	)
	if w.top != nil {
		attrs = append(attrs, attribute.String(tracing.AttrRunAlg, w.top.Name()))
	}
	return tracing.Start(ctx, w.tracer, span, attrs...)
}

func (w *wrapper) forward(ctx context.Context, span string, fn func(context.Context) error) error {
	ctx, s := w.start(ctx, span)
	err := fn(ctx)
	tracing.End(s, err)
	return err
}

func (w *wrapper) Init(ctx context.Context) error {
	return w.forward(ctx, tracing.SpanInit, w.runner.Init)
}

func (w *wrapper) Exec(ctx context.Context) error {
	return w.forward(ctx, tracing.SpanExec, w.runner.Exec)
}

func (w *wrapper) Done(ctx context.Context) error {
	return w.forward(ctx, tracing.SpanDone, w.runner.Done)
}

// Execute runs the engine on a configuration file written earlier.
func (w *wrapper) Execute(ctx context.Context, path string) error {
	ctx, s := w.start(ctx, tracing.SpanExecute, attribute.String(tracing.AttrRunPath, path))
	err := w.runner.Execute(ctx, path)
	tracing.End(s, err)
	return err
}

func (w *wrapper) config(ctx context.Context, reg *registry.Registry) error {
	return w.forward(ctx, tracing.SpanConfig, func(ctx context.Context) error {
		return w.runner.Config(ctx, reg)
	})
}
