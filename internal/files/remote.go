package files

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/zjrosen/anpconf/internal/cachemanager"
	"github.com/zjrosen/anpconf/internal/log"
)

// Backend is a storage system a directory listing is fetched from.
type Backend string

const (
	BackendCastor Backend = "castor"
	BackendEOS    Backend = "eos"
	BackendSRM    Backend = "srm"
	BackendLocal  Backend = "local"
)

// OptionDeep makes SearchInputDir list one level of subdirectories.
const OptionDeep = "deep"

const (
	castorPrefix = "root://castoratlas/"
	eosPrefix    = "root://eosatlas/"
	xrootdPrefix = "/xrootd"
)

// BackendFor picks the backend from the target path.
func BackendFor(target string) Backend {
	switch {
	case strings.Contains(target, "castor"):
		return BackendCastor
	case strings.Contains(target, "eos"):
		return BackendEOS
	case strings.Contains(target, "srm"):
		return BackendSRM
	default:
		return BackendLocal
	}
}

// PathPlaceholder in a command template is replaced by the listed path.
const PathPlaceholder = "{path}"

// Commands holds the argv templates used to list remote directories.
type Commands struct {
	Castor []string
	EOS    []string
	SRM    []string
}

// DefaultCommands returns the stock listing commands of each backend.
func DefaultCommands() Commands {
	return Commands{
		Castor: []string{"nsls", PathPlaceholder},
		EOS:    []string{"eos", "ls", PathPlaceholder},
		SRM:    []string{"xrd", "hn.at3f", "dirlist", PathPlaceholder},
	}
}

func expand(tmpl []string, path string) []string {
	argv := make([]string, len(tmpl))
	for i, arg := range tmpl {
		argv[i] = strings.ReplaceAll(arg, PathPlaceholder, path)
	}
	return argv
}

// Lister runs a listing command and returns its standard output.
type Lister interface {
	List(ctx context.Context, argv []string) ([]byte, error)
}

// ListerFunc adapts a function to Lister.
type ListerFunc func(ctx context.Context, argv []string) ([]byte, error)

func (f ListerFunc) List(ctx context.Context, argv []string) ([]byte, error) { return f(ctx, argv) }

// ExecLister runs listing commands as child processes.
type ExecLister struct{}

func (ExecLister) List(ctx context.Context, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty listing command")
	}
	//nolint:gosec // G204: argv comes from the user's config
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", argv[0], err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

type listInput struct {
	argv []string
}

func (in listInput) key() string { return strings.Join(in.argv, " ") }

// Searcher lists input directories on local or remote storage.
type Searcher struct {
	commands Commands
	lister   Lister
	cache    cachemanager.CacheManager[string, []string]
	ttl      time.Duration
	listings *cachemanager.ReadThroughCache[string, []string, listInput]
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithCommands replaces the listing command templates.
func WithCommands(c Commands) SearcherOption {
	return func(s *Searcher) { s.commands = c }
}

// WithLister replaces the process runner used for remote listings.
func WithLister(l Lister) SearcherOption {
	return func(s *Searcher) { s.lister = l }
}

// WithCache caches remote listings for ttl.
func WithCache(c cachemanager.CacheManager[string, []string], ttl time.Duration) SearcherOption {
	return func(s *Searcher) {
		s.cache = c
		s.ttl = ttl
	}
}

// NewSearcher builds a Searcher. Without options it runs the default
// commands and does not cache.
func NewSearcher(opts ...SearcherOption) *Searcher {
	s := &Searcher{
		commands: DefaultCommands(),
		lister:   ExecLister{},
		ttl:      cachemanager.DefaultExpiration,
	}
	for _, opt := range opts {
		opt(s)
	}
	// empty listings are not cached so a directory filled later is seen
	s.listings = cachemanager.NewReadThroughCache[string, []string, listInput](s.cache, listInput.key, s.runList,
		cachemanager.StoreIf[string, []string, listInput](func(lines []string) bool { return len(lines) > 0 }))
	return s
}

func (s *Searcher) runList(ctx context.Context, in listInput) ([]string, error) {
	out, err := s.lister.List(ctx, in.argv)
	if err != nil {
		return nil, err
	}
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

func (s *Searcher) list(ctx context.Context, tmpl []string, path string) []string {
	argv := expand(tmpl, path)
	lines, err := s.listings.Get(ctx, listInput{argv: argv}, s.ttl)
	if err != nil {
		log.Warn(log.CatFiles, "SearchInputDir - listing failed", "path", path, "error", err)
		return nil
	}
	return lines
}

// SearchInputDir lists target on its backend and returns the .root files
// whose path contains one of keys. An empty key list accepts every file.
// Listing failures are logged and yield no files.
func (s *Searcher) SearchInputDir(ctx context.Context, target string, keys []string, option string) []string {
	backend := BackendFor(target)
	log.Info(log.CatFiles, "Search input directory", "path", target, "backend", backend, "option", option)

	var listed []string
	switch backend {
	case BackendCastor:
		listed = s.remote(ctx, s.commands.Castor, target, keys, option, castorPrefix)
	case BackendEOS:
		listed = s.remote(ctx, s.commands.EOS, target, keys, option, eosPrefix)
	case BackendSRM:
		listed = s.srm(ctx, target)
	default:
		listed = localDir(target, keys)
	}

	var out []string
	for _, f := range listed {
		if len(f) > 5 && strings.Contains(f, ".root") && matchKey(f, keys) {
			out = append(out, f)
		}
	}
	log.Info(log.CatFiles, "Number of included input files", "count", len(out))
	return out
}

func matchKey(path string, keys []string) bool {
	if len(keys) == 0 {
		return true
	}
	for _, k := range keys {
		if strings.Contains(path, k) {
			return true
		}
	}
	return false
}

func (s *Searcher) remote(ctx context.Context, tmpl []string, target string, keys []string, option, prefix string) []string {
	base := strings.TrimRight(target, "/")
	entries := s.list(ctx, tmpl, base)

	var out []string
	if option != OptionDeep {
		for _, e := range entries {
			out = append(out, prefix+base+"/"+e)
		}
		return out
	}

	for _, e := range entries {
		dir := base + "/" + strings.TrimRight(e, "/")
		if !matchKey(dir, keys) {
			continue
		}
		for _, f := range s.list(ctx, tmpl, dir) {
			out = append(out, prefix+dir+"/"+f)
		}
	}
	return out
}

func (s *Searcher) srm(ctx context.Context, target string) []string {
	path := strings.TrimPrefix(target, xrootdPrefix)

	var out []string
	for _, line := range s.list(ctx, s.commands.SRM, path) {
		fields := strings.Fields(line)
		if len(fields) < 5 {
			log.Warn(log.CatFiles, "SearchInputDir - unexpected listing line", "line", line)
			continue
		}
		if strings.Contains(fields[4], "root") {
			out = append(out, xrootdPrefix+fields[4])
		}
	}
	return out
}

func localDir(target string, keys []string) []string {
	info, err := os.Stat(target)
	if err != nil {
		log.Warn(log.CatFiles, "SearchInputDir - missing path", "path", target)
		return nil
	}
	if !info.IsDir() {
		if matchKey(filepath.Base(target), keys) {
			return []string{target}
		}
		return nil
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		log.Warn(log.CatFiles, "SearchInputDir - unreadable directory", "path", target, "error", err)
		return nil
	}
	// every entry is listed, directories included; the .root filter in
	// SearchInputDir decides what is kept
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, filepath.Join(target, e.Name()))
	}
	return out
}
