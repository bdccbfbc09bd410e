// Package files discovers input files for a run: local directory walks with
// regexp filters, listings of remote storage through external commands, and
// recursive name searches.
package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/zjrosen/anpconf/internal/log"
)

// Filter restricts a local search.
type Filter struct {
	// File holds alternative patterns. Each alternative is a comma-separated
	// list of regexps that must all match the file path. Empty accepts every
	// file.
	File []string
	// Dir must match a directory path for the walk to descend into it.
	// Empty descends everywhere.
	Dir string
}

type matcher struct {
	groups [][]*regexp.Regexp
	dir    *regexp.Regexp
}

func (f Filter) compile() (*matcher, error) {
	m := &matcher{}
	for _, alt := range f.File {
		var group []*regexp.Regexp
		for _, expr := range strings.Split(alt, ",") {
			expr = strings.TrimSpace(expr)
			if expr == "" {
				continue
			}
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("file filter %q: %w", expr, err)
			}
			group = append(group, re)
		}
		if len(group) > 0 {
			m.groups = append(m.groups, group)
		}
	}
	if f.Dir != "" {
		re, err := regexp.Compile(f.Dir)
		if err != nil {
			return nil, fmt.Errorf("dir filter %q: %w", f.Dir, err)
		}
		m.dir = re
	}
	return m, nil
}

func (m *matcher) file(path string) bool {
	if len(m.groups) == 0 {
		return true
	}
	for _, group := range m.groups {
		all := true
		for _, re := range group {
			if !re.MatchString(path) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func (m *matcher) descend(path string) bool {
	return m.dir == nil || m.dir.MatchString(path)
}

// FindLocal walks paths and returns the sorted files accepted by f. Each
// path may be a comma-separated list. Entries naming eos storage are
// returned untouched. Missing or unreadable paths are logged and skipped.
func FindLocal(paths []string, f Filter) ([]string, error) {
	m, err := f.compile()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		log.Warn(log.CatFiles, "FindLocal - missing input path(s)")
		return nil, nil
	}

	var out []string
	for _, p := range paths {
		for _, part := range strings.Split(p, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			log.Info(log.CatFiles, "Search input path", "path", part)
			if strings.Contains(part, "eos") {
				out = append(out, part)
				continue
			}
			out = append(out, m.walk(part)...)
		}
	}
	sort.Strings(out)

	for _, path := range out {
		if info, err := os.Stat(path); err == nil {
			log.Debug(log.CatFiles, "Input file", "path", path, "size_kb", info.Size()/1024)
		}
	}
	log.Info(log.CatFiles, "Found input files", "count", len(out))
	return out, nil
}

func (m *matcher) walk(root string) []string {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn(log.CatFiles, "FindLocal - skip unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && !m.descend(path) {
				return fs.SkipDir
			}
			return nil
		}
		if m.file(path) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.SkipAll) {
		log.Warn(log.CatFiles, "FindLocal - walk failed", "path", root, "error", err)
	}
	return out
}

// SaveList writes files to path, one per line.
func SaveList(path string, files []string) error {
	var sb strings.Builder
	for _, f := range files {
		sb.WriteString(f)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		return fmt.Errorf("writing file list: %w", err)
	}
	log.Info(log.CatFiles, "Saved file list", "path", path, "count", len(files))
	return nil
}
