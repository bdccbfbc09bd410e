package files

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/zjrosen/anpconf/internal/log"
)

// MinRecursiveKey is the shortest key SearchRecursive accepts.
const MinRecursiveKey = 3

// SearchRecursive returns every file below target whose name contains key,
// in walk order. Keys shorter than MinRecursiveKey match nothing.
func SearchRecursive(target, key string) []string {
	if len(key) < MinRecursiveKey {
		log.Warn(log.CatFiles, "SearchRecursive - key is too short", "key", key)
		return nil
	}
	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		log.Warn(log.CatFiles, "SearchRecursive - not a directory", "path", target)
		return nil
	}

	var out []string
	_ = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn(log.CatFiles, "SearchRecursive - skip unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() && path != target {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && strings.Contains(d.Name(), key) {
			out = append(out, path)
		}
		return nil
	})

	log.Info(log.CatFiles, "Recursive search", "path", target, "key", key, "count", len(out))
	return out
}
