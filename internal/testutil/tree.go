package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Tree creates a directory of input files under t.TempDir().
type Tree struct {
	t     *testing.T
	root  string
	files map[string]string
	dirs  []string
	order []string
}

// NewTree starts an empty tree.
func NewTree(t *testing.T) *Tree {
	t.Helper()
	return &Tree{t: t, root: t.TempDir(), files: make(map[string]string)}
}

// File adds a file with the given slash-separated relative path.
func (tr *Tree) File(rel string) *Tree {
	return tr.FileWith(rel, "")
}

// FileWith adds a file with content.
func (tr *Tree) FileWith(rel, content string) *Tree {
	if _, ok := tr.files[rel]; !ok {
		tr.order = append(tr.order, rel)
	}
	tr.files[rel] = content
	return tr
}

// Dir adds an empty directory.
func (tr *Tree) Dir(rel string) *Tree {
	tr.dirs = append(tr.dirs, rel)
	return tr
}

// Build writes the tree and returns its root.
func (tr *Tree) Build() string {
	tr.t.Helper()
	for _, d := range tr.dirs {
		require.NoError(tr.t, os.MkdirAll(tr.Path(d), 0o750))
	}
	for _, rel := range tr.order {
		p := tr.Path(rel)
		require.NoError(tr.t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(tr.t, os.WriteFile(p, []byte(tr.files[rel]), 0o600))
	}
	return tr.root
}

// Path returns the absolute path of rel inside the tree.
func (tr *Tree) Path(rel string) string {
	return filepath.Join(tr.root, filepath.FromSlash(rel))
}
