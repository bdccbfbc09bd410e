package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/anpconf/internal/log"
)

func TestNewTestDB_CreatesSchema(t *testing.T) {
	db := NewTestDB(t)
	defer func() { _ = db.Close() }()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('builds', 'build_files')`).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 2, count, "expected 2 tables")
}

func TestBuilder_WithBuild_Defaults(t *testing.T) {
	db := NewTestDB(t)
	defer func() { _ = db.Close() }()

	NewBuilder(t, db).WithBuild("b1").Build()

	var job, kind, format string
	err := db.QueryRow(`SELECT job, kind, format FROM builds WHERE id = ?`, "b1").Scan(&job, &kind, &format)
	require.NoError(t, err)
	require.Equal(t, "b1.yaml", job)
	require.Equal(t, "module", kind)
	require.Equal(t, "xml", format)
}

func TestBuilder_WithStandardTestData(t *testing.T) {
	db := NewTestDB(t)
	defer func() { _ = db.Close() }()

	NewBuilder(t, db).WithStandardTestData().Build()

	var builds, files int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM builds`).Scan(&builds))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM build_files`).Scan(&files))
	require.Equal(t, 3, builds)
	require.Equal(t, 3, files)
}

func TestTree_Build(t *testing.T) {
	root := NewTree(t).
		File("run1/a.root").
		FileWith("run1/notes.txt", "hello").
		Dir("empty").
		Build()

	data, err := os.ReadFile(root + "/run1/notes.txt")
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))

	info, err := os.Stat(root + "/empty")
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestCaptureLog(t *testing.T) {
	buf := CaptureLog(t)
	log.Debug(log.CatFiles, "walking", "dir", "/data")
	require.Contains(t, buf.String(), "[DEBUG] [files] walking dir=/data")
}
