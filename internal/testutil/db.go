// Package testutil provides test fixtures: a history database, a builder
// for history rows, an input file tree and log capture.
package testutil

import (
	"database/sql"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/stretchr/testify/require"
)

// Schema mirrors the history migrations.
const Schema = `
CREATE TABLE builds (
	id TEXT PRIMARY KEY,
	job TEXT NOT NULL,
	kind TEXT NOT NULL DEFAULT 'module',
	top_alg TEXT NOT NULL DEFAULT '',
	format TEXT NOT NULL DEFAULT 'xml',
	config TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);

CREATE INDEX idx_builds_created_at ON builds(created_at);

CREATE TABLE build_files (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	build_id TEXT NOT NULL,
	path TEXT NOT NULL,
	FOREIGN KEY (build_id) REFERENCES builds(id) ON DELETE CASCADE
);

CREATE INDEX idx_build_files_build_id ON build_files(build_id);
`

// NewTestDB creates an in-memory SQLite database with the history schema.
// The caller is responsible for closing the database.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// every pooled connection would get its own empty :memory: database
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	_, err = db.Exec(Schema)
	require.NoError(t, err)
	return db
}
