package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

// Builder accumulates history rows and inserts them in order.
type Builder struct {
	t      *testing.T
	db     *sql.DB
	builds []buildData
}

// NewBuilder creates a builder for the given test database.
func NewBuilder(t *testing.T, db *sql.DB) *Builder {
	t.Helper()
	return &Builder{t: t, db: db}
}

// WithBuild adds a history row with optional configuration.
func (b *Builder) WithBuild(id string, opts ...BuildOption) *Builder {
	build := defaultBuild(id)
	for _, opt := range opts {
		opt(&build)
	}
	b.builds = append(b.builds, build)
	return b
}

// Build inserts all accumulated rows into the database.
func (b *Builder) Build() {
	b.t.Helper()
	for _, build := range b.builds {
		b.insertBuild(build)
		b.insertFiles(build.id, build.files)
	}
}

func (b *Builder) insertBuild(build buildData) {
	b.t.Helper()
	_, err := b.db.Exec(
		`INSERT INTO builds (id, job, kind, top_alg, format, config, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		build.id, build.job, build.kind, build.topAlg, build.format, build.config, build.createdAt.Unix(),
	)
	require.NoError(b.t, err)
}

func (b *Builder) insertFiles(buildID string, files []string) {
	b.t.Helper()
	for _, f := range files {
		_, err := b.db.Exec(`INSERT INTO build_files (build_id, path) VALUES (?, ?)`, buildID, f)
		require.NoError(b.t, err)
	}
}
