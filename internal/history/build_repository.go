package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/anpconf/internal/log"
)

var (
	// ErrNotFound is returned when no build matches an id.
	ErrNotFound = errors.New("build not found")
	// ErrAmbiguousID is returned when an id prefix matches several builds.
	ErrAmbiguousID = errors.New("ambiguous build id")
)

const buildColumns = `id, job, kind, top_alg, format, config, created_at`

// BuildRepository reads and writes recorded builds.
type BuildRepository struct {
	db *sql.DB
}

// NewBuildRepository wraps an already migrated connection.
func NewBuildRepository(db *sql.DB) *BuildRepository {
	return &BuildRepository{db: db}
}

func scanBuild(scanner interface{ Scan(...any) error }) (buildModel, error) {
	var m buildModel
	err := scanner.Scan(&m.ID, &m.Job, &m.Kind, &m.TopAlg, &m.Format, &m.Config, &m.CreatedAt)
	return m, err
}

// Record stores e with its input files. A missing ID gets a fresh uuid and a
// zero CreatedAt becomes the current time. The stored entry is returned.
func (r *BuildRepository) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.Kind == "" {
		e.Kind = "module"
	}
	if e.Format == "" {
		e.Format = "xml"
	}
	model := toBuildModel(e)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO builds (`+buildColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		model.ID, model.Job, model.Kind, model.TopAlg, model.Format, model.Config, model.CreatedAt,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to insert build: %w", err)
	}
	for _, path := range e.Files {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO build_files (build_id, path) VALUES (?, ?)`, model.ID, path,
		); err != nil {
			return Entry{}, fmt.Errorf("failed to insert build file: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Entry{}, fmt.Errorf("commit build: %w", err)
	}

	log.Debug(log.CatHistory, "Recorded build", "id", model.ID, "job", model.Job, "files", len(e.Files))
	return model.toEntry(append([]string(nil), e.Files...)), nil
}

// List returns the newest builds first. A limit <= 0 returns all builds.
func (r *BuildRepository) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT ` + buildColumns + ` FROM builds ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	models, err := r.queryBuilds(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(models))
	for _, m := range models {
		files, err := r.files(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, m.toEntry(files))
	}
	return entries, nil
}

// Get returns the build with the given id. An unambiguous id prefix is also
// accepted.
func (r *BuildRepository) Get(ctx context.Context, id string) (Entry, error) {
	if id == "" {
		return Entry{}, ErrNotFound
	}

	m, err := scanBuild(r.db.QueryRowContext(ctx,
		`SELECT `+buildColumns+` FROM builds WHERE id = ?`, id))
	switch {
	case err == nil:
	case errors.Is(err, sql.ErrNoRows):
		models, err := r.queryBuilds(ctx,
			`SELECT `+buildColumns+` FROM builds WHERE substr(id, 1, ?) = ? LIMIT 2`, len(id), id)
		if err != nil {
			return Entry{}, err
		}
		switch len(models) {
		case 0:
			return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		case 1:
			m = models[0]
		default:
			return Entry{}, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
		}
	default:
		return Entry{}, fmt.Errorf("failed to query build: %w", err)
	}

	files, err := r.files(ctx, m.ID)
	if err != nil {
		return Entry{}, err
	}
	return m.toEntry(files), nil
}

// Delete removes a build and its files.
func (r *BuildRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM builds WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete build: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// queryBuilds drains the rows before returning so that a single-connection
// pool can serve the follow-up file queries.
func (r *BuildRepository) queryBuilds(ctx context.Context, query string, args ...any) ([]buildModel, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query builds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []buildModel
	for rows.Next() {
		m, err := scanBuild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *BuildRepository) files(ctx context.Context, id string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT path FROM build_files WHERE build_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query build files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan build file: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
