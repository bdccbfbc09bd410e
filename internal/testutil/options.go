package testutil

import "time"

// buildData holds all data for a history row to be inserted.
type buildData struct {
	id        string
	job       string
	kind      string
	topAlg    string
	format    string
	config    string
	files     []string
	createdAt time.Time
}

func defaultBuild(id string) buildData {
	return buildData{
		id:        id,
		job:       id + ".yaml",
		kind:      "module",
		format:    "xml",
		createdAt: time.Now(),
	}
}

// BuildOption configures a history row.
type BuildOption func(*buildData)

// Job sets the job file path.
func Job(path string) BuildOption {
	return func(b *buildData) { b.job = path }
}

// Kind sets the wrapper kind ("module" or "ntuple").
func Kind(kind string) BuildOption {
	return func(b *buildData) { b.kind = kind }
}

// TopAlg sets the top algorithm name.
func TopAlg(name string) BuildOption {
	return func(b *buildData) { b.topAlg = name }
}

// Format sets the output format.
func Format(format string) BuildOption {
	return func(b *buildData) { b.format = format }
}

// Config sets the exported configuration text.
func Config(text string) BuildOption {
	return func(b *buildData) { b.config = text }
}

// Files sets the input files.
func Files(paths ...string) BuildOption {
	return func(b *buildData) { b.files = paths }
}

// CreatedAt sets the creation time.
func CreatedAt(t time.Time) BuildOption {
	return func(b *buildData) { b.createdAt = t }
}
