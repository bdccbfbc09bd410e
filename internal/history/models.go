package history

import "time"

// Entry is one recorded build.
type Entry struct {
	ID        string
	Job       string
	Kind      string
	TopAlg    string
	Format    string
	Config    string
	Files     []string
	CreatedAt time.Time
}

// buildModel is the row layout of the builds table.
type buildModel struct {
	ID        string
	Job       string
	Kind      string
	TopAlg    string
	Format    string
	Config    string
	CreatedAt int64 // Unix timestamp
}

func toBuildModel(e Entry) buildModel {
	return buildModel{
		ID:        e.ID,
		Job:       e.Job,
		Kind:      e.Kind,
		TopAlg:    e.TopAlg,
		Format:    e.Format,
		Config:    e.Config,
		CreatedAt: e.CreatedAt.Unix(),
	}
}

func (m buildModel) toEntry(files []string) Entry {
	return Entry{
		ID:        m.ID,
		Job:       m.Job,
		Kind:      m.Kind,
		TopAlg:    m.TopAlg,
		Format:    m.Format,
		Config:    m.Config,
		Files:     files,
		CreatedAt: time.Unix(m.CreatedAt, 0).UTC(),
	}
}
