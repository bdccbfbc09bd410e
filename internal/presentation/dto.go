package presentation

import (
	"time"

	"github.com/zjrosen/anpconf/internal/history"
)

// BuildDTO represents a recorded build for presentation.
type BuildDTO struct {
	ID        string    `json:"id"`
	Job       string    `json:"job"`
	Kind      string    `json:"kind"`
	TopAlg    string    `json:"top_alg"`
	Format    string    `json:"format"`
	Files     []string  `json:"files"` // always present, empty when no input files
	CreatedAt time.Time `json:"created_at"`
	Config    string    `json:"config,omitempty"`
}

// FromEntry converts a history entry. The exported configuration is kept
// only when withConfig is set.
func FromEntry(e history.Entry, withConfig bool) BuildDTO {
	files := e.Files
	if files == nil {
		files = []string{}
	}
	dto := BuildDTO{
		ID:        e.ID,
		Job:       e.Job,
		Kind:      e.Kind,
		TopAlg:    e.TopAlg,
		Format:    e.Format,
		Files:     files,
		CreatedAt: e.CreatedAt,
	}
	if withConfig {
		dto.Config = e.Config
	}
	return dto
}

// FromEntries converts a slice of history entries without their configs.
func FromEntries(entries []history.Entry) []BuildDTO {
	dtos := make([]BuildDTO, len(entries))
	for i, e := range entries {
		dtos[i] = FromEntry(e, false)
	}
	return dtos
}
