// Package search keeps a full-text index of the program catalog.
package search

import (
	"context"

	"study-abroad-backend/db/models"
)

// ProgramDoc is the indexed view of a program.
type ProgramDoc struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ProgramType string `json:"program_type"`
	University  string `json:"university"`
	Country     string `json:"country"`
	Mentor      string `json:"mentor"`
}

// Hit is one search match, best first.
type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// ProgramIndex is implemented by the bleve and elasticsearch backends.
type ProgramIndex interface {
	IndexProgram(ctx context.Context, doc ProgramDoc) error
	IndexPrograms(ctx context.Context, docs []ProgramDoc) error
	DeleteProgram(ctx context.Context, id string) error
	SearchPrograms(ctx context.Context, q string, size int) ([]Hit, error)
	Reset(ctx context.Context) error
}

// NewProgramDoc flattens a program. University and Mentor should be preloaded.
func NewProgramDoc(p models.Program) ProgramDoc {
	doc := ProgramDoc{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		ProgramType: p.ProgramType,
		University:  p.University.Name,
		Country:     p.University.Country,
	}
	if p.Mentor != nil {
		doc.Mentor = p.Mentor.Name
	}
	return doc
}
