package models

import "time"

type Project struct {
	ID          string
	UserID      string
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectRef is the project a task points at. It is either a bare
// ProjectID or an expanded ProjectSummary; consumers switch on the
// concrete type.
type ProjectRef interface {
	RefID() string
	projectRef()
}

type ProjectID string

func (id ProjectID) RefID() string { return string(id) }
func (ProjectID) projectRef()      {}

type ProjectSummary struct {
	ID    string
	Title string
}

func (s ProjectSummary) RefID() string { return s.ID }
func (ProjectSummary) projectRef()     {}

func (p *Project) Summary() ProjectSummary {
	return ProjectSummary{
		ID:    p.ID,
		Title: p.Title,
	}
}
