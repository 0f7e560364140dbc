package models

import "time"

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

type Task struct {
	ID          string
	UserID      string
	Project     ProjectRef
	Title       string
	Description string
	Status      TaskStatus
	DueDate     time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectID returns the id of the referenced project whatever shape
// the reference has. It is empty when the task has no reference.
func (t *Task) ProjectID() string {
	if t.Project == nil {
		return ""
	}
	return t.Project.RefID()
}
