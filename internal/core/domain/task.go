package domain

import (
	"errors"
	"time"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
)

// Priority ranks tasks for the assignee.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// validTransitions defines the allowed state machine transitions.
var validTransitions = map[TaskStatus][]TaskStatus{
	TaskTodo:       {TaskInProgress},
	TaskInProgress: {TaskDone, TaskTodo},
	TaskDone:       {TaskInProgress},
}

var ErrInvalidTransition = errors.New("invalid status transition")

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// StatusHistoryEntry records a single status transition on a task.
type StatusHistoryEntry struct {
	Status    TaskStatus `json:"status" bson:"status"`
	Timestamp time.Time  `json:"timestamp" bson:"timestamp"`
	ChangedBy string     `json:"changed_by,omitempty" bson:"changed_by,omitempty"`
}

// Task is a unit of work assigned to one user inside one project.
type Task struct {
	ID             string               `json:"id"`
	Title          string               `json:"title"`
	Description    string               `json:"description,omitempty"`
	Status         TaskStatus           `json:"status"`
	Priority       Priority             `json:"priority"`
	DueDate        *time.Time           `json:"due_date,omitempty"`
	UserID         string               `json:"user_id"`
	ProjectID      string               `json:"project_id"`
	IdempotencyKey string               `json:"-"`
	StatusHistory  []StatusHistoryEntry `json:"status_history"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// Editable reports whether principal p may change the task: its assignee or an admin.
func (t *Task) Editable(p Principal) bool {
	return p.IsAdmin() || (p.UserID != "" && p.UserID == t.UserID)
}
