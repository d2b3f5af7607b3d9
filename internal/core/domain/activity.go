package domain

import "time"

// TaskActivity is an audit record written for every task status change.
type TaskActivity struct {
	TaskID    string
	From      TaskStatus
	To        TaskStatus
	ActorID   string
	ActorRole Role
	Timestamp time.Time
}
