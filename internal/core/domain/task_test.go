package domain

import "testing"

func TestTaskStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to TaskStatus
		want     bool
	}{
		{TaskTodo, TaskInProgress, true},
		{TaskTodo, TaskDone, false},
		{TaskInProgress, TaskDone, true},
		{TaskInProgress, TaskTodo, true},
		{TaskDone, TaskInProgress, true},
		{TaskDone, TaskTodo, false},
		{TaskTodo, TaskTodo, false},
		{TaskStatus("BLOCKED"), TaskTodo, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTask_Editable(t *testing.T) {
	task := &Task{UserID: "u1"}

	if !task.Editable(Principal{UserID: "u1", Role: RoleUser}) {
		t.Error("assignee should be able to edit")
	}
	if task.Editable(Principal{UserID: "u2", Role: RoleUser}) {
		t.Error("other users should not be able to edit")
	}
	if !task.Editable(Principal{UserID: "u2", Role: RoleAdmin}) {
		t.Error("admin should be able to edit")
	}
	if (&Task{}).Editable(Principal{Role: RoleUser}) {
		t.Error("empty principal must not match an unassigned task")
	}
}
