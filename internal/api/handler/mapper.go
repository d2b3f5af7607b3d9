package handler

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/core/domain"
)

const dateLayout = "2006-01-02"

// --- Domain → HTTP response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Active:    u.Active,
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
	}
}

func toProjectResponse(p *domain.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		TaskCount:   p.TaskCount,
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}
}

func toTaskResponse(t *domain.Task) taskResponse {
	history := make([]statusHistoryResponse, len(t.StatusHistory))
	for i, h := range t.StatusHistory {
		history[i] = statusHistoryResponse{
			Status:    string(h.Status),
			Timestamp: h.Timestamp.UTC(),
			ChangedBy: h.ChangedBy,
		}
	}

	resp := taskResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        string(t.Status),
		Priority:      string(t.Priority),
		UserID:        t.UserID,
		ProjectID:     t.ProjectID,
		StatusHistory: history,
		CreatedAt:     t.CreatedAt.UTC(),
		UpdatedAt:     t.UpdatedAt.UTC(),
	}
	if t.DueDate != nil {
		resp.DueDate = t.DueDate.UTC().Format(dateLayout)
	}
	return resp
}

func mapSlice[S any, T any](items []S, fn func(S) T) []T {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return out
}

// parseDueDate accepts an empty string or a calendar date. The request
// validator has already checked the layout.
func parseDueDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
