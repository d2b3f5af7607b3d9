package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required,max=255"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

// loginRequest carries no validation tags. Empty fields fail as invalid
// credentials.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// --- Users ---

type createUserRequest struct {
	Name     string `json:"name"     validate:"required,max=255"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=USER ADMIN"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// --- Projects ---

type createProjectRequest struct {
	Name        string `json:"name"        validate:"required,max=255"`
	Description string `json:"description" validate:"max=500"`
}

type projectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	TaskCount   int64     `json:"task_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// --- Tasks ---

type createTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=255"`
	Description string `json:"description" validate:"max=1000"`
	Status      string `json:"status"      validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority    string `json:"priority"    validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate     string `json:"due_date"    validate:"omitempty,datetime=2006-01-02"`
	UserID      string `json:"user_id"     validate:"required"`
	ProjectID   string `json:"project_id"  validate:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=TODO IN_PROGRESS DONE"`
}

type statusHistoryResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	ChangedBy string    `json:"changed_by,omitempty"`
}

type taskResponse struct {
	ID            string                  `json:"id"`
	Title         string                  `json:"title"`
	Description   string                  `json:"description,omitempty"`
	Status        string                  `json:"status"`
	Priority      string                  `json:"priority"`
	DueDate       string                  `json:"due_date,omitempty"`
	UserID        string                  `json:"user_id"`
	ProjectID     string                  `json:"project_id"`
	StatusHistory []statusHistoryResponse `json:"status_history"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// --- Pagination ---

type pageQuery struct {
	Page  int
	Limit int
}

type pageResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}
