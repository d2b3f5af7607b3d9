package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/taskflow-api/internal/core/domain"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Create handles POST /api/tasks.
//
// A repeated Idempotency-Key from the same caller returns the original task
// with 200 instead of creating a new one.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string             false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createTaskRequest  true   "Task details"
// @Success      201              {object}  taskResponse
// @Success      200              {object}  taskResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "due_date must be formatted as YYYY-MM-DD")
	}

	result, err := h.service.Create(c.Request().Context(), actor, ports.CreateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Status:         domain.TaskStatus(req.Status),
		Priority:       domain.Priority(req.Priority),
		DueDate:        due,
		UserID:         req.UserID,
		ProjectID:      req.ProjectID,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if result.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, toTaskResponse(result.Task))
}

// List handles GET /api/tasks.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status      query     string  false  "TODO, IN_PROGRESS or DONE"
// @Param        user_id     query     string  false  "Assignee"
// @Param        project_id  query     string  false  "Project"
// @Param        page        query     int     false  "Page number (1-based)"
// @Param        limit       query     int     false  "Page size (max 100)"
// @Success      200         {object}  pageResponse[taskResponse]
// @Failure      400         {object}  errorResponse
// @Failure      401         {object}  errorResponse
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	page, err := pagination(c)
	if err != nil {
		return err
	}

	result, err := h.service.List(c.Request().Context(), ports.ListTasksFilter{
		Status:     c.QueryParam("status"),
		UserID:     c.QueryParam("user_id"),
		ProjectID:  c.QueryParam("project_id"),
		ListFilter: page,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pageResponse[taskResponse]{
		Items:      mapSlice(result.Items, toTaskResponse),
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

// Get handles GET /api/tasks/:id.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  taskResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	t, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(t))
}

// UpdateStatus handles PATCH /api/tasks/:id/status.
//
// @Summary      Move a task to another status
// @Description  Only the assignee or an admin may change a task.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Task ID"
// @Param        body  body      updateStatusRequest  true  "Target status"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	t, err := h.service.UpdateStatus(c.Request().Context(), actor, c.Param("id"), domain.TaskStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(t))
}
