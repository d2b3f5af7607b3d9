package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/taskflow-api/internal/core/ports"
)

type ProjectHandler struct {
	service ports.ProjectService
}

func NewProjectHandler(service ports.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// Create handles POST /api/projects.
//
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProjectRequest  true  "Project details"
// @Success      201   {object}  projectResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	var req createProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	p, err := h.service.Create(c.Request().Context(), ports.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toProjectResponse(p))
}

// List handles GET /api/projects.
//
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (1-based)"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {object}  pageResponse[projectResponse]
// @Failure      401    {object}  errorResponse
// @Router       /api/projects [get]
func (h *ProjectHandler) List(c echo.Context) error {
	filter, err := pagination(c)
	if err != nil {
		return err
	}

	result, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pageResponse[projectResponse]{
		Items:      mapSlice(result.Items, toProjectResponse),
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

// Get handles GET /api/projects/:id.
//
// @Summary      Get a project with its task count
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  projectResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/projects/{id} [get]
func (h *ProjectHandler) Get(c echo.Context) error {
	p, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProjectResponse(p))
}
