package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/taskflow-api/internal/core/domain"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

// UserHandler serves account management. Listing, creating and deleting are
// mounted behind RequireRole(ADMIN) by the router.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Create handles POST /api/users.
//
// @Summary      Create a user with an explicit role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "Account details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.Create(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// List handles GET /api/users.
//
// @Summary      List live users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (1-based)"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {object}  pageResponse[userResponse]
// @Failure      401    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	filter, err := pagination(c)
	if err != nil {
		return err
	}

	result, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pageResponse[userResponse]{
		Items:      mapSlice(result.Items, toUserResponse),
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

// Get handles GET /api/users/:id.
//
// @Summary      Get a user
// @Description  Users may read their own record; admins may read any.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}

	user, err := h.service.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Me handles GET /api/me.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}

	user, err := h.service.Get(c.Request().Context(), actor, actor.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Delete handles DELETE /api/users/:id.
//
// @Summary      Soft-delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id  path  string  true  "User ID"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
