package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/taskflow-api/internal/core/domain"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

// principal returns the identity bound by the Auth middleware. A missing
// principal means the route was mounted without Auth, so the request is
// treated as unauthenticated.
func principal(c echo.Context) (domain.Principal, error) {
	p, ok := domain.PrincipalFrom(c.Request().Context())
	if !ok || p.UserID == "" {
		return domain.Principal{}, domain.ErrMissingToken
	}
	return p, nil
}

// pagination reads ?page=&limit=. Missing values stay zero and are
// defaulted by the services.
func pagination(c echo.Context) (ports.ListFilter, error) {
	var q pageQuery
	err := echo.QueryParamsBinder(c).
		Int("page", &q.Page).
		Int("limit", &q.Limit).
		BindError()
	if err != nil || q.Page < 0 || q.Limit < 0 {
		return ports.ListFilter{}, echo.NewHTTPError(http.StatusBadRequest, "page and limit must be positive integers")
	}
	return ports.ListFilter{Page: q.Page, Limit: q.Limit}, nil
}
