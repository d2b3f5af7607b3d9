package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/taskflow/taskflow-api/internal/api/metrics"
	"github.com/taskflow/taskflow-api/internal/core/domain"
)

// RequireRole lets the request through only when the authenticated principal
// holds one of allowedRoles. It must run after Auth.
func RequireRole(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := domain.PrincipalFrom(c.Request().Context())
			if !ok {
				return domain.ErrMissingToken
			}
			if _, ok := allowed[p.Role]; !ok {
				metrics.ForbiddenTotal.Inc()
				return domain.ErrInsufficientRole
			}
			return next(c)
		}
	}
}
