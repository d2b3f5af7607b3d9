package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskflow/taskflow-api/internal/api/metrics"
	"github.com/taskflow/taskflow-api/internal/core/domain"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

// Auth authenticates every request whose path the policy does not mark as
// public. A valid bearer token binds a domain.Principal to the request
// context; any failure returns a token error for the HTTP error handler.
func Auth(policy *AccessPolicy, tokens ports.TokenValidator, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if policy.IsPublic(req.URL.Path) {
				return next(c)
			}

			raw, err := bearerToken(req.Header.Get(echo.HeaderAuthorization))
			if err == nil {
				var claims *domain.Claims
				claims, err = tokens.Validate(raw)
				if err == nil {
					p := domain.Principal{UserID: claims.Subject, Role: claims.Role}
					c.SetRequest(req.WithContext(domain.WithPrincipal(req.Context(), p)))
					return next(c)
				}
			}

			reason := domain.TokenErrorReason(err)
			metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
			log.Warn().
				Str("reason", reason).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("request rejected")
			return err
		}
	}
}

func bearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", domain.ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrMissingToken
	}
	return token, nil
}
