package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/taskflow-api/internal/core/domain"
)

func contextWithPrincipal(p *domain.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if p != nil {
		req = req.WithContext(domain.WithPrincipal(req.Context(), *p))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequireRole_Allows(t *testing.T) {
	c, rec := contextWithPrincipal(&domain.Principal{UserID: "u1", Role: domain.RoleAdmin})

	called := false
	mw := RequireRole(domain.RoleAdmin)
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_Forbids(t *testing.T) {
	c, _ := contextWithPrincipal(&domain.Principal{UserID: "u1", Role: domain.RoleUser})

	mw := RequireRole(domain.RoleAdmin)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); err != domain.ErrInsufficientRole {
		t.Fatalf("expected ErrInsufficientRole, got %v", err)
	}
}

func TestRequireRole_Unauthenticated(t *testing.T) {
	c, _ := contextWithPrincipal(nil)

	handler := RequireRole(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); err != domain.ErrMissingToken {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}
