package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/skillsphere/web/internal/api/handler"
	"github.com/skillsphere/web/internal/api/view"
	"github.com/skillsphere/web/internal/core/domain"
)

func TestResolveError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "bad form"), http.StatusBadRequest, "bad form"},
		{"course not found", fmt.Errorf("get course: %w", domain.ErrCourseNotFound), http.StatusNotFound, "course not found"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"validation", fmt.Errorf("%w: price", domain.ErrValidation), http.StatusUnprocessableEntity, "validation failed: price"},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"user not found", domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
		{"user exists", domain.ErrUserExists, http.StatusConflict, "user already exists"},
		{"unexpected", errors.New("socket closed"), http.StatusInternalServerError, "internal server error"},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			code, msg := resolveError(tt.err, zerolog.Nop(), c)
			if code != tt.code || msg != tt.msg {
				t.Fatalf("expected %d %q, got %d %q", tt.code, tt.msg, code, msg)
			}
		})
	}
}

func newErrorEcho(t *testing.T) (*echo.Echo, echo.HTTPErrorHandler) {
	t.Helper()
	e := echo.New()
	r, err := view.New()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e.Renderer = r
	pages := handler.NewPageHandler(nil, nil, zerolog.Nop())
	return e, NewHTTPErrorHandler(zerolog.Nop(), pages)
}

func TestHTTPErrorHandler_JSONForAPI(t *testing.T) {
	e, h := newErrorEcho(t)
	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	rec := httptest.NewRecorder()

	h(domain.ErrForbidden, e.NewContext(req, rec))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"access forbidden"}` {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestHTTPErrorHandler_JSONByAccept(t *testing.T) {
	e, h := newErrorEcho(t)
	req := httptest.NewRequest(http.MethodGet, "/update-course/x", nil)
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	h(domain.ErrCourseNotFound, e.NewContext(req, rec))

	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"error":"course not found"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestHTTPErrorHandler_HTMLPages(t *testing.T) {
	e, h := newErrorEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	req.Header.Set(echo.HeaderAccept, "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()
	h(echo.ErrNotFound, e.NewContext(req, rec))
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "Page Not Found") {
		t.Fatalf("expected not found page, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/my-enrolled", nil)
	rec = httptest.NewRecorder()
	h(errors.New("boom"), e.NewContext(req, rec))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "internal server error") || strings.Contains(body, "boom") {
		t.Fatalf("expected generic message only: %s", body)
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	e, h := newErrorEcho(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = c.String(http.StatusOK, "done")

	h(errors.New("late"), c)

	if rec.Body.String() != "done" {
		t.Fatalf("committed response was modified: %q", rec.Body.String())
	}
}
