package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/skillsphere/web/internal/api/middleware"
	"github.com/skillsphere/web/internal/core/domain"
)

// ctxUser returns the identity admitted by the guard and performs a
// fast-fail check before any service call: a guarded handler reached without
// an identity means the route was registered without middleware.Guard.
func ctxUser(c echo.Context) (*domain.User, error) {
	u := middleware.Identity(c)
	if u == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session identity")
	}
	return u, nil
}

// ctxSessionID returns the browser session id attached by middleware.Session.
func ctxSessionID(c echo.Context) (string, error) {
	sid := middleware.SessionID(c)
	if sid == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "missing session")
	}
	return sid, nil
}

// localPath returns from when it is a path on this site, otherwise fallback.
// Scheme-relative ("//host") and backslash tricks are rejected.
func localPath(from, fallback string) string {
	from = strings.TrimSpace(from)
	if len(from) == 0 || from[0] != '/' {
		return fallback
	}
	if len(from) >= 2 && (from[1] == '/' || from[1] == '\\') {
		return fallback
	}
	if strings.ContainsAny(from, "\r\n") {
		return fallback
	}
	lower := strings.ToLower(from)
	for _, prefix := range []string{"/http:", "/https:", "/javascript:"} {
		if strings.HasPrefix(lower, prefix) {
			return fallback
		}
	}
	return from
}
