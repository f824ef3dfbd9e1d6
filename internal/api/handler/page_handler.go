package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/skillsphere/web/internal/api/middleware"
	"github.com/skillsphere/web/internal/api/view"
	"github.com/skillsphere/web/internal/core/ports"
)

// PageHandler renders pages inside the site layout and serves the pages that
// need no backend data.
type PageHandler struct {
	sessions ports.SessionProvider
	flashes  ports.FlashStore
	logger   zerolog.Logger
}

func NewPageHandler(sessions ports.SessionProvider, flashes ports.FlashStore, logger zerolog.Logger) *PageHandler {
	return &PageHandler{sessions: sessions, flashes: flashes, logger: logger}
}

// Render executes page name inside the layout. The navigation reflects the
// guard-admitted identity, or the current snapshot on public routes. Pending
// flash messages are consumed.
func (h *PageHandler) Render(c echo.Context, code int, name, title string, data any) error {
	p := view.Page{Title: title, Data: data, User: middleware.Identity(c)}

	if sid := middleware.SessionID(c); sid != "" {
		if p.User == nil && h.sessions != nil {
			p.User = h.sessions.Snapshot(sid).Identity
		}
		if h.flashes != nil {
			flashes, err := h.flashes.Pop(c.Request().Context(), sid)
			if err != nil {
				h.logger.Warn().Err(err).Msg("flash read failed")
			}
			p.Flashes = flashes
		}
	}
	return c.Render(code, name, p)
}

// Home handles GET /.
func (h *PageHandler) Home(c echo.Context) error {
	return h.Render(c, http.StatusOK, "home", "", nil)
}

// Loading is the guard's pending page: it asks the browser to come back to
// the same location once the session has had time to resolve.
func (h *PageHandler) Loading(c echo.Context) error {
	target := c.Request().URL.RequestURI()
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.Render(http.StatusAccepted, "loading", view.Page{
		Title:          "Loading",
		Refresh:        target,
		RefreshSeconds: 1,
		Data:           view.LoadingView{Target: target},
	})
}

// NotFound renders the 404 page.
func (h *PageHandler) NotFound(c echo.Context) error {
	return h.Render(c, http.StatusNotFound, "not_found", "404 - Page Not Found", nil)
}

// Error renders the generic error page.
func (h *PageHandler) Error(c echo.Context, code int, message string) error {
	return h.Render(c, code, "error", http.StatusText(code), view.ErrorView{Status: code, Message: message})
}
