package middleware

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/skillsphere/web/internal/core/domain"
	"github.com/skillsphere/web/internal/core/guard"
	"github.com/skillsphere/web/internal/core/ports"
	"github.com/skillsphere/web/internal/pkg/metrics"
)

// SessionAccessor returns the session snapshot a request should be judged on.
type SessionAccessor interface {
	Session(c echo.Context) domain.Session
}

// SessionAccessorFunc adapts a function to SessionAccessor.
type SessionAccessorFunc func(c echo.Context) domain.Session

func (f SessionAccessorFunc) Session(c echo.Context) domain.Session { return f(c) }

// ProviderAccessor reads the session from p, waiting at most wait for an
// unresolved session to settle.
func ProviderAccessor(p ports.SessionProvider, wait time.Duration) SessionAccessor {
	return SessionAccessorFunc(func(c echo.Context) domain.Session {
		sid := SessionID(c)
		if wait <= 0 {
			return p.Snapshot(sid)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), wait)
		defer cancel()
		return p.Await(ctx, sid)
	})
}

// Navigator performs replace-style navigation.
type Navigator interface {
	Replace(c echo.Context, path string, state domain.ReturnState) error
}

// RedirectNavigator answers with 303 See Other, so the guarded URL never
// becomes a history entry. A non-empty state travels as the "from" query
// parameter.
type RedirectNavigator struct{}

func (RedirectNavigator) Replace(c echo.Context, path string, state domain.ReturnState) error {
	target := path
	if !state.Empty() {
		target += "?" + url.Values{"from": {state.From}}.Encode()
	}
	return c.Redirect(http.StatusSeeOther, target)
}

// Guard protects a route. Without roles any signed-in identity may pass;
// otherwise the identity's role must be one of roles.
func Guard(accessor SessionAccessor, nav Navigator, loading echo.HandlerFunc, paths guard.Paths, roles ...string) echo.MiddlewareFunc {
	req := guard.RoleRequirement(append([]string(nil), roles...))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := accessor.Session(c)
			d := guard.Decide(s, c.Request().URL.RequestURI(), req, paths)
			metrics.GuardDecisionsTotal.WithLabelValues(d.Outcome.String(), c.Path()).Inc()

			switch d.Outcome {
			case guard.Pending:
				return loading(c)
			case guard.Redirect:
				return nav.Replace(c, d.Path, d.State)
			default:
				c.Set(identityKey, s.Identity)
				return next(c)
			}
		}
	}
}

// Identity returns the user Guard admitted, or nil on unguarded routes.
func Identity(c echo.Context) *domain.User {
	u, _ := c.Get(identityKey).(*domain.User)
	return u
}
