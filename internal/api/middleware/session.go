package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	sessionIDKey = "session_id"
	renewKey     = "session_renew"
	identityKey  = "identity"
)

// SessionOptions configures the browser session cookie.
type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session makes sure every request carries a browser session id. A missing
// or malformed cookie is replaced with a fresh random id.
func Session(opts SessionOptions) echo.MiddlewareFunc {
	if opts.CookieName == "" {
		opts.CookieName = "skillsphere_sid"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""
			if ck, err := c.Cookie(opts.CookieName); err == nil {
				if _, err := uuid.Parse(ck.Value); err == nil {
					sid = ck.Value
				}
			}

			if sid == "" {
				sid = issueSessionID(c, opts)
			}

			c.Set(sessionIDKey, sid)
			c.Set(renewKey, func() string {
				sid := issueSessionID(c, opts)
				c.Set(sessionIDKey, sid)
				return sid
			})
			return next(c)
		}
	}
}

func issueSessionID(c echo.Context, opts SessionOptions) string {
	sid := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     opts.CookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}

// RenewSessionID replaces the browser session id with a fresh one and returns
// it. Call it when the session changes hands, before storing the new identity,
// so an id planted before sign-in never becomes authenticated. Without the
// Session middleware it returns the current id unchanged.
func RenewSessionID(c echo.Context) string {
	if renew, ok := c.Get(renewKey).(func() string); ok {
		return renew()
	}
	return SessionID(c)
}

// SessionID returns the id attached by Session, or "".
func SessionID(c echo.Context) string {
	sid, _ := c.Get(sessionIDKey).(string)
	return sid
}
