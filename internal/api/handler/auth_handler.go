package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/skillsphere/web/internal/api/middleware"
	"github.com/skillsphere/web/internal/api/view"
	"github.com/skillsphere/web/internal/core/domain"
	"github.com/skillsphere/web/internal/core/ports"
)

type AuthHandler struct {
	identity ports.IdentityService
	sessions ports.SessionProvider
	pages    *PageHandler
	logger   zerolog.Logger
}

func NewAuthHandler(identity ports.IdentityService, sessions ports.SessionProvider, pages *PageHandler, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{identity: identity, sessions: sessions, pages: pages, logger: logger}
}

// LoginPage handles GET /login. The from query parameter is the page the
// guard intercepted.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return h.renderLogin(c, http.StatusOK, view.LoginView{From: localPath(c.QueryParam("from"), "")})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c echo.Context) error {
	sid, err := ctxSessionID(c)
	if err != nil {
		return err
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return h.renderLogin(c, http.StatusBadRequest, view.LoginView{Error: "Invalid form submission"})
	}
	req.Email = strings.TrimSpace(req.Email)
	form := view.LoginView{Email: req.Email, From: localPath(req.From, "")}

	if err := c.Validate(&req); err != nil {
		form.Error = validationMessage(err)
		return h.renderLogin(c, http.StatusUnprocessableEntity, form)
	}

	token, user, err := h.identity.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrUserNotFound) {
			form.Error = "Invalid email or password"
			return h.renderLogin(c, http.StatusUnauthorized, form)
		}
		return err
	}

	sid = h.renewSession(c, sid)
	if err := h.sessions.SignIn(c.Request().Context(), sid, token, user); err != nil {
		return err
	}

	h.logger.Info().Str("user_id", user.ID).Msg("signed in")
	return c.Redirect(http.StatusSeeOther, localPath(req.From, "/"))
}

// RegisterPage handles GET /register.
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	return h.renderRegister(c, http.StatusOK, view.RegisterView{Role: domain.RoleStudent})
}

// Register handles POST /register: it creates the account and signs it in.
func (h *AuthHandler) Register(c echo.Context) error {
	sid, err := ctxSessionID(c)
	if err != nil {
		return err
	}

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return h.renderRegister(c, http.StatusBadRequest, view.RegisterView{Error: "Invalid form submission"})
	}
	req.Email = strings.TrimSpace(req.Email)
	form := view.RegisterView{
		Username:    req.Username,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		Role:        req.Role,
	}

	if err := c.Validate(&req); err != nil {
		form.Error = validationMessage(err)
		return h.renderRegister(c, http.StatusUnprocessableEntity, form)
	}

	ctx := c.Request().Context()
	_, err = h.identity.Register(ctx, ports.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		Role:        req.Role,
	})
	switch {
	case errors.Is(err, domain.ErrUserExists):
		form.Error = "An account with this email already exists"
		return h.renderRegister(c, http.StatusConflict, form)
	case errors.Is(err, domain.ErrInvalidCredentials):
		form.Error = "Invalid registration details"
		return h.renderRegister(c, http.StatusUnprocessableEntity, form)
	case err != nil:
		return err
	}

	token, user, err := h.identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	sid = h.renewSession(c, sid)
	if err := h.sessions.SignIn(ctx, sid, token, user); err != nil {
		return err
	}

	h.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("registered")
	return c.Redirect(http.StatusSeeOther, "/")
}

// renewSession moves the browser to a fresh session id and retires the old
// one.
func (h *AuthHandler) renewSession(c echo.Context, old string) string {
	sid := middleware.RenewSessionID(c)
	if sid == old {
		return sid
	}
	if err := h.sessions.SignOut(c.Request().Context(), old); err != nil {
		h.logger.Warn().Err(err).Msg("retiring previous session failed")
	}
	return sid
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	sid, err := ctxSessionID(c)
	if err != nil {
		return err
	}
	if err := h.sessions.SignOut(c.Request().Context(), sid); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

// Session reports the caller's session state.
//
// @Summary      Current session
// @Description  Returns the identity bound to the browser session cookie, and whether it is still being resolved.
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      400  {object}  map[string]string
// @Router       /api/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	sid, err := ctxSessionID(c)
	if err != nil {
		return err
	}
	s := h.sessions.Snapshot(sid)
	return c.JSON(http.StatusOK, sessionResponse{
		Authenticated: s.Authenticated(),
		Resolving:     s.Resolving,
		User:          s.Identity,
	})
}

func (h *AuthHandler) renderLogin(c echo.Context, code int, form view.LoginView) error {
	return h.pages.Render(c, code, "login", "Log in", form)
}

func (h *AuthHandler) renderRegister(c echo.Context, code int, form view.RegisterView) error {
	form.Roles = selfServiceRoles
	if form.Role == "" {
		form.Role = domain.RoleStudent
	}
	return h.pages.Render(c, code, "register", "Register", form)
}

func validationMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.First()
	}
	return err.Error()
}
