package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/skillsphere/web/internal/api/view"
	"github.com/skillsphere/web/internal/core/domain"
	"github.com/skillsphere/web/internal/core/ports"
)

const testSID = "6f1c1f62-9a8e-4a53-9b3e-1f1f3d0a9c11"

type stubIdentityService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	signInFn   func(ctx context.Context, email, password string) (string, *domain.User, error)
}

func (s *stubIdentityService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubIdentityService) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.signInFn(ctx, email, password)
}

func (s *stubIdentityService) Resolve(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrInvalidToken
}

func (s *stubIdentityService) MintToken(*domain.User) (string, error) { return "minted", nil }

type stubSessions struct {
	session   domain.Session
	signedIn  map[string]string
	signedOut []string
}

func (s *stubSessions) Snapshot(string) domain.Session               { return s.session }
func (s *stubSessions) Await(context.Context, string) domain.Session { return s.session }
func (s *stubSessions) SignOut(_ context.Context, sid string) error {
	s.signedOut = append(s.signedOut, sid)
	return nil
}
func (s *stubSessions) SignIn(_ context.Context, sid, token string, u *domain.User) error {
	if s.signedIn == nil {
		s.signedIn = map[string]string{}
	}
	s.signedIn[sid] = token
	s.session = domain.Session{Identity: u}
	return nil
}

type memFlashes struct {
	mu    sync.Mutex
	items map[string][]domain.Flash
	all   []domain.Flash
}

func (m *memFlashes) Push(_ context.Context, sid string, f domain.Flash) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = map[string][]domain.Flash{}
	}
	m.items[sid] = append(m.items[sid], f)
	m.all = append(m.all, f)
	return nil
}

func (m *memFlashes) Pop(_ context.Context, sid string) ([]domain.Flash, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.items[sid]
	delete(m.items, sid)
	return out, nil
}

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	r, err := view.New()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e.Renderer = r
	e.Validator = NewValidator()
	return e
}

// newFormContext builds a context for a form POST (or a GET when form is nil)
// carrying the test session id and, optionally, a guard-admitted identity.
func newFormContext(e *echo.Echo, method, target string, form url.Values, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("session_id", testSID)
	if user != nil {
		c.Set("identity", user)
	}
	return c, rec
}
