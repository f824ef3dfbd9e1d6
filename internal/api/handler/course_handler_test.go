package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/skillsphere/web/internal/core/domain"
	"github.com/skillsphere/web/internal/core/ports"
	"github.com/skillsphere/web/internal/infrastructure/backend"
)

type stubCourseService struct {
	enrollments []domain.Enrollment
	courses     []domain.Course
	course      *domain.Course
	err         error
	updateErr   error

	updatedID string
	updated   ports.UpdateCourseInput
	updates   int
}

func (s *stubCourseService) MyEnrollments(context.Context, *domain.User) ([]domain.Enrollment, error) {
	return s.enrollments, s.err
}

func (s *stubCourseService) InstructorCourses(context.Context, *domain.User) ([]domain.Course, error) {
	return s.courses, s.err
}

func (s *stubCourseService) GetCourse(context.Context, *domain.User, string) (*domain.Course, error) {
	return s.course, s.err
}

func (s *stubCourseService) UpdateCourse(_ context.Context, _ *domain.User, id string, in ports.UpdateCourseInput) error {
	s.updates++
	s.updatedID = id
	s.updated = in
	return s.updateErr
}

var instructor = &domain.User{ID: "u9", Email: "ian@example.com", Role: domain.RoleInstructor}

func newCourseHandler(svc *stubCourseService, flashes *memFlashes) *CourseHandler {
	pages := NewPageHandler(&stubSessions{}, flashes, zerolog.Nop())
	return NewCourseHandler(svc, flashes, pages, zerolog.Nop())
}

func validCourseForm() url.Values {
	return url.Values{
		"title":       {"Go in Practice"},
		"imageUrl":    {"https://img.example.com/go.png"},
		"price":       {"49.99"},
		"duration":    {"12"},
		"category":    {"Backend"},
		"description": {"Hands-on Go."},
		"isFeatured":  {"true"},
	}
}

func postUpdate(e *echo.Echo, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := newFormContext(e, http.MethodPost, "/update-course/c1", form, instructor)
	c.SetParamNames("id")
	c.SetParamValues("c1")
	return c, rec
}

func TestCourseHandler_MyEnrolled(t *testing.T) {
	e := newTestEcho(t)
	when := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	svc := &stubCourseService{enrollments: []domain.Enrollment{
		{ID: "e1", CourseID: "c1", EnrolledAt: &when, Course: domain.Course{Title: "Go"}},
		{ID: "e2"},
	}}
	h := newCourseHandler(svc, &memFlashes{})

	c, rec := newFormContext(e, http.MethodGet, "/my-enrolled", nil, &domain.User{Email: "amy@example.com"})
	if err := h.MyEnrolled(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := rec.Body.String()
	for _, want := range []string{"My Enrolled Courses", "Go", "Untitled Course", "No description available.", "General", `href="/courses/c1"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in body:\n%s", want, body)
		}
	}
}

func TestCourseHandler_MyEnrolled_Branches(t *testing.T) {
	e := newTestEcho(t)

	c, rec := newFormContext(e, http.MethodGet, "/my-enrolled", nil, &domain.User{Email: "a@b.co"})
	_ = newCourseHandler(&stubCourseService{err: errors.New("down")}, &memFlashes{}).MyEnrolled(c)
	if !strings.Contains(rec.Body.String(), "Failed to load your enrollments.") {
		t.Fatalf("expected error branch")
	}

	c, rec = newFormContext(e, http.MethodGet, "/my-enrolled", nil, &domain.User{Email: "a@b.co"})
	_ = newCourseHandler(&stubCourseService{}, &memFlashes{}).MyEnrolled(c)
	if !strings.Contains(rec.Body.String(), "You haven't enrolled in any courses yet.") {
		t.Fatalf("expected empty branch")
	}
}

func TestCourseHandler_RequiresIdentity(t *testing.T) {
	e := newTestEcho(t)
	h := newCourseHandler(&stubCourseService{}, &memFlashes{})

	c, _ := newFormContext(e, http.MethodGet, "/my-enrolled", nil, nil)
	err := h.MyEnrolled(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestCourseHandler_MyCourses(t *testing.T) {
	e := newTestEcho(t)
	price := 10.0
	svc := &stubCourseService{courses: []domain.Course{{ID: "c7", Title: "Rust", Price: &price}}}
	h := newCourseHandler(svc, &memFlashes{})

	c, rec := newFormContext(e, http.MethodGet, "/dashboard/my-courses", nil, instructor)
	if err := h.MyCourses(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `href="/update-course/c7"`) || !strings.Contains(rec.Body.String(), "$10.00") {
		t.Fatalf("unexpected body:\n%s", rec.Body.String())
	}
}

func TestCourseHandler_EditCourse(t *testing.T) {
	e := newTestEcho(t)
	price := 49.5
	svc := &stubCourseService{course: &domain.Course{ID: "c1", Title: "Go", Image: "https://img/legacy.png", Price: &price, Duration: 12, Category: "Backend"}}
	h := newCourseHandler(svc, &memFlashes{})

	c, rec := newFormContext(e, http.MethodGet, "/update-course/c1", nil, instructor)
	c.SetParamNames("id")
	c.SetParamValues("c1")
	if err := h.EditCourse(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := rec.Body.String()
	for _, want := range []string{`value="Go"`, `value="https://img/legacy.png"`, `value="49.5"`, `value="12"`, `<option value="Backend" selected>`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in form:\n%s", want, body)
		}
	}
}

func TestCourseHandler_EditCourse_Errors(t *testing.T) {
	e := newTestEcho(t)

	c, _ := newFormContext(e, http.MethodGet, "/update-course/c404", nil, instructor)
	err := newCourseHandler(&stubCourseService{err: domain.ErrCourseNotFound}, &memFlashes{}).EditCourse(c)
	if !errors.Is(err, domain.ErrCourseNotFound) {
		t.Fatalf("expected not found to reach the error handler, got %v", err)
	}

	c, rec := newFormContext(e, http.MethodGet, "/update-course/c1", nil, instructor)
	_ = newCourseHandler(&stubCourseService{err: errors.New("timeout")}, &memFlashes{}).EditCourse(c)
	if rec.Code != http.StatusBadGateway || !strings.Contains(rec.Body.String(), "Failed to load course.") {
		t.Fatalf("expected load failure page, got %d", rec.Code)
	}
}

func TestCourseHandler_UpdateCourse_Success(t *testing.T) {
	e := newTestEcho(t)
	svc := &stubCourseService{}
	flashes := &memFlashes{}
	h := newCourseHandler(svc, flashes)

	c, rec := postUpdate(e, validCourseForm())
	if err := h.UpdateCourse(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard/my-courses" {
		t.Fatalf("expected 303 to my-courses, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if svc.updatedID != "c1" || svc.updated.Price != 49.99 || svc.updated.Duration != 12 || !svc.updated.IsFeatured {
		t.Fatalf("unexpected update: %s %+v", svc.updatedID, svc.updated)
	}
	pending, _ := flashes.Pop(context.Background(), testSID)
	if len(pending) != 1 || pending[0].Kind != domain.FlashSuccess || pending[0].Message != "Course updated successfully" {
		t.Fatalf("expected success flash, got %+v", pending)
	}
}

func TestCourseHandler_UpdateCourse_ValidationOrder(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(url.Values)
		want   string
	}{
		{"everything blank", func(v url.Values) {
			for k := range v {
				v.Set(k, "")
			}
		}, "Title is required"},
		{"blank title", func(v url.Values) { v.Set("title", "   ") }, "Title is required"},
		{"blank image", func(v url.Values) { v.Set("imageUrl", "") }, "Image URL is required"},
		{"no category", func(v url.Values) { v.Set("category", "") }, "Category is required"},
		{"unlisted category", func(v url.Values) { v.Set("category", "Cooking") }, "Invalid category"},
		{"blank description", func(v url.Values) { v.Set("description", "\n") }, "Description is required"},
		{"negative price", func(v url.Values) { v.Set("price", "-1") }, "Invalid price"},
		{"non-numeric price", func(v url.Values) { v.Set("price", "abc") }, "Invalid price"},
		{"zero duration", func(v url.Values) { v.Set("duration", "0") }, "Invalid duration (hours)"},
		{"blank duration", func(v url.Values) { v.Set("duration", "") }, "Invalid duration (hours)"},
		{"price and duration bad", func(v url.Values) {
			v.Set("price", "x")
			v.Set("duration", "y")
		}, "Invalid price"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho(t)
			svc := &stubCourseService{}
			flashes := &memFlashes{}
			h := newCourseHandler(svc, flashes)

			form := validCourseForm()
			tc.mutate(form)
			c, rec := postUpdate(e, form)
			if err := h.UpdateCourse(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}

			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d", rec.Code)
			}
			if svc.updates != 0 {
				t.Fatalf("invalid form must not be submitted")
			}
			if len(flashes.all) != 1 || flashes.all[0].Message != tc.want || flashes.all[0].Kind != domain.FlashError {
				t.Fatalf("expected toast %q, got %+v", tc.want, flashes.all)
			}
			if !strings.Contains(rec.Body.String(), "toast-error") {
				t.Fatalf("expected toast on the re-rendered form")
			}
		})
	}
}

func TestCourseHandler_UpdateCourse_BlankPriceIsZero(t *testing.T) {
	e := newTestEcho(t)
	svc := &stubCourseService{}
	h := newCourseHandler(svc, &memFlashes{})

	form := validCourseForm()
	form.Set("price", "")
	c, rec := postUpdate(e, form)
	_ = h.UpdateCourse(c)

	if rec.Code != http.StatusSeeOther || svc.updated.Price != 0 {
		t.Fatalf("expected free course to be accepted, got %d %+v", rec.Code, svc.updated)
	}
}

func TestCourseHandler_UpdateCourse_BackendFailure(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"backend message", &backend.Error{Status: 403, Message: "You do not own this course"}, "You do not own this course"},
		{"no message", &backend.Error{Status: 500}, "Failed to update course. Please try again."},
		{"transport error", errors.New("connection reset"), "Failed to update course. Please try again."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho(t)
			flashes := &memFlashes{}
			h := newCourseHandler(&stubCourseService{updateErr: tc.err}, flashes)

			c, rec := postUpdate(e, validCourseForm())
			if err := h.UpdateCourse(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusBadGateway {
				t.Fatalf("expected 502, got %d", rec.Code)
			}
			if len(flashes.all) != 1 || flashes.all[0].Message != tc.want {
				t.Fatalf("expected toast %q, got %+v", tc.want, flashes.all)
			}
			if !strings.Contains(rec.Body.String(), `value="Go in Practice"`) {
				t.Fatalf("expected the form to keep its values")
			}
		})
	}
}

func TestCourseHandler_UpdateCourse_ServiceRejectsInput(t *testing.T) {
	e := newTestEcho(t)
	flashes := &memFlashes{}
	svc := &stubCourseService{updateErr: fmt.Errorf("%w: invalid price", domain.ErrValidation)}
	h := newCourseHandler(svc, flashes)

	c, rec := postUpdate(e, validCourseForm())
	if err := h.UpdateCourse(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if len(flashes.all) != 1 || flashes.all[0].Message != "Please check the course details and try again." {
		t.Fatalf("unexpected toast %+v", flashes.all)
	}
	if !strings.Contains(rec.Body.String(), `value="Go in Practice"`) {
		t.Fatalf("expected the form to keep its values")
	}
}
