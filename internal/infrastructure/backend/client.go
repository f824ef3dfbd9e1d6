// Package backend is the authenticated HTTP client for the course REST API.
//
// Every request made on behalf of a signed-in user carries a freshly minted
// bearer token. Requests without a user are sent unauthenticated.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillsphere/web/internal/core/domain"
	"github.com/skillsphere/web/internal/pkg/metrics"
)

const (
	tracerName     = "skillsphere/backend"
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10
)

// TokenMinter issues the short-lived token attached to each request.
type TokenMinter interface {
	MintToken(user *domain.User) (string, error)
}

// Error is a non-2xx answer from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: status %d", e.Status)
	}
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
}

// Message extracts the backend's user-facing message from err, if any.
func Message(err error) string {
	var be *Error
	if errors.As(err, &be) {
		return be.Message
	}
	return ""
}

// Config captures the client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client satisfies ports.CourseAPI.
type Client struct {
	base   *url.URL
	http   *http.Client
	minter TokenMinter
	tracer trace.Tracer
	log    zerolog.Logger
}

func NewClient(cfg Config, minter TokenMinter, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend: invalid base url %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		base:   base,
		http:   &http.Client{Timeout: timeout},
		minter: minter,
		tracer: otel.Tracer(tracerName),
		log:    log,
	}, nil
}

// ListEnrollments returns the enrollments of studentEmail.
func (c *Client) ListEnrollments(ctx context.Context, user *domain.User, studentEmail string) ([]domain.Enrollment, error) {
	req := request{
		method: http.MethodGet,
		route:  "/my-enrolled-course",
		query:  url.Values{"studentEmail": {studentEmail}},
	}
	var out []domain.Enrollment
	if err := c.do(ctx, user, req, &out); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return out, nil
}

// ListInstructorCourses returns the listings owned by instructorEmail.
func (c *Client) ListInstructorCourses(ctx context.Context, user *domain.User, instructorEmail string) ([]domain.Course, error) {
	req := request{
		method: http.MethodGet,
		route:  "/my-courses",
		query:  url.Values{"instructorEmail": {instructorEmail}},
	}
	var out []domain.Course
	if err := c.do(ctx, user, req, &out); err != nil {
		return nil, fmt.Errorf("list instructor courses: %w", err)
	}
	return out, nil
}

// GetCourse loads one listing. The backend answers with either the object or
// a one-element array; an empty array or a 404 is domain.ErrCourseNotFound.
func (c *Client) GetCourse(ctx context.Context, user *domain.User, id string) (*domain.Course, error) {
	var raw json.RawMessage
	if err := c.do(ctx, user, courseRequest(http.MethodGet, id, nil), &raw); err != nil {
		var be *Error
		if errors.As(err, &be) && be.Status == http.StatusNotFound {
			return nil, domain.ErrCourseNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}

	course, err := decodeCourse(raw)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	return course, nil
}

// UpdateCourse replaces the editable fields of a listing.
func (c *Client) UpdateCourse(ctx context.Context, user *domain.User, id string, update domain.CourseUpdate) error {
	if err := c.do(ctx, user, courseRequest(http.MethodPut, id, update), nil); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Ping checks that the backend answers at all. Any HTTP response counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.base.String()+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend ping: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}

func decodeCourse(raw json.RawMessage) (*domain.Course, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, domain.ErrCourseNotFound
	}
	if trimmed[0] == '[' {
		var list []domain.Course
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decode course list: %w", err)
		}
		if len(list) == 0 {
			return nil, domain.ErrCourseNotFound
		}
		return &list[0], nil
	}
	var course domain.Course
	if err := json.Unmarshal(trimmed, &course); err != nil {
		return nil, fmt.Errorf("decode course: %w", err)
	}
	return &course, nil
}

// request describes one backend call. route is the path template that names
// the span; path, when set, is the concrete path sent on the wire.
type request struct {
	method string
	route  string
	path   string
	query  url.Values
	body   any
	attrs  []attribute.KeyValue
}

func (r request) target() string {
	if r.path != "" {
		return r.path
	}
	return r.route
}

func courseRequest(method, id string, body any) request {
	return request{
		method: method,
		route:  "/courses/:id",
		path:   "/courses/" + url.PathEscape(id),
		body:   body,
		attrs:  []attribute.KeyValue{attribute.String("skillsphere.course_id", id)},
	}
}

func (c *Client) do(ctx context.Context, user *domain.User, r request, out any) error {
	method, path := r.method, r.target()
	attrs := append([]attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", r.route),
		attribute.Bool("skillsphere.authenticated", user != nil),
	}, r.attrs...)
	ctx, span := c.tracer.Start(ctx, method+" "+r.route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	start := time.Now()
	status, err := c.roundTrip(ctx, user, method, path, r.query, r.body, out)
	metrics.BackendRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
	metrics.BackendRequestsTotal.WithLabelValues(method, label).Inc()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Int("status", status).Msg("backend request failed")
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (c *Client) roundTrip(ctx context.Context, user *domain.User, method, path string, query url.Values, body, out any) (int, error) {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + path
	u.RawQuery = query.Encode()

	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), payload)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		token, err := c.minter.MintToken(user)
		if err != nil {
			return 0, fmt.Errorf("mint token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func decodeError(resp *http.Response) error {
	be := &Error{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil {
		be.Message = envelope.Message
		if be.Message == "" {
			be.Message = envelope.Error
		}
	}
	return be
}
