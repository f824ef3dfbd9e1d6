package service

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/skillsphere/web/internal/core/domain"
	"github.com/skillsphere/web/internal/core/ports"
	"github.com/skillsphere/web/internal/pkg/metrics"
)

type CourseService struct {
	api    ports.CourseAPI
	cache  ports.CourseCache
	logger zerolog.Logger
	now    func() time.Time
}

// NewCourseService wires the course use cases. cache may be nil.
func NewCourseService(api ports.CourseAPI, cache ports.CourseCache, logger zerolog.Logger) *CourseService {
	return &CourseService{
		api:    api,
		cache:  cache,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// MyEnrollments lists the courses the user is enrolled in, newest first.
// A user without an email has no enrollments.
func (s *CourseService) MyEnrollments(ctx context.Context, user *domain.User) ([]domain.Enrollment, error) {
	if user == nil || strings.TrimSpace(user.Email) == "" {
		return nil, nil
	}

	if s.cache != nil {
		items, ok, err := s.cache.GetEnrollments(ctx, user.Email)
		if err != nil {
			s.logger.Warn().Err(err).Msg("enrollment cache read failed")
		}
		if ok {
			metrics.CourseCacheTotal.WithLabelValues("enrollments", "hit").Inc()
			return items, nil
		}
		metrics.CourseCacheTotal.WithLabelValues("enrollments", "miss").Inc()
	}

	items, err := s.api.ListEnrollments(ctx, user, user.Email)
	if err != nil {
		return nil, fmt.Errorf("my enrollments: %w", err)
	}
	sortNewestFirst(items)

	if s.cache != nil {
		if err := s.cache.SetEnrollments(ctx, user.Email, items); err != nil {
			s.logger.Warn().Err(err).Msg("enrollment cache write failed")
		}
	}
	return items, nil
}

// InstructorCourses lists the listings owned by the user.
func (s *CourseService) InstructorCourses(ctx context.Context, user *domain.User) ([]domain.Course, error) {
	if user == nil || strings.TrimSpace(user.Email) == "" {
		return nil, nil
	}

	if s.cache != nil {
		items, ok, err := s.cache.GetInstructorCourses(ctx, user.Email)
		if err != nil {
			s.logger.Warn().Err(err).Msg("instructor course cache read failed")
		}
		if ok {
			metrics.CourseCacheTotal.WithLabelValues("instructor_courses", "hit").Inc()
			return items, nil
		}
		metrics.CourseCacheTotal.WithLabelValues("instructor_courses", "miss").Inc()
	}

	items, err := s.api.ListInstructorCourses(ctx, user, user.Email)
	if err != nil {
		return nil, fmt.Errorf("instructor courses: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetInstructorCourses(ctx, user.Email, items); err != nil {
			s.logger.Warn().Err(err).Msg("instructor course cache write failed")
		}
	}
	return items, nil
}

func (s *CourseService) GetCourse(ctx context.Context, user *domain.User, id string) (*domain.Course, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrCourseNotFound
	}
	course, err := s.api.GetCourse(ctx, user, id)
	if err != nil {
		return nil, fmt.Errorf("get course %s: %w", id, err)
	}
	return course, nil
}

// UpdateCourse sends the edited listing to the backend and drops cached lists
// that may contain it.
func (s *CourseService) UpdateCourse(ctx context.Context, user *domain.User, id string, in ports.UpdateCourseInput) error {
	if user == nil {
		return domain.ErrForbidden
	}
	if strings.TrimSpace(id) == "" {
		return domain.ErrCourseNotFound
	}
	if err := checkUpdate(in); err != nil {
		metrics.CourseUpdatesTotal.WithLabelValues("invalid").Inc()
		return err
	}

	update := domain.CourseUpdate{
		Title:       strings.TrimSpace(in.Title),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Price:       in.Price,
		Duration:    in.Duration,
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
		IsFeatured:  in.IsFeatured,
		UpdatedAt:   s.now(),
	}

	if err := s.api.UpdateCourse(ctx, user, id, update); err != nil {
		metrics.CourseUpdatesTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("update course %s: %w", id, err)
	}
	metrics.CourseUpdatesTotal.WithLabelValues("updated").Inc()

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn().Err(err).Str("course_id", id).Msg("course cache invalidation failed")
		}
	}

	s.logger.Info().Str("course_id", id).Str("editor", user.Email).Msg("course updated")
	return nil
}

// checkUpdate rejects input the backend would store as a broken listing.
func checkUpdate(in ports.UpdateCourseInput) error {
	for _, f := range []struct{ name, value string }{
		{"title", in.Title},
		{"image url", in.ImageURL},
		{"category", in.Category},
		{"description", in.Description},
	} {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", domain.ErrValidation, f.name)
		}
	}
	switch {
	case !domain.IsCategory(strings.TrimSpace(in.Category)):
		return fmt.Errorf("%w: unknown category %q", domain.ErrValidation, in.Category)
	case in.Price < 0 || math.IsNaN(in.Price) || math.IsInf(in.Price, 0):
		return fmt.Errorf("%w: invalid price", domain.ErrValidation)
	case !(in.Duration > 0) || math.IsInf(in.Duration, 0):
		return fmt.Errorf("%w: invalid duration", domain.ErrValidation)
	}
	return nil
}

// sortNewestFirst orders enrollments by enrolledAt descending; undated
// entries keep their relative order at the end.
func sortNewestFirst(items []domain.Enrollment) {
	slices.SortStableFunc(items, func(a, b domain.Enrollment) int {
		switch {
		case a.EnrolledAt == nil && b.EnrolledAt == nil:
			return 0
		case a.EnrolledAt == nil:
			return 1
		case b.EnrolledAt == nil:
			return -1
		}
		return b.EnrolledAt.Compare(*a.EnrolledAt)
	})
}
