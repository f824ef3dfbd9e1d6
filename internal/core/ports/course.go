package ports

import (
	"context"

	"github.com/skillsphere/web/internal/core/domain"
)

// CourseAPI is the remote REST backend. The user, when non-nil, is the
// identity on whose behalf the request is sent.
type CourseAPI interface {
	ListEnrollments(ctx context.Context, user *domain.User, studentEmail string) ([]domain.Enrollment, error)
	ListInstructorCourses(ctx context.Context, user *domain.User, instructorEmail string) ([]domain.Course, error)
	GetCourse(ctx context.Context, user *domain.User, id string) (*domain.Course, error)
	UpdateCourse(ctx context.Context, user *domain.User, id string, update domain.CourseUpdate) error
}

// CourseCache holds recently fetched per-user lists. A miss is reported as
// (nil, false, nil).
type CourseCache interface {
	GetEnrollments(ctx context.Context, email string) ([]domain.Enrollment, bool, error)
	SetEnrollments(ctx context.Context, email string, items []domain.Enrollment) error
	GetInstructorCourses(ctx context.Context, email string) ([]domain.Course, bool, error)
	SetInstructorCourses(ctx context.Context, email string, items []domain.Course) error
	Invalidate(ctx context.Context) error
}

// UpdateCourseInput is the validated edit form.
type UpdateCourseInput struct {
	Title       string
	ImageURL    string
	Price       float64
	Duration    float64
	Category    string
	Description string
	IsFeatured  bool
}

// CourseService defines the use cases behind the course screens.
type CourseService interface {
	MyEnrollments(ctx context.Context, user *domain.User) ([]domain.Enrollment, error)
	InstructorCourses(ctx context.Context, user *domain.User) ([]domain.Course, error)
	GetCourse(ctx context.Context, user *domain.User, id string) (*domain.Course, error)
	UpdateCourse(ctx context.Context, user *domain.User, id string, in UpdateCourseInput) error
}
