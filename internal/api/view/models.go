package view

import "time"

type LoginView struct {
	Email string
	From  string
	Error string
}

type RegisterView struct {
	Username    string
	Email       string
	DisplayName string
	PhotoURL    string
	Role        string
	Roles       []string
	Error       string
}

// EnrollmentCard is one course tile on the enrolled courses page. All text
// fields are already resolved to their display fallbacks.
type EnrollmentCard struct {
	Key         string
	Title       string
	Description string
	Category    string
	Price       *float64
	ImageURL    string
	Link        string
	EnrolledAt  *time.Time
}

type EnrolledView struct {
	Cards  []EnrollmentCard
	Failed bool
}

type CourseRow struct {
	ID         string
	Title      string
	Category   string
	Price      *float64
	Duration   float64
	ImageURL   string
	IsFeatured bool
	EditLink   string
}

type MyCoursesView struct {
	Courses []CourseRow
	Failed  bool
}

// CourseForm holds the raw values of the edit form, as typed.
type CourseForm struct {
	Title       string
	ImageURL    string
	Price       string
	Duration    string
	Category    string
	Description string
	IsFeatured  bool
}

type CourseFormView struct {
	ID         string
	Form       CourseForm
	Categories []string
	Preview    string
	LoadFailed bool
}

type LoadingView struct {
	Target string
}

type ErrorView struct {
	Status  int
	Message string
}
