package domain

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrForbidden      = errors.New("access forbidden")
	ErrValidation     = errors.New("validation failed")
)

// Categories lists the course categories offered by the edit form.
var Categories = []string{
	"Web Development",
	"Backend",
	"Programming Languages",
	"Design",
	"Data Science",
	"DevOps",
	"Mobile",
	"UI/UX Design",
	"Digital Marketing",
	"Graphic Design",
}

// IsCategory reports whether name is one of Categories.
func IsCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Course is a listing as returned by the backend API.
type Course struct {
	ID              string   `json:"_id,omitempty"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	Price           *float64 `json:"price,omitempty"`
	Duration        float64  `json:"duration,omitempty"`
	ImageURL        string   `json:"imageUrl,omitempty"`
	Image           string   `json:"image,omitempty"`
	IsFeatured      bool     `json:"isFeatured"`
	InstructorEmail string   `json:"instructorEmail,omitempty"`
}

// Cover returns the first non-blank image reference, or fallback.
func (c *Course) Cover(fallback string) string {
	for _, v := range []string{c.ImageURL, c.Image} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return fallback
}

// CourseUpdate is the payload sent when an instructor edits a listing.
type CourseUpdate struct {
	Title       string    `json:"title"`
	ImageURL    string    `json:"imageUrl"`
	Price       float64   `json:"price"`
	Duration    float64   `json:"duration"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	IsFeatured  bool      `json:"isFeatured"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Enrollment links a student to a course.
type Enrollment struct {
	ID           string     `json:"_id,omitempty"`
	CourseID     string     `json:"courseId,omitempty"`
	StudentEmail string     `json:"studentEmail,omitempty"`
	EnrolledAt   *time.Time `json:"enrolledAt,omitempty"`
	Course       Course     `json:"course"`
}

// LinkedCourseID returns the course id the enrollment points at.
func (e *Enrollment) LinkedCourseID() string {
	if e.CourseID != "" {
		return e.CourseID
	}
	return e.Course.ID
}

// UnmarshalJSON accepts both the lookup shape, where course details are nested
// under "course", and the flattened snapshot shape, where they sit next to the
// enrollment fields.
func (e *Enrollment) UnmarshalJSON(data []byte) error {
	var head struct {
		ID           string          `json:"_id"`
		CourseID     string          `json:"courseId"`
		StudentEmail string          `json:"studentEmail"`
		EnrolledAt   json.RawMessage `json:"enrolledAt"`
		Course       json.RawMessage `json:"course"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	nested := len(head.Course) > 0 && string(head.Course) != "null"
	body := data
	if nested {
		body = head.Course
	}
	var course Course
	if err := json.Unmarshal(body, &course); err != nil {
		return err
	}
	// In the flattened shape "_id" is the enrollment id, not the course id.
	if !nested {
		course.ID = ""
	}

	*e = Enrollment{
		ID:           head.ID,
		CourseID:     head.CourseID,
		StudentEmail: head.StudentEmail,
		EnrolledAt:   decodeTimestamp(head.EnrolledAt),
		Course:       course,
	}
	return nil
}

// UnmarshalJSON tolerates numbers sent as strings. A price or duration that
// cannot be read is treated as missing rather than failing the listing.
func (c *Course) UnmarshalJSON(data []byte) error {
	type plain Course
	var aux struct {
		plain
		Price    json.RawMessage `json:"price"`
		Duration json.RawMessage `json:"duration"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = Course(aux.plain)
	c.Price = nil
	if v, ok := decodeNumber(aux.Price); ok {
		c.Price = &v
	}
	c.Duration, _ = decodeNumber(aux.Duration)
	return nil
}

// decodeNumber reads a JSON number or numeric string.
func decodeNumber(raw json.RawMessage) (float64, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(str)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// decodeTimestamp accepts a date string, epoch milliseconds, or an extended
// JSON {"$date": ...} wrapper. Anything else yields nil.
func decodeTimestamp(raw json.RawMessage) *time.Time {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil
	}
	switch s[0] {
	case '"':
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil
		}
		return parseTimestamp(str)
	case '{':
		var wrapped struct {
			Date json.RawMessage `json:"$date"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil || len(wrapped.Date) == 0 || wrapped.Date[0] == '{' {
			return nil
		}
		return decodeTimestamp(wrapped.Date)
	}
	ms, ok := decodeNumber(raw)
	if !ok {
		return nil
	}
	t := time.UnixMilli(int64(ms)).UTC()
	return &t
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// parseTimestamp accepts the date formats the backend has been seen to emit.
// Unparseable values yield nil.
func parseTimestamp(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
