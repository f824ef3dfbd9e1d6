package handler

import (
	"strconv"
	"strings"

	"github.com/skillsphere/web/internal/api/view"
	"github.com/skillsphere/web/internal/core/domain"
	"github.com/skillsphere/web/internal/core/ports"
)

const (
	cardFallbackImage    = "https://images.unsplash.com/photo-1498050108023-c5249f4df085?q=80&w=1200&auto=format&fit=crop"
	previewFallbackImage = "https://i.ibb.co/5GzXgmq/avatar.png"
)

// --- Domain → View ---

func toEnrollmentCards(items []domain.Enrollment) []view.EnrollmentCard {
	cards := make([]view.EnrollmentCard, 0, len(items))
	for i, e := range items {
		c := e.Course
		courseID := e.LinkedCourseID()

		card := view.EnrollmentCard{
			Key:         e.ID,
			Title:       orDefault(c.Title, "Untitled Course"),
			Description: orDefault(c.Description, "No description available."),
			Category:    orDefault(c.Category, "General"),
			Price:       c.Price,
			ImageURL:    c.Cover(cardFallbackImage),
			Link:        "/courses",
			EnrolledAt:  e.EnrolledAt,
		}
		if courseID != "" {
			card.Link = "/courses/" + courseID
		}
		if card.Key == "" {
			card.Key = courseID + "-" + strconv.Itoa(i)
		}
		cards = append(cards, card)
	}
	return cards
}

func toCourseRows(items []domain.Course) []view.CourseRow {
	rows := make([]view.CourseRow, 0, len(items))
	for _, c := range items {
		rows = append(rows, view.CourseRow{
			ID:         c.ID,
			Title:      orDefault(c.Title, "Untitled Course"),
			Category:   orDefault(c.Category, "General"),
			Price:      c.Price,
			Duration:   c.Duration,
			ImageURL:   c.Cover(cardFallbackImage),
			IsFeatured: c.IsFeatured,
			EditLink:   "/update-course/" + c.ID,
		})
	}
	return rows
}

// courseToForm fills the edit form from the stored listing.
func courseToForm(c *domain.Course) view.CourseForm {
	f := view.CourseForm{
		Title:       c.Title,
		ImageURL:    c.Cover(""),
		Category:    c.Category,
		Description: c.Description,
		IsFeatured:  c.IsFeatured,
	}
	if c.Price != nil {
		f.Price = strconv.FormatFloat(*c.Price, 'f', -1, 64)
	}
	if c.Duration != 0 {
		f.Duration = strconv.FormatFloat(c.Duration, 'f', -1, 64)
	}
	return f
}

// --- Request → View / Service input ---

func requestToForm(req courseFormRequest) view.CourseForm {
	return view.CourseForm{
		Title:       req.Title,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		Duration:    req.Duration,
		Category:    req.Category,
		Description: req.Description,
		IsFeatured:  req.IsFeatured,
	}
}

// toUpdateInput assumes req passed validation.
func toUpdateInput(req courseFormRequest) ports.UpdateCourseInput {
	price, _ := parseNumber(req.Price)
	duration, _ := parseNumber(req.Duration)
	return ports.UpdateCourseInput{
		Title:       req.Title,
		ImageURL:    req.ImageURL,
		Price:       price,
		Duration:    duration,
		Category:    req.Category,
		Description: req.Description,
		IsFeatured:  req.IsFeatured,
	}
}

func formView(id string, f view.CourseForm) view.CourseFormView {
	preview := strings.TrimSpace(f.ImageURL)
	if preview == "" {
		preview = previewFallbackImage
	}
	return view.CourseFormView{
		ID:         id,
		Form:       f,
		Categories: domain.Categories,
		Preview:    preview,
	}
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
