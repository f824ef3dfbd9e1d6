package handler

import (
	"errors"
	"testing"
)

func TestValidator_CourseFormOrder(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&courseFormRequest{Price: "-3", Duration: "0"})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	want := []string{
		"Title is required",
		"Image URL is required",
		"Category is required",
		"Description is required",
		"Invalid price",
		"Invalid duration (hours)",
	}
	if len(ve.Messages) != len(want) {
		t.Fatalf("expected %d messages, got %v", len(want), ve.Messages)
	}
	for i := range want {
		if ve.Messages[i] != want[i] {
			t.Fatalf("message %d: expected %q, got %q", i, want[i], ve.Messages[i])
		}
	}
	if ve.First() != "Title is required" {
		t.Fatalf("unexpected first message %q", ve.First())
	}
}

func TestValidator_Numbers(t *testing.T) {
	cases := []struct {
		in          string
		price, hour bool
	}{
		{"", true, false},
		{"0", true, false},
		{" 12.5 ", true, true},
		{"-0.01", false, false},
		{"NaN", false, false},
		{"Inf", false, false},
		{"1e2", true, true},
		{"ten", false, false},
	}
	for _, tc := range cases {
		f, ok := parseNumber(tc.in)
		if gotPrice := ok && f >= 0; gotPrice != tc.price {
			t.Errorf("price(%q) = %v, want %v", tc.in, gotPrice, tc.price)
		}
		if gotHours := ok && f > 0; gotHours != tc.hour {
			t.Errorf("hours(%q) = %v, want %v", tc.in, gotHours, tc.hour)
		}
	}
}

func TestValidator_Valid(t *testing.T) {
	err := NewValidator().Validate(&courseFormRequest{
		Title:       "Go",
		ImageURL:    "https://img/x.png",
		Category:    "Backend",
		Description: "d",
		Price:       "0",
		Duration:    "1",
	})
	if err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}
}

func TestValidationMessage_PlainError(t *testing.T) {
	if got := validationMessage(errors.New("boom")); got != "boom" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestValidator_Category(t *testing.T) {
	form := func(category string) *courseFormRequest {
		return &courseFormRequest{
			Title:       "Go",
			ImageURL:    "https://img/x.png",
			Category:    category,
			Description: "d",
			Price:       "1",
			Duration:    "1",
		}
	}
	v := NewValidator()

	for _, name := range []string{"", "Cooking", "backend"} {
		var ve *ValidationError
		if err := v.Validate(form(name)); !errors.As(err, &ve) {
			t.Fatalf("category %q: expected *ValidationError, got %v", name, err)
		}
		want := "Invalid category"
		if name == "" {
			want = "Category is required"
		}
		if ve.First() != want {
			t.Fatalf("category %q: expected %q, got %q", name, want, ve.First())
		}
	}
	if err := v.Validate(form("UI/UX Design")); err != nil {
		t.Fatalf("expected listed category to pass, got %v", err)
	}
}
