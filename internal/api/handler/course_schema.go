package handler

// courseFormRequest is the edit form as posted. Numbers stay strings so that
// malformed input can be reported in field order instead of failing the bind.
type courseFormRequest struct {
	Title       string `form:"title" validate:"notblank" label:"Title"`
	ImageURL    string `form:"imageUrl" validate:"notblank" label:"Image URL"`
	Category    string `form:"category" validate:"notblank,category" label:"Category"`
	Description string `form:"description" validate:"notblank" label:"Description"`
	Price       string `form:"price" validate:"price" label:"Price"`
	Duration    string `form:"duration" validate:"hours" label:"Duration"`
	IsFeatured  bool   `form:"isFeatured"`
}
