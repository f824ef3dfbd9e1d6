package handler

import "github.com/skillsphere/web/internal/core/domain"

type loginRequest struct {
	Email    string `form:"email" json:"email" validate:"required,email" label:"Email"`
	Password string `form:"password" json:"password" validate:"required" label:"Password"`
	From     string `form:"from" json:"-"`
}

type registerRequest struct {
	DisplayName string `form:"display_name" json:"display_name" validate:"max=80" label:"Name"`
	Username    string `form:"username" json:"username" validate:"max=40" label:"Username"`
	Email       string `form:"email" json:"email" validate:"required,email" label:"Email"`
	PhotoURL    string `form:"photo_url" json:"photo_url" validate:"omitempty,url" label:"Photo URL"`
	Password    string `form:"password" json:"password" validate:"required,min=6" label:"Password"`
	Role        string `form:"role" json:"role" validate:"omitempty,oneof=student instructor" label:"Role"`
}

// selfServiceRoles are the roles a visitor may pick when registering.
var selfServiceRoles = []string{domain.RoleStudent, domain.RoleInstructor}

// sessionResponse is the JSON view of the caller's browser session.
type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	Resolving     bool         `json:"resolving"`
	User          *domain.User `json:"user,omitempty"`
}
