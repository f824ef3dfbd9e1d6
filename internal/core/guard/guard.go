// Package guard decides whether a protected view may render for the current
// session.
//
// Decide is pure: it reads an already-resolved session snapshot and returns a
// Decision. Performing the navigation or rendering the loading page is left to
// the caller (see internal/api/middleware.Guard).
package guard

import "github.com/skillsphere/web/internal/core/domain"

// Outcome tags a Decision.
type Outcome int

const (
	// Pending means identity resolution is still in flight. Show a neutral
	// loading indicator and do not navigate.
	Pending Outcome = iota
	// Render means the protected view may render unchanged.
	Render
	// Redirect means the caller must replace the current location with Path.
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Paths are the destinations the guard redirects to.
type Paths struct {
	SignIn string
	Home   string
}

// DefaultPaths returns the sign-in and home locations used by the web app.
func DefaultPaths() Paths {
	return Paths{SignIn: "/login", Home: "/"}
}

// RoleRequirement is the allow-list of role labels attached to a route.
// An empty requirement admits any authenticated identity.
type RoleRequirement []string

// Allows reports whether role matches one of the labels exactly.
func (r RoleRequirement) Allows(role string) bool {
	for _, label := range r {
		if label == role {
			return true
		}
	}
	return false
}

// Decision is the result of evaluating the guard.
type Decision struct {
	Outcome Outcome
	// Path and State are set only for Redirect.
	Path  string
	State domain.ReturnState
	// Replace is always true for Redirect: guard redirects never add a
	// history entry.
	Replace bool
}

// Decide evaluates the guard for one navigation to location.
//
// The checks run in a fixed order: resolving, then authentication, then
// authorization.
func Decide(s domain.Session, location string, req RoleRequirement, paths Paths) Decision {
	if s.Resolving {
		return Decision{Outcome: Pending}
	}

	if s.Identity == nil {
		return Decision{
			Outcome: Redirect,
			Path:    paths.SignIn,
			State:   domain.ReturnState{From: location},
			Replace: true,
		}
	}

	if len(req) > 0 && !req.Allows(s.Identity.Role) {
		return Decision{Outcome: Redirect, Path: paths.Home, Replace: true}
	}

	return Decision{Outcome: Render}
}
