package ports

import (
	"context"

	"github.com/skillsphere/web/internal/core/domain"
)

// RegisterInput carries the fields accepted by the sign-up form.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
	PhotoURL    string
	Role        string
}

// IdentityService is the identity provider: it owns accounts and the tokens
// that prove them.
type IdentityService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// SignIn checks credentials and returns a session identity token.
	SignIn(ctx context.Context, email, password string) (string, *domain.User, error)
	// Resolve verifies a token and reloads the profile it names.
	Resolve(ctx context.Context, token string) (*domain.User, error)
	// MintToken issues a short-lived token for one outgoing backend request.
	MintToken(user *domain.User) (string, error)
}
