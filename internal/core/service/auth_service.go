package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/skillsphere/web/internal/core/domain"
	"github.com/skillsphere/web/internal/core/ports"
)

const (
	tokenUseSession = "session"
	tokenUseAPI     = "api"

	defaultTokenTTL    = 24 * time.Hour
	defaultAPITokenTTL = 5 * time.Minute
)

// IdentityService implements registration, sign-in and token handling.
type IdentityService struct {
	repo        ports.AuthRepository
	jwtSecret   string
	tokenTTL    time.Duration
	apiTokenTTL time.Duration
	now         func() time.Time
}

func NewIdentityService(repo ports.AuthRepository, jwtSecret string, tokenTTL, apiTokenTTL time.Duration) *IdentityService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	if apiTokenTTL <= 0 {
		apiTokenTTL = defaultAPITokenTTL
	}
	return &IdentityService{
		repo:        repo,
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
		apiTokenTTL: apiTokenTTL,
		now:         time.Now,
	}
}

func (s *IdentityService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	role := in.Role
	if role == "" {
		role = domain.RoleStudent
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = email
	}

	now := s.now().UTC()
	user := &domain.User{
		Username:     username,
		Email:        email,
		DisplayName:  strings.TrimSpace(in.DisplayName),
		PhotoURL:     strings.TrimSpace(in.PhotoURL),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *IdentityService) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		// Unknown accounts answer like a wrong password.
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user, tokenUseSession, s.tokenTTL)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Resolve verifies a session token and reloads the user it was issued for, so
// role changes made after sign-in take effect on the next resolution.
func (s *IdentityService) Resolve(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}
	if use, _ := claims["use"].(string); use != tokenUseSession {
		return nil, domain.ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return nil, domain.ErrInvalidToken
	}
	return s.repo.FindByEmail(ctx, email)
}

func (s *IdentityService) MintToken(user *domain.User) (string, error) {
	if user == nil {
		return "", errors.New("mint token: no identity")
	}
	return s.generateToken(user, tokenUseAPI, s.apiTokenTTL)
}

func (s *IdentityService) generateToken(user *domain.User, use string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"email":    user.Email,
		"username": user.Username,
		"role":     user.Role,
		"use":      use,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *IdentityService) parseToken(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
