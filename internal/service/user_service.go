package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eventhub/internal/core/auth"
	"eventhub/internal/domain"
	"eventhub/pkg/utils"
)

// UserService handles account registration, login and deactivation.
type UserService struct {
	users domain.UserRepository
	jwter *auth.JWTer
}

func NewUserService(users domain.UserRepository, jwter *auth.JWTer) *UserService {
	return &UserService{users: users, jwter: jwter}
}

// Register creates a new account. An active account with the same email
// fails with ErrEmailTaken; a deactivated one does not block re-registration.
func (s *UserService) Register(ctx context.Context, username, email, password string) error {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return fmt.Errorf("%w: username, email and password are required", domain.ErrValidation)
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.ErrEmailTaken
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}

	u := &domain.User{
		ID:           utils.NewID(),
		Username:     username,
		Email:        email,
		PasswordHash: utils.HashPassword(password),
		Role:         "user",
	}
	return s.users.Create(ctx, u)
}

// Login verifies credentials and issues a signed token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.ErrEmailNotRegistered
	}
	if err != nil {
		return "", err
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}

	tok, err := s.jwter.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return tok, nil
}

// Deactivate soft-deletes the account. The user keeps their registrations
// but can no longer authenticate.
func (s *UserService) Deactivate(ctx context.Context, userID string) error {
	return s.users.SoftDelete(ctx, userID)
}

// List is the admin-side user listing.
func (s *UserService) List(ctx context.Context, q domain.ListUsersQuery) ([]domain.User, int64, error) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	return s.users.List(ctx, q)
}
