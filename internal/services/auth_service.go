package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/hirokisan/task-tracker-api/internal/identity"
	"github.com/hirokisan/task-tracker-api/internal/models"
	"github.com/hirokisan/task-tracker-api/internal/repository"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

var (
	ErrSignInFailed       = errors.New("sign-in failed")
	ErrSignOutFailed      = errors.New("sign-out failed")
	ErrUserNotFound       = errors.New("user not found")
	ErrFailedToCreateUser = errors.New("failed to create user")
)

// AuthService handles the sign-in flow and caller resolution.
type AuthService struct {
	userRepo repository.UserRepository
	provider identity.Provider
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, provider identity.Provider) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		provider: provider,
	}
}

// SignIn exchanges an authorization code for a token, provisions a user row
// on first login, and returns the raw token payload.
func (s *AuthService) SignIn(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, ErrSignInFailed
	}

	subject, err := s.provider.UserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, ErrSignInFailed
	}

	if _, err := s.ensureUser(subject); err != nil {
		return nil, err
	}

	return token, nil
}

// ensureUser returns the user row for a subject, creating it on first login.
// Neither username nor email may collide with an existing row belonging to a
// different subject, so both are checked before the insert.
func (s *AuthService) ensureUser(subject *identity.Subject) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(subject.Username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user by username: %w", err)
	}

	user, err = s.userRepo.FindByEmail(subject.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}

	user = &models.User{
		ID:         subject.ID,
		GivenName:  subject.GivenName,
		FamilyName: subject.FamilyName,
		Username:   subject.Username,
		Email:      subject.Email,
	}

	if err := s.userRepo.Create(user); err != nil {
		// The check-then-insert above is not atomic: a concurrent first
		// sign-in for the same identity may have won the insert. Treat the
		// unique violation as "already created" and reuse the row.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.userRepo.FindByUsername(subject.Username)
		}
		return nil, ErrFailedToCreateUser
	}

	return user, nil
}

// CurrentUser resolves a verified subject username to its user row.
func (s *AuthService) CurrentUser(username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// SignOut revokes the caller's session at the identity provider.
func (s *AuthService) SignOut(ctx context.Context, accessToken string) error {
	if err := s.provider.Logout(ctx, accessToken); err != nil {
		return ErrSignOutFailed
	}
	return nil
}
