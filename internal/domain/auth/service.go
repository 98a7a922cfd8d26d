package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gaiafact/internal/core/apperror"
	"gaiafact/internal/core/id"
	"gaiafact/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	PasswordMinLength int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		PasswordMinLength: 8,
	}
}

// Service provides authentication and the reviewer directory.
type Service struct {
	userRepo   UserRepository
	jwtService *JWTService
	config     ServiceConfig
}

// NewService creates a new auth service.
func NewService(userRepo UserRepository, jwtService *JWTService, config ServiceConfig) *Service {
	return &Service{
		userRepo:   userRepo,
		jwtService: jwtService,
		config:     config,
	}
}

// Register registers a new user with the operator role. Elevated roles are
// granted afterwards by a superadmin through SetRole.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.NewValidation("a valid email is required").WithDetail("field", "email")
	}
	if len(req.Password) < s.config.PasswordMinLength {
		return nil, apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}

	exists, err := s.userRepo.Exists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return nil, apperror.NewConflict("email already registered").WithDetail("email", email)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(email, string(passwordHash), req.Name)
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info(ctx, "user registered",
		"user_id", user.ID,
		"email", user.Email)

	return user, nil
}

// Login authenticates user and returns an access token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*TokenResult, *User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(creds.Email)))
	if err != nil {
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}
	if err := user.CanLogin(); err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate token: %w", err)
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		logger.Warn(ctx, "record login failed", "user_id", user.ID, "error", err)
	}

	logger.Info(ctx, "user logged in",
		"user_id", user.ID,
		"email", user.Email)

	return &TokenResult{AccessToken: token, ExpiresAt: expiresAt}, user, nil
}

// SetRole changes a user's role and marks the account verified. Reviewer
// eligibility requires both.
func (s *Service) SetRole(ctx context.Context, userID id.ID, role string) (*User, error) {
	if !ValidRole(role) {
		return nil, apperror.NewValidation("unknown role").WithDetail("role", role)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	user.Verified = true
	user.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	logger.Info(ctx, "role assigned",
		"user_id", userID,
		"role", role)
	return user, nil
}

// ReviewerEmails returns addresses of verified active users holding a
// reviewer role. Recipient source for workflow notifications.
func (s *Service) ReviewerEmails(ctx context.Context) ([]string, error) {
	users, err := s.userRepo.ListByRoles(ctx, ReviewerRoles...)
	if err != nil {
		return nil, fmt.Errorf("list reviewers: %w", err)
	}
	emails := make([]string, 0, len(users))
	for _, u := range users {
		emails = append(emails, u.Email)
	}
	return emails, nil
}

// UserEmail returns the email for a user ID.
func (s *Service) UserEmail(ctx context.Context, userID id.ID) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}
