package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/repository"
	"inkpress/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// Session is the result of a successful registration or login.
type Session struct {
	Token     string       `json:"token"`
	User      *models.User `json:"user"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// Service orchestrates registration, login, and current-user lookup.
type Service struct {
	users  repository.UserRepository
	tokens *TokenIssuer
}

// NewService returns an auth Service using the given store and issuer.
func NewService(users repository.UserRepository, tokens *TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// Register creates an account with the default role and an active
// flag, and issues a session token. Username matching is
// case-sensitive; email matching is case-insensitive.
func (s *Service) Register(ctx context.Context, username, email, password string) (*Session, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	email = strings.ToLower(email)

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		existing, err = s.users.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
	}
	if existing != nil {
		return nil, models.NewConflictError("User with this username or email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.newSession(user)
}

// Login verifies credentials and issues a fresh token. A missing user,
// an inactive account, and a password mismatch are indistinguishable to
// the caller. A failed login never mutates the store.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, models.NewValidationError("Username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	return s.newSession(user)
}

// CurrentUser resolves a validated token's user ID to an active
// account. A deactivated user fails here even with a signature-valid
// token.
func (s *Service) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, models.NewNotFoundError("User", userID)
	}
	return user, nil
}

func (s *Service) newSession(user *models.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		middleware.Logger.Error("token issuance failed",
			slog.Uint64("user_id", uint64(user.ID)),
			slog.String("error", err.Error()),
		)
		return nil, models.NewInternalError(err)
	}
	return &Session{Token: token, User: user, ExpiresAt: expiresAt}, nil
}
