package service

import (
	"context"
	"strings"

	"inkpress/internal/models"
	"inkpress/internal/repository"
	"inkpress/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService implements admin-facing user management and the per-role
// analytics aggregation.
type UserService struct {
	userRepo repository.UserRepository
}

// CreateUserInput carries the fields of an admin-created account.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     models.Role
}

// UpdateUserInput carries a partial account update; nil fields are
// unchanged. A non-nil Password is re-hashed.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
	Role     *models.Role
	IsActive *bool
}

// NewUserService returns a UserService over the given repository.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListUsers returns a page of users ordered by id.
func (s *UserService) ListUsers(ctx context.Context, pageNumber, pageSize int) (models.Page[models.User], error) {
	pageNumber, pageSize = normalizePage(pageNumber, pageSize)
	offset := (pageNumber - 1) * pageSize

	users, total, err := s.userRepo.List(ctx, pageSize, offset)
	if err != nil {
		return models.Page[models.User]{}, err
	}
	return models.NewPage(users, pageNumber, pageSize, total), nil
}

// CreateUser creates an account with an explicit role on behalf of an
// admin.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if !in.Role.Valid() {
		return nil, models.NewValidationError("Role must be 'admin' or 'user'")
	}

	email := strings.ToLower(in.Email)

	existing, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		existing, err = s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
	}
	if existing != nil {
		return nil, models.NewConflictError("User with this username or email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         in.Role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser applies a partial update, re-hashing the password when one
// is provided. Deactivation (IsActive=false) is the preferred
// alternative to deletion.
func (s *UserService) UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		if err := validation.ValidateUsername(*in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Username = *in.Username
	}
	if in.Email != nil {
		if err := validation.ValidateEmail(*in.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Email = strings.ToLower(*in.Email)
	}
	if in.Password != nil {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, models.NewInternalError(hashErr)
		}
		user.PasswordHash = string(hash)
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, models.NewValidationError("Role must be 'admin' or 'user'")
		}
		user.Role = *in.Role
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account. The store refuses while the user has
// comments (restrict semantics).
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	return s.userRepo.Delete(ctx, id)
}

// RoleAnalytics counts users per role, active and inactive alike.
func (s *UserService) RoleAnalytics(ctx context.Context) ([]repository.RoleCount, error) {
	return s.userRepo.CountByRole(ctx)
}
