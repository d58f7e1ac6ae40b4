package service

import (
	"context"
	"testing"

	"inkpress/internal/models"
	"inkpress/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) CountByRole(ctx context.Context) ([]repository.RoleCount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]repository.RoleCount), args.Error(1)
}

func TestCreateUserWithRole(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewUserService(mockRepo)

	mockRepo.On("GetByUsername", mock.Anything, "admin2").Return(nil, nil)
	mockRepo.On("GetByEmail", mock.Anything, "admin2@example.com").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Role == models.RoleAdmin && u.IsActive && u.Email == "admin2@example.com"
	})).Return(nil)

	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Username: "admin2",
		Email:    "Admin2@Example.com",
		Password: "secret123",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	// Password is stored hashed, never verbatim.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
	mockRepo.AssertExpectations(t)
}

func TestCreateUserInvalidRole(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewUserService(mockRepo)

	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Username: "eve",
		Email:    "eve@example.com",
		Password: "secret123",
		Role:     models.Role("superuser"),
	})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestCreateUserDuplicate(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewUserService(mockRepo)

	mockRepo.On("GetByUsername", mock.Anything, "alice").
		Return(&models.User{ID: 1, Username: "alice"}, nil)

	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Username: "alice",
		Email:    "new@example.com",
		Password: "secret123",
		Role:     models.RoleUser,
	})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeConflict, appErr.Code)
}

func TestUpdateUserRehashesPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewUserService(mockRepo)

	oldHash, _ := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	mockRepo.On("GetByID", mock.Anything, uint(1)).
		Return(&models.User{ID: 1, Username: "alice", Email: "a@e.com", PasswordHash: string(oldHash)}, nil)
	mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	newPassword := "new-password"
	user, err := svc.UpdateUser(context.Background(), 1, UpdateUserInput{Password: &newPassword})
	require.NoError(t, err)
	assert.NotEqual(t, string(oldHash), user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(newPassword)))
}

func TestUpdateUserDeactivateAndPromote(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewUserService(mockRepo)

	mockRepo.On("GetByID", mock.Anything, uint(1)).
		Return(&models.User{ID: 1, Username: "alice", Email: "a@e.com", Role: models.RoleUser, IsActive: true}, nil)
	mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	inactive := false
	admin := models.RoleAdmin
	user, err := svc.UpdateUser(context.Background(), 1, UpdateUserInput{
		Role:     &admin,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.False(t, user.IsActive)
}

func TestUpdateUserInvalidRole(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewUserService(mockRepo)

	mockRepo.On("GetByID", mock.Anything, uint(1)).
		Return(&models.User{ID: 1, Username: "alice", Email: "a@e.com"}, nil)

	bad := models.Role("root")
	_, err := svc.UpdateUser(context.Background(), 1, UpdateUserInput{Role: &bad})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	mockRepo.AssertNotCalled(t, "Update")
}

func TestListUsers(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewUserService(mockRepo)

	mockRepo.On("List", mock.Anything, 10, 10).Return([]models.User{
		{ID: 11, Username: "k"},
	}, int64(11), nil)

	page, err := svc.ListUsers(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(11), page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
}

func TestRoleAnalytics(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewUserService(mockRepo)

	expected := []repository.RoleCount{
		{Role: models.RoleAdmin, Count: 2},
		{Role: models.RoleUser, Count: 40},
	}
	mockRepo.On("CountByRole", mock.Anything).Return(expected, nil)

	counts, err := svc.RoleAnalytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expected, counts)
}
