package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"inkpress/internal/models"
	"inkpress/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserRepo is an in-memory UserRepository for flow tests.
type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*models.User{}, nextID: 1}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = f.nextID
	f.nextID++
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uint) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, _, _ int) ([]models.User, int64, error) {
	var out []models.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) CountByRole(_ context.Context) ([]repository.RoleCount, error) {
	counts := map[models.Role]int64{}
	for _, u := range f.users {
		counts[u.Role]++
	}
	var out []repository.RoleCount
	for role, n := range counts {
		out = append(out, repository.RoleCount{Role: role, Count: n})
	}
	return out, nil
}

func newTestService() (*Service, *fakeUserRepo) {
	repo := newFakeUserRepo()
	return NewService(repo, testIssuer(time.Hour)), repo
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	session, err := svc.Register(ctx, "alice", "Alice@Example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, models.RoleUser, session.User.Role)
	assert.True(t, session.User.IsActive)
	// Email is normalized to lowercase at registration.
	assert.Equal(t, "alice@example.com", session.User.Email)

	login, err := svc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, login.User.ID)
	assert.NotEmpty(t, login.Token)
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other@example.com", "secret123")
	assert.Equal(t, models.CodeConflict, errCode(err))

	// Same email under a different case is still a duplicate.
	_, err = svc.Register(ctx, "alice2", "ALICE@example.com", "secret123")
	assert.Equal(t, models.CodeConflict, errCode(err))
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "ab", "alice@example.com", "secret123")
	assert.Equal(t, models.CodeValidation, errCode(err))

	_, err = svc.Register(ctx, "alice", "not-an-email", "secret123")
	assert.Equal(t, models.CodeValidation, errCode(err))

	_, err = svc.Register(ctx, "alice", "alice@example.com", "short")
	assert.Equal(t, models.CodeValidation, errCode(err))
}

func TestLoginWrongPassword(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	session, err := svc.Register(ctx, "alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	before := *repo.users[session.User.ID]

	_, err = svc.Login(ctx, "alice", "wrong-password")
	assert.Equal(t, models.CodeUnauthorized, errCode(err))

	// A failed login never mutates the stored account.
	assert.Equal(t, before, *repo.users[session.User.ID])
}

func TestLoginUnknownAndInactive(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	_, err := svc.Login(ctx, "nobody", "secret123")
	assert.Equal(t, models.CodeUnauthorized, errCode(err))

	session, err := svc.Register(ctx, "alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	repo.users[session.User.ID].IsActive = false

	// Inactive accounts get the same answer as unknown ones.
	_, err = svc.Login(ctx, "alice", "secret123")
	assert.Equal(t, models.CodeUnauthorized, errCode(err))

	_, err = svc.Login(ctx, "", "")
	assert.Equal(t, models.CodeValidation, errCode(err))
}

func TestCurrentUser(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	session, err := svc.Register(ctx, "alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	user, err := svc.CurrentUser(ctx, session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	repo.users[session.User.ID].IsActive = false
	_, err = svc.CurrentUser(ctx, session.User.ID)
	assert.Equal(t, models.CodeNotFound, errCode(err))
}

func errCode(err error) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
