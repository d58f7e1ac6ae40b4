package repository

import (
	"context"
	"errors"
	"testing"

	"inkpress/internal/cache"
	"inkpress/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

func appErrCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %v", err)
	return appErr.Code
}

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		user := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", Role: models.RoleUser, IsActive: true}
		require.NoError(t, repo.Create(ctx, user))
		assert.NotZero(t, user.ID)

		fetched, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", fetched.Username)

		_, err = repo.GetByID(ctx, 9999)
		assert.Equal(t, models.CodeNotFound, appErrCode(t, err))
	})

	t.Run("UsernameIsCaseSensitive", func(t *testing.T) {
		fetched, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, fetched)

		fetched, err = repo.GetByUsername(ctx, "ALICE")
		require.NoError(t, err)
		assert.Nil(t, fetched)
	})

	t.Run("EmailIsCaseInsensitive", func(t *testing.T) {
		fetched, err := repo.GetByEmail(ctx, "ALICE@Example.COM")
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, "alice", fetched.Username)
	})

	t.Run("DuplicateIsConflict", func(t *testing.T) {
		dupe := &models.User{Username: "alice", Email: "other@example.com", PasswordHash: "x", Role: models.RoleUser}
		err := repo.Create(ctx, dupe)
		assert.Equal(t, models.CodeConflict, appErrCode(t, err))
	})

	t.Run("DeleteRestrictedByComments", func(t *testing.T) {
		commenter := &models.User{Username: "bob", Email: "bob@example.com", PasswordHash: "x", Role: models.RoleUser, IsActive: true}
		require.NoError(t, repo.Create(ctx, commenter))

		post := &models.Post{Title: "t", Content: "c"}
		require.NoError(t, db.Create(post).Error)
		require.NoError(t, db.Create(&models.Comment{Content: "hi", PostID: post.ID, UserID: commenter.ID}).Error)

		err := repo.Delete(ctx, commenter.ID)
		assert.Equal(t, models.CodeConflict, appErrCode(t, err))

		// Still there.
		fetched, err := repo.GetByID(ctx, commenter.ID)
		require.NoError(t, err)
		assert.Equal(t, "bob", fetched.Username)

		// After the comment goes away, the delete succeeds.
		require.NoError(t, db.Where("user_id = ?", commenter.ID).Delete(&models.Comment{}).Error)
		require.NoError(t, repo.Delete(ctx, commenter.ID))

		_, err = repo.GetByID(ctx, commenter.ID)
		assert.Equal(t, models.CodeNotFound, appErrCode(t, err))
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		err := repo.Delete(ctx, 9999)
		assert.Equal(t, models.CodeNotFound, appErrCode(t, err))
	})
}

func TestUserRepositoryListAndRoles(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		role := models.RoleUser
		if i < 3 {
			role = models.RoleAdmin
		}
		require.NoError(t, repo.Create(ctx, &models.User{
			Username:     "user" + string(rune('a'+i)),
			Email:        "user" + string(rune('a'+i)) + "@example.com",
			PasswordHash: "x",
			Role:         role,
			IsActive:     i%2 == 0,
		}))
	}

	t.Run("List", func(t *testing.T) {
		users, total, err := repo.List(ctx, 5, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(12), total)
		assert.Len(t, users, 2)
		// Ordered by id, so the tail page holds the last two rows.
		assert.Less(t, users[0].ID, users[1].ID)
	})

	t.Run("CountByRole", func(t *testing.T) {
		counts, err := repo.CountByRole(ctx)
		require.NoError(t, err)
		assert.Equal(t, []RoleCount{
			{Role: models.RoleAdmin, Count: 3},
			{Role: models.RoleUser, Count: 9},
		}, counts)
	})
}

func TestUserRepositoryCachedGetKeepsPasswordHash(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	user := &models.User{Username: "carol", Email: "carol@example.com", PasswordHash: "bcrypt-hash-here", Role: models.RoleUser, IsActive: true}
	require.NoError(t, repo.Create(ctx, user))

	// First read populates the cache.
	fetched, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "bcrypt-hash-here", fetched.PasswordHash)

	// Prove the second read is a cache hit by changing the row behind
	// the cache's back, then check the hash still came along.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("username", "renamed").Error)

	cached, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol", cached.Username)
	assert.Equal(t, "bcrypt-hash-here", cached.PasswordHash)

	// Writes invalidate, so the next read sees the new name.
	cached.Username = "carol2"
	require.NoError(t, repo.Update(ctx, cached))

	fresh, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol2", fresh.Username)
	assert.Equal(t, "bcrypt-hash-here", fresh.PasswordHash)
}
