package repository

import (
	"context"
	"testing"

	"inkpress/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	author := &models.User{Username: "carol", Email: "carol@example.com", PasswordHash: "x", Role: models.RoleUser, IsActive: true}
	require.NoError(t, db.Create(author).Error)
	post := &models.Post{Title: "t", Content: "c"}
	require.NoError(t, db.Create(post).Error)

	t.Run("CreateAndGet", func(t *testing.T) {
		comment := &models.Comment{Content: "first!", PostID: post.ID, UserID: author.ID}
		require.NoError(t, repo.Create(ctx, comment))
		assert.NotZero(t, comment.ID)

		fetched, err := repo.GetByID(ctx, comment.ID)
		require.NoError(t, err)
		assert.Equal(t, "first!", fetched.Content)
		assert.Equal(t, "carol", fetched.User.Username)
	})

	t.Run("ListByPost", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, &models.Comment{Content: "second", PostID: post.ID, UserID: author.ID}))

		comments, err := repo.ListByPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Len(t, comments, 2)

		comments, err = repo.ListByPost(ctx, 9999)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})

	t.Run("UpdateAndDelete", func(t *testing.T) {
		comment := &models.Comment{Content: "typo", PostID: post.ID, UserID: author.ID}
		require.NoError(t, repo.Create(ctx, comment))

		comment.Content = "fixed"
		require.NoError(t, repo.Update(ctx, comment))

		fetched, err := repo.GetByID(ctx, comment.ID)
		require.NoError(t, err)
		assert.Equal(t, "fixed", fetched.Content)

		require.NoError(t, repo.Delete(ctx, comment.ID))
		_, err = repo.GetByID(ctx, comment.ID)
		assert.Equal(t, models.CodeNotFound, appErrCode(t, err))

		err = repo.Delete(ctx, comment.ID)
		assert.Equal(t, models.CodeNotFound, appErrCode(t, err))
	})
}
