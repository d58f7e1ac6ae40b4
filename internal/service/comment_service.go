package service

import (
	"context"

	"inkpress/internal/models"
	"inkpress/internal/repository"
)

const maxCommentLen = 500

// Actor is the explicit acting identity passed into operations that
// make ownership or role decisions.
type Actor struct {
	UserID  uint
	IsAdmin bool
}

// CommentService implements comment CRUD with owner-or-admin checks.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

// CreateCommentInput carries the fields of a new comment.
type CreateCommentInput struct {
	Actor   Actor
	PostID  uint
	Content string
}

// UpdateCommentInput carries a comment edit.
type UpdateCommentInput struct {
	Actor     Actor
	CommentID uint
	Content   string
}

// NewCommentService returns a CommentService over the given repositories.
func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

func validateCommentContent(content string) error {
	if content == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return models.NewValidationError("Comment too long (max 500 characters)")
	}
	return nil
}

// CreateComment attaches a comment by the acting user to an existing post.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: in.Content,
		PostID:  in.PostID,
		UserID:  in.Actor.UserID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns the comments of a post, newest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

// UpdateComment edits a comment. Only the owner or an admin may edit;
// anyone else gets Forbidden and the comment is untouched.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}

	if comment.UserID != in.Actor.UserID && !in.Actor.IsAdmin {
		return nil, models.NewForbiddenError("You are not authorized to update this comment")
	}
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}

	comment.Content = in.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// DeleteComment removes a comment. Only the owner or an admin may
// delete; anyone else gets Forbidden and the comment survives.
func (s *CommentService) DeleteComment(ctx context.Context, actor Actor, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.UserID != actor.UserID && !actor.IsAdmin {
		return models.NewForbiddenError("You are not authorized to delete this comment")
	}

	return s.commentRepo.Delete(ctx, commentID)
}
