// Package service implements the domain operations of the platform on
// top of the repository layer. Operations that need an acting identity
// take it explicitly; nothing reads ambient request state.
package service

import (
	"context"
	"time"

	"inkpress/internal/models"
	"inkpress/internal/repository"
)

const (
	maxTitleLen   = 100
	maxContentLen = 50000

	defaultPageSize = 10
	maxPageSize     = 100

	// analyticsMonths is the trailing window of the monthly post chart,
	// current month included.
	analyticsMonths = 6
)

// PostService implements blog post CRUD, paginated listing, and the
// monthly analytics aggregation.
type PostService struct {
	postRepo repository.PostRepository
	now      func() time.Time
}

// CreatePostInput carries the fields of a new post. ImagePath, when
// set, is the pre-resolved relative path of an uploaded thumbnail.
type CreatePostInput struct {
	Title       string
	Content     string
	IsPublished bool
	ImagePath   string
}

// UpdatePostInput carries a partial update; nil fields are unchanged.
type UpdatePostInput struct {
	Title       *string
	Content     *string
	IsPublished *bool
	ImagePath   *string
}

// NewPostService returns a PostService over the given repository.
func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo, now: time.Now}
}

// normalizePage clamps page number and size to the caller contract:
// pageNumber >= 1, 0 < pageSize <= maxPageSize.
func normalizePage(pageNumber, pageSize int) (int, int) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return pageNumber, pageSize
}

func validatePostFields(title, content string) error {
	if title == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 100 characters)")
	}
	if content == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxContentLen {
		return models.NewValidationError("Content too long (max 50000 characters)")
	}
	return nil
}

// CreatePost validates and persists a new post.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validatePostFields(in.Title, in.Content); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:       in.Title,
		Content:     in.Content,
		IsPublished: in.IsPublished,
		ImageURL:    in.ImagePath,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost loads a post with its comments.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// ListPosts returns a page of posts, newest first. A page number past
// the end yields an empty page with correct totals, never an error.
func (s *PostService) ListPosts(ctx context.Context, pageNumber, pageSize int) (models.Page[models.Post], error) {
	pageNumber, pageSize = normalizePage(pageNumber, pageSize)
	offset := (pageNumber - 1) * pageSize

	posts, total, err := s.postRepo.List(ctx, pageSize, offset)
	if err != nil {
		return models.Page[models.Post]{}, err
	}
	return models.NewPage(posts, pageNumber, pageSize, total), nil
}

// UpdatePost applies a partial update to an existing post.
func (s *PostService) UpdatePost(ctx context.Context, id uint, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		post.Title = *in.Title
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	if err := validatePostFields(post.Title, post.Content); err != nil {
		return nil, err
	}
	if in.IsPublished != nil {
		post.IsPublished = *in.IsPublished
	}
	if in.ImagePath != nil {
		post.ImageURL = *in.ImagePath
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post and, with it, all of its comments.
func (s *PostService) DeletePost(ctx context.Context, id uint) error {
	return s.postRepo.Delete(ctx, id)
}

// MonthlyAnalytics counts posts created in each of the trailing six
// calendar months, current month included, zero-filled and ordered
// oldest to newest.
func (s *PostService) MonthlyAnalytics(ctx context.Context) ([]MonthlyCount, error) {
	now := s.now()
	stamps, err := s.postRepo.CreatedSince(ctx, bucketStart(now, analyticsMonths))
	if err != nil {
		return nil, err
	}
	return bucketByMonth(stamps, analyticsMonths, now), nil
}
