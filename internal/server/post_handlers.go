package server

import (
	"io"
	"strconv"
	"strings"

	"inkpress/internal/models"
	"inkpress/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePage(c)

	result, err := s.postService.ListPosts(c.UserContext(), page.PageNumber, page.PageSize)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}

	return c.JSON(result)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), postID)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}

	return c.JSON(post)
}

// CreatePost handles POST /api/posts. Accepts JSON or multipart form
// data; the multipart form may carry an optional image file.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var in service.CreatePostInput

	if isMultipart(c) {
		in.Title = c.FormValue("title")
		in.Content = c.FormValue("content")
		in.IsPublished = parseFormBool(c.FormValue("isPublished"))

		imagePath, err := s.saveUploadedImage(c)
		if err != nil {
			return models.RespondWithDomainError(c, err)
		}
		in.ImagePath = imagePath
	} else {
		var req struct {
			Title       string `json:"title"`
			Content     string `json:"content"`
			IsPublished bool   `json:"isPublished"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		in.Title = req.Title
		in.Content = req.Content
		in.IsPublished = req.IsPublished
	}

	post, err := s.postService.CreatePost(c.UserContext(), in)
	if err != nil {
		if in.ImagePath != "" {
			s.images.Remove(in.ImagePath)
		}
		return models.RespondWithDomainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id. Absent fields are unchanged.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var in service.UpdatePostInput

	if isMultipart(c) {
		form, formErr := c.MultipartForm()
		if formErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid form data"))
		}
		if v, ok := formField(form.Value, "title"); ok {
			in.Title = &v
		}
		if v, ok := formField(form.Value, "content"); ok {
			in.Content = &v
		}
		if v, ok := formField(form.Value, "isPublished"); ok {
			published := parseFormBool(v)
			in.IsPublished = &published
		}

		imagePath, saveErr := s.saveUploadedImage(c)
		if saveErr != nil {
			return models.RespondWithDomainError(c, saveErr)
		}
		if imagePath != "" {
			in.ImagePath = &imagePath
		}
	} else {
		var req struct {
			Title       *string `json:"title"`
			Content     *string `json:"content"`
			IsPublished *bool   `json:"isPublished"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		in.Title = req.Title
		in.Content = req.Content
		in.IsPublished = req.IsPublished
	}

	var oldImage string
	if in.ImagePath != nil {
		if existing, getErr := s.postService.GetPost(c.UserContext(), postID); getErr == nil {
			oldImage = existing.ImageURL
		}
	}

	post, err := s.postService.UpdatePost(c.UserContext(), postID, in)
	if err != nil {
		if in.ImagePath != nil {
			s.images.Remove(*in.ImagePath)
		}
		return models.RespondWithDomainError(c, err)
	}

	if oldImage != "" && in.ImagePath != nil && oldImage != *in.ImagePath {
		s.images.Remove(oldImage)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id. Comments on the post go
// with it.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var imagePath string
	if existing, getErr := s.postService.GetPost(c.UserContext(), postID); getErr == nil {
		imagePath = existing.ImageURL
	}

	if err := s.postService.DeletePost(c.UserContext(), postID); err != nil {
		return models.RespondWithDomainError(c, err)
	}

	if imagePath != "" {
		s.images.Remove(imagePath)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetPostAnalytics handles GET /api/posts/analytics
func (s *Server) GetPostAnalytics(c *fiber.Ctx) error {
	counts, err := s.postService.MonthlyAnalytics(c.UserContext())
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}

	return c.JSON(counts)
}

// saveUploadedImage persists the optional "image" part of a multipart
// request and returns its relative path, or "" when no file was sent.
func (s *Server) saveUploadedImage(c *fiber.Ctx) (string, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}

	f, err := fileHeader.Open()
	if err != nil {
		return "", models.NewValidationError("Invalid image upload")
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return "", models.NewValidationError("Invalid image upload")
	}

	return s.images.Save(fileHeader.Filename, fileHeader.Header.Get("Content-Type"), content)
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get("Content-Type"), "multipart/form-data")
}

func formField(values map[string][]string, name string) (string, bool) {
	v, ok := values[name]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

func parseFormBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}
