package server

import (
	"inkpress/internal/models"
	"inkpress/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUsers handles GET /api/users
func (s *Server) GetUsers(c *fiber.Ctx) error {
	page := parsePage(c)

	result, err := s.userService.ListUsers(c.UserContext(), page.PageNumber, page.PageSize)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}

	return c.JSON(result)
}

// CreateUser handles POST /api/users
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req struct {
		Username string      `json:"username"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     models.Role `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}

	user, err := s.userService.CreateUser(c.UserContext(), service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// UpdateUser handles PUT /api/users/:id. Absent fields are unchanged.
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Username *string      `json:"username"`
		Email    *string      `json:"email"`
		Password *string      `json:"password"`
		Role     *models.Role `json:"role"`
		IsActive *bool        `json:"isActive"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateUser(c.UserContext(), userID, service.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}

	return c.JSON(user)
}

// DeleteUser handles DELETE /api/users/:id. Users with comments cannot
// be deleted; deactivate them instead.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.DeleteUser(c.UserContext(), userID); err != nil {
		return models.RespondWithDomainError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetRoleAnalytics handles GET /api/users/analytics/roles
func (s *Server) GetRoleAnalytics(c *fiber.Ctx) error {
	counts, err := s.userService.RoleAnalytics(c.UserContext())
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}

	return c.JSON(counts)
}
