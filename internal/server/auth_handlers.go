package server

import (
	"inkpress/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	session, err := s.authService.Register(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}

	s.setAuthCookie(c, session.Token, session.ExpiresAt)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": session.Token,
		"user":  session.User,
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	session, err := s.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}

	s.setAuthCookie(c, session.Token, session.ExpiresAt)
	return c.JSON(fiber.Map{
		"token": session.Token,
		"user":  session.User,
	})
}

// Me handles GET /api/auth/me
func (s *Server) Me(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.authService.CurrentUser(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithDomainError(c, err)
	}

	return c.JSON(user)
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so logout
// only expires the cookie.
func (s *Server) Logout(c *fiber.Ctx) error {
	s.clearAuthCookie(c)
	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}
