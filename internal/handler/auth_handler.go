package handler

import (
	"strings"

	"toko-bangunan-pos/internal/apperror"
	"toko-bangunan-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	authService service.AuthService
	userService service.UserService
}

func NewAuthHandler(authService service.AuthService, userService service.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type ValidateTokenRequest struct {
	Token string `json:"token"`
}

func required(fields ...string) error {
	errs := make([]apperror.FieldError, len(fields))
	for i, f := range fields {
		errs[i] = apperror.FieldError{Field: f, Tag: "required"}
	}
	return apperror.Validation(errs)
}

func currentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(getUserID(c))
	if err != nil {
		return uuid.Nil, apperror.New(apperror.KindUnauthorized, "unauthorized")
	}
	return id, nil
}

// Login handles cashier authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return required("username", "password")
	}

	response, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(response)
}

// ChangePassword updates the password of the signed-in user
// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return required("old_password", "new_password")
	}

	if err := h.authService.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

// ValidateToken handles JWT token validation
// POST /api/v1/auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req ValidateTokenRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Token == "" {
		return required("token")
	}

	response, err := h.authService.ValidateToken(req.Token)
	if err != nil {
		return err
	}
	return c.JSON(response)
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(userID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		return err
	}
	return c.JSON(user)
}
