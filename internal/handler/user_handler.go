package handler

import (
	"toko-bangunan-pos/internal/apperror"
	"toko-bangunan-pos/internal/repository"
	"toko-bangunan-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUser opens an account; privileges start as the role's.
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.userService.CreateUser(&req, getUserID(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created",
		"data":    user.ToResponse(),
	})
}

// UpdateUserPrivileges replaces an account's privileges with the given codes.
func (h *UserHandler) UpdateUserPrivileges(c *fiber.Ctx) error {
	userID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Privileges []string `json:"privileges"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Privileges == nil {
		return apperror.Validation([]apperror.FieldError{{Field: "privileges", Tag: "required"}})
	}

	user, err := h.userService.UpdateUserPrivileges(userID, req.Privileges, getUserID(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Privileges updated",
		"data":    user.ToResponse(),
	})
}

// GetUsers lists accounts. ?search= matches username or full name,
// ?role=OWNER|CASHIER, ?active=true|false.
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	active, err := queryBool(c, "active")
	if err != nil {
		return err
	}
	users, err := h.userService.GetAllUsers(repository.UserQuery{
		Search:   c.Query("search"),
		RoleCode: c.Query("role"),
		Active:   active,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"count": len(users), "data": users})
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	userID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// UpdateUser changes name, role, active flag and optionally the password;
// a new password ends the account's session.
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	userID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req service.UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateUser(userID, &req, getUserID(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "User updated",
		"data":    user.ToResponse(),
	})
}

func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.userService.DeleteUser(userID, getUserID(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User deleted", "id": userID})
}
