package handler

import (
	"strings"

	"toko-bangunan-pos/internal/model"
	"toko-bangunan-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type RoleHandler struct {
	userService service.UserService
}

func NewRoleHandler(userService service.UserService) *RoleHandler {
	return &RoleHandler{userService: userService}
}

// GetRoles lists OWNER and CASHIER with the privilege codes each grants.
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	roles, err := h.userService.GetRoles()
	if err != nil {
		return err
	}
	data := make([]fiber.Map, 0, len(roles))
	for _, role := range roles {
		codes := make([]string, len(role.Privileges))
		for i, p := range role.Privileges {
			codes[i] = p.Code
		}
		data = append(data, fiber.Map{
			"id":          role.ID,
			"code":        role.Code,
			"name":        role.Name,
			"description": role.Description,
			"privileges":  codes,
		})
	}
	return c.JSON(fiber.Map{"data": data})
}

// GetPrivileges lists every privilege, also grouped by the resource before
// the colon ("stock:adjust" belongs to "stock").
func (h *RoleHandler) GetPrivileges(c *fiber.Ctx) error {
	privileges, err := h.userService.GetPrivileges()
	if err != nil {
		return err
	}
	groups := map[string][]model.Privilege{}
	for _, p := range privileges {
		resource := p.Code
		if i := strings.Index(p.Code, ":"); i > 0 {
			resource = p.Code[:i]
		}
		groups[resource] = append(groups[resource], p)
	}
	return c.JSON(fiber.Map{"data": privileges, "groups": groups})
}
