package middleware

import (
	"strings"

	"toko-bangunan-pos/internal/apperror"
	"toko-bangunan-pos/internal/repository"
	"toko-bangunan-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

func unauthorized(msg string) error {
	return apperror.New(apperror.KindUnauthorized, "%s", msg)
}

// bearerToken reads "Authorization: Bearer <token>". Browsers cannot set
// headers on a WebSocket handshake, so an upgrade request may pass ?token=.
func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		if token := c.Query("token"); token != "" && strings.EqualFold(c.Get(fiber.HeaderUpgrade), "websocket") {
			return token, nil
		}
		return "", unauthorized("missing authorization token")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", unauthorized("invalid authorization format, use: Bearer <token>")
	}
	return parts[1], nil
}

// RequireAuth validates the session token against the account it names and
// stores the user's id, name and privilege codes in the request locals.
func RequireAuth(tokens *jwt.Manager, userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c)
		if err != nil {
			return err
		}
		claims, err := tokens.Validate(token)
		if err != nil {
			return unauthorized("invalid or expired token")
		}

		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			return unauthorized("user not found")
		}
		if !user.IsActive {
			return unauthorized("user account is inactive")
		}
		// One live session per account.
		if user.TokenVersion != claims.TokenVersion {
			return unauthorized("session expired (logged in on another device)")
		}

		c.Locals("user_id", user.ID.String())
		c.Locals("username", user.Username)
		c.Locals("user_name", user.FullName)
		c.Locals("user_privileges", user.PrivilegeCodes())

		return c.Next()
	}
}

func granted(c *fiber.Ctx, wanted ...string) (bool, error) {
	privileges, ok := c.Locals("user_privileges").([]string)
	if !ok {
		return false, apperror.New(apperror.KindForbidden, "no privileges found")
	}
	for _, have := range privileges {
		for _, want := range wanted {
			if have == want {
				return true, nil
			}
		}
	}
	return false, nil
}

// RequirePrivilege lets the request through only when the signed-in user
// holds privilege.
func RequirePrivilege(privilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, err := granted(c, privilege)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.New(apperror.KindForbidden, "requires '%s' privilege", privilege)
		}
		return c.Next()
	}
}

// RequireAnyPrivilege needs at least one of privileges.
func RequireAnyPrivilege(privileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, err := granted(c, privileges...)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.New(apperror.KindForbidden, "requires one of %s privileges", strings.Join(privileges, ", "))
		}
		return c.Next()
	}
}
