package handler

import (
	"strconv"
	"strings"
	"time"

	"toko-bangunan-pos/internal/apperror"
	"toko-bangunan-pos/internal/repository"
	"toko-bangunan-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Helper untuk ambil User Info dari JWT Context (set by auth middleware)
func getUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals("user_id").(string)
	if !ok {
		return service.SystemActor.ID
	}
	return userID
}

func getUserName(c *fiber.Ctx) string {
	userName, ok := c.Locals("user_name").(string)
	if !ok {
		return "Unknown"
	}
	return userName
}

func actorFrom(c *fiber.Ctx) service.Actor {
	return service.Actor{ID: getUserID(c), Name: getUserName(c)}
}

func invalidJSON() error {
	return apperror.Validation([]apperror.FieldError{{Field: "body", Tag: "json"}})
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return invalidJSON()
	}
	return nil
}

// paramUUID parses a path parameter as a UUID.
func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperror.Validation([]apperror.FieldError{{Field: name, Tag: "uuid"}})
	}
	return id, nil
}

func queryUUID(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.Validation([]apperror.FieldError{{Field: name, Tag: "uuid"}})
	}
	return &id, nil
}

func queryPage(c *fiber.Ctx) repository.Page {
	return repository.Page{Page: c.QueryInt("page", 1), Limit: c.QueryInt("limit", 10)}
}

func queryBool(c *fiber.Ctx, name string) (*bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperror.Validation([]apperror.FieldError{{Field: name, Tag: "boolean"}})
	}
	return &v, nil
}

// queryDate parses YYYY-MM-DD (or RFC3339) in loc. endOfDay moves a plain
// date to the start of the following day, for exclusive upper bounds.
func queryDate(c *fiber.Ctx, name string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return nil, apperror.Validation([]apperror.FieldError{{Field: name, Tag: "date", Param: "2006-01-02"}})
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return &t, nil
}
