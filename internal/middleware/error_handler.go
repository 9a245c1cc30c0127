package middleware

import (
	"errors"

	"toko-bangunan-pos/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrorHandler renders every error returned by a handler as
// {"error", "kind", "fields"}. Server faults are logged and masked.
func ErrorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		appErr := apperror.As(err)
		status := appErr.Status()
		if !appErr.ClientFault() {
			log.WithError(err).WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
				"kind":   appErr.Kind,
			}).Error("request failed")
			return c.Status(status).JSON(fiber.Map{
				"error": "internal server error",
				"kind":  apperror.KindInternal,
			})
		}

		body := fiber.Map{"error": appErr.Error(), "kind": appErr.Kind}
		if len(appErr.Fields) > 0 {
			body["fields"] = appErr.Fields
		}
		return c.Status(status).JSON(body)
	}
}
