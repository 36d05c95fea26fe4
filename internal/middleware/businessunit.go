package middleware

import (
	"context"

	"go-procure/internal/common/models"

	"github.com/gofiber/fiber/v2"
)

// BusinessUnitMiddleware extracts the X-Business-Unit header and threads it
// through the request context so repositories can scope queries per unit.
func BusinessUnitMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		unit := c.Get("X-Business-Unit")
		if unit != "" {
			ctx := context.WithValue(c.UserContext(), models.BusinessUnitKey, unit)
			c.SetUserContext(ctx)
		}
		return c.Next()
	}
}
