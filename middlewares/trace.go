package middlewares

import (
	"wintoday/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const RequestIDHeader = fiber.HeaderXRequestID

// RequestTrace reuses the caller's X-Request-ID or mints one, echoes it on
// the response and puts it on the user context for the *Ctx loggers.
func RequestTrace(c *fiber.Ctx) error {
	id := c.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(RequestIDHeader, id)
	c.Locals("requestid", id)
	c.SetUserContext(logger.WithTraceID(c.UserContext(), id))
	return c.Next()
}
