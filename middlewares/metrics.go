package middlewares

import (
	"time"

	"wintoday/metrics"

	"github.com/gofiber/fiber/v2"
)

// HTTPMetrics records every request under its route template, so player
// names never become label values.
func HTTPMetrics(c *fiber.Ctx) error {
	started := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}
	metrics.RecordHTTP(c.Route().Path, c.Method(), status, started)
	return err
}
