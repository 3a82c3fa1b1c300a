package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Status godoc
// @Summary      Service status
// @Tags         status
// @Produce      plain
// @Success      200  {string}  string  "Up and running!"
// @Router       /api/status [get]
func Status() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendString("Up and running!")
	}
}

// HealthCheck godoc
// @Summary      Readiness check
// @Description  Pings the transcript database and runs the tool preflight checks.
// @Tags         status
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  errorPayload
// @Router       /health [get]
func HealthCheck(db *sql.DB, checks ...func() error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		for _, check := range checks {
			if err := check(); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "TOOLS_UNAVAILABLE", "external tools unavailable", err.Error())
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe answers 200 while the process is serving.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
