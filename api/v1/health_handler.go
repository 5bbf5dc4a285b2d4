package v1

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Health reports process and database liveness.
func (h *Handler) Health(c *fiber.Ctx) error {
	dbStatus := "ok"
	status := "ok"
	code := fiber.StatusOK

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		h.logger.Error("Health check failed", slog.String("error", err.Error()))
		dbStatus = "unavailable"
		status = "degraded"
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":      status,
		"db_status":   dbStatus,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.cfg.Environment,
	})
}
