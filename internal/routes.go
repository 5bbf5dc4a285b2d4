package internal

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	v1 "docucloud/api/v1"
	"docucloud/internal/config"
	"docucloud/internal/inquiries"
)

// MountRoutes registers the public API and the static site. The static
// handler is mounted last so API routes always win, and unknown /api paths
// fall through to a JSON 404 instead of the SPA index.
func MountRoutes(app *fiber.App, db *gorm.DB, logger *slog.Logger, cfg *config.Config, notifier inquiries.Notifier) {
	handler := v1.NewHandler(db, logger, cfg, notifier)

	analytics := app.Group("/api/analytics")
	analytics.Post("/pageview", handler.TrackPageView)
	analytics.Post("/event", handler.TrackEvent)
	analytics.Post("/time-spent", handler.TrackTimeSpent)
	analytics.Get("/summary", handler.GetSummary)

	inquiry := app.Group("/api/inquiry")
	inquiry.Post("/", handler.SubmitInquiry)
	// Literal route must come before the :id parameter.
	inquiry.Get("/recent", handler.RecentInquiries)
	inquiry.Get("/:id", handler.GetInquiry)
	inquiry.Post("/:id/status", handler.UpdateInquiryStatus)

	app.Get("/api/health", handler.Health)

	app.Use("/api", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Endpoint not found",
		})
	})

	if cfg.PublicDirectory != "" {
		app.Static("/", cfg.PublicDirectory)
	}
}
