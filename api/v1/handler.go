package v1

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"docucloud/internal/config"
	"docucloud/internal/inquiries"
	"docucloud/internal/reporting"
	"docucloud/internal/tracking"
)

// Handler serves the public tracking and inquiry API.
type Handler struct {
	db       *gorm.DB
	logger   *slog.Logger
	cfg      *config.Config
	notifier inquiries.Notifier
}

func NewHandler(db *gorm.DB, logger *slog.Logger, cfg *config.Config, notifier inquiries.Notifier) *Handler {
	return &Handler{
		db:       db,
		logger:   logger,
		cfg:      cfg,
		notifier: notifier,
	}
}

type pageViewParams struct {
	SessionID      string `json:"sessionId"`
	URL            string `json:"url"`
	Title          string `json:"title"`
	Referrer       string `json:"referrer"`
	ScreenWidth    int    `json:"screenWidth"`
	ScreenHeight   int    `json:"screenHeight"`
	ViewportWidth  int    `json:"viewportWidth"`
	ViewportHeight int    `json:"viewportHeight"`
}

// TrackPageView records a page view, creating the session on first sight.
func (h *Handler) TrackPageView(c *fiber.Ctx) error {
	var params pageViewParams
	if err := c.BodyParser(&params); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if params.SessionID == "" || params.URL == "" {
		return badRequest(c, "Session ID and URL are required")
	}

	input := &tracking.PageViewInput{
		URL:            params.URL,
		Title:          params.Title,
		Referrer:       params.Referrer,
		ScreenWidth:    params.ScreenWidth,
		ScreenHeight:   params.ScreenHeight,
		ViewportWidth:  params.ViewportWidth,
		ViewportHeight: params.ViewportHeight,
		UserAgent:      c.Get("User-Agent"),
		IPAddress:      getClientIP(c),
	}

	if err := tracking.RecordPageView(h.db, h.logger, params.SessionID, input); err != nil {
		h.logger.Error("Failed to record page view",
			slog.String("session", params.SessionID),
			slog.String("error", err.Error()))
		return serverError(c, "Tracking error")
	}

	return c.JSON(fiber.Map{"success": true})
}

type eventParams struct {
	SessionID string          `json:"sessionId"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Label     string          `json:"label"`
	Value     float64         `json:"value"`
	PageURL   string          `json:"pageUrl"`
	Metadata  json.RawMessage `json:"metadata"`
}

// TrackEvent records a custom event against an existing session.
func (h *Handler) TrackEvent(c *fiber.Ctx) error {
	var params eventParams
	if err := c.BodyParser(&params); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if params.SessionID == "" || params.Name == "" {
		return badRequest(c, "Session ID and event name are required")
	}

	input := &tracking.EventInput{
		Name:     params.Name,
		Category: params.Category,
		Label:    params.Label,
		Value:    params.Value,
		PageURL:  params.PageURL,
		Metadata: encodeMetadata(params.Metadata),
	}

	if err := tracking.RecordEvent(h.db, h.logger, params.SessionID, input); err != nil {
		var notFound *tracking.SessionNotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Session not found",
			})
		}
		h.logger.Error("Failed to record event",
			slog.String("session", params.SessionID),
			slog.String("event", params.Name),
			slog.String("error", err.Error()))
		return serverError(c, "Tracking error")
	}

	return c.JSON(fiber.Map{"success": true})
}

type timeSpentParams struct {
	SessionID string `json:"sessionId"`
	PageURL   string `json:"pageUrl"`
	TimeSpent *int   `json:"timeSpent"`
}

// TrackTimeSpent accumulates dwell time on the session and overwrites the
// latest matching page view's time. Unknown sessions are reported as
// success=false rather than an error so stale beacons stay quiet.
func (h *Handler) TrackTimeSpent(c *fiber.Ctx) error {
	var params timeSpentParams
	if err := c.BodyParser(&params); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if params.SessionID == "" || params.PageURL == "" || params.TimeSpent == nil {
		return badRequest(c, "Session ID, page URL, and time spent are required")
	}

	applied, err := tracking.RecordTimeSpent(h.db, h.logger, params.SessionID, params.PageURL, *params.TimeSpent)
	if err != nil {
		h.logger.Error("Failed to record time spent",
			slog.String("session", params.SessionID),
			slog.String("error", err.Error()))
		return serverError(c, "Tracking error")
	}

	return c.JSON(fiber.Map{"success": applied})
}

// GetSummary returns the precomputed analytics aggregates for the requested
// trailing window.
func (h *Handler) GetSummary(c *fiber.Ctx) error {
	days := c.QueryInt("days", h.cfg.SummaryDefaultDays)
	if days <= 0 {
		days = h.cfg.SummaryDefaultDays
	}

	summary, err := reporting.GetSummary(h.db, days)
	if err != nil {
		h.logger.Error("Failed to load analytics summary", slog.String("error", err.Error()))
		return serverError(c, "Failed to load summary")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    summary,
	})
}

// encodeMetadata keeps the metadata blob verbatim; any JSON value is
// accepted and stored as-is.
func encodeMetadata(metadata json.RawMessage) string {
	if len(metadata) == 0 {
		return ""
	}
	return string(metadata)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func serverError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
