package v1

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"docucloud/internal/inquiries"
	"docucloud/internal/tracking"
)

type inquiryParams struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	Message   string `json:"message"`
	Source    string `json:"source"`
	SessionID string `json:"sessionId"`
}

// SubmitInquiry stores a contact-form submission, links it back to the
// visitor's session when one is supplied, and kicks off the notification
// emails in the background.
func (h *Handler) SubmitInquiry(c *fiber.Ctx) error {
	var params inquiryParams
	if err := c.BodyParser(&params); err != nil {
		return badRequest(c, "Invalid request body")
	}

	input := inquiries.CreateInquiryInput{
		Name:    params.Name,
		Email:   params.Email,
		Phone:   params.Phone,
		Company: params.Company,
		Message: params.Message,
		Source:  params.Source,
	}

	meta := inquiries.RequestMetadata{
		Referrer:  c.Get("Referer"),
		IPAddress: getClientIP(c),
		UserAgent: c.Get("User-Agent"),
	}

	inquiry, err := inquiries.CreateInquiry(h.db, h.logger, h.notifier, &input, meta)
	if err != nil {
		var invalid *inquiries.ValidationError
		if errors.As(err, &invalid) {
			return badRequest(c, invalid.Message)
		}
		h.logger.Error("Failed to create inquiry",
			slog.String("email", params.Email),
			slog.String("error", err.Error()))
		return serverError(c, "An error occurred. Please try again or email us directly.")
	}

	if params.SessionID != "" {
		if err := tracking.LinkInquiry(h.db, h.logger, params.SessionID, inquiry.ID); err != nil {
			h.logger.Error("Failed to link inquiry to session",
				slog.String("session", params.SessionID),
				slog.Uint64("inquiry_id", uint64(inquiry.ID)),
				slog.String("error", err.Error()))
			return serverError(c, "An error occurred. Please try again or email us directly.")
		}
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Thank you! We'll contact you within 24 hours.",
		"inquiryId": inquiry.ID,
	})
}

// GetInquiry returns a single inquiry by ID.
func (h *Handler) GetInquiry(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "Invalid inquiry ID")
	}

	inquiry, err := inquiries.GetInquiryByID(h.db, uint(id))
	if err != nil {
		var notFound *inquiries.InquiryNotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Inquiry not found",
			})
		}
		h.logger.Error("Failed to load inquiry",
			slog.Int("id", id),
			slog.String("error", err.Error()))
		return serverError(c, "Failed to load inquiry")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    inquiry,
	})
}

// RecentInquiries lists the most recent inquiries, newest first.
func (h *Handler) RecentInquiries(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", inquiries.DefaultRecentLimit)

	list, err := inquiries.RecentInquiries(h.db, limit)
	if err != nil {
		h.logger.Error("Failed to list inquiries", slog.String("error", err.Error()))
		return serverError(c, "Failed to load inquiries")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    list,
	})
}

type inquiryStatusParams struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// UpdateInquiryStatus moves an inquiry through the follow-up pipeline.
func (h *Handler) UpdateInquiryStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "Invalid inquiry ID")
	}

	var params inquiryStatusParams
	if err := c.BodyParser(&params); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if params.Status == "" {
		return badRequest(c, "Status is required")
	}

	inquiry, err := inquiries.UpdateInquiryStatus(h.db, h.logger, uint(id), params.Status, params.Notes)
	if err != nil {
		var invalid *inquiries.ValidationError
		if errors.As(err, &invalid) {
			return badRequest(c, invalid.Message)
		}
		var notFound *inquiries.InquiryNotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Inquiry not found",
			})
		}
		h.logger.Error("Failed to update inquiry status",
			slog.Int("id", id),
			slog.String("error", err.Error()))
		return serverError(c, "Failed to update inquiry")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    inquiry,
	})
}
