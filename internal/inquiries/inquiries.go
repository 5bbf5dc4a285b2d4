// Package inquiries handles contact-form leads: validation, persistence,
// status management and best-effort email notifications.
package inquiries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"docucloud/internal/database"
	"docucloud/internal/pkg/async"
)

// Inquiry statuses.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusClosed    = "closed"
)

// DefaultRecentLimit bounds the recent-inquiries listing when the caller
// does not specify one.
const DefaultRecentLimit = 50

// Inquiry represents a submitted contact-form lead.
type Inquiry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Phone     string    `gorm:"size:64" json:"phone"`
	Company   string    `gorm:"size:255" json:"company"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Source    string    `gorm:"size:64;default:'website'" json:"source"`
	Referrer  string    `json:"referrer"`
	Status    string    `gorm:"size:32;index;default:'new'" json:"status"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InquiryNotFoundError represents an error when an inquiry is not found
type InquiryNotFoundError struct {
	ID uint
}

func (e *InquiryNotFoundError) Error() string {
	return fmt.Sprintf("inquiry not found: %d", e.ID)
}

// ValidationError carries a client-facing rejection message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Notifier is the capability used to send inquiry emails. Both calls are
// best-effort: failures are logged by the caller and never affect the
// already-persisted inquiry.
type Notifier interface {
	AdminNotification(inquiry *Inquiry) error
	CustomerConfirmation(inquiry *Inquiry) error
}

// CreateInquiryInput defines the contact-form fields.
type CreateInquiryInput struct {
	Name    string `validate:"required,min=2,max=255"`
	Email   string `validate:"required,email"`
	Phone   string
	Company string
	Message string `validate:"required,min=10"`
	Source  string
}

// RequestMetadata carries server-observed context for a submission.
type RequestMetadata struct {
	Referrer  string
	IPAddress string
	UserAgent string
}

var validate = validator.New()

// Validate checks the input and returns a ValidationError with a
// client-facing message on the first failing rule.
func Validate(input *CreateInquiryInput) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: "Name, email, and message are required."}
	}

	return &ValidationError{Message: messageFor(fieldErrs[0])}
}

func messageFor(fe validator.FieldError) string {
	switch {
	case fe.Field() == "Email":
		return "Please provide a valid email address."
	case fe.Field() == "Name" && fe.Tag() != "required":
		return "Name must be between 2 and 255 characters."
	case fe.Field() == "Message" && fe.Tag() == "min":
		return "Message must be at least 10 characters long."
	default:
		return "Name, email, and message are required."
	}
}

// CreateInquiry validates and persists a lead, then dispatches both
// notification emails on a detached goroutine. It returns once the row is
// committed; notification outcome never influences the result.
func CreateInquiry(db *gorm.DB, logger *slog.Logger, notifier Notifier, input *CreateInquiryInput, meta RequestMetadata) (*Inquiry, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}

	source := input.Source
	if source == "" {
		source = "website"
	}

	inquiry := &Inquiry{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Company:  input.Company,
		Message:  input.Message,
		Source:   source,
		Referrer: meta.Referrer,
		Status:   StatusNew,
	}

	err := database.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(inquiry).Error
	})
	if err != nil {
		logger.Error("Failed to create inquiry",
			slog.String("email", input.Email),
			slog.Any("error", err))
		return nil, fmt.Errorf("failed to create inquiry: %w", err)
	}

	go sendNotifications(logger, notifier, inquiry)

	return inquiry, nil
}

// sendNotifications delivers the admin and customer emails concurrently.
// Failures are observable only through logs.
func sendNotifications(logger *slog.Logger, notifier Notifier, inquiry *Inquiry) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic recovered in inquiry notification",
				slog.Any("inquiryID", inquiry.ID),
				slog.Any("panic", r))
		}
	}()

	pool := async.NewPool(2)
	results := pool.Execute(context.Background(), []async.Task{
		{Name: "admin_notification", Execute: func() error {
			return notifier.AdminNotification(inquiry)
		}},
		{Name: "customer_confirmation", Execute: func() error {
			return notifier.CustomerConfirmation(inquiry)
		}},
	})

	for name, result := range results {
		if result.Err != nil {
			logger.Error("Inquiry notification failed",
				slog.String("notification", name),
				slog.Any("inquiryID", inquiry.ID),
				slog.Any("error", result.Err))
		}
	}
}

// GetInquiryByID retrieves a single inquiry.
func GetInquiryByID(db *gorm.DB, id uint) (*Inquiry, error) {
	var inquiry Inquiry
	if err := db.First(&inquiry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &InquiryNotFoundError{ID: id}
		}
		return nil, fmt.Errorf("unexpected error querying inquiry: %w", err)
	}
	return &inquiry, nil
}

// UpdateInquiryStatus sets a new status and optional notes.
func UpdateInquiryStatus(db *gorm.DB, logger *slog.Logger, id uint, status, notes string) (*Inquiry, error) {
	switch status {
	case StatusNew, StatusContacted, StatusQualified, StatusClosed:
	default:
		return nil, &ValidationError{Message: "Invalid status."}
	}

	inquiry, err := GetInquiryByID(db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"status": status}
	if notes != "" {
		updates["notes"] = notes
	}

	err = database.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Model(inquiry).Updates(updates).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update inquiry: %w", err)
	}

	return GetInquiryByID(db, id)
}

// RecentInquiries lists the newest inquiries, most recent first.
func RecentInquiries(db *gorm.DB, limit int) ([]Inquiry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	var list []Inquiry
	if err := db.Order("created_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list inquiries: %w", err)
	}
	return list, nil
}
