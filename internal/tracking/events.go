package tracking

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"docucloud/internal/database"
)

// EventInput defines the input required to record a custom event.
type EventInput struct {
	Name     string
	Category string
	Label    string
	Value    float64
	PageURL  string
	Metadata string
}

// RecordEvent appends a named event to an existing session. Unlike page
// views, an event cannot establish a session: an unknown token is a hard
// SessionNotFoundError and nothing is written. The metadata blob is stored
// verbatim; this package treats it as opaque.
func RecordEvent(db *gorm.DB, logger *slog.Logger, token string, input *EventInput) error {
	session, err := GetSessionByToken(db, token)
	if err != nil {
		return err
	}

	event := &Event{
		SessionID:     session.ID,
		EventName:     input.Name,
		EventCategory: input.Category,
		EventLabel:    input.Label,
		EventValue:    input.Value,
		PageURL:       input.PageURL,
		Metadata:      input.Metadata,
		CreatedAt:     time.Now().UTC(),
	}

	err = database.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(event).Error
	})
	if err != nil {
		logger.Error("Failed to record event",
			slog.String("token", token),
			slog.String("eventName", input.Name),
			slog.Any("error", err))
		return fmt.Errorf("failed to record event: %w", err)
	}

	return nil
}
