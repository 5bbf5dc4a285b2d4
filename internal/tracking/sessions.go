// Package tracking implements the visitor session and analytics pipeline:
// session resolution, page-view and event recording, time-spent updates,
// and inquiry linking.
package tracking

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"docucloud/internal/database"
	"docucloud/internal/pkg/useragent"
)

// SessionNotFoundError represents an error when no session exists for a token
type SessionNotFoundError struct {
	Token string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session not found for token: %s", e.Token)
}

// NewSessionNotFoundError creates a new SessionNotFoundError
func NewSessionNotFoundError(token string) *SessionNotFoundError {
	return &SessionNotFoundError{Token: token}
}

// RequestMetadata carries the server-observed request context used when a
// new session has to be created.
type RequestMetadata struct {
	IPAddress   string
	UserAgent   string
	Referrer    string
	LandingPage string
}

// GetSessionByToken retrieves a session by its exact client token.
// Returns SessionNotFoundError when no row matches.
func GetSessionByToken(db *gorm.DB, token string) (*Session, error) {
	var session Session
	if err := db.Where("session_id = ?", token).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewSessionNotFoundError(token)
		}
		return nil, fmt.Errorf("unexpected error querying session: %w", err)
	}
	return &session, nil
}

// ResolveSession returns the session for the given token, creating it when
// absent. Creation relies on the unique index on the token column: a
// conflicting concurrent insert falls through to a re-fetch, so two calls
// racing on an unseen token still end up with exactly one row.
func ResolveSession(db *gorm.DB, logger *slog.Logger, token string, meta RequestMetadata) (*Session, error) {
	session, err := GetSessionByToken(db, token)
	if err == nil {
		return session, nil
	}

	var notFound *SessionNotFoundError
	if !errors.As(err, &notFound) {
		return nil, err
	}

	ua := useragent.Classify(meta.UserAgent)
	now := time.Now().UTC()

	fresh := &Session{
		Token:       token,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
		DeviceType:  ua.DeviceType,
		Browser:     ua.Browser,
		OS:          ua.OS,
		Referrer:    meta.Referrer,
		LandingPage: meta.LandingPage,
		CreatedAt:   now,
		LastSeen:    now,
	}

	err = database.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoNothing: true,
		}).Create(fresh).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if fresh.ID != 0 {
		logger.Debug("Created new visitor session",
			slog.String("token", token),
			slog.String("deviceType", ua.DeviceType))
		return fresh, nil
	}

	// Lost the insert race; the winning row is authoritative.
	return GetSessionByToken(db, token)
}

// LinkInquiry marks the session as having submitted an inquiry and stores
// the back-reference. Idempotent; an unknown token affects zero rows and is
// not an error.
func LinkInquiry(db *gorm.DB, logger *slog.Logger, token string, inquiryID uint) error {
	err := database.PerformWrite(logger, db, func(tx *gorm.DB) error {
		result := tx.Model(&Session{}).
			Where("session_id = ?", token).
			Updates(map[string]any{
				"submitted_inquiry": true,
				"inquiry_id":        inquiryID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			logger.Debug("Inquiry link matched no session",
				slog.String("token", token),
				slog.Any("inquiryID", inquiryID))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to link inquiry to session: %w", err)
	}
	return nil
}
