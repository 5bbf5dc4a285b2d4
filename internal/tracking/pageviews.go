package tracking

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"docucloud/internal/database"
)

// PageViewInput defines the input required to record a page view.
type PageViewInput struct {
	URL            string
	Title          string
	Referrer       string
	ScreenWidth    int
	ScreenHeight   int
	ViewportWidth  int
	ViewportHeight int
	UserAgent      string
	IPAddress      string
}

// RecordPageView resolves the session for the token (creating it on first
// sight), appends a PageView row and updates the session's counters.
// After a successful call the session's page_views count matches the
// number of PageView rows for that session. The counter uses a store-side
// increment expression, so concurrent page views for one session cannot
// lose updates.
func RecordPageView(db *gorm.DB, logger *slog.Logger, token string, input *PageViewInput) error {
	session, err := ResolveSession(db, logger, token, RequestMetadata{
		IPAddress:   input.IPAddress,
		UserAgent:   input.UserAgent,
		Referrer:    input.Referrer,
		LandingPage: input.URL,
	})
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	pageView := &PageView{
		SessionID:      session.ID,
		PageURL:        input.URL,
		PageTitle:      input.Title,
		ScreenWidth:    input.ScreenWidth,
		ScreenHeight:   input.ScreenHeight,
		ViewportWidth:  input.ViewportWidth,
		ViewportHeight: input.ViewportHeight,
		ViewedAt:       now,
	}

	err = database.PerformWrite(logger, db, func(tx *gorm.DB) error {
		if err := tx.Create(pageView).Error; err != nil {
			return err
		}

		return tx.Model(&Session{}).
			Where("id = ?", session.ID).
			Updates(map[string]any{
				"page_views": gorm.Expr("page_views + 1"),
				"last_seen":  now,
				"exit_page":  input.URL,
			}).Error
	})
	if err != nil {
		logger.Error("Failed to record page view",
			slog.String("token", token),
			slog.String("url", input.URL),
			slog.Any("error", err))
		return fmt.Errorf("failed to record page view: %w", err)
	}

	return nil
}
