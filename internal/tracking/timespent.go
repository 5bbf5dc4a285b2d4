package tracking

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"docucloud/internal/database"
)

// RecordTimeSpent adds the reported duration to the session's running
// total and overwrites the time-spent value of the most recent matching
// page view. The client re-reports a running total for the current view,
// so the page-view value is a last-write-wins overwrite, never a sum.
//
// An unknown token is tolerated: the browser may report time after the
// session expired locally, or before the first page view registered.
// In that case RecordTimeSpent returns (false, nil) and writes nothing.
func RecordTimeSpent(db *gorm.DB, logger *slog.Logger, token, pageURL string, seconds int) (bool, error) {
	session, err := GetSessionByToken(db, token)
	if err != nil {
		var notFound *SessionNotFoundError
		if errors.As(err, &notFound) {
			logger.Debug("Time-spent report for unknown session", slog.String("token", token))
			return false, nil
		}
		return false, err
	}

	err = database.PerformWrite(logger, db, func(tx *gorm.DB) error {
		if err := tx.Model(&Session{}).
			Where("id = ?", session.ID).
			Updates(map[string]any{
				"total_time_spent": gorm.Expr("total_time_spent + ?", seconds),
				"last_seen":        time.Now().UTC(),
			}).Error; err != nil {
			return err
		}

		// Most recent page view for this URL takes the report; a page
		// visited twice only updates its latest row.
		var recent PageView
		err := tx.Where("session_id = ? AND page_url = ?", session.ID, pageURL).
			Order("viewed_at DESC").
			Limit(1).
			First(&recent).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		return tx.Model(&PageView{}).
			Where("id = ?", recent.ID).
			Update("time_spent", seconds).Error
	})
	if err != nil {
		logger.Error("Failed to record time spent",
			slog.String("token", token),
			slog.String("pageUrl", pageURL),
			slog.Any("error", err))
		return false, fmt.Errorf("failed to record time spent: %w", err)
	}

	return true, nil
}
