package reporting

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"docucloud/internal/database"
	"docucloud/internal/pkg/referrers"
)

type sourceCount struct {
	Referrer string
	Count    int
}

// RebuildAggregates recomputes the reporting tables from the raw session,
// page-view and inquiry rows. It is the only writer of those tables.
func RebuildAggregates(db *gorm.DB, logger *slog.Logger, topPagesLimit int) error {
	if topPagesLimit <= 0 {
		topPagesLimit = 10
	}

	if err := rebuildDailyStats(db, logger); err != nil {
		return err
	}
	if err := rebuildTopPages(db, logger, topPagesLimit); err != nil {
		return err
	}
	if err := rebuildTrafficSources(db, logger); err != nil {
		return err
	}

	logger.Debug("Reporting aggregates rebuilt")
	return nil
}

func rebuildDailyStats(db *gorm.DB, logger *slog.Logger) error {
	var stats []DailyStat
	err := db.Raw(`
        SELECT
            date(created_at) AS date,
            COUNT(*) AS sessions,
            COUNT(DISTINCT ip_address) AS unique_visitors,
            COALESCE(SUM(page_views), 0) AS page_views,
            COALESCE(SUM(total_time_spent), 0) AS total_time_spent
        FROM sessions
        GROUP BY date(created_at)
    `).Scan(&stats).Error
	if err != nil {
		return fmt.Errorf("error aggregating daily sessions: %w", err)
	}

	type dayCount struct {
		Date  string
		Count int
	}
	var inquiryCounts []dayCount
	err = db.Raw(`
        SELECT date(created_at) AS date, COUNT(*) AS count
        FROM inquiries
        GROUP BY date(created_at)
    `).Scan(&inquiryCounts).Error
	if err != nil {
		return fmt.Errorf("error aggregating daily inquiries: %w", err)
	}

	inquiriesByDay := make(map[string]int, len(inquiryCounts))
	for _, ic := range inquiryCounts {
		inquiriesByDay[ic.Date] = ic.Count
	}

	return database.PerformWrite(logger, db, func(tx *gorm.DB) error {
		for i := range stats {
			stat := stats[i]
			stat.Inquiries = inquiriesByDay[stat.Date]
			stat.UpdatedAt = time.Now().UTC()

			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "date"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"sessions", "unique_visitors", "page_views",
					"total_time_spent", "inquiries", "updated_at",
				}),
			}).Create(&stat).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func rebuildTopPages(db *gorm.DB, logger *slog.Logger, limit int) error {
	var pages []TopPage
	err := db.Raw(`
        SELECT
            page_url,
            COUNT(*) AS views,
            COALESCE(AVG(time_spent), 0) AS avg_time_spent
        FROM page_views
        GROUP BY page_url
        ORDER BY views DESC
        LIMIT ?
    `, limit).Scan(&pages).Error
	if err != nil {
		return fmt.Errorf("error aggregating top pages: %w", err)
	}

	// The ranking is small and fully replaced each run.
	return database.PerformWrite(logger, db, func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&TopPage{}).Error; err != nil {
			return err
		}
		for i := range pages {
			pages[i].ID = 0
			pages[i].UpdatedAt = time.Now().UTC()
			if err := tx.Create(&pages[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func rebuildTrafficSources(db *gorm.DB, logger *slog.Logger) error {
	var counts []sourceCount
	err := db.Raw(`
        SELECT referrer, COUNT(*) AS count
        FROM sessions
        GROUP BY referrer
    `).Scan(&counts).Error
	if err != nil {
		return fmt.Errorf("error aggregating traffic sources: %w", err)
	}

	type key struct{ source, channel string }
	sessionsBySource := make(map[key]int)
	for _, c := range counts {
		src := referrers.Classify(c.Referrer)
		sessionsBySource[key{src.Name, src.Channel}] += c.Count
	}

	return database.PerformWrite(logger, db, func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&TrafficSource{}).Error; err != nil {
			return err
		}
		for k, sessions := range sessionsBySource {
			row := TrafficSource{
				Source:    k.source,
				Channel:   k.channel,
				Sessions:  sessions,
				UpdatedAt: time.Now().UTC(),
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
