// Package reporting serves the analytics summary from precomputed
// aggregate tables and maintains those aggregates. The read path never
// writes; RebuildAggregates is invoked by the job scheduler.
package reporting

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DateLayout is the canonical day format used for aggregate rows and
// window filtering.
const DateLayout = "2006-01-02"

// DefaultWindowDays is the trailing window applied when the caller
// provides no usable value.
const DefaultWindowDays = 30

// DailyStat is one day of rolled-up visitor statistics.
type DailyStat struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	// Stored as text, not a date column type: the sqlite driver scans
	// date-typed columns back into time.Time, and the aggregates rely on
	// plain YYYY-MM-DD strings for grouping and window comparison.
	Date           string    `gorm:"size:10;uniqueIndex;not null" json:"date"`
	Sessions       int       `gorm:"not null;default:0" json:"sessions"`
	UniqueVisitors int       `gorm:"not null;default:0" json:"unique_visitors"`
	PageViews      int       `gorm:"not null;default:0" json:"page_views"`
	TotalTimeSpent int       `gorm:"not null;default:0" json:"total_time_spent"`
	Inquiries      int       `gorm:"not null;default:0" json:"inquiries"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

// TopPage is one row of the fixed-size most-viewed-pages ranking.
type TopPage struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	PageURL      string    `gorm:"uniqueIndex;not null" json:"page_url"`
	Views        int       `gorm:"not null;default:0" json:"views"`
	AvgTimeSpent float64   `gorm:"not null;default:0" json:"avg_time_spent"`
	UpdatedAt    time.Time `json:"-"`
}

// TrafficSource is one row of the sessions-by-source breakdown.
type TrafficSource struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	Source    string    `gorm:"uniqueIndex:idx_source_channel;not null" json:"source"`
	Channel   string    `gorm:"uniqueIndex:idx_source_channel;not null" json:"channel"`
	Sessions  int       `gorm:"not null;default:0" json:"sessions"`
	UpdatedAt time.Time `json:"-"`
}

// Summary is the read-only reporting snapshot returned to admin clients.
type Summary struct {
	Stats    []DailyStat     `json:"stats"`
	TopPages []TopPage       `json:"topPages"`
	Sources  []TrafficSource `json:"sources"`
}

// GetSummary reads the aggregate tables and returns the daily series
// restricted to the trailing window, the top-pages ranking and the
// traffic-source breakdown. A non-positive window falls back to the
// default. No aggregation happens here beyond the date filter.
func GetSummary(db *gorm.DB, days int) (*Summary, error) {
	if days <= 0 {
		days = DefaultWindowDays
	}

	startDate := time.Now().UTC().AddDate(0, 0, -days).Format(DateLayout)

	summary := &Summary{
		Stats:    []DailyStat{},
		TopPages: []TopPage{},
		Sources:  []TrafficSource{},
	}

	if err := db.Where("date >= ?", startDate).
		Order("date DESC").
		Find(&summary.Stats).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch daily stats: %w", err)
	}

	if err := db.Order("views DESC").
		Find(&summary.TopPages).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch top pages: %w", err)
	}

	if err := db.Order("sessions DESC").
		Find(&summary.Sources).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch traffic sources: %w", err)
	}

	return summary, nil
}
