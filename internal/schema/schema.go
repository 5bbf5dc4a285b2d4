// Package schema lists every persisted model. It sits above the domain
// packages so the database layer never has to import them.
package schema

import (
	"docucloud/internal/inquiries"
	"docucloud/internal/reporting"
	"docucloud/internal/tracking"
)

// Models returns every model the schema is migrated from.
func Models() []any {
	return []any{
		&tracking.Session{},
		&tracking.PageView{},
		&tracking.Event{},
		&inquiries.Inquiry{},
		&reporting.DailyStat{},
		&reporting.TopPage{},
		&reporting.TrafficSource{},
	}
}
