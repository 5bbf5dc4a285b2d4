package tracking

import "time"

// Session represents one tracked browser visit, correlated by a
// client-generated token. The token is a correlation key only, never an
// authentication credential.
type Session struct {
	ID               uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Token            string `gorm:"column:session_id;uniqueIndex;size:128;not null" json:"session_id"`
	IPAddress        string `gorm:"size:64" json:"ip_address"`
	UserAgent        string `json:"user_agent"`
	DeviceType       string `gorm:"size:16" json:"device_type"`
	Browser          string `json:"browser"`
	OS               string `gorm:"column:os" json:"os"`
	Referrer         string `json:"referrer"`
	LandingPage      string `json:"landing_page"`
	ExitPage         string `json:"exit_page"`
	PageViews        int    `gorm:"not null;default:0" json:"page_views"`
	TotalTimeSpent   int    `gorm:"not null;default:0" json:"total_time_spent"`
	SubmittedInquiry bool   `gorm:"not null;default:false" json:"submitted_inquiry"`
	InquiryID        *uint  `json:"inquiry_id"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeen         time.Time `json:"last_seen"`
}

// PageView is one tracked navigation belonging to a session. Immutable
// after insert except for TimeSpent, which the time-spent updater
// overwrites with the client's latest running total for that view.
type PageView struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID      uint      `gorm:"index;not null" json:"session_id"`
	PageURL        string    `gorm:"index;not null" json:"page_url"`
	PageTitle      string    `json:"page_title"`
	ScreenWidth    int       `json:"screen_width"`
	ScreenHeight   int       `json:"screen_height"`
	ViewportWidth  int       `json:"viewport_width"`
	ViewportHeight int       `json:"viewport_height"`
	TimeSpent      int       `gorm:"not null;default:0" json:"time_spent"`
	ViewedAt       time.Time `gorm:"index;not null" json:"viewed_at"`
}

// Event is a named client-side event belonging to a session. Never mutated.
type Event struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID     uint      `gorm:"index;not null" json:"session_id"`
	EventName     string    `gorm:"index;not null" json:"event_name"`
	EventCategory string    `json:"event_category"`
	EventLabel    string    `json:"event_label"`
	EventValue    float64   `json:"event_value"`
	PageURL       string    `json:"page_url"`
	Metadata      string    `gorm:"type:text" json:"metadata"`
	CreatedAt     time.Time `json:"created_at"`
}
