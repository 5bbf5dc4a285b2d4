package tracking_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docucloud/internal/testsupport"
	"docucloud/internal/tracking"
)

const windowsChromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
const iphoneUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"

func pageView(url string) *tracking.PageViewInput {
	return &tracking.PageViewInput{
		URL:       url,
		Title:     "Test Page",
		UserAgent: windowsChromeUA,
		IPAddress: "203.0.113.10",
	}
}

func TestRecordPageViewCreatesSession(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	input := pageView("/pricing")
	input.Referrer = "https://www.google.com/search?q=docucloud"
	require.NoError(t, tracking.RecordPageView(db, logger, "sess-create", input))

	session, err := tracking.GetSessionByToken(db, "sess-create")
	require.NoError(t, err)

	assert.Equal(t, "/pricing", session.LandingPage)
	assert.Equal(t, "/pricing", session.ExitPage)
	assert.Equal(t, 1, session.PageViews)
	assert.Equal(t, "desktop", session.DeviceType)
	assert.Equal(t, "https://www.google.com/search?q=docucloud", session.Referrer)
	assert.False(t, session.SubmittedInquiry)

	var count int64
	require.NoError(t, db.Model(&tracking.PageView{}).Where("session_id = ?", session.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRecordPageViewReusesSession(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	require.NoError(t, tracking.RecordPageView(db, logger, "sess-reuse", pageView("/")))
	require.NoError(t, tracking.RecordPageView(db, logger, "sess-reuse", pageView("/features")))
	require.NoError(t, tracking.RecordPageView(db, logger, "sess-reuse", pageView("/contact")))

	session, err := tracking.GetSessionByToken(db, "sess-reuse")
	require.NoError(t, err)

	// Landing page is fixed at first sight, exit page follows the latest view.
	assert.Equal(t, "/", session.LandingPage)
	assert.Equal(t, "/contact", session.ExitPage)
	assert.Equal(t, 3, session.PageViews)

	var count int64
	require.NoError(t, db.Model(&tracking.PageView{}).Where("session_id = ?", session.ID).Count(&count).Error)
	assert.EqualValues(t, 3, count)

	var sessions int64
	require.NoError(t, db.Model(&tracking.Session{}).Where("session_id = ?", "sess-reuse").Count(&sessions).Error)
	assert.EqualValues(t, 1, sessions)
}

func TestRecordPageViewMobileClassification(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	input := pageView("/")
	input.UserAgent = iphoneUA
	require.NoError(t, tracking.RecordPageView(db, logger, "sess-mobile", input))

	session, err := tracking.GetSessionByToken(db, "sess-mobile")
	require.NoError(t, err)
	assert.Equal(t, "mobile", session.DeviceType)
}

func TestRecordPageViewConcurrentSameSession(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	const views = 10
	var wg sync.WaitGroup
	errs := make([]error, views)

	for i := 0; i < views; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = tracking.RecordPageView(db, logger, "sess-concurrent", pageView(fmt.Sprintf("/page-%d", i)))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	session, err := tracking.GetSessionByToken(db, "sess-concurrent")
	require.NoError(t, err)
	assert.Equal(t, views, session.PageViews)

	var count int64
	require.NoError(t, db.Model(&tracking.PageView{}).Where("session_id = ?", session.ID).Count(&count).Error)
	assert.EqualValues(t, views, count)

	var sessions int64
	require.NoError(t, db.Model(&tracking.Session{}).Where("session_id = ?", "sess-concurrent").Count(&sessions).Error)
	assert.EqualValues(t, 1, sessions)
}

func TestRecordTimeSpentAccumulates(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	require.NoError(t, tracking.RecordPageView(db, logger, "sess-time", pageView("/docs")))

	applied, err := tracking.RecordTimeSpent(db, logger, "sess-time", "/docs", 30)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = tracking.RecordTimeSpent(db, logger, "sess-time", "/docs", 45)
	require.NoError(t, err)
	assert.True(t, applied)

	session, err := tracking.GetSessionByToken(db, "sess-time")
	require.NoError(t, err)
	// Session total accumulates, the page view keeps the latest report.
	assert.Equal(t, 75, session.TotalTimeSpent)

	var pv tracking.PageView
	require.NoError(t, db.Where("session_id = ? AND page_url = ?", session.ID, "/docs").
		Order("viewed_at DESC").First(&pv).Error)
	assert.Equal(t, 45, pv.TimeSpent)
}

func TestRecordTimeSpentUnknownSession(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	applied, err := tracking.RecordTimeSpent(db, logger, "never-seen", "/docs", 30)
	require.NoError(t, err)
	assert.False(t, applied)

	// A time-spent report must never establish a session.
	var count int64
	require.NoError(t, db.Model(&tracking.Session{}).Where("session_id = ?", "never-seen").Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestRecordTimeSpentUnmatchedPage(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	require.NoError(t, tracking.RecordPageView(db, logger, "sess-unmatched", pageView("/a")))

	// The session total still accumulates even when no page view matches.
	applied, err := tracking.RecordTimeSpent(db, logger, "sess-unmatched", "/b", 20)
	require.NoError(t, err)
	assert.True(t, applied)

	session, err := tracking.GetSessionByToken(db, "sess-unmatched")
	require.NoError(t, err)
	assert.Equal(t, 20, session.TotalTimeSpent)
}

func TestRecordEvent(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	require.NoError(t, tracking.RecordPageView(db, logger, "sess-event", pageView("/")))

	err := tracking.RecordEvent(db, logger, "sess-event", &tracking.EventInput{
		Name:     "cta_click",
		Category: "engagement",
		Label:    "hero",
		Value:    1,
		PageURL:  "/",
		Metadata: `{"variant":"b"}`,
	})
	require.NoError(t, err)

	session, err := tracking.GetSessionByToken(db, "sess-event")
	require.NoError(t, err)

	var event tracking.Event
	require.NoError(t, db.Where("session_id = ?", session.ID).First(&event).Error)
	assert.Equal(t, "cta_click", event.EventName)
	assert.Equal(t, `{"variant":"b"}`, event.Metadata)
}

func TestRecordEventUnknownSession(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	err := tracking.RecordEvent(db, logger, "never-seen", &tracking.EventInput{Name: "cta_click"})
	require.Error(t, err)

	var notFound *tracking.SessionNotFoundError
	assert.True(t, errors.As(err, &notFound))

	var count int64
	require.NoError(t, db.Model(&tracking.Event{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestLinkInquiry(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	require.NoError(t, tracking.RecordPageView(db, logger, "sess-link", pageView("/contact")))
	require.NoError(t, tracking.LinkInquiry(db, logger, "sess-link", 42))

	session, err := tracking.GetSessionByToken(db, "sess-link")
	require.NoError(t, err)
	assert.True(t, session.SubmittedInquiry)
	require.NotNil(t, session.InquiryID)
	assert.EqualValues(t, 42, *session.InquiryID)

	// Re-applying the same link is a no-op on the final state.
	require.NoError(t, tracking.LinkInquiry(db, logger, "sess-link", 42))

	session, err = tracking.GetSessionByToken(db, "sess-link")
	require.NoError(t, err)
	assert.True(t, session.SubmittedInquiry)
	assert.EqualValues(t, 42, *session.InquiryID)
}

func TestLinkInquiryUnknownSession(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	// Unknown tokens are ignored so a stale client cannot fail a submission.
	require.NoError(t, tracking.LinkInquiry(db, logger, "never-seen", 42))
}
