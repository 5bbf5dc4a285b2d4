package reporting_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docucloud/internal/inquiries"
	"docucloud/internal/reporting"
	"docucloud/internal/testsupport"
	"docucloud/internal/tracking"
)

func TestRebuildAggregatesDailyStats(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	now := time.Now().UTC()
	yesterday := now.AddDate(0, 0, -1)

	sessions := []tracking.Session{
		{Token: "s1", IPAddress: "203.0.113.1", PageViews: 3, TotalTimeSpent: 120, Referrer: "https://www.google.com/", CreatedAt: now, LastSeen: now},
		{Token: "s2", IPAddress: "203.0.113.1", PageViews: 1, TotalTimeSpent: 30, Referrer: "", CreatedAt: now, LastSeen: now},
		{Token: "s3", IPAddress: "203.0.113.2", PageViews: 2, TotalTimeSpent: 60, Referrer: "https://t.co/x", CreatedAt: yesterday, LastSeen: yesterday},
	}
	for i := range sessions {
		require.NoError(t, db.Create(&sessions[i]).Error)
	}

	inquiry := inquiries.Inquiry{Name: "Jo Smith", Email: "jo@example.com", Message: "Need document automation help", Status: inquiries.StatusNew, CreatedAt: now}
	require.NoError(t, db.Create(&inquiry).Error)

	require.NoError(t, reporting.RebuildAggregates(db, logger, 10))

	var stats []reporting.DailyStat
	require.NoError(t, db.Order("date ASC").Find(&stats).Error)
	require.Len(t, stats, 2)

	today := now.Format(reporting.DateLayout)
	assert.Equal(t, yesterday.Format(reporting.DateLayout), stats[0].Date)
	assert.Equal(t, 1, stats[0].Sessions)
	assert.Equal(t, 0, stats[0].Inquiries)

	assert.Equal(t, today, stats[1].Date)
	assert.Equal(t, 2, stats[1].Sessions)
	assert.Equal(t, 1, stats[1].UniqueVisitors)
	assert.Equal(t, 4, stats[1].PageViews)
	assert.Equal(t, 150, stats[1].TotalTimeSpent)
	assert.Equal(t, 1, stats[1].Inquiries)
}

func TestRebuildAggregatesIsIdempotent(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	now := time.Now().UTC()
	session := tracking.Session{Token: "s1", IPAddress: "203.0.113.1", PageViews: 1, CreatedAt: now, LastSeen: now}
	require.NoError(t, db.Create(&session).Error)

	require.NoError(t, reporting.RebuildAggregates(db, logger, 10))
	require.NoError(t, reporting.RebuildAggregates(db, logger, 10))

	var count int64
	require.NoError(t, db.Model(&reporting.DailyStat{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRebuildAggregatesTopPages(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	now := time.Now().UTC()
	session := tracking.Session{Token: "s1", IPAddress: "203.0.113.1", CreatedAt: now, LastSeen: now}
	require.NoError(t, db.Create(&session).Error)

	views := []tracking.PageView{
		{SessionID: session.ID, PageURL: "/pricing", TimeSpent: 30, ViewedAt: now},
		{SessionID: session.ID, PageURL: "/pricing", TimeSpent: 60, ViewedAt: now},
		{SessionID: session.ID, PageURL: "/", TimeSpent: 10, ViewedAt: now},
	}
	for i := range views {
		require.NoError(t, db.Create(&views[i]).Error)
	}

	require.NoError(t, reporting.RebuildAggregates(db, logger, 10))

	var pages []reporting.TopPage
	require.NoError(t, db.Order("views DESC").Find(&pages).Error)
	require.Len(t, pages, 2)

	assert.Equal(t, "/pricing", pages[0].PageURL)
	assert.Equal(t, 2, pages[0].Views)
	assert.InDelta(t, 45.0, pages[0].AvgTimeSpent, 0.001)
	assert.Equal(t, "/", pages[1].PageURL)
}

func TestRebuildAggregatesTopPagesLimit(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	now := time.Now().UTC()
	session := tracking.Session{Token: "s1", IPAddress: "203.0.113.1", CreatedAt: now, LastSeen: now}
	require.NoError(t, db.Create(&session).Error)

	for i := 0; i < 5; i++ {
		pv := tracking.PageView{SessionID: session.ID, PageURL: fmt.Sprintf("/page-%d", i), ViewedAt: now}
		require.NoError(t, db.Create(&pv).Error)
	}

	require.NoError(t, reporting.RebuildAggregates(db, logger, 3))

	var count int64
	require.NoError(t, db.Model(&reporting.TopPage{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestRebuildAggregatesTrafficSources(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	now := time.Now().UTC()
	sessions := []tracking.Session{
		{Token: "s1", IPAddress: "203.0.113.1", Referrer: "https://www.google.com/search", CreatedAt: now, LastSeen: now},
		{Token: "s2", IPAddress: "203.0.113.2", Referrer: "https://google.com/", CreatedAt: now, LastSeen: now},
		{Token: "s3", IPAddress: "203.0.113.3", Referrer: "", CreatedAt: now, LastSeen: now},
		{Token: "s4", IPAddress: "203.0.113.4", Referrer: "https://partner.example.net/post", CreatedAt: now, LastSeen: now},
	}
	for i := range sessions {
		require.NoError(t, db.Create(&sessions[i]).Error)
	}

	require.NoError(t, reporting.RebuildAggregates(db, logger, 10))

	var sources []reporting.TrafficSource
	require.NoError(t, db.Order("sessions DESC").Find(&sources).Error)
	require.Len(t, sources, 3)

	assert.Equal(t, "Google", sources[0].Source)
	assert.Equal(t, "search", sources[0].Channel)
	assert.Equal(t, 2, sources[0].Sessions)
}

func TestGetSummaryWindow(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	now := time.Now().UTC()
	old := reporting.DailyStat{Date: now.AddDate(0, 0, -40).Format(reporting.DateLayout), Sessions: 5}
	recent := reporting.DailyStat{Date: now.AddDate(0, 0, -2).Format(reporting.DateLayout), Sessions: 7}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&recent).Error)

	summary, err := reporting.GetSummary(db, 30)
	require.NoError(t, err)

	require.Len(t, summary.Stats, 1)
	assert.Equal(t, recent.Date, summary.Stats[0].Date)
	assert.Equal(t, 7, summary.Stats[0].Sessions)
}

func TestGetSummaryDefaultsWindow(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	now := time.Now().UTC()
	recent := reporting.DailyStat{Date: now.Format(reporting.DateLayout), Sessions: 1}
	require.NoError(t, db.Create(&recent).Error)

	summary, err := reporting.GetSummary(db, 0)
	require.NoError(t, err)
	assert.Len(t, summary.Stats, 1)
}

func TestGetSummaryEmptyTables(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	summary, err := reporting.GetSummary(db, 30)
	require.NoError(t, err)

	assert.NotNil(t, summary.Stats)
	assert.Empty(t, summary.Stats)
	assert.NotNil(t, summary.TopPages)
	assert.Empty(t, summary.TopPages)
	assert.NotNil(t, summary.Sources)
	assert.Empty(t, summary.Sources)
}
