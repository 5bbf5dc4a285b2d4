package testsupport

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"docucloud/internal"
	"docucloud/internal/config"
	"docucloud/internal/schema"
	"docucloud/internal/inquiries"
	"docucloud/internal/notifier"
	"docucloud/internal/tracking"
)

// testDBCache caches test databases by root test name so setup helpers and
// subtests share one database.
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

// SetupTestDB creates a migrated test database. A named in-memory database
// with cache=shared lets multiple connections within a test see the same
// data.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	rootName := t.Name()
	if idx := strings.Index(rootName, "/"); idx > 0 {
		rootName = rootName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA busy_timeout = 5000")

	// A single connection keeps the shared in-memory database stable under
	// concurrent test writers.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}

	if err := db.AutoMigrate(schema.Models()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// GetLogger returns a quiet logger for tests.
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// TestConfig returns a configuration suitable for in-process tests.
func TestConfig() *config.Config {
	cfg := config.GetConfig()
	cfg.Environment = config.Test
	cfg.PublicDirectory = ""
	return cfg
}

// CreateTestApp builds a Fiber app with all API routes mounted over the
// given database. Notifications go to a discard notifier.
func CreateTestApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()
	return CreateTestAppWithNotifier(t, db, notifier.Discard{})
}

// CreateTestAppWithNotifier is CreateTestApp with a caller-supplied notifier.
func CreateTestAppWithNotifier(t *testing.T, db *gorm.DB, n inquiries.Notifier) *fiber.App {
	t.Helper()

	app := fiber.New()
	internal.MountRoutes(app, db, GetLogger(), TestConfig(), n)
	return app
}

// CreateTestSession inserts a session row directly.
func CreateTestSession(t *testing.T, db *gorm.DB, token string) *tracking.Session {
	t.Helper()

	session := &tracking.Session{
		Token:       token,
		IPAddress:   "203.0.113.10",
		UserAgent:   "Mozilla/5.0 Test Browser",
		DeviceType:  "desktop",
		Browser:     "Chrome",
		OS:          "Windows 10",
		Referrer:    "",
		LandingPage: "/",
		CreatedAt:   time.Now().UTC(),
		LastSeen:    time.Now().UTC(),
	}
	require.NoError(t, db.Create(session).Error)
	return session
}

// CreateTestInquiry inserts an inquiry row directly.
func CreateTestInquiry(t *testing.T, db *gorm.DB, name, email string) *inquiries.Inquiry {
	t.Helper()

	inquiry := &inquiries.Inquiry{
		Name:    name,
		Email:   email,
		Message: "I would like to learn more about your document workflows.",
		Source:  "website",
		Status:  inquiries.StatusNew,
	}
	require.NoError(t, db.Create(inquiry).Error)
	return inquiry
}
