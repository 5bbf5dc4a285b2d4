// Package internal wires configuration, storage, HTTP and background jobs
// into a runnable application.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"docucloud/internal/config"
	"docucloud/internal/database"
	"docucloud/internal/inquiries"
	"docucloud/internal/jobs"
	"docucloud/internal/logging"
	"docucloud/internal/notifier"
	"docucloud/internal/schema"
)

// Application owns the process-level components and their lifecycle.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	DBManager *database.Manager
	Scheduler *jobs.Scheduler
	Notifier  inquiries.Notifier

	server *fiber.App
}

// NewApp builds the application from configuration. The database is opened
// but not migrated; callers run Migrate before serving traffic.
func NewApp() (*Application, error) {
	cfg := config.GetConfig()
	logger := logging.NewLogger(cfg)

	dbManager := database.NewManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var mailer inquiries.Notifier
	if cfg.EmailConfigured() {
		mailer = notifier.NewSMTPNotifier(cfg, logger)
	} else {
		logger.Warn("SMTP not configured, inquiry notifications disabled")
		mailer = notifier.Discard{}
	}

	app := &Application{
		Config:    cfg,
		Logger:    logger,
		DBManager: dbManager,
		Scheduler: jobs.NewScheduler(dbManager, logger, cfg),
		Notifier:  mailer,
	}
	app.server = app.buildServer()

	return app, nil
}

func (a *Application) buildServer() *fiber.App {
	srv := fiber.New(fiber.Config{
		AppName:      a.Config.AppName,
		ErrorHandler: a.errorHandler,
	})

	srv.Use(recover.New())
	srv.Use(helmet.New(helmet.Config{
		ContentSecurityPolicy: a.contentSecurityPolicy(),
	}))
	srv.Use(cors.New(cors.Config{
		AllowOrigins: a.allowedOrigins(),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	srv.Use(a.requestLogger)

	if a.Config.IsProduction() {
		srv.Use("/api", limiter.New(limiter.Config{
			Max:        a.Config.RateLimitMax,
			Expiration: a.Config.RateLimitWindow(),
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"success": false,
					"message": "Too many requests, please try again later.",
				})
			},
		}))
	}

	MountRoutes(srv, a.DBManager.GetConnection(), a.Logger, a.Config, a.Notifier)

	return srv
}

func (a *Application) contentSecurityPolicy() string {
	if a.Config.IsProduction() {
		return "default-src 'self'; img-src 'self' data:; script-src 'self'; style-src 'self' 'unsafe-inline'"
	}
	// A CSP on local assets makes development painful.
	return ""
}

func (a *Application) allowedOrigins() string {
	if a.Config.IsProduction() {
		return a.Config.CORSOrigin
	}
	return "http://localhost:3000, http://localhost:5173, " + a.Config.CORSOrigin
}

func (a *Application) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	a.Logger.Info("Request",
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Int("status", c.Response().StatusCode()),
		slog.Duration("duration", time.Since(start)))

	return err
}

func (a *Application) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		if !a.Config.IsProduction() || code < fiber.StatusInternalServerError {
			message = fiberErr.Message
		}
	}

	a.Logger.Error("Unhandled request error",
		slog.String("path", c.Path()),
		slog.Int("status", code),
		slog.String("error", err.Error()))

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// Migrate applies pending schema changes.
func (a *Application) Migrate() error {
	return a.DBManager.Migrate(schema.Models()...)
}

// StartAsync begins serving HTTP and starts background jobs. The listener
// error, if any, is delivered on the returned channel.
func (a *Application) StartAsync() <-chan error {
	errCh := make(chan error, 1)

	if err := a.Scheduler.Start(); err != nil {
		a.Logger.Error("Failed to start scheduler", slog.String("error", err.Error()))
	}

	go func() {
		addr := ":" + a.Config.AppPort
		a.Logger.Info("Starting server",
			slog.String("addr", addr),
			slog.String("environment", a.Config.Environment))
		errCh <- a.server.Listen(addr)
	}()

	return errCh
}

// Server exposes the underlying fiber app, primarily for tests.
func (a *Application) Server() *fiber.App {
	return a.server
}

// Shutdown stops jobs, drains in-flight requests and closes the database.
func (a *Application) Shutdown(ctx context.Context) error {
	a.Scheduler.Stop()

	if err := a.server.ShutdownWithContext(ctx); err != nil {
		a.Logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}

	if err := a.DBManager.CheckpointWAL("TRUNCATE"); err != nil {
		a.Logger.Warn("WAL checkpoint on shutdown failed", slog.String("error", err.Error()))
	}

	return a.DBManager.Close()
}
