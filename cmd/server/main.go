// main.go
//
// Growth tracking for small software products: apps, metric history, action plans and AI suggestions
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of traction-tracker.
// traction-tracker is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// traction-tracker is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with traction-tracker.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/traction-tracker/internal/cache"
	"github.com/localnerve/traction-tracker/internal/config"
	"github.com/localnerve/traction-tracker/internal/database"
	"github.com/localnerve/traction-tracker/internal/events"
	"github.com/localnerve/traction-tracker/internal/handlers"
	"github.com/localnerve/traction-tracker/internal/middleware"
	"github.com/localnerve/traction-tracker/internal/services"
	"github.com/localnerve/traction-tracker/internal/utils"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	_ "github.com/localnerve/traction-tracker/docs/api" // Swagger docs
)

// @title Traction Tracker API
// @version 1.0.0
// @description Growth tracking for small software products: apps, metric history, action plans and AI suggestions
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/traction-tracker
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()
	zap.ReplaceGlobals(zlog)

	// Connect to database (app pool)
	appDB, err := database.Connect(cfg)
	if err != nil {
		zlog.Fatal("failed to connect to app database", zap.Error(err))
	}

	// Connect to database (public pool)
	publicDB, err := database.ConnectPublic(cfg)
	if err != nil {
		zlog.Fatal("failed to connect to public database", zap.Error(err))
	}

	// Run auto-migrations
	if err := database.AutoMigrate(appDB); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}

	projectionCache, err := cache.New(cfg)
	if err != nil {
		zlog.Fatal("failed to create cache", zap.Error(err))
	}

	publisher, err := events.NewPublisher(cfg)
	if err != nil {
		zlog.Fatal("failed to connect event publisher", zap.Error(err))
	}

	auth, err := services.NewAuthenticator(cfg, "http://localhost:"+cfg.Port)
	if err != nil {
		zlog.Fatal("failed to create authenticator", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.SuggestionsRate, cfg.SuggestionsBurst)
	limiter.StartCleanup(ctx, 5*time.Minute)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: utils.FiberErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("traction_tracker")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	handlers.SetupRoutes(app, handlers.Dependencies{
		Config:      cfg,
		DB:          appDB,
		PublicDB:    publicDB,
		Auth:        auth,
		Generator:   services.NewAIClient(cfg),
		Cache:       projectionCache,
		Events:      publisher,
		RateLimiter: limiter,
	})

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		zlog.Info("gracefully shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	// Start server
	zlog.Info("starting server", zap.String("port", cfg.Port), zap.String("authMode", cfg.AuthMode))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Error("server stopped with error", zap.Error(err))
	}

	errs := multierr.Combine(
		database.Close(appDB),
		database.Close(publicDB),
		publisher.Close(),
	)
	if c, ok := projectionCache.(interface{ Close() error }); ok {
		errs = multierr.Append(errs, c.Close())
	}
	if errs != nil {
		zlog.Warn("shutdown cleanup failed", zap.Errors("causes", multierr.Errors(errs)))
	}
	zlog.Info("server stopped")
}
