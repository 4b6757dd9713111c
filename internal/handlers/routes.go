// routes.go
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

package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/traction-tracker/internal/cache"
	"github.com/localnerve/traction-tracker/internal/config"
	"github.com/localnerve/traction-tracker/internal/events"
	"github.com/localnerve/traction-tracker/internal/middleware"
	"github.com/localnerve/traction-tracker/internal/services"
	"github.com/localnerve/traction-tracker/internal/utils"
	"gorm.io/gorm"
)

// Dependencies are the resources shared by the route handlers
type Dependencies struct {
	Config      *config.Config
	DB          *gorm.DB
	PublicDB    *gorm.DB
	Auth        services.Authenticator
	Generator   services.TextGenerator
	Cache       cache.Cache
	Events      events.Publisher
	RateLimiter *middleware.RateLimiter
}

// SetupRoutes mounts the API under /api and a JSON 404 for everything else.
// Nil optional dependencies fall back to no-op implementations.
func SetupRoutes(app *fiber.App, d Dependencies) {
	if d.PublicDB == nil {
		d.PublicDB = d.DB
	}
	if d.Cache == nil {
		d.Cache = cache.Noop{}
	}
	if d.Events == nil {
		d.Events = events.Noop{}
	}
	if d.Generator == nil {
		d.Generator = services.NewAIClient(d.Config)
	}
	if d.RateLimiter == nil {
		d.RateLimiter = middleware.NewRateLimiter(d.Config.SuggestionsRate, d.Config.SuggestionsBurst)
	}

	projections := projectionCache{cache: d.Cache, ttl: d.Config.CacheTTL}
	if projections.ttl <= 0 {
		projections.ttl = 30 * time.Second
	}

	appHandler := &AppHandler{DB: d.DB, Events: d.Events, ForcePublic: d.Config.ForcePublicOnUpdate, projections: projections}
	actionHandler := &ActionHandler{DB: d.DB, projections: projections}
	metricHandler := &MetricHandler{DB: d.DB, Events: d.Events}
	suggestionHandler := &SuggestionHandler{DB: d.DB, Generator: d.Generator}
	publicHandler := &PublicHandler{DB: d.PublicDB, projections: projections}
	healthHandler := &HealthHandler{Config: d.Config, DB: d.DB}

	// API routes under /api
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	api.Get("/health", healthHandler.Health)

	// Public projection, no authentication
	public := api.Group("/public")
	public.Get("/apps/:id", publicHandler.GetPublicApp)
	public.Get("/users/:userId/dashboard", publicHandler.GetPublicDashboard)

	// Owner routes
	apps := api.Group("/apps", middleware.RequireUser(d.Auth))
	apps.Get("/", appHandler.ListApps)
	apps.Post("/", appHandler.CreateApp)
	apps.Get("/:id", appHandler.GetApp)
	apps.Put("/:id", appHandler.UpdateApp)
	apps.Delete("/:id", appHandler.DeleteApp)
	apps.Put("/:id/visibility", appHandler.SetVisibility)

	apps.Get("/:id/actions", actionHandler.ListActions)
	apps.Post("/:id/actions", actionHandler.CreateAction)
	apps.Put("/:id/actions/:actionId", actionHandler.UpdateAction)
	apps.Delete("/:id/actions/:actionId", actionHandler.DeleteAction)

	apps.Get("/:id/metrics", metricHandler.MetricHistory)
	apps.Post("/:id/metrics", metricHandler.RecordMetric)

	apps.Post("/:id/suggestions", d.RateLimiter.Handler(), suggestionHandler.Suggest)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundResponse(c, "[404] Resource Not Found")
	})
}
