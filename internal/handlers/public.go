// public.go
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
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/traction-tracker/internal/cache"
	"github.com/localnerve/traction-tracker/internal/services"
	"github.com/localnerve/traction-tracker/internal/utils"
	"gorm.io/gorm"
)

// PublicHandler serves the unauthenticated projection of public apps
type PublicHandler struct {
	DB          *gorm.DB
	projections projectionCache
}

// GetPublicApp handles GET /api/public/apps/:id
// @Summary Public app
// @Description Public view of an app. Private and unknown apps are both 404.
// @Tags Public
// @Produce json
// @Param id path string true "App ID"
// @Success 200 {object} services.PublicAppView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /public/apps/{id} [get]
func (h *PublicHandler) GetPublicApp(c *fiber.Ctx) error {
	appID := c.Params("id")
	key := cache.PublicAppKey(appID)

	var view services.PublicAppView
	if h.projections.get(c.UserContext(), key, &view) {
		c.Set("X-Cache", "HIT")
		return utils.SuccessResponse(c, view, fiber.StatusOK)
	}

	result, err := services.PublicApp(c.UserContext(), h.DB, appID)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "public.app")
	}

	h.projections.set(c.UserContext(), key, result)
	c.Set("X-Cache", "MISS")
	return utils.SuccessResponse(c, result, fiber.StatusOK)
}

// GetPublicDashboard handles GET /api/public/users/:userId/dashboard
// @Summary Public dashboard
// @Description Public apps of a user with rolled up totals
// @Tags Public
// @Produce json
// @Param userId path string true "Owner ID"
// @Success 200 {object} services.Dashboard
// @Failure 502 {object} utils.ErrorResponseStruct
// @Router /public/users/{userId}/dashboard [get]
func (h *PublicHandler) GetPublicDashboard(c *fiber.Ctx) error {
	ownerID := c.Params("userId")
	key := cache.PublicDashboardKey(ownerID)

	var dashboard services.Dashboard
	if h.projections.get(c.UserContext(), key, &dashboard) {
		c.Set("X-Cache", "HIT")
		return utils.SuccessResponse(c, dashboard, fiber.StatusOK)
	}

	result, err := services.PublicUserDashboard(c.UserContext(), h.DB, ownerID)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "public.dashboard")
	}

	h.projections.set(c.UserContext(), key, result)
	c.Set("X-Cache", "MISS")
	return utils.SuccessResponse(c, result, fiber.StatusOK)
}
