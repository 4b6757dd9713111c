// apps.go
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
	"github.com/localnerve/traction-tracker/internal/events"
	"github.com/localnerve/traction-tracker/internal/models"
	"github.com/localnerve/traction-tracker/internal/services"
	"github.com/localnerve/traction-tracker/internal/types"
	"github.com/localnerve/traction-tracker/internal/utils"
	"gorm.io/gorm"
)

// AppHandler handles owner scoped app routes
type AppHandler struct {
	DB          *gorm.DB
	Events      events.Publisher
	ForcePublic bool
	projections projectionCache
}

// AppDetail is an app with its resolved action list
type AppDetail struct {
	*models.App
	Actions      []models.Action `json:"actions"`
	ActionSource string          `json:"actionSource"`
}

// UpdateAppResponse is the result of an app update
type UpdateAppResponse struct {
	App             *models.App          `json:"app"`
	RecordedMetrics []models.MetricPoint `json:"recordedMetrics"`
}

// VisibilityRequest is the body of a visibility change
type VisibilityRequest struct {
	IsPublic *bool `json:"isPublic"`
}

// ListApps handles GET /api/apps
// @Summary List apps
// @Description List the caller's apps, newest first
// @Tags Apps
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.App
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /apps [get]
func (h *AppHandler) ListApps(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "apps.list")
	}

	apps, err := services.ListApps(c.UserContext(), h.DB, userID)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "apps.list")
	}
	return utils.SuccessResponse(c, apps, fiber.StatusOK)
}

// CreateApp handles POST /api/apps
// @Summary Create app
// @Description Create an app owned by the caller. Metrics start at zero and the app is public.
// @Tags Apps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateAppInput true "New app"
// @Success 201 {object} models.App
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /apps [post]
func (h *AppHandler) CreateApp(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "apps.create")
	}

	var input services.CreateAppInput
	if err := parseBody(c, &input); err != nil {
		return utils.ServiceErrorResponse(c, err, "apps.create")
	}

	app, err := services.CreateApp(c.UserContext(), h.DB, userID, input)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "apps.create")
	}

	h.projections.invalidate(c.UserContext(), app.ID, userID)
	return utils.SuccessResponse(c, app, fiber.StatusCreated)
}

// GetApp handles GET /api/apps/:id
// @Summary Get app
// @Description Get an owned app with its resolved actions
// @Tags Apps
// @Produce json
// @Security BearerAuth
// @Param id path string true "App ID"
// @Success 200 {object} AppDetail
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /apps/{id} [get]
func (h *AppHandler) GetApp(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "apps.get")
	}

	app, err := services.GetApp(c.UserContext(), h.DB, c.Params("id"), userID)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "apps.get")
	}

	resolved := services.ResolveActions(c.UserContext(), h.DB, app)
	return utils.SuccessResponse(c, AppDetail{
		App:          app,
		Actions:      resolved.Actions,
		ActionSource: resolved.Source,
	}, fiber.StatusOK)
}

// UpdateApp handles PUT /api/apps/:id
// @Summary Update app
// @Description Partially update an owned app. Server owned fields in the body are ignored.
// @Description Changed userCount and revenue values are appended to the metric history.
// @Tags Apps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "App ID"
// @Param body body object true "Fields to change"
// @Success 200 {object} UpdateAppResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /apps/{id} [put]
func (h *AppHandler) UpdateApp(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "apps.update")
	}

	var patch services.AppPatch
	if err := parseBody(c, &patch); err != nil {
		return utils.ServiceErrorResponse(c, err, "apps.update")
	}

	ctx := c.UserContext()
	app, recorded, err := services.UpdateApp(ctx, h.DB, c.Params("id"), userID, patch, services.UpdateOptions{
		ForcePublic: h.ForcePublic,
	})
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "apps.update")
	}

	for _, point := range recorded {
		publish(ctx, h.Events, events.MetricRecorded, metricEvent(point))
	}
	h.projections.invalidate(ctx, app.ID, userID)

	return utils.SuccessResponse(c, UpdateAppResponse{App: app, RecordedMetrics: recorded}, fiber.StatusOK)
}

// SetVisibility handles PUT /api/apps/:id/visibility
// @Summary Set app visibility
// @Description Make an owned app public or private
// @Tags Apps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "App ID"
// @Param body body VisibilityRequest true "Visibility"
// @Success 200 {object} models.App
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /apps/{id}/visibility [put]
func (h *AppHandler) SetVisibility(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "apps.visibility")
	}

	var req VisibilityRequest
	if err := parseBody(c, &req); err != nil {
		return utils.ServiceErrorResponse(c, err, "apps.visibility")
	}
	if req.IsPublic == nil {
		return utils.ServiceErrorResponse(c, types.NewValidationError("isPublic is required"), "apps.visibility")
	}

	app, err := services.SetVisibility(c.UserContext(), h.DB, c.Params("id"), userID, *req.IsPublic)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "apps.visibility")
	}

	h.projections.invalidate(c.UserContext(), app.ID, userID)
	return utils.SuccessResponse(c, app, fiber.StatusOK)
}

// DeleteApp handles DELETE /api/apps/:id
// @Summary Delete app
// @Description Delete an owned app with its actions and metric history
// @Tags Apps
// @Produce json
// @Security BearerAuth
// @Param id path string true "App ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /apps/{id} [delete]
func (h *AppHandler) DeleteApp(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "apps.delete")
	}

	ctx := c.UserContext()
	app, err := services.DeleteApp(ctx, h.DB, c.Params("id"), userID)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "apps.delete")
	}

	publish(ctx, h.Events, events.AppDeleted, events.AppDeletedEvent{AppID: app.ID, UserID: app.UserID})
	h.projections.invalidate(ctx, app.ID, userID)

	return utils.MutationSuccessResponse(c, 1)
}

func metricEvent(point models.MetricPoint) events.MetricRecordedEvent {
	return events.MetricRecordedEvent{
		AppID:      point.AppID,
		MetricType: point.MetricType,
		Value:      point.Value,
		RecordedAt: point.RecordedAt,
	}
}
