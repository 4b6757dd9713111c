// actions.go
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
	"github.com/localnerve/traction-tracker/internal/models"
	"github.com/localnerve/traction-tracker/internal/services"
	"github.com/localnerve/traction-tracker/internal/utils"
	"gorm.io/gorm"
)

// ActionHandler handles the action rows of an owned app
type ActionHandler struct {
	DB          *gorm.DB
	projections projectionCache
}

// ActionList is the resolved action list of an app and where it came from
type ActionList struct {
	Actions []models.Action `json:"actions"`
	Source  string          `json:"source" example:"table"`
}

// CreateActionRequest is the body of an action create
type CreateActionRequest struct {
	Text string `json:"text"`
}

// ownedApp loads the :id app and checks that the caller owns it
func ownedApp(c *fiber.Ctx, db *gorm.DB) (*models.App, string, error) {
	userID, err := getUserID(c)
	if err != nil {
		return nil, "", err
	}
	app, err := services.GetApp(c.UserContext(), db, c.Params("id"), userID)
	if err != nil {
		return nil, "", err
	}
	return app, userID, nil
}

// ListActions handles GET /api/apps/:id/actions
// @Summary List actions
// @Description Resolved actions of an owned app. Source is table, legacy or empty.
// @Tags Actions
// @Produce json
// @Security BearerAuth
// @Param id path string true "App ID"
// @Success 200 {object} ActionList
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /apps/{id}/actions [get]
func (h *ActionHandler) ListActions(c *fiber.Ctx) error {
	app, _, err := ownedApp(c, h.DB)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "actions.list")
	}

	resolved := services.ResolveActions(c.UserContext(), h.DB, app)
	return utils.SuccessResponse(c, ActionList{Actions: resolved.Actions, Source: resolved.Source}, fiber.StatusOK)
}

// CreateAction handles POST /api/apps/:id/actions
// @Summary Create action
// @Tags Actions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "App ID"
// @Param body body CreateActionRequest true "Action text"
// @Success 201 {object} models.Action
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /apps/{id}/actions [post]
func (h *ActionHandler) CreateAction(c *fiber.Ctx) error {
	app, userID, err := ownedApp(c, h.DB)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "actions.create")
	}

	var req CreateActionRequest
	if err := parseBody(c, &req); err != nil {
		return utils.ServiceErrorResponse(c, err, "actions.create")
	}

	action, err := services.CreateActionRow(c.UserContext(), h.DB, app.ID, req.Text)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "actions.create")
	}

	h.projections.invalidate(c.UserContext(), app.ID, userID)
	return utils.SuccessResponse(c, action, fiber.StatusCreated)
}

// UpdateAction handles PUT /api/apps/:id/actions/:actionId
// @Summary Update action
// @Description Change the text and/or completion of an action row
// @Tags Actions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "App ID"
// @Param actionId path string true "Action ID"
// @Param body body services.ActionPatch true "Fields to change"
// @Success 200 {object} models.Action
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /apps/{id}/actions/{actionId} [put]
func (h *ActionHandler) UpdateAction(c *fiber.Ctx) error {
	app, userID, err := ownedApp(c, h.DB)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "actions.update")
	}

	var patch services.ActionPatch
	if err := parseBody(c, &patch); err != nil {
		return utils.ServiceErrorResponse(c, err, "actions.update")
	}

	action, err := services.UpdateActionRow(c.UserContext(), h.DB, c.Params("actionId"), app.ID, patch)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "actions.update")
	}

	h.projections.invalidate(c.UserContext(), app.ID, userID)
	return utils.SuccessResponse(c, action, fiber.StatusOK)
}

// DeleteAction handles DELETE /api/apps/:id/actions/:actionId
// @Summary Delete action
// @Tags Actions
// @Produce json
// @Security BearerAuth
// @Param id path string true "App ID"
// @Param actionId path string true "Action ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /apps/{id}/actions/{actionId} [delete]
func (h *ActionHandler) DeleteAction(c *fiber.Ctx) error {
	app, userID, err := ownedApp(c, h.DB)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "actions.delete")
	}

	if err := services.DeleteActionRow(c.UserContext(), h.DB, c.Params("actionId"), app.ID); err != nil {
		return utils.ServiceErrorResponse(c, err, "actions.delete")
	}

	h.projections.invalidate(c.UserContext(), app.ID, userID)
	return utils.MutationSuccessResponse(c, 1)
}
