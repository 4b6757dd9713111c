// metrics.go
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

// MetricHandler reads and appends metric history of an owned app
type MetricHandler struct {
	DB     *gorm.DB
	Events events.Publisher
}

// RecordMetricRequest is the body of a direct metric point append
type RecordMetricRequest struct {
	MetricType string   `json:"metricType" example:"user_count"`
	Value      *float64 `json:"value"`
}

// MetricHistory handles GET /api/apps/:id/metrics
// @Summary Metric history
// @Description Points of one metric type, most recent first
// @Tags Metrics
// @Produce json
// @Security BearerAuth
// @Param id path string true "App ID"
// @Param type query string true "Metric type" Enums(user_count, revenue)
// @Param limit query int false "Maximum points (default 30, max 500)"
// @Success 200 {array} models.MetricPoint
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /apps/{id}/metrics [get]
func (h *MetricHandler) MetricHistory(c *fiber.Ctx) error {
	app, _, err := ownedApp(c, h.DB)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "metrics.history")
	}

	metricType := c.Query("type")
	if metricType == "" {
		return utils.ServiceErrorResponse(c, types.NewValidationError("type query parameter is required"), "metrics.history")
	}
	limit, err := parseLimit(c)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "metrics.history")
	}

	points := make([]models.MetricPoint, 0)
	for point, err := range services.MetricHistory(c.UserContext(), h.DB, app.ID, metricType, limit) {
		if err != nil {
			return utils.ServiceErrorResponse(c, err, "metrics.history")
		}
		points = append(points, point)
	}
	return utils.SuccessResponse(c, points, fiber.StatusOK)
}

// RecordMetric handles POST /api/apps/:id/metrics
// @Summary Record metric point
// @Description Append a point to the metric history without changing the app
// @Tags Metrics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "App ID"
// @Param body body RecordMetricRequest true "Metric point"
// @Success 201 {object} models.MetricPoint
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /apps/{id}/metrics [post]
func (h *MetricHandler) RecordMetric(c *fiber.Ctx) error {
	app, _, err := ownedApp(c, h.DB)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "metrics.record")
	}

	var req RecordMetricRequest
	if err := parseBody(c, &req); err != nil {
		return utils.ServiceErrorResponse(c, err, "metrics.record")
	}

	point, err := services.RecordMetric(c.UserContext(), h.DB, app.ID, req.MetricType, req.Value)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "metrics.record")
	}

	publish(c.UserContext(), h.Events, events.MetricRecorded, metricEvent(*point))
	return utils.SuccessResponse(c, point, fiber.StatusCreated)
}
