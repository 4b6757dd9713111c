// suggestions.go
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
	"github.com/localnerve/traction-tracker/internal/services"
	"github.com/localnerve/traction-tracker/internal/utils"
	"gorm.io/gorm"
)

// SuggestionHandler asks the text generator for growth suggestions
type SuggestionHandler struct {
	DB        *gorm.DB
	Generator services.TextGenerator
}

// SuggestionsResponse always carries exactly three suggestions
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// Suggest handles POST /api/apps/:id/suggestions
// @Summary Growth suggestions
// @Description Three growth suggestions for an owned app. The body is optional.
// @Tags Suggestions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "App ID"
// @Param body body services.SuggestionRequest false "Extra context"
// @Success 200 {object} SuggestionsResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 429 {object} utils.ErrorResponseStruct
// @Failure 502 {object} utils.ErrorResponseStruct
// @Router /apps/{id}/suggestions [post]
func (h *SuggestionHandler) Suggest(c *fiber.Ctx) error {
	app, _, err := ownedApp(c, h.DB)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "suggestions")
	}

	var req services.SuggestionRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return utils.ServiceErrorResponse(c, err, "suggestions")
		}
	}

	suggestions, err := services.GenerateSuggestions(c.UserContext(), h.Generator, app, req)
	if err != nil {
		return utils.ServiceErrorResponse(c, err, "suggestions")
	}
	return utils.SuccessResponse(c, SuggestionsResponse{Suggestions: suggestions}, fiber.StatusOK)
}
