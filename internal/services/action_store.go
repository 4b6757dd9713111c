// action_store.go
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

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/localnerve/traction-tracker/internal/models"
	"github.com/localnerve/traction-tracker/internal/types"
	"gorm.io/gorm"
)

// ActionPatch is a partial update of an action row. Nil fields are left alone.
type ActionPatch struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

// CreateActionRow inserts a pending action for appID. Ownership of the app is
// checked by the caller.
func CreateActionRow(ctx context.Context, db *gorm.DB, appID, text string) (*models.Action, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, types.NewValidationError("action text is required")
	}

	db = db.WithContext(ctx)
	if err := appExists(db, appID); err != nil {
		return nil, err
	}

	action := &models.Action{
		AppID: appID,
		Text:  text,
	}
	if err := db.Create(action).Error; err != nil {
		return nil, types.NewUpstreamError(err, "failed to create action")
	}
	return action, nil
}

// UpdateActionRow applies patch to the row matching both id and appID.
// Completion transitions maintain CompletedAt.
func UpdateActionRow(ctx context.Context, db *gorm.DB, id, appID string, patch ActionPatch) (*models.Action, error) {
	db = db.WithContext(ctx)

	action, err := findActionRow(db, id, appID)
	if err != nil {
		return nil, err
	}

	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if text == "" {
			return nil, types.NewValidationError("action text must not be empty")
		}
		action.Text = text
	}
	if patch.Completed != nil {
		action.SetCompleted(*patch.Completed, time.Now().UTC())
	}

	err = db.Model(&models.Action{}).
		Where("id = ? AND app_id = ?", id, appID).
		Updates(map[string]interface{}{
			"text":         action.Text,
			"completed":    action.Completed,
			"completed_at": action.CompletedAt,
		}).Error
	if err != nil {
		return nil, types.NewUpstreamError(err, "failed to update action")
	}
	return action, nil
}

// DeleteActionRow removes the row matching id and appID. A row missing before
// the delete is NotFound. A row that disappears between lookup and delete is
// treated as deleted.
func DeleteActionRow(ctx context.Context, db *gorm.DB, id, appID string) error {
	db = db.WithContext(ctx)

	if _, err := findActionRow(db, id, appID); err != nil {
		return err
	}

	if err := db.Where("id = ? AND app_id = ?", id, appID).Delete(&models.Action{}).Error; err != nil {
		return types.NewUpstreamError(err, "failed to delete action")
	}
	return nil
}

// ListActionRows reads the table rows for appID, oldest first.
func ListActionRows(ctx context.Context, db *gorm.DB, appID string) ([]models.Action, error) {
	var rows []models.Action
	err := db.WithContext(ctx).
		Where("app_id = ?", appID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// LegacyActionsField returns the raw embedded action array of app.
func LegacyActionsField(app *models.App) []byte {
	if app == nil {
		return nil
	}
	return app.Actions.Bytes()
}

func findActionRow(db *gorm.DB, id, appID string) (*models.Action, error) {
	var action models.Action
	err := db.Where("id = ? AND app_id = ?", id, appID).First(&action).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewNotFoundError("action %s not found", id)
	}
	if err != nil {
		return nil, types.NewUpstreamError(err, "failed to read action")
	}
	return &action, nil
}

func appExists(db *gorm.DB, appID string) error {
	var count int64
	if err := db.Model(&models.App{}).Where("id = ?", appID).Count(&count).Error; err != nil {
		return types.NewUpstreamError(err, "failed to read app")
	}
	if count == 0 {
		return types.NewNotFoundError("app %s not found", appID)
	}
	return nil
}
