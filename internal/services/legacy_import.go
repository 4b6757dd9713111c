// legacy_import.go
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
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/traction-tracker/internal/models"
	"github.com/localnerve/traction-tracker/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ImportResult reports one app's legacy action import
type ImportResult struct {
	AppID    string `json:"appId"`
	Imported int    `json:"imported"`
	Skipped  bool   `json:"skipped"`
}

// ImportLegacyActions copies the legacy action list of appID into the actions
// table. Apps that already have table rows are skipped, so the import can be
// rerun safely. Legacy ids that are not UUIDs, or repeat an earlier item's id,
// are replaced.
func ImportLegacyActions(ctx context.Context, db *gorm.DB, appID string) (ImportResult, error) {
	result := ImportResult{AppID: appID}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		app, err := findApp(tx, appID)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Action{}).Where("app_id = ?", appID).Count(&count).Error; err != nil {
			return types.NewUpstreamError(err, "failed to count actions")
		}
		if count > 0 {
			result.Skipped = true
			return nil
		}

		legacy := parseLegacyActions(appID, LegacyActionsField(app))
		now := time.Now().UTC()
		rows := make([]models.Action, 0, len(legacy))
		seen := make(map[string]bool, len(legacy))
		for _, a := range legacy {
			a.Text = strings.TrimSpace(a.Text)
			if a.Text == "" {
				continue
			}
			if _, err := uuid.Parse(a.ID); err != nil || seen[a.ID] {
				a.ID = uuid.NewString()
			}
			seen[a.ID] = true
			if a.CreatedAt.IsZero() {
				a.CreatedAt = now
			}
			if a.Completed && a.CompletedAt == nil {
				a.CompletedAt = &now
			}
			rows = append(rows, a)
		}
		if len(rows) == 0 {
			return nil
		}

		if err := tx.Create(&rows).Error; err != nil {
			return types.NewUpstreamError(err, "failed to import actions")
		}
		result.Imported = len(rows)
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	zap.L().Info("legacy actions imported",
		zap.String("appId", appID),
		zap.Int("imported", result.Imported),
		zap.Bool("skipped", result.Skipped),
	)
	return result, nil
}

// ImportAllLegacyActions runs ImportLegacyActions for every app with a
// non-null legacy column. It stops at the first failure.
func ImportAllLegacyActions(ctx context.Context, db *gorm.DB) ([]ImportResult, error) {
	var ids []string
	err := db.WithContext(ctx).Model(&models.App{}).
		Where("actions IS NOT NULL").
		Order("created_at ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, types.NewUpstreamError(err, "failed to list apps")
	}

	results := make([]ImportResult, 0, len(ids))
	for _, id := range ids {
		res, err := ImportLegacyActions(ctx, db, id)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
