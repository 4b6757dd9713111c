// reconciler.go
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
	"bytes"
	"context"
	"encoding/json"

	"github.com/localnerve/traction-tracker/internal/models"
	"github.com/localnerve/traction-tracker/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Action sources
const (
	SourceTable  = "table"
	SourceLegacy = "legacy"
	SourceEmpty  = "empty"
)

// ReconcileResult is the single normalized action list for an app and the
// representation it came from.
type ReconcileResult struct {
	Actions []models.Action
	Source  string
}

// legacyAction is one element of the embedded apps.actions array. Each field
// is decoded on its own; a field that cannot be read is left empty.
type legacyAction struct {
	ID          types.FlexString
	Text        string
	Completed   types.FlexBool
	CreatedAt   types.FlexTime
	CompletedAt types.FlexTime
}

// ReconcileActions picks between the actions table and the legacy column.
// Non-empty table rows always win and are never merged with legacy entries.
// An empty table, or a failed table read (fetchErr), falls back to the legacy
// column. It never returns an error; unreadable legacy data resolves empty.
func ReconcileActions(appID string, rows []models.Action, fetchErr error, legacy []byte) ReconcileResult {
	if fetchErr == nil && len(rows) > 0 {
		return ReconcileResult{Actions: rows, Source: SourceTable}
	}

	actions := parseLegacyActions(appID, legacy)
	if len(actions) == 0 {
		return ReconcileResult{Actions: []models.Action{}, Source: SourceEmpty}
	}
	return ReconcileResult{Actions: actions, Source: SourceLegacy}
}

// ResolveActions reads the table rows for app and reconciles them with its
// legacy column. A failed table read is reported and degraded.
func ResolveActions(ctx context.Context, db *gorm.DB, app *models.App) ReconcileResult {
	rows, err := ListActionRows(ctx, db, app.ID)
	if err != nil {
		ReportDegraded(ComponentReconciler, err, zap.String("appId", app.ID))
	}

	result := ReconcileActions(app.ID, rows, err, LegacyActionsField(app))
	actionResolutions.WithLabelValues(result.Source).Inc()
	return result
}

func parseLegacyActions(appID string, raw []byte) []models.Action {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	// Rows written before the column was validated may hold bare text.
	if !json.Valid(raw) {
		zap.L().Warn("legacy actions are not JSON", zap.String("appId", appID), zap.Int("bytes", len(raw)))
		return nil
	}

	// Arrays decode directly, strings are decoded once more, and any other
	// shape gets a lenient round trip (a lone object is a one item list).
	var items types.FlexList[json.RawMessage]
	if err := json.Unmarshal(raw, &items); err != nil {
		zap.L().Warn("legacy actions could not be parsed", zap.String("appId", appID), zap.Error(err))
		return nil
	}

	actions := make([]models.Action, 0, len(items))
	for i, item := range items.Slice() {
		action, ok := decodeLegacyAction(appID, i, item)
		if !ok {
			continue
		}
		actions = append(actions, action.normalize(appID))
	}
	return actions
}

// decodeLegacyAction reads one array element. Elements that are not objects
// are skipped.
func decodeLegacyAction(appID string, index int, raw json.RawMessage) (legacyAction, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		zap.L().Warn("legacy action is not an object", zap.String("appId", appID), zap.Int("index", index))
		return legacyAction{}, false
	}

	var item legacyAction
	decodeLegacyField(appID, index, fields, "id", &item.ID)
	decodeLegacyField(appID, index, fields, "text", &item.Text)
	decodeLegacyField(appID, index, fields, "completed", &item.Completed)
	decodeLegacyField(appID, index, fields, "createdAt", &item.CreatedAt)
	decodeLegacyField(appID, index, fields, "completedAt", &item.CompletedAt)
	return item, true
}

func decodeLegacyField(appID string, index int, fields map[string]json.RawMessage, key string, out interface{}) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	if err := json.Unmarshal(raw, out); err != nil {
		zap.L().Debug("legacy action field dropped",
			zap.String("appId", appID),
			zap.Int("index", index),
			zap.String("field", key),
			zap.Error(err),
		)
	}
}

func (l legacyAction) normalize(appID string) models.Action {
	a := models.Action{
		ID:        l.ID.String(),
		AppID:     appID,
		Text:      l.Text,
		Completed: l.Completed.Bool(),
		CreatedAt: l.CreatedAt.Time,
	}
	if a.Completed {
		a.CompletedAt = l.CompletedAt.Ptr()
		if a.CompletedAt == nil {
			a.CompletedAt = l.CreatedAt.Ptr()
		}
	}
	return a
}
