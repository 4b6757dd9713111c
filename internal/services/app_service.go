// app_service.go
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
	"errors"
	"strings"
	"time"

	"github.com/localnerve/traction-tracker/internal/models"
	"github.com/localnerve/traction-tracker/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateAppInput is the body of an app creation request
type CreateAppInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description" validate:"required"`
	Domain      *string `json:"domain" validate:"omitempty,max=255"`
	Strategy    *string `json:"strategy"`
}

// AppPatch is a raw partial update keyed by JSON field name
type AppPatch map[string]json.RawMessage

// UpdateOptions carries update policy
type UpdateOptions struct {
	// ForcePublic sets isPublic=true on every update regardless of the patch.
	ForcePublic bool
}

// serverFields are owned by the server and dropped from client patches.
var serverFields = []string{"id", "userId", "createdAt", "updatedAt", "created_at", "updated_at", "actions"}

// StripServerFields removes server owned keys from patch in place.
func StripServerFields(patch AppPatch) AppPatch {
	for _, key := range serverFields {
		delete(patch, key)
	}
	return patch
}

// GetApp returns the app if callerID owns it
func GetApp(ctx context.Context, db *gorm.DB, appID, callerID string) (*models.App, error) {
	app, err := findApp(db.WithContext(ctx), appID)
	if err != nil {
		return nil, err
	}
	if app.UserID != callerID {
		return nil, types.NewAuthorizationError("app %s is not owned by the caller", appID)
	}
	return app, nil
}

// ListApps returns the caller's apps, newest first
func ListApps(ctx context.Context, db *gorm.DB, callerID string) ([]models.App, error) {
	apps := make([]models.App, 0)
	err := db.WithContext(ctx).
		Where("user_id = ?", callerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&apps).Error
	if err != nil {
		return nil, types.NewUpstreamError(err, "failed to list apps")
	}
	return apps, nil
}

// CreateApp inserts a new app for ownerID with zero metrics, publicly visible.
func CreateApp(ctx context.Context, db *gorm.DB, ownerID string, input CreateAppInput) (*models.App, error) {
	if ownerID == "" {
		return nil, types.NewAuthenticationError("owner identity is required")
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.Domain = trimOptional(input.Domain)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	app := &models.App{
		UserID:      ownerID,
		Name:        input.Name,
		Description: input.Description,
		UserCount:   0,
		Revenue:     decimal.Zero,
		Strategy:    input.Strategy,
		Domain:      input.Domain,
		IsPublic:    true,
	}
	if err := db.WithContext(ctx).Create(app).Error; err != nil {
		return nil, types.NewUpstreamError(err, "failed to create app")
	}

	zap.L().Debug("app created", zap.String("appId", app.ID), zap.String("userId", ownerID))
	return app, nil
}

// UpdateApp applies patch to an owned app. Metric fields that change are
// appended to the metric history after the update commits. A history failure
// is reported and does not fail the update.
func UpdateApp(ctx context.Context, db *gorm.DB, appID, callerID string, patch AppPatch, opts UpdateOptions) (*models.App, []models.MetricPoint, error) {
	db = db.WithContext(ctx)

	current, err := GetApp(ctx, db, appID, callerID)
	if err != nil {
		return nil, nil, err
	}
	prevUserCount := current.UserCount
	prevRevenue := current.Revenue

	changes, err := decodeAppPatch(StripServerFields(patch))
	if err != nil {
		return nil, nil, err
	}
	if opts.ForcePublic {
		changes.set("is_public", true)
	}

	if len(changes.columns) > 0 {
		changes.set("updated_at", time.Now().UTC())
		err = db.Model(&models.App{}).Where("id = ?", appID).Updates(changes.columns).Error
		if err != nil {
			return nil, nil, types.NewUpstreamError(err, "failed to update app")
		}
	}

	updated, err := findApp(db, appID)
	if err != nil {
		return nil, nil, err
	}

	recorded := make([]models.MetricPoint, 0, 2)
	if changes.userCount != nil && *changes.userCount != prevUserCount {
		value := float64(*changes.userCount)
		recorded = appendMetric(ctx, db, recorded, appID, models.MetricUserCount, value)
	}
	if changes.revenue != nil && !changes.revenue.Equal(prevRevenue) {
		value := changes.revenue.InexactFloat64()
		recorded = appendMetric(ctx, db, recorded, appID, models.MetricRevenue, value)
	}

	return updated, recorded, nil
}

// SetVisibility sets the public flag of an owned app
func SetVisibility(ctx context.Context, db *gorm.DB, appID, callerID string, isPublic bool) (*models.App, error) {
	db = db.WithContext(ctx)

	app, err := GetApp(ctx, db, appID, callerID)
	if err != nil {
		return nil, err
	}

	err = db.Model(&models.App{}).Where("id = ?", appID).Updates(map[string]interface{}{
		"is_public":  isPublic,
		"updated_at": time.Now().UTC(),
	}).Error
	if err != nil {
		return nil, types.NewUpstreamError(err, "failed to set visibility")
	}

	app.IsPublic = isPublic
	return app, nil
}

// DeleteApp removes an owned app with its actions and metric history in one
// transaction. It returns the deleted app.
func DeleteApp(ctx context.Context, db *gorm.DB, appID, callerID string) (*models.App, error) {
	app, err := GetApp(ctx, db, appID, callerID)
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("app_id = ?", appID).Delete(&models.Action{}).Error; err != nil {
			return err
		}
		if err := tx.Where("app_id = ?", appID).Delete(&models.MetricPoint{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", appID).Delete(&models.App{}).Error
	})
	if err != nil {
		return nil, types.NewUpstreamError(err, "failed to delete app")
	}

	zap.L().Debug("app deleted", zap.String("appId", appID))
	return app, nil
}

func appendMetric(ctx context.Context, db *gorm.DB, recorded []models.MetricPoint, appID, metricType string, value float64) []models.MetricPoint {
	point, err := RecordMetric(ctx, db, appID, metricType, &value)
	if err != nil {
		ReportDegraded(ComponentMetricHistory, err, zap.String("appId", appID), zap.String("metricType", metricType))
		return recorded
	}
	return append(recorded, *point)
}

func findApp(db *gorm.DB, appID string) (*models.App, error) {
	var app models.App
	err := db.Where("id = ?", appID).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewNotFoundError("app %s not found", appID)
	}
	if err != nil {
		return nil, types.NewUpstreamError(err, "failed to read app")
	}
	return &app, nil
}

// appChanges is a decoded AppPatch: column updates plus the metric values
// needed for change detection.
type appChanges struct {
	columns   map[string]interface{}
	userCount *int64
	revenue   *decimal.Decimal
}

func (c *appChanges) set(column string, value interface{}) {
	c.columns[column] = value
}

// requiredPatchFields may be omitted from a patch but never set to null.
var requiredPatchFields = map[string]bool{
	"name":        true,
	"description": true,
	"userCount":   true,
	"revenue":     true,
	"isPublic":    true,
}

func decodeAppPatch(patch AppPatch) (*appChanges, error) {
	changes := &appChanges{columns: make(map[string]interface{})}

	for key, raw := range patch {
		if isNull(raw) && requiredPatchFields[key] {
			return nil, types.NewValidationError("%s must not be null", key)
		}

		switch key {
		case "name", "description":
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, types.NewValidationError("%s must be a string", key)
			}
			s = strings.TrimSpace(s)
			if s == "" {
				return nil, types.NewValidationError("%s is required", key)
			}
			if key == "name" && len(s) > 255 {
				return nil, types.NewValidationError("name must be at most 255 characters")
			}
			changes.set(key, s)

		case "userCount":
			var n types.FlexInt64
			if err := json.Unmarshal(raw, &n); err != nil {
				return nil, types.NewValidationError("userCount must be a whole number")
			}
			if n < 0 {
				return nil, types.NewValidationError("userCount must be at least 0")
			}
			v := n.Int64()
			changes.userCount = &v
			changes.set("user_count", v)

		case "revenue":
			var d decimal.Decimal
			if err := d.UnmarshalJSON(raw); err != nil {
				return nil, types.NewValidationError("revenue must be a number")
			}
			if d.IsNegative() {
				return nil, types.NewValidationError("revenue must be at least 0")
			}
			d = d.Round(2)
			changes.revenue = &d
			changes.set("revenue", d)

		case "strategy", "domain":
			s, err := decodeOptionalString(raw)
			if err != nil {
				return nil, types.NewValidationError("%s must be a string or null", key)
			}
			changes.set(key, s)

		case "isPublic":
			var b bool
			if err := json.Unmarshal(raw, &b); err != nil {
				return nil, types.NewValidationError("isPublic must be a boolean")
			}
			changes.set("is_public", b)

		default:
			return nil, types.NewValidationError("unknown field %q", key)
		}
	}

	return changes, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func decodeOptionalString(raw json.RawMessage) (*string, error) {
	if isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return trimOptional(&s), nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
