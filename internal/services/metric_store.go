// metric_store.go
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
	"iter"
	"strings"
	"time"

	"github.com/localnerve/traction-tracker/internal/models"
	"github.com/localnerve/traction-tracker/internal/types"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// History limits
const (
	DefaultHistoryLimit = 30
	MaxHistoryLimit     = 500
)

// RecordMetric appends one immutable point with a server timestamp. It does
// not deduplicate; callers decide whether a value changed.
func RecordMetric(ctx context.Context, db *gorm.DB, appID, metricType string, value *float64) (*models.MetricPoint, error) {
	if value == nil {
		return nil, types.NewValidationError("metric value is required")
	}
	if strings.TrimSpace(appID) == "" {
		return nil, types.NewValidationError("app id is required")
	}
	if err := validMetricType(metricType); err != nil {
		return nil, err
	}

	point := &models.MetricPoint{
		AppID:      appID,
		MetricType: metricType,
		Value:      *value,
		RecordedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(point).Error; err != nil {
		return nil, types.NewUpstreamError(err, "failed to record %s metric", metricType)
	}

	metricPointsRecorded.WithLabelValues(metricType).Inc()
	return point, nil
}

// MetricHistory returns the points for (appID, metricType), most recent
// first. Nothing is read until the sequence is ranged over, and every range
// runs a fresh query. A non-positive limit selects DefaultHistoryLimit.
func MetricHistory(ctx context.Context, db *gorm.DB, appID, metricType string, limit int) iter.Seq2[models.MetricPoint, error] {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)

	return func(yield func(models.MetricPoint, error) bool) {
		var points []models.MetricPoint
		err := historyQuery(db.WithContext(ctx)).
			Where("app_id = ? AND metric_type = ?", appID, metricType).
			Order("recorded_at DESC").
			Order("id DESC").
			Limit(limit).
			Find(&points).Error
		if err != nil {
			yield(models.MetricPoint{}, types.NewUpstreamError(err, "failed to read %s history", metricType))
			return
		}

		for _, p := range points {
			if !yield(p, nil) {
				return
			}
		}
	}
}

// CollectMetricHistory drains MetricHistory into a slice.
func CollectMetricHistory(ctx context.Context, db *gorm.DB, appID, metricType string, limit int) ([]models.MetricPoint, error) {
	points := make([]models.MetricPoint, 0)
	for p, err := range MetricHistory(ctx, db, appID, metricType, limit) {
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

// historyQuery tags the query and, on MySQL, pins the composite index.
func historyQuery(db *gorm.DB) *gorm.DB {
	q := db.Model(&models.MetricPoint{}).Clauses(hints.CommentBefore("select", "metric_history"))
	if db.Dialector.Name() == "mysql" {
		q = q.Clauses(hints.UseIndex("idx_metric_app_type"))
	}
	return q
}

func validMetricType(metricType string) error {
	if metricType == "" {
		return types.NewValidationError("metric type is required")
	}
	if !models.IsMetricType(metricType) {
		return types.NewValidationError("unknown metric type %q", metricType)
	}
	return nil
}
