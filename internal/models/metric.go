// metric.go
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

package models

import "time"

// Metric types tracked in the history log
const (
	MetricUserCount = "user_count"
	MetricRevenue   = "revenue"
)

var metricTypes = map[string]struct{}{
	MetricUserCount: {},
	MetricRevenue:   {},
}

// RegisterMetricType adds a metric type to the set accepted by the history log.
func RegisterMetricType(name string) {
	metricTypes[name] = struct{}{}
}

// IsMetricType reports whether name is a known metric type.
func IsMetricType(name string) bool {
	_, ok := metricTypes[name]
	return ok
}

// MetricPoint is one immutable observation of a metric for an app
type MetricPoint struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	AppID      string    `gorm:"type:char(36);not null;index:idx_metric_app_type,priority:1" json:"appId"`
	MetricType string    `gorm:"size:64;not null;index:idx_metric_app_type,priority:2" json:"metricType"`
	Value      float64   `gorm:"not null" json:"value"`
	RecordedAt time.Time `gorm:"not null;index:idx_metric_app_type,priority:3" json:"recordedAt"`
}

// TableName overrides the table name for MetricPoint
func (MetricPoint) TableName() string {
	return "metric_history"
}
