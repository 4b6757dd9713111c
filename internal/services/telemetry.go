// telemetry.go
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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Components reported by ReportDegraded
const (
	ComponentReconciler    = "reconciler"
	ComponentMetricHistory = "metric_history"
	ComponentCache         = "cache"
	ComponentEvents        = "events"
)

var (
	degradedFaults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "traction",
		Name:      "degraded_faults_total",
		Help:      "Faults caught and degraded to a fallback instead of failing the request.",
	}, []string{"component"})

	metricPointsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "traction",
		Name:      "metric_points_recorded_total",
		Help:      "Metric history points appended, by metric type.",
	}, []string{"metric_type"})

	actionResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "traction",
		Name:      "action_resolutions_total",
		Help:      "Action list resolutions, by the representation that was served.",
	}, []string{"source"})
)

// ReportDegraded logs and counts a fault that was swallowed in favor of a
// fallback. The caller keeps going.
func ReportDegraded(component string, err error, fields ...zap.Field) {
	degradedFaults.WithLabelValues(component).Inc()
	zap.L().Warn("degraded fault", append([]zap.Field{zap.String("component", component), zap.Error(err)}, fields...)...)
}

// DegradedFaults returns the counter for component, for tests and diagnostics.
func DegradedFaults(component string) prometheus.Counter {
	return degradedFaults.WithLabelValues(component)
}
