// public_projection.go
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
	"encoding/json"
	"time"

	"github.com/localnerve/traction-tracker/internal/models"
	"github.com/localnerve/traction-tracker/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PublicAppView is the unauthenticated projection of one app
type PublicAppView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UserCount   int64           `json:"userCount"`
	Revenue     decimal.Decimal `json:"revenue"`
	CreatedAt   time.Time       `json:"createdAt"`
	Strategy    *string         `json:"strategy"`
	Domain      *string         `json:"domain"`
	Actions     []models.Action `json:"actions"`
}

// DashboardStats is the rollup over every app in a dashboard
type DashboardStats struct {
	TotalApps        int         `json:"totalApps"`
	TotalUsers       int64       `json:"totalUsers"`
	TotalRevenue     json.Number `json:"totalRevenue"`
	CompletedActions int         `json:"completedActions"`
	TotalActions     int         `json:"totalActions"`
}

// Dashboard is the public view of every public app of one owner
type Dashboard struct {
	UserID string          `json:"userId"`
	Apps   []PublicAppView `json:"apps"`
	Stats  DashboardStats  `json:"stats"`
}

// PublicApp projects a public app with its resolved actions. Private and
// missing apps are both NotFound.
func PublicApp(ctx context.Context, db *gorm.DB, appID string) (*PublicAppView, error) {
	db = db.WithContext(ctx)

	app, err := findApp(db, appID)
	if err != nil {
		return nil, err
	}
	if !app.IsPublic {
		return nil, types.NewNotFoundError("app %s not found", appID)
	}

	view := projectApp(app, ResolveActions(ctx, db, app).Actions)
	return &view, nil
}

// PublicUserDashboard projects every public app of ownerID with a rollup.
// An owner with no public apps gets an empty dashboard.
func PublicUserDashboard(ctx context.Context, db *gorm.DB, ownerID string) (*Dashboard, error) {
	db = db.WithContext(ctx)

	var apps []models.App
	err := db.Where("user_id = ? AND is_public = ?", ownerID, true).
		Order("created_at DESC").
		Order("id DESC").
		Find(&apps).Error
	if err != nil {
		return nil, types.NewUpstreamError(err, "failed to read apps")
	}

	dashboard := &Dashboard{
		UserID: ownerID,
		Apps:   make([]PublicAppView, 0, len(apps)),
	}
	for i := range apps {
		actions := ResolveActions(ctx, db, &apps[i]).Actions
		dashboard.Apps = append(dashboard.Apps, projectApp(&apps[i], actions))
	}
	dashboard.Stats = Rollup(dashboard.Apps)

	return dashboard, nil
}

// Rollup totals app count, users, revenue (2 decimal places) and actions.
func Rollup(apps []PublicAppView) DashboardStats {
	stats := DashboardStats{TotalApps: len(apps)}
	revenue := decimal.Zero

	for _, app := range apps {
		stats.TotalUsers += app.UserCount
		revenue = revenue.Add(app.Revenue)
		stats.TotalActions += len(app.Actions)
		for _, action := range app.Actions {
			if action.Completed {
				stats.CompletedActions++
			}
		}
	}

	stats.TotalRevenue = json.Number(revenue.StringFixed(2))
	return stats
}

func projectApp(app *models.App, actions []models.Action) PublicAppView {
	if actions == nil {
		actions = []models.Action{}
	}
	return PublicAppView{
		ID:          app.ID,
		Name:        app.Name,
		Description: app.Description,
		UserCount:   app.UserCount,
		Revenue:     app.Revenue,
		CreatedAt:   app.CreatedAt,
		Strategy:    app.Strategy,
		Domain:      app.Domain,
		Actions:     actions,
	}
}
