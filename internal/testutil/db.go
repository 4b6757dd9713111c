// db.go
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

// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/localnerve/traction-tracker/internal/database"
	"github.com/localnerve/traction-tracker/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory SQLite database with the schema applied.
// The pool is pinned to one connection since each :memory: connection is its
// own database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying SQL DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// CreateTestApp inserts an app owned by ownerID
func CreateTestApp(t *testing.T, db *gorm.DB, ownerID, name string, userCount int64, revenue string) *models.App {
	t.Helper()

	app := &models.App{
		UserID:      ownerID,
		Name:        name,
		Description: name + " description",
		UserCount:   userCount,
		Revenue:     decimal.RequireFromString(revenue),
		IsPublic:    true,
	}
	if err := db.Create(app).Error; err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}
	return app
}

// CreateTestAction inserts an action row
func CreateTestAction(t *testing.T, db *gorm.DB, appID, text string, completed bool) *models.Action {
	t.Helper()

	action := &models.Action{AppID: appID, Text: text}
	if completed {
		action.SetCompleted(true, time.Now())
	}
	if err := db.Create(action).Error; err != nil {
		t.Fatalf("Failed to create action: %v", err)
	}
	return action
}

// SetLegacyActions writes raw bytes into the legacy actions column
func SetLegacyActions(t *testing.T, db *gorm.DB, appID string, raw []byte) {
	t.Helper()

	if err := db.Model(&models.App{}).Where("id = ?", appID).Update("actions", string(raw)).Error; err != nil {
		t.Fatalf("Failed to set legacy actions: %v", err)
	}
}

// MustJSON marshals v or fails the test
func MustJSON(t *testing.T, v any) []byte {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal JSON: %v", err)
	}
	return b
}
