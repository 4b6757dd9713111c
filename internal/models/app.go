// app.go
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

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Revenue is emitted as a JSON number, not a quoted string.
	decimal.MarshalJSONWithoutQuotes = true
}

// App is a user owned product tracked for growth
type App struct {
	ID          string          `gorm:"primaryKey;type:char(36)" json:"id"`
	UserID      string          `gorm:"size:64;not null;index:idx_apps_user" json:"userId"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description string          `gorm:"type:text;not null" json:"description"`
	UserCount   int64           `gorm:"not null;default:0" json:"userCount"`
	Revenue     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"revenue"`
	Strategy    *string         `gorm:"type:text" json:"strategy"`
	Domain      *string         `gorm:"size:255" json:"domain"`
	IsPublic    bool            `gorm:"not null;default:true" json:"isPublic"`
	Actions     JSON            `gorm:"column:actions" json:"-"`
	CreatedAt   time.Time       `gorm:"autoCreateTime;<-:create" json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TableName overrides the table name for App
func (App) TableName() string {
	return "apps"
}

// BeforeCreate assigns the opaque id
func (a *App) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
