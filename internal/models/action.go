// action.go
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
	"gorm.io/gorm"
)

// Action is a to-do item on an app's growth plan
type Action struct {
	ID          string     `gorm:"primaryKey;type:char(36)" json:"id"`
	AppID       string     `gorm:"type:char(36);not null;index:idx_actions_app_created,priority:1" json:"appId"`
	Text        string     `gorm:"type:text;not null" json:"text"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;<-:create;index:idx_actions_app_created,priority:2" json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

// TableName overrides the table name for Action
func (Action) TableName() string {
	return "actions"
}

// BeforeCreate assigns the opaque id
func (a *Action) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// SetCompleted applies a completion transition, keeping CompletedAt non-nil
// exactly when Completed is true.
func (a *Action) SetCompleted(completed bool, now time.Time) {
	switch {
	case completed && !a.Completed:
		a.CompletedAt = &now
	case !completed:
		a.CompletedAt = nil
	case completed && a.CompletedAt == nil:
		a.CompletedAt = &now
	}
	a.Completed = completed
}
