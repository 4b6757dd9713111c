// action_store_test.go
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

package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/localnerve/traction-tracker/internal/models"
	"github.com/localnerve/traction-tracker/internal/services"
	"github.com/localnerve/traction-tracker/internal/testutil"
	"github.com/localnerve/traction-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCreateActionRow(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	app := testutil.CreateTestApp(t, db, "owner-1", "Alpha", 0, "0")

	action, err := services.CreateActionRow(ctx, db, app.ID, "  Launch on HN  ")
	require.NoError(t, err)
	assert.Equal(t, "Launch on HN", action.Text)
	assert.False(t, action.Completed)
	assert.Nil(t, action.CompletedAt)
	assert.NotEmpty(t, action.ID)

	_, err = services.CreateActionRow(ctx, db, app.ID, "   ")
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = services.CreateActionRow(ctx, db, "no-such-app", "text")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestCompletionTimestampInvariant(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	app := testutil.CreateTestApp(t, db, "owner-1", "Alpha", 0, "0")
	action, err := services.CreateActionRow(ctx, db, app.ID, "Write docs")
	require.NoError(t, err)

	toggles := []bool{true, true, false, false, true, false, true}
	for _, completed := range toggles {
		updated, err := services.UpdateActionRow(ctx, db, action.ID, app.ID, services.ActionPatch{Completed: ptr(completed)})
		require.NoError(t, err)
		assert.Equal(t, completed, updated.Completed)
		assert.Equal(t, completed, updated.CompletedAt != nil)

		var stored models.Action
		require.NoError(t, db.First(&stored, "id = ?", action.ID).Error)
		assert.Equal(t, completed, stored.Completed)
		assert.Equal(t, completed, stored.CompletedAt != nil)
	}
}

func TestCompletedTwiceKeepsTimestamp(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	app := testutil.CreateTestApp(t, db, "owner-1", "Alpha", 0, "0")
	action, err := services.CreateActionRow(ctx, db, app.ID, "Write docs")
	require.NoError(t, err)

	first, err := services.UpdateActionRow(ctx, db, action.ID, app.ID, services.ActionPatch{Completed: ptr(true)})
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	second, err := services.UpdateActionRow(ctx, db, action.ID, app.ID, services.ActionPatch{Completed: ptr(true)})
	require.NoError(t, err)
	assert.WithinDuration(t, *first.CompletedAt, *second.CompletedAt, time.Millisecond)
}

func TestUpdateActionRowText(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	app := testutil.CreateTestApp(t, db, "owner-1", "Alpha", 0, "0")
	other := testutil.CreateTestApp(t, db, "owner-1", "Beta", 0, "0")
	action, err := services.CreateActionRow(ctx, db, app.ID, "Old")
	require.NoError(t, err)

	updated, err := services.UpdateActionRow(ctx, db, action.ID, app.ID, services.ActionPatch{Text: ptr("New")})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Text)
	assert.False(t, updated.Completed)

	_, err = services.UpdateActionRow(ctx, db, action.ID, app.ID, services.ActionPatch{Text: ptr("")})
	assert.ErrorIs(t, err, types.ErrValidation)

	// id must match the app too
	_, err = services.UpdateActionRow(ctx, db, action.ID, other.ID, services.ActionPatch{Text: ptr("x")})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDeleteActionRow(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	app := testutil.CreateTestApp(t, db, "owner-1", "Alpha", 0, "0")
	action, err := services.CreateActionRow(ctx, db, app.ID, "Delete me")
	require.NoError(t, err)

	require.NoError(t, services.DeleteActionRow(ctx, db, action.ID, app.ID))

	rows, err := services.ListActionRows(ctx, db, app.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	err = services.DeleteActionRow(ctx, db, action.ID, app.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestListActionRowsOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	app := testutil.CreateTestApp(t, db, "owner-1", "Alpha", 0, "0")

	base := time.Now().UTC().Add(-time.Hour)
	second := &models.Action{AppID: app.ID, Text: "second", CreatedAt: base.Add(time.Minute)}
	first := &models.Action{AppID: app.ID, Text: "first", CreatedAt: base}
	require.NoError(t, db.Create(second).Error)
	require.NoError(t, db.Create(first).Error)

	rows, err := services.ListActionRows(ctx, db, app.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, first.ID, rows[0].ID)
	assert.Equal(t, second.ID, rows[1].ID)
}
