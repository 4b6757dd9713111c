// app_service_test.go
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
	"encoding/json"
	"testing"
	"time"

	"github.com/localnerve/traction-tracker/internal/models"
	"github.com/localnerve/traction-tracker/internal/services"
	"github.com/localnerve/traction-tracker/internal/testutil"
	"github.com/localnerve/traction-tracker/internal/types"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var forcePublic = services.UpdateOptions{ForcePublic: true}

func patchOf(t *testing.T, body string) services.AppPatch {
	t.Helper()
	var patch services.AppPatch
	require.NoError(t, json.Unmarshal([]byte(body), &patch))
	return patch
}

func TestCreateApp(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	app, err := services.CreateApp(ctx, db, "owner-1", services.CreateAppInput{
		Name:        " Alpha ",
		Description: "An app",
		Domain:      ptr("alpha.example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alpha", app.Name)
	assert.Equal(t, int64(0), app.UserCount)
	assert.True(t, app.Revenue.IsZero())
	assert.True(t, app.IsPublic)
	assert.Equal(t, "owner-1", app.UserID)
	assert.Equal(t, "alpha.example.com", *app.Domain)
	assert.False(t, app.CreatedAt.IsZero())

	_, err = services.CreateApp(ctx, db, "owner-1", services.CreateAppInput{Name: "", Description: "x"})
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.ErrorContains(t, err, "name is required")

	_, err = services.CreateApp(ctx, db, "owner-1", services.CreateAppInput{Name: "x", Description: "   "})
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestGetAppOwnership(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	app := testutil.CreateTestApp(t, db, "owner-1", "Alpha", 3, "1.00")

	got, err := services.GetApp(ctx, db, app.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, app.ID, got.ID)

	got, err = services.GetApp(ctx, db, app.ID, "intruder")
	assert.ErrorIs(t, err, types.ErrAuthorization)
	assert.Nil(t, got)

	_, err = services.GetApp(ctx, db, "missing", "owner-1")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestListApps(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateTestApp(t, db, "owner-1", "Alpha", 0, "0")
	testutil.CreateTestApp(t, db, "owner-1", "Beta", 0, "0")
	testutil.CreateTestApp(t, db, "owner-2", "Gamma", 0, "0")

	apps, err := services.ListApps(context.Background(), db, "owner-1")
	require.NoError(t, err)
	assert.Len(t, apps, 2)

	apps, err = services.ListApps(context.Background(), db, "nobody")
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestUpdateForcesPublic(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	app := testutil.CreateTestApp(t, db, "owner-1", "Alpha", 0, "0")

	for _, body := range []string{`{"isPublic":false}`, `{"name":"Renamed"}`, `{}`} {
		_, err := services.SetVisibility(ctx, db, app.ID, "owner-1", false)
		require.NoError(t, err)

		updated, _, err := services.UpdateApp(ctx, db, app.ID, "owner-1", patchOf(t, body), forcePublic)
		require.NoError(t, err)
		assert.True(t, updated.IsPublic, body)
	}

	// without the override the patch decides
	updated, _, err := services.UpdateApp(ctx, db, app.ID, "owner-1", patchOf(t, `{"isPublic":false}`), services.UpdateOptions{})
	require.NoError(t, err)
	assert.False(t, updated.IsPublic)
}

func TestUpdateStripsServerFields(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	app := testutil.CreateTestApp(t, db, "owner-1", "Alpha", 0, "0")

	body := `{"id":"forged","userId":"intruder","createdAt":"2000-01-01T00:00:00Z","updated_at":"x","actions":[{"text":"sneaky"}],"description":"New"}`
	updated, _, err := services.UpdateApp(ctx, db, app.ID, "owner-1", patchOf(t, body), forcePublic)
	require.NoError(t, err)

	assert.Equal(t, app.ID, updated.ID)
	assert.Equal(t, "owner-1", updated.UserID)
	assert.Equal(t, "New", updated.Description)
	assert.WithinDuration(t, app.CreatedAt, updated.CreatedAt, time.Second)
	assert.Empty(t, updated.Actions.Bytes())

	stripped := services.StripServerFields(patchOf(t, `{"created_at":1,"updatedAt":2,"name":"n"}`))
	assert.Len(t, stripped, 1)
	assert.Contains(t, stripped, "name")
}

func TestUpdateValidation(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	app := testutil.CreateTestApp(t, db, "owner-1", "Alpha", 0, "0")

	for _, body := range []string{
		`{"name":""}`,
		`{"userCount":-1}`,
		`{"userCount":1.5}`,
		`{"revenue":-2}`,
		`{"revenue":"lots"}`,
		`{"isPublic":"yes"}`,
		`{"color":"red"}`,
	} {
		_, _, err := services.UpdateApp(ctx, db, app.ID, "owner-1", patchOf(t, body), forcePublic)
		assert.ErrorIs(t, err, types.ErrValidation, body)
	}

	_, _, err := services.UpdateApp(ctx, db, app.ID, "intruder", patchOf(t, `{"name":"x"}`), forcePublic)
	assert.ErrorIs(t, err, types.ErrAuthorization)
}

func TestUpdateRejectsNullMetrics(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	app := testutil.CreateTestApp(t, db, "owner-1", "Alpha", 10, "2.50")

	for _, body := range []string{
		`{"userCount":null}`,
		`{"revenue":null}`,
		`{"userCount":null,"revenue":null}`,
		`{"name":null}`,
		`{"isPublic":null}`,
	} {
		_, recorded, err := services.UpdateApp(ctx, db, app.ID, "owner-1", patchOf(t, body), forcePublic)
		assert.ErrorIs(t, err, types.ErrValidation, body)
		assert.Empty(t, recorded, body)
	}

	stored, err := services.GetApp(ctx, db, app.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), stored.UserCount)
	assert.Equal(t, "2.50", stored.Revenue.StringFixed(2))

	for _, metricType := range []string{models.MetricUserCount, models.MetricRevenue} {
		history, err := services.CollectMetricHistory(ctx, db, app.ID, metricType, 0)
		require.NoError(t, err)
		assert.Empty(t, history, metricType)
	}

	// nullable fields still clear
	updated, _, err := services.UpdateApp(ctx, db, app.ID, "owner-1", patchOf(t, `{"domain":null,"strategy":null}`), forcePublic)
	require.NoError(t, err)
	assert.Nil(t, updated.Domain)
	assert.Nil(t, updated.Strategy)
}

func TestUpdateRecordsMetricOnlyOnChange(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	app := testutil.CreateTestApp(t, db, "owner-1", "Alpha", 0, "0")

	_, recorded, err := services.UpdateApp(ctx, db, app.ID, "owner-1", patchOf(t, `{"userCount":5}`), forcePublic)
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, 5.0, recorded[0].Value)
	assert.Equal(t, models.MetricUserCount, recorded[0].MetricType)

	updated, recorded, err := services.UpdateApp(ctx, db, app.ID, "owner-1", patchOf(t, `{"userCount":"5"}`), forcePublic)
	require.NoError(t, err)
	assert.Empty(t, recorded)
	assert.Equal(t, int64(5), updated.UserCount)

	history, err := services.CollectMetricHistory(ctx, db, app.ID, models.MetricUserCount, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 5.0, history[0].Value)
}

func TestUpdateRecordsRevenue(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	app := testutil.CreateTestApp(t, db, "owner-1", "Alpha", 2, "1.50")

	// same value at a different scale is not a change
	_, recorded, err := services.UpdateApp(ctx, db, app.ID, "owner-1", patchOf(t, `{"revenue":"1.5","userCount":2}`), forcePublic)
	require.NoError(t, err)
	assert.Empty(t, recorded)

	updated, recorded, err := services.UpdateApp(ctx, db, app.ID, "owner-1", patchOf(t, `{"revenue":12.345}`), forcePublic)
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, models.MetricRevenue, recorded[0].MetricType)
	assert.Equal(t, 12.35, recorded[0].Value)
	assert.Equal(t, "12.35", updated.Revenue.StringFixed(2))
}

func TestUpdateSurvivesMetricFailure(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	app := testutil.CreateTestApp(t, db, "owner-1", "Alpha", 0, "0")
	require.NoError(t, db.Migrator().DropTable(&models.MetricPoint{}))

	before := promtestutil.ToFloat64(services.DegradedFaults(services.ComponentMetricHistory))
	updated, recorded, err := services.UpdateApp(ctx, db, app.ID, "owner-1", patchOf(t, `{"userCount":7}`), forcePublic)
	after := promtestutil.ToFloat64(services.DegradedFaults(services.ComponentMetricHistory))

	require.NoError(t, err)
	assert.Equal(t, int64(7), updated.UserCount)
	assert.Empty(t, recorded)
	assert.Equal(t, before+1, after)
}

func TestSetVisibilityRoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	app := testutil.CreateTestApp(t, db, "owner-1", "Alpha", 0, "0")

	for _, want := range []bool{false, true, false} {
		_, err := services.SetVisibility(ctx, db, app.ID, "owner-1", want)
		require.NoError(t, err)

		stored, err := services.GetApp(ctx, db, app.ID, "owner-1")
		require.NoError(t, err)
		assert.Equal(t, want, stored.IsPublic)
	}

	_, err := services.SetVisibility(ctx, db, app.ID, "intruder", true)
	assert.ErrorIs(t, err, types.ErrAuthorization)
}

func TestDeleteAppCascades(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	app := testutil.CreateTestApp(t, db, "owner-1", "Alpha", 0, "0")
	keep := testutil.CreateTestApp(t, db, "owner-1", "Beta", 0, "0")
	testutil.CreateTestAction(t, db, app.ID, "a", false)
	testutil.CreateTestAction(t, db, keep.ID, "b", false)
	_, err := services.RecordMetric(ctx, db, app.ID, models.MetricUserCount, float(1))
	require.NoError(t, err)

	_, err = services.DeleteApp(ctx, db, app.ID, "intruder")
	assert.ErrorIs(t, err, types.ErrAuthorization)

	deleted, err := services.DeleteApp(ctx, db, app.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, app.ID, deleted.ID)

	var count int64
	db.Model(&models.App{}).Count(&count)
	assert.Equal(t, int64(1), count)
	db.Model(&models.Action{}).Count(&count)
	assert.Equal(t, int64(1), count)
	db.Model(&models.MetricPoint{}).Count(&count)
	assert.Equal(t, int64(0), count)

	_, err = services.GetApp(ctx, db, app.ID, "owner-1")
	assert.ErrorIs(t, err, types.ErrNotFound)
}
