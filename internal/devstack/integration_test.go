// integration_test.go
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

package devstack_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/localnerve/traction-tracker/internal/cache"
	"github.com/localnerve/traction-tracker/internal/database"
	"github.com/localnerve/traction-tracker/internal/devstack"
	"github.com/localnerve/traction-tracker/internal/events"
	"github.com/localnerve/traction-tracker/internal/models"
	"github.com/localnerve/traction-tracker/internal/services"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	legacyAppID = "6f1c2a3e-0000-4000-8000-000000000001"
	brokenAppID = "6f1c2a3e-0000-4000-8000-000000000002"
	seedOwner   = "seed-owner"
)

// TestStackIntegration runs the services against MariaDB, Redis and RabbitMQ
func TestStackIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	if _, err := devstack.Preflight(ctx); err != nil {
		t.Skipf("Skipping integration test without docker: %v", err)
	}

	stack, err := devstack.Start(ctx, devstack.Options{Redis: true, RabbitMQ: true, SeedLegacy: true})
	if err != nil {
		t.Fatalf("Failed to start test containers: %v", err)
	}
	t.Cleanup(func() {
		if err := stack.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate containers: %v", err)
		}
	})

	appDB, err := database.Connect(stack.Config)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(appDB) })

	publicDB, err := database.ConnectPublic(stack.Config)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(publicDB) })

	t.Run("LegacyColumnResolves", func(t *testing.T) {
		var app models.App
		require.NoError(t, appDB.First(&app, "id = ?", legacyAppID).Error)
		result := services.ResolveActions(ctx, appDB, &app)
		assert.Equal(t, services.SourceLegacy, result.Source)
		require.Len(t, result.Actions, 2)
		assert.Equal(t, "Write launch post", result.Actions[0].Text)
		assert.True(t, result.Actions[0].Completed)

		var broken models.App
		require.NoError(t, appDB.First(&broken, "id = ?", brokenAppID).Error)
		result = services.ResolveActions(ctx, appDB, &broken)
		assert.Equal(t, services.SourceEmpty, result.Source)
		assert.Empty(t, result.Actions)
	})

	t.Run("PublicPoolIsReadOnly", func(t *testing.T) {
		dashboard, err := services.PublicUserDashboard(ctx, publicDB, seedOwner)
		require.NoError(t, err)
		assert.Equal(t, 2, dashboard.Stats.TotalApps)
		assert.EqualValues(t, 45, dashboard.Stats.TotalUsers)
		assert.Equal(t, "19.99", dashboard.Stats.TotalRevenue.String())
		assert.Equal(t, 1, dashboard.Stats.CompletedActions)

		err = publicDB.Create(&models.App{UserID: seedOwner, Name: "nope", Description: "nope"}).Error
		assert.Error(t, err)
	})

	t.Run("UpdateRecordsHistory", func(t *testing.T) {
		app, err := services.CreateApp(ctx, appDB, "owner-int", services.CreateAppInput{Name: "Int", Description: "integration"})
		require.NoError(t, err)

		for _, revenue := range []string{`"10.50"`, `"12.25"`, `"12.25"`} {
			_, _, err := services.UpdateApp(ctx, appDB, app.ID, "owner-int",
				services.AppPatch{"revenue": json.RawMessage(revenue)}, services.UpdateOptions{ForcePublic: true})
			require.NoError(t, err)
		}

		points, err := services.CollectMetricHistory(ctx, appDB, app.ID, models.MetricRevenue, 0)
		require.NoError(t, err)
		require.Len(t, points, 2)
		assert.Equal(t, 12.25, points[0].Value)
		assert.Equal(t, 10.5, points[1].Value)

		reloaded, err := services.GetApp(ctx, appDB, app.ID, "owner-int")
		require.NoError(t, err)
		assert.True(t, reloaded.Revenue.Equal(decimal.RequireFromString("12.25")))
	})

	t.Run("ImportLegacyActions", func(t *testing.T) {
		result, err := services.ImportLegacyActions(ctx, appDB, legacyAppID)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Imported)

		rows, err := services.ListActionRows(ctx, appDB, legacyAppID)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.NotEqual(t, "a-1", rows[0].ID)

		again, err := services.ImportLegacyActions(ctx, appDB, legacyAppID)
		require.NoError(t, err)
		assert.True(t, again.Skipped)
	})

	t.Run("RedisCache", func(t *testing.T) {
		c, err := cache.New(stack.Config)
		require.NoError(t, err)

		key := cache.PublicAppKey(legacyAppID)
		require.NoError(t, c.SetExp(ctx, key, map[string]string{"name": "cached"}, time.Minute))

		var out map[string]string
		require.NoError(t, c.GetAs(ctx, key, &out))
		assert.Equal(t, "cached", out["name"])

		require.NoError(t, c.Delete(ctx, key))
		assert.ErrorIs(t, c.GetAs(ctx, key, &out), cache.ErrKeyNotExist)
	})

	t.Run("EventsReachQueue", func(t *testing.T) {
		pub, err := events.NewPublisher(stack.Config)
		require.NoError(t, err)
		t.Cleanup(func() { pub.Close() })

		conn, err := amqp.Dial(stack.Config.AMQPURL)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		ch, err := conn.Channel()
		require.NoError(t, err)

		q, err := ch.QueueDeclare("", false, true, true, false, nil)
		require.NoError(t, err)
		require.NoError(t, ch.QueueBind(q.Name, "metric.*", stack.Config.EventsExchange, false, nil))
		deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
		require.NoError(t, err)

		require.NoError(t, pub.Publish(ctx, events.MetricRecorded, events.MetricRecordedEvent{
			AppID:      legacyAppID,
			MetricType: models.MetricUserCount,
			Value:      43,
			RecordedAt: time.Now().UTC(),
		}))

		select {
		case d := <-deliveries:
			assert.Equal(t, events.MetricRecorded, d.RoutingKey)
			var env struct {
				Type string                     `json:"type"`
				Data events.MetricRecordedEvent `json:"data"`
			}
			require.NoError(t, json.Unmarshal(d.Body, &env))
			assert.Equal(t, events.MetricRecorded, env.Type)
			assert.Equal(t, legacyAppID, env.Data.AppID)
		case <-time.After(10 * time.Second):
			t.Fatal("timed out waiting for metric.recorded")
		}
	})
}
