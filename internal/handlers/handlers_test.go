// handlers_test.go
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

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/traction-tracker/internal/cache"
	"github.com/localnerve/traction-tracker/internal/config"
	"github.com/localnerve/traction-tracker/internal/handlers"
	"github.com/localnerve/traction-tracker/internal/models"
	"github.com/localnerve/traction-tracker/internal/services"
	"github.com/localnerve/traction-tracker/internal/testutil"
	"github.com/localnerve/traction-tracker/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	owner    = "owner-1"
	stranger = "owner-2"
)

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

type stubGenerator struct {
	reply string
	err   error
}

func (g stubGenerator) Generate(context.Context, string, string) (string, error) {
	return g.reply, g.err
}

type testServer struct {
	app    *fiber.App
	db     *gorm.DB
	events *recordingPublisher
}

func newTestServer(t *testing.T, gen services.TextGenerator) *testServer {
	t.Helper()

	db := testutil.NewTestDB(t)
	memory, err := cache.NewInMemory()
	require.NoError(t, err)

	cfg := &config.Config{
		DBType:              "sqlite-pure",
		DBDatabase:          ":memory:",
		AuthMode:            config.AuthModeJWT,
		AuthJWTSecret:       testutil.TestJWTSecret,
		CacheTTL:            time.Minute,
		SuggestionsRate:     0.001,
		SuggestionsBurst:    2,
		ForcePublicOnUpdate: false,
	}
	if gen == nil {
		gen = stubGenerator{reply: `["one","two","three"]`}
	}

	pub := &recordingPublisher{}
	app := fiber.New(fiber.Config{ErrorHandler: utils.FiberErrorHandler})
	handlers.SetupRoutes(app, handlers.Dependencies{
		Config:    cfg,
		DB:        db,
		Auth:      services.NewJWTAuthenticator(testutil.TestJWTSecret),
		Generator: gen,
		Cache:     memory,
		Events:    pub,
	})

	return &testServer{app: app, db: db, events: pub}
}

func (s *testServer) do(t *testing.T, method, path, userID string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			reader = bytes.NewReader(testutil.MustJSON(t, b))
		}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+testutil.SignToken(t, userID))
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func errorKind(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]interface{}
	testutil.ParseJSON(t, resp, &body)
	kind, _ := body["kind"].(string)
	return kind
}

func TestCreateAndListApps(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, "POST", "/api/apps", owner, map[string]interface{}{
		"name":        "Tracker",
		"description": "Tracks traction",
	})
	testutil.AssertStatus(t, resp, fiber.StatusCreated)

	var created models.App
	testutil.ParseJSON(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, owner, created.UserID)
	assert.EqualValues(t, 0, created.UserCount)
	assert.True(t, created.IsPublic)

	resp = s.do(t, "GET", "/api/apps", owner, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var apps []models.App
	testutil.ParseJSON(t, resp, &apps)
	require.Len(t, apps, 1)
	assert.Equal(t, created.ID, apps[0].ID)

	resp = s.do(t, "GET", "/api/apps", stranger, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	testutil.ParseJSON(t, resp, &apps)
	assert.Empty(t, apps)
}

func TestCreateAppValidation(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, "POST", "/api/apps", owner, map[string]interface{}{"description": "no name"})
	testutil.AssertStatus(t, resp, fiber.StatusBadRequest)
	assert.Equal(t, "validation", errorKind(t, resp))

	resp = s.do(t, "POST", "/api/apps", owner, "{not json")
	testutil.AssertStatus(t, resp, fiber.StatusBadRequest)
}

func TestOwnerRoutesRequireAuthentication(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, "GET", "/api/apps", "", nil)
	testutil.AssertStatus(t, resp, fiber.StatusUnauthorized)
	assert.Equal(t, "authentication", errorKind(t, resp))
}

func TestOwnershipIsEnforced(t *testing.T) {
	s := newTestServer(t, nil)
	app := testutil.CreateTestApp(t, s.db, owner, "Mine", 5, "1.00")

	for _, tc := range []struct {
		method, path string
		body         interface{}
	}{
		{"GET", "/api/apps/" + app.ID, nil},
		{"PUT", "/api/apps/" + app.ID, map[string]interface{}{"name": "Theirs"}},
		{"DELETE", "/api/apps/" + app.ID, nil},
		{"GET", "/api/apps/" + app.ID + "/actions", nil},
		{"POST", "/api/apps/" + app.ID + "/actions", map[string]string{"text": "x"}},
		{"GET", "/api/apps/" + app.ID + "/metrics?type=user_count", nil},
	} {
		resp := s.do(t, tc.method, tc.path, stranger, tc.body)
		testutil.AssertStatus(t, resp, fiber.StatusForbidden)
		assert.Equal(t, "authorization", errorKind(t, resp), tc.method+" "+tc.path)
	}

	var reloaded models.App
	require.NoError(t, s.db.First(&reloaded, "id = ?", app.ID).Error)
	assert.Equal(t, "Mine", reloaded.Name)
}

func TestUnknownAppIsNotFound(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, "GET", "/api/apps/00000000-0000-0000-0000-000000000000", owner, nil)
	testutil.AssertStatus(t, resp, fiber.StatusNotFound)
	assert.Equal(t, "not_found", errorKind(t, resp))
}

func TestUpdateAppRecordsMetrics(t *testing.T) {
	s := newTestServer(t, nil)
	app := testutil.CreateTestApp(t, s.db, owner, "Tracker", 10, "5.00")

	resp := s.do(t, "PUT", "/api/apps/"+app.ID, owner, map[string]interface{}{
		"userCount": 25,
		"revenue":   "5.00",
		"userId":    stranger,
	})
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	var body handlers.UpdateAppResponse
	testutil.ParseJSON(t, resp, &body)
	assert.EqualValues(t, 25, body.App.UserCount)
	assert.Equal(t, owner, body.App.UserID)
	require.Len(t, body.RecordedMetrics, 1)
	assert.Equal(t, models.MetricUserCount, body.RecordedMetrics[0].MetricType)
	assert.Equal(t, 25.0, body.RecordedMetrics[0].Value)

	assert.Equal(t, []string{"metric.recorded"}, s.events.published())

	resp = s.do(t, "GET", "/api/apps/"+app.ID+"/metrics?type=user_count", owner, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var points []models.MetricPoint
	testutil.ParseJSON(t, resp, &points)
	require.Len(t, points, 1)
	assert.Equal(t, 25.0, points[0].Value)
}

func TestMetricHistoryRequiresType(t *testing.T) {
	s := newTestServer(t, nil)
	app := testutil.CreateTestApp(t, s.db, owner, "Tracker", 0, "0")

	resp := s.do(t, "GET", "/api/apps/"+app.ID+"/metrics", owner, nil)
	testutil.AssertStatus(t, resp, fiber.StatusBadRequest)

	resp = s.do(t, "GET", "/api/apps/"+app.ID+"/metrics?type=user_count&limit=abc", owner, nil)
	testutil.AssertStatus(t, resp, fiber.StatusBadRequest)
}

func TestRecordMetricPoint(t *testing.T) {
	s := newTestServer(t, nil)
	app := testutil.CreateTestApp(t, s.db, owner, "Tracker", 0, "0")

	for _, v := range []float64{1, 2, 3} {
		resp := s.do(t, "POST", "/api/apps/"+app.ID+"/metrics", owner, map[string]interface{}{
			"metricType": "revenue",
			"value":      v,
		})
		testutil.AssertStatus(t, resp, fiber.StatusCreated)
	}

	resp := s.do(t, "GET", "/api/apps/"+app.ID+"/metrics?type=revenue&limit=2", owner, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var points []models.MetricPoint
	testutil.ParseJSON(t, resp, &points)
	require.Len(t, points, 2)
	assert.Equal(t, 3.0, points[0].Value)
	assert.Equal(t, 2.0, points[1].Value)

	resp = s.do(t, "POST", "/api/apps/"+app.ID+"/metrics", owner, map[string]interface{}{"metricType": "revenue"})
	testutil.AssertStatus(t, resp, fiber.StatusBadRequest)

	assert.Len(t, s.events.published(), 3)
}

func TestActionLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	app := testutil.CreateTestApp(t, s.db, owner, "Tracker", 0, "0")

	resp := s.do(t, "GET", "/api/apps/"+app.ID+"/actions", owner, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var list handlers.ActionList
	testutil.ParseJSON(t, resp, &list)
	assert.Equal(t, services.SourceEmpty, list.Source)
	assert.Empty(t, list.Actions)

	resp = s.do(t, "POST", "/api/apps/"+app.ID+"/actions", owner, map[string]string{"text": "Launch on HN"})
	testutil.AssertStatus(t, resp, fiber.StatusCreated)
	var action models.Action
	testutil.ParseJSON(t, resp, &action)
	assert.False(t, action.Completed)
	assert.Nil(t, action.CompletedAt)

	resp = s.do(t, "PUT", "/api/apps/"+app.ID+"/actions/"+action.ID, owner, map[string]bool{"completed": true})
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	testutil.ParseJSON(t, resp, &action)
	assert.True(t, action.Completed)
	assert.NotNil(t, action.CompletedAt)

	resp = s.do(t, "GET", "/api/apps/"+app.ID+"/actions", owner, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	testutil.ParseJSON(t, resp, &list)
	assert.Equal(t, services.SourceTable, list.Source)
	require.Len(t, list.Actions, 1)

	resp = s.do(t, "DELETE", "/api/apps/"+app.ID+"/actions/"+action.ID, owner, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	resp = s.do(t, "DELETE", "/api/apps/"+app.ID+"/actions/"+action.ID, owner, nil)
	testutil.AssertStatus(t, resp, fiber.StatusNotFound)
}

func TestActionOfAnotherAppIsNotFound(t *testing.T) {
	s := newTestServer(t, nil)
	mine := testutil.CreateTestApp(t, s.db, owner, "Mine", 0, "0")
	other := testutil.CreateTestApp(t, s.db, owner, "Other", 0, "0")
	action := testutil.CreateTestAction(t, s.db, other.ID, "elsewhere", false)

	resp := s.do(t, "PUT", "/api/apps/"+mine.ID+"/actions/"+action.ID, owner, map[string]string{"text": "moved"})
	testutil.AssertStatus(t, resp, fiber.StatusNotFound)
}

func TestGetAppResolvesLegacyActions(t *testing.T) {
	s := newTestServer(t, nil)
	app := testutil.CreateTestApp(t, s.db, owner, "Tracker", 0, "0")
	testutil.SetLegacyActions(t, s.db, app.ID, []byte(`[{"id":"a1","text":"Old plan","completed":false,"createdAt":"2024-01-01T00:00:00Z"}]`))

	resp := s.do(t, "GET", "/api/apps/"+app.ID, owner, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	var detail struct {
		ID           string          `json:"id"`
		Actions      []models.Action `json:"actions"`
		ActionSource string          `json:"actionSource"`
	}
	testutil.ParseJSON(t, resp, &detail)
	assert.Equal(t, app.ID, detail.ID)
	assert.Equal(t, services.SourceLegacy, detail.ActionSource)
	require.Len(t, detail.Actions, 1)
	assert.Equal(t, "Old plan", detail.Actions[0].Text)
}

func TestPublicProjectionAndCache(t *testing.T) {
	s := newTestServer(t, nil)
	app := testutil.CreateTestApp(t, s.db, owner, "Tracker", 10, "1.50")
	testutil.CreateTestAction(t, s.db, app.ID, "done", true)

	resp := s.do(t, "GET", "/api/public/apps/"+app.ID, "", nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))

	var view services.PublicAppView
	testutil.ParseJSON(t, resp, &view)
	assert.Equal(t, "Tracker", view.Name)
	require.Len(t, view.Actions, 1)

	resp = s.do(t, "GET", "/api/public/apps/"+app.ID, "", nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	assert.Equal(t, "HIT", resp.Header.Get("X-Cache"))

	// a mutation drops the cached projection
	resp = s.do(t, "PUT", "/api/apps/"+app.ID, owner, map[string]interface{}{"name": "Renamed"})
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	resp = s.do(t, "GET", "/api/public/apps/"+app.ID, "", nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))
	testutil.ParseJSON(t, resp, &view)
	assert.Equal(t, "Renamed", view.Name)
}

func TestPrivateAppIsHiddenFromPublic(t *testing.T) {
	s := newTestServer(t, nil)
	app := testutil.CreateTestApp(t, s.db, owner, "Tracker", 10, "1.50")
	testutil.CreateTestApp(t, s.db, owner, "Other", 5, "2.50")

	resp := s.do(t, "PUT", "/api/apps/"+app.ID+"/visibility", owner, map[string]bool{"isPublic": false})
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	resp = s.do(t, "GET", "/api/public/apps/"+app.ID, "", nil)
	testutil.AssertStatus(t, resp, fiber.StatusNotFound)

	resp = s.do(t, "GET", "/api/public/users/"+owner+"/dashboard", "", nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	var raw map[string]json.RawMessage
	testutil.ParseJSON(t, resp, &raw)
	var stats map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["stats"], &stats))
	assert.Equal(t, "1", string(stats["totalApps"]))
	assert.Equal(t, "5", string(stats["totalUsers"]))
	assert.Equal(t, "2.50", string(stats["totalRevenue"]))

	resp = s.do(t, "PUT", "/api/apps/"+app.ID+"/visibility", owner, map[string]string{})
	testutil.AssertStatus(t, resp, fiber.StatusBadRequest)
}

func TestEmptyPublicDashboard(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, "GET", "/api/public/users/nobody/dashboard", "", nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	var dashboard services.Dashboard
	testutil.ParseJSON(t, resp, &dashboard)
	assert.Equal(t, "nobody", dashboard.UserID)
	assert.Empty(t, dashboard.Apps)
	assert.Equal(t, 0, dashboard.Stats.TotalApps)
	assert.Equal(t, "0.00", dashboard.Stats.TotalRevenue.String())
}

func TestDeleteApp(t *testing.T) {
	s := newTestServer(t, nil)
	app := testutil.CreateTestApp(t, s.db, owner, "Tracker", 0, "0")
	testutil.CreateTestAction(t, s.db, app.ID, "a", false)

	resp := s.do(t, "DELETE", "/api/apps/"+app.ID, owner, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	var body utils.SuccessResponseStruct
	testutil.ParseJSON(t, resp, &body)
	assert.True(t, body.Ok)
	assert.Equal(t, []string{"app.deleted"}, s.events.published())

	var count int64
	s.db.Model(&models.Action{}).Where("app_id = ?", app.ID).Count(&count)
	assert.Zero(t, count)

	resp = s.do(t, "GET", "/api/apps/"+app.ID, owner, nil)
	testutil.AssertStatus(t, resp, fiber.StatusNotFound)
}

func TestSuggestions(t *testing.T) {
	s := newTestServer(t, stubGenerator{reply: "Sure! [\"Post on Reddit\", \"Start a newsletter\"]"})
	app := testutil.CreateTestApp(t, s.db, owner, "Tracker", 0, "0")

	resp := s.do(t, "POST", "/api/apps/"+app.ID+"/suggestions", owner, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	var body handlers.SuggestionsResponse
	testutil.ParseJSON(t, resp, &body)
	assert.Equal(t, []string{"Post on Reddit", "Start a newsletter", services.PlaceholderSuggestion}, body.Suggestions)
}

func TestSuggestionsUpstreamFailure(t *testing.T) {
	s := newTestServer(t, stubGenerator{err: errors.New("connection reset")})
	app := testutil.CreateTestApp(t, s.db, owner, "Tracker", 0, "0")

	resp := s.do(t, "POST", "/api/apps/"+app.ID+"/suggestions", owner, map[string]string{"context": "B2B"})
	testutil.AssertStatus(t, resp, fiber.StatusBadGateway)
	assert.Equal(t, "upstream", errorKind(t, resp))
}

func TestSuggestionsRateLimited(t *testing.T) {
	s := newTestServer(t, nil)
	app := testutil.CreateTestApp(t, s.db, owner, "Tracker", 0, "0")

	for i := 0; i < 2; i++ {
		resp := s.do(t, "POST", "/api/apps/"+app.ID+"/suggestions", owner, nil)
		testutil.AssertStatus(t, resp, fiber.StatusOK)
	}

	resp := s.do(t, "POST", "/api/apps/"+app.ID+"/suggestions", owner, nil)
	testutil.AssertStatus(t, resp, fiber.StatusTooManyRequests)
	assert.Equal(t, "rate_limited", errorKind(t, resp))
}

func TestHealthAndNotFound(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, "GET", "/api/health", "", nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var health services.HealthCheckResult
	testutil.ParseJSON(t, resp, &health)
	assert.Equal(t, "ok", health.Database)
	assert.Equal(t, "disabled", health.AIProvider)

	resp = s.do(t, "GET", "/api/nowhere", "", nil)
	testutil.AssertStatus(t, resp, fiber.StatusNotFound)
}

func TestUnsupportedAPIVersion(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/api/health", nil)
	req.Header.Set("X-Api-Version", "2.0.0")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	testutil.AssertStatus(t, resp, fiber.StatusBadRequest)
}
