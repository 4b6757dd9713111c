// common.go
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

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/traction-tracker/internal/cache"
	"github.com/localnerve/traction-tracker/internal/events"
	"github.com/localnerve/traction-tracker/internal/middleware"
	"github.com/localnerve/traction-tracker/internal/services"
	"github.com/localnerve/traction-tracker/internal/types"
	"go.uber.org/zap"
)

// getUserID extracts the caller id set by the auth middleware
func getUserID(c *fiber.Ctx) (string, error) {
	userID := middleware.UserID(c)
	if userID == "" {
		return "", types.NewAuthenticationError("user not found in context")
	}
	return userID, nil
}

// parseLimit reads the limit query parameter. Missing means 0 (the default).
func parseLimit(c *fiber.Ctx) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, types.NewValidationError("limit must be a non-negative integer")
	}
	return limit, nil
}

// parseBody decodes a JSON request body into out
func parseBody(c *fiber.Ctx, out interface{}) error {
	body := c.Body()
	if len(body) == 0 {
		return types.NewValidationError("request body is required")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return types.NewValidationError("invalid JSON body: %v", err)
	}
	return nil
}

// projectionCache wraps the public projection cache. Faults degrade to a miss.
type projectionCache struct {
	cache cache.Cache
	ttl   time.Duration
}

func (p projectionCache) get(ctx context.Context, key string, out interface{}) bool {
	if p.cache == nil {
		return false
	}
	err := p.cache.GetAs(ctx, key, out)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrKeyNotExist) {
		services.ReportDegraded(services.ComponentCache, err, zap.String("key", key))
	}
	return false
}

func (p projectionCache) set(ctx context.Context, key string, value interface{}) {
	if p.cache == nil {
		return
	}
	if err := p.cache.SetExp(ctx, key, value, p.ttl); err != nil {
		services.ReportDegraded(services.ComponentCache, err, zap.String("key", key))
	}
}

// invalidate drops the cached projections touched by a change to appID
func (p projectionCache) invalidate(ctx context.Context, appID, ownerID string) {
	if p.cache == nil {
		return
	}
	for _, key := range []string{cache.PublicAppKey(appID), cache.PublicDashboardKey(ownerID)} {
		if err := p.cache.Delete(ctx, key); err != nil {
			services.ReportDegraded(services.ComponentCache, err, zap.String("key", key))
		}
	}
}

// publish sends an event, reporting failures without failing the request
func publish(ctx context.Context, pub events.Publisher, routingKey string, data interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, routingKey, data); err != nil {
		services.ReportDegraded(services.ComponentEvents, err, zap.String("routingKey", routingKey))
	}
}
