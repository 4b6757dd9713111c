// cache.go
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

// Package cache stores JSON encoded values for the public projection.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/localnerve/traction-tracker/internal/config"
	"github.com/redis/go-redis/v9"
)

// ErrKeyNotExist reports a cache miss
var ErrKeyNotExist = errors.New("cache: key does not exist")

// Cache holds JSON encoded projections with a time to live. Implementations
// return ErrKeyNotExist (possibly wrapped) on a miss.
type Cache interface {
	GetAs(ctx context.Context, key string, out interface{}) error
	SetExp(ctx context.Context, key string, inValue interface{}, expireDur time.Duration) error
	Delete(ctx context.Context, key string) error
}

// PublicAppKey is the key of a cached public app projection
func PublicAppKey(appID string) string {
	return "public:app:" + appID
}

// PublicDashboardKey is the key of a cached public dashboard
func PublicDashboardKey(ownerID string) string {
	return "public:dashboard:" + ownerID
}

// New builds the cache selected by CACHE_DRIVER
func New(cfg *config.Config) (Cache, error) {
	switch cfg.CacheDriver {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return NewRedis(RedisConfig{Client: client})
	case "memory":
		return NewInMemory()
	case "none", "":
		return Noop{}, nil
	}
	return nil, fmt.Errorf("unsupported cache driver: %s", cfg.CacheDriver)
}

// Noop never stores anything; every read is a miss.
type Noop struct{}

var _ Cache = Noop{}

// GetAs always misses
func (Noop) GetAs(context.Context, string, interface{}) error {
	return ErrKeyNotExist
}

func (Noop) SetExp(context.Context, string, interface{}, time.Duration) error {
	return nil
}

func (Noop) Delete(context.Context, string) error {
	return nil
}
