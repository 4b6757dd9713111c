// cache_test.go
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

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/localnerve/traction-tracker/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Value string
}

func prepareMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
		DB:   1,
	})
	t.Cleanup(func() { client.Close() })
	return s, client
}

func TestNewRedis(t *testing.T) {
	t.Run("bad dep", func(t *testing.T) {
		c, err := NewRedis(RedisConfig{})
		assert.Nil(t, c)
		assert.Error(t, err)
	})

	t.Run("ok", func(t *testing.T) {
		_, client := prepareMiniRedis(t)
		c, err := NewRedis(RedisConfig{Client: client})
		assert.NotNil(t, c)
		assert.NoError(t, err)
	})
}

func TestRedisRoundTrip(t *testing.T) {
	s, client := prepareMiniRedis(t)
	c, err := NewRedis(RedisConfig{Client: client})
	require.NoError(t, err)
	ctx := context.Background()

	var out payload
	err = c.GetAs(ctx, "key", &out)
	assert.ErrorIs(t, err, ErrKeyNotExist)

	require.NoError(t, c.SetExp(ctx, "key", payload{Value: "v"}, time.Minute))
	require.NoError(t, c.GetAs(ctx, "key", &out))
	assert.Equal(t, "v", out.Value)

	s.FastForward(2 * time.Minute)
	err = c.GetAs(ctx, "key", &out)
	assert.ErrorIs(t, err, ErrKeyNotExist)

	require.NoError(t, c.SetExp(ctx, "key", payload{Value: "w"}, time.Minute))
	require.NoError(t, c.Delete(ctx, "key"))
	assert.ErrorIs(t, c.GetAs(ctx, "key", &out), ErrKeyNotExist)

	// deleting a missing key is fine
	assert.NoError(t, c.Delete(ctx, "never-set"))
}

func TestRedisConnectionFault(t *testing.T) {
	s, client := prepareMiniRedis(t)
	c, err := NewRedis(RedisConfig{Client: client})
	require.NoError(t, err)
	s.Close()

	var out payload
	err = c.GetAs(context.Background(), "key", &out)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrKeyNotExist)
}

func TestInMemoryExpiry(t *testing.T) {
	c, err := NewInMemory()
	require.NoError(t, err)
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetExp(ctx, "key", payload{Value: "v"}, time.Minute))
	require.NoError(t, c.SetExp(ctx, "forever", payload{Value: "f"}, 0))

	var out payload
	require.NoError(t, c.GetAs(ctx, "key", &out))
	assert.Equal(t, "v", out.Value)

	now = now.Add(time.Hour)
	assert.ErrorIs(t, c.GetAs(ctx, "key", &out), ErrKeyNotExist)
	require.NoError(t, c.GetAs(ctx, "forever", &out))
	assert.Equal(t, "f", out.Value)

	require.NoError(t, c.Delete(ctx, "forever"))
	assert.ErrorIs(t, c.GetAs(ctx, "forever", &out), ErrKeyNotExist)
}

func TestNewByDriver(t *testing.T) {
	c, err := New(&config.Config{CacheDriver: "none"})
	require.NoError(t, err)
	assert.IsType(t, Noop{}, c)
	assert.ErrorIs(t, c.GetAs(context.Background(), "k", &payload{}), ErrKeyNotExist)

	c, err = New(&config.Config{CacheDriver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &InMemory{}, c)

	s := miniredis.RunT(t)
	c, err = New(&config.Config{CacheDriver: "redis", RedisAddr: s.Addr()})
	require.NoError(t, err)
	require.NoError(t, c.SetExp(context.Background(), "k", payload{Value: "r"}, time.Minute))
	assert.True(t, s.Exists("k"))

	_, err = New(&config.Config{CacheDriver: "memcached"})
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "public:app:abc", PublicAppKey("abc"))
	assert.Equal(t, "public:dashboard:u1", PublicDashboardKey("u1"))
}
