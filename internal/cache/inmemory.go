// inmemory.go
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
	"encoding/json"
	"fmt"
	"time"

	"github.com/VictoriaMetrics/fastcache"
)

// inMemoryMaxBytes bounds the process local projection cache.
const inMemoryMaxBytes = 32 * 1024 * 1024

// InMemory is a process local Cache backed by fastcache. Entries carry their
// own expiry because fastcache has none.
type InMemory struct {
	store *fastcache.Cache
	now   func() time.Time
}

var _ Cache = (*InMemory)(nil)

type memoryEntry struct {
	ExpiresAt int64           `json:"e"`
	Value     json.RawMessage `json:"v"`
}

// NewInMemory creates an empty in-memory projection cache
func NewInMemory() (*InMemory, error) {
	return &InMemory{
		store: fastcache.New(inMemoryMaxBytes),
		now:   time.Now,
	}, nil
}

// GetAs decodes the cached value for key into out. Missing and expired keys
// return ErrKeyNotExist; an expired entry is evicted on read.
func (m *InMemory) GetAs(_ context.Context, key string, out interface{}) error {
	raw := m.store.Get(nil, []byte(key))
	if raw == nil {
		return ErrKeyNotExist
	}

	var entry memoryEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	if entry.ExpiresAt > 0 && m.now().UnixNano() >= entry.ExpiresAt {
		m.store.Del([]byte(key))
		return ErrKeyNotExist
	}

	return json.Unmarshal(entry.Value, out)
}

// SetExp stores value under key for ttl. A non-positive ttl never expires.
func (m *InMemory) SetExp(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value %s: %w", key, err)
	}

	entry := memoryEntry{Value: encoded}
	if ttl > 0 {
		entry.ExpiresAt = m.now().Add(ttl).UnixNano()
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}

	m.store.Set([]byte(key), raw)
	return nil
}

// Delete drops key. Deleting a missing key is not an error.
func (m *InMemory) Delete(_ context.Context, key string) error {
	m.store.Del([]byte(key))
	return nil
}
