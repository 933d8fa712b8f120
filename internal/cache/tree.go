// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// tree.go provides a Valkey-backed cache for the assembled service tree.
// Assembling the tree reads every service row; the JSON result is cached
// so repeated tree requests skip the DB entirely. Any catalog mutation
// invalidates the whole cache, since a single move can reshape unrelated
// branches.
package cache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// treeKeyPrefix is the Valkey key prefix for cached tree variants.
	treeKeyPrefix = "servicetree:"

	// DefaultTreeTTL caps staleness even if an invalidation is missed.
	DefaultTreeTTL = 5 * time.Minute
)

// TreeCache manages cached service-tree JSON in Valkey.
type TreeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTreeCache creates a tree cache backed by the given Valkey client.
func NewTreeCache(client *redis.Client, ttl time.Duration) *TreeCache {
	if ttl == 0 {
		ttl = DefaultTreeTTL
	}
	return &TreeCache{client: client, ttl: ttl}
}

// Key derives the cache key for one tree variant. Trees differ by
// whether inactive nodes are included and by the depth cutoff, so each
// combination caches separately.
func Key(includeInactive bool, maxDepth int) string {
	k := "active"
	if includeInactive {
		k = "all"
	}
	if maxDepth >= 0 {
		k += ":" + strconv.Itoa(maxDepth)
	}
	return k
}

// Get retrieves cached tree JSON. Returns false on miss.
func (tc *TreeCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := tc.client.Get(ctx, treeKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("tree cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("tree cache hit", "key", key)
	return val, true
}

// Set stores assembled tree JSON with the configured TTL.
func (tc *TreeCache) Set(ctx context.Context, key string, payload []byte) {
	if err := tc.client.Set(ctx, treeKeyPrefix+key, payload, tc.ttl).Err(); err != nil {
		slog.Warn("tree cache set error", "key", key, "error", err)
	}
}

// Invalidate removes every cached tree variant. Called after any
// service create, update, move, or delete.
func (tc *TreeCache) Invalidate(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := tc.client.Scan(ctx, cursor, treeKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("tree cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := tc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("tree cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("tree cache invalidated", "deleted", deleted)
	}
}
