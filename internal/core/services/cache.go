package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sm8ta/webike_maintenance_microservice/internal/core/ports"
)

const listCacheTTL = 15 * time.Minute

func recordsCacheKey(userID string) string {
	return fmt.Sprintf("records:%s", userID)
}

func tagsCacheKey(userID string) string {
	return fmt.Sprintf("tags:%s", userID)
}

// readCache returns false on a miss or on any cache failure.
func readCache[T any](ctx context.Context, cache ports.CachePort, logger ports.LoggerPort, key string) (T, bool) {
	var out T
	data, err := cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ports.ErrCacheMiss) {
			logger.Warn("Cache read failed", map[string]interface{}{
				"error": err.Error(),
				"key":   key,
			})
		}
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		logger.Warn("Failed to unmarshal cached value", map[string]interface{}{
			"error": err.Error(),
			"key":   key,
		})
		return out, false
	}
	return out, true
}

func writeCache(ctx context.Context, cache ports.CachePort, logger ports.LoggerPort, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		logger.Warn("Failed to marshal value for cache", map[string]interface{}{
			"error": err.Error(),
			"key":   key,
		})
		return
	}
	if err := cache.Set(ctx, key, data, listCacheTTL); err != nil {
		logger.Warn("Failed to cache value", map[string]interface{}{
			"error": err.Error(),
			"key":   key,
		})
	}
}

func invalidateCache(ctx context.Context, cache ports.CachePort, logger ports.LoggerPort, keys ...string) {
	if err := cache.Delete(ctx, keys...); err != nil {
		logger.Warn("Failed to invalidate cache", map[string]interface{}{
			"error": err.Error(),
			"keys":  keys,
		})
	}
}
