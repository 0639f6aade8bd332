// Package cache is a Redis-backed cache for per-user task lists. Reads go
// cache-aside: a miss falls through to storage and the result is written
// back; every task mutation invalidates the owner's entry.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/avdeenkov/go-task-manager/internal/models"
)

const taskListKeyPrefix = "tasks:"

type TaskCache struct {
	logger zerolog.Logger
	client *redis.Client
	ttl    time.Duration
}

func NewTaskCache(logger zerolog.Logger, client *redis.Client, ttl time.Duration) *TaskCache {
	return &TaskCache{
		logger: logger,
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached task list for the user. The second return value
// reports a cache hit; a miss is not an error.
func (c *TaskCache) Get(ctx context.Context, userID string) ([]*models.Task, bool) {
	data, err := c.client.Get(ctx, taskListKeyPrefix+userID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Error().
				Err(err).
				Str("user_id", userID).
				Msg("failed to read task list from cache")
		}
		return nil, false
	}

	var tasks []*models.Task
	err = json.Unmarshal(data, &tasks)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to unmarshal cached task list")
		return nil, false
	}

	c.logger.Debug().
		Str("user_id", userID).
		Int("count", len(tasks)).
		Msg("task list cache hit")
	return tasks, true
}

// Set stores the task list for the user under the configured TTL.
// Cache write failures are logged and swallowed, storage stays
// the source of truth.
func (c *TaskCache) Set(ctx context.Context, userID string, tasks []*models.Task) {
	data, err := json.Marshal(tasks)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to marshal task list for cache")
		return
	}

	err = c.client.Set(ctx, taskListKeyPrefix+userID, data, c.ttl).Err()
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to write task list to cache")
	}
}

// Invalidate drops the cached task list for the user.
func (c *TaskCache) Invalidate(ctx context.Context, userID string) {
	err := c.client.Del(ctx, taskListKeyPrefix+userID).Err()
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to invalidate cached task list")
	}
}

// Ping checks the Redis connection.
func (c *TaskCache) Ping(ctx context.Context) error {
	err := c.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}
