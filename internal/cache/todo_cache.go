// Package cache keeps a copy of the full todo list in Redis.
//
// The list is read through the cache (cache-aside). Every write bumps a
// generation counter and drops the list; a list read from the store is only
// written back while the generation it was read under is still current, so
// a slow reader never overwrites the result of a newer write.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"donezo/internal/model"
)

const DefaultKey = "donezo:todos:list"

type TodoCache struct {
	client *redis.Client
	key    string
	genKey string
	ttl    time.Duration
}

func NewTodoCache(client *redis.Client, key string, ttl time.Duration) *TodoCache {
	if key == "" {
		key = DefaultKey
	}
	return &TodoCache{client: client, key: key, genKey: key + ":gen", ttl: ttl}
}

// GetList returns the cached list. ok is false on a miss.
func (c *TodoCache) GetList(ctx context.Context) ([]model.Todo, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", c.key, err)
	}

	var todos []model.Todo
	if err := json.Unmarshal(data, &todos); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", c.key, err)
	}
	return todos, true, nil
}

// Generation returns the current write generation, 0 before the first write.
func (c *TodoCache) Generation(ctx context.Context) (int64, error) {
	return c.generation(ctx, c.client)
}

// SetList stores todos if no write happened since gen was read. stored is
// false when the generation moved on.
func (c *TodoCache) SetList(ctx context.Context, gen int64, todos []model.Todo) (bool, error) {
	data, err := json.Marshal(todos)
	if err != nil {
		return false, fmt.Errorf("encode todo list: %w", err)
	}

	stored := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := c.generation(ctx, tx)
		if err != nil {
			return err
		}
		if cur != gen {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key, data, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, c.genKey)

	// WATCH aborted the transaction: a write landed in between.
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("set %s: %w", c.key, err)
	}
	return stored, nil
}

// Invalidate bumps the generation and drops the list in one transaction.
func (c *TodoCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey)
		pipe.Del(ctx, c.key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate %s: %w", c.key, err)
	}
	return nil
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *TodoCache) generation(ctx context.Context, cmd getter) (int64, error) {
	gen, err := cmd.Get(ctx, c.genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", c.genKey, err)
	}
	return gen, nil
}
