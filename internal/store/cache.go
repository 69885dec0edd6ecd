package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"lanes-cli/internal/model"
)

type snapshotSource interface {
	BoardSnapshot(ctx context.Context, id string) (model.BoardSnapshot, error)
}

// Cache is a Redis read-through cache of board snapshots.
// A nil redis client turns it into a pass-through.
//
// Each board has a generation counter that Evict bumps. A fill only stores
// its snapshot if the generation it saw before reading the database is still
// current, so a write that lands mid-fill is never hidden behind the TTL.
type Cache struct {
	base  snapshotSource
	redis *redis.Client
	ttl   time.Duration
	group singleflight.Group
}

func NewCache(base snapshotSource, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("store.NewCache: base is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

// BoardSnapshot serves from Redis when possible. Concurrent misses for the same
// board share one database read.
func (c *Cache) BoardSnapshot(ctx context.Context, id string) (model.BoardSnapshot, error) {
	if snap, ok := c.load(ctx, id); ok {
		return snap, nil
	}
	v, err, _ := c.group.Do(id, func() (any, error) {
		gen, genOK := c.generation(ctx, id)
		snap, err := c.base.BoardSnapshot(ctx, id)
		if err != nil {
			return model.BoardSnapshot{}, err
		}
		if genOK {
			c.store(ctx, id, gen, snap)
		}
		return snap, nil
	})
	if err != nil {
		return model.BoardSnapshot{}, err
	}
	return v.(model.BoardSnapshot), nil
}

// Evict drops the cached snapshots of the given boards.
func (c *Cache) Evict(ctx context.Context, boardIDs ...string) {
	if c.redis == nil || len(boardIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(boardIDs))
	for _, id := range boardIDs {
		keys = append(keys, boardCacheKey(id))
	}
	_, _ = c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range boardIDs {
			pipe.Incr(ctx, boardGenKey(id))
		}
		pipe.Del(ctx, keys...)
		return nil
	})
}

// generation reads the board's generation counter. A missing counter is the
// empty generation; ok is false when Redis cannot be read.
func (c *Cache) generation(ctx context.Context, id string) (string, bool) {
	if c.redis == nil {
		return "", false
	}
	gen, err := c.redis.Get(ctx, boardGenKey(id)).Result()
	if err != nil && err != redis.Nil {
		return "", false
	}
	return gen, true
}

func (c *Cache) load(ctx context.Context, id string) (model.BoardSnapshot, bool) {
	if c.redis == nil {
		return model.BoardSnapshot{}, false
	}
	data, err := c.redis.Get(ctx, boardCacheKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the database without failing.
			_ = c.redis.Del(ctx, boardCacheKey(id)).Err()
		}
		return model.BoardSnapshot{}, false
	}
	var snap model.BoardSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		_ = c.redis.Del(ctx, boardCacheKey(id)).Err()
		return model.BoardSnapshot{}, false
	}
	return snap, true
}

// store writes snap only while the board is still at generation gen.
func (c *Cache) store(ctx context.Context, id, gen string, snap model.BoardSnapshot) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	genKey := boardGenKey(id)
	_ = c.redis.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, boardCacheKey(id), data, c.ttl)
			return nil
		})
		return err
	}, genKey)
}

func boardCacheKey(id string) string {
	return "board:" + id
}

func boardGenKey(id string) string {
	return "board-gen:" + id
}
