package city

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"personsdir/internal/person/models"
)

// reader is the read surface the cache decorates.
type reader interface {
	FindByID(ctx context.Context, id int64) (*models.City, error)
	List(ctx context.Context) ([]*models.City, error)
}

const (
	listCacheKey = "cities:all"
	cityKeyFmt   = "cities:%d"
)

// Cached is a read-through cache in front of a city store. Reference data
// never changes after seeding, so a plain TTL keeps a restarted seed visible
// without invalidation plumbing. Cache failures degrade to the inner store.
type Cached struct {
	inner reader
	rdb   redis.Cmdable
	ttl   time.Duration
}

func NewCached(inner reader, rdb redis.Cmdable, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cached{inner: inner, rdb: rdb, ttl: ttl}
}

func (c *Cached) FindByID(ctx context.Context, id int64) (*models.City, error) {
	key := fmt.Sprintf(cityKeyFmt, id)
	if payload, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var city models.City
		if err := json.Unmarshal(payload, &city); err == nil {
			return &city, nil
		}
	}

	city, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(city); err == nil {
		c.rdb.Set(ctx, key, payload, c.ttl)
	}
	return city, nil
}

func (c *Cached) List(ctx context.Context) ([]*models.City, error) {
	if payload, err := c.rdb.Get(ctx, listCacheKey).Bytes(); err == nil {
		var cities []*models.City
		if err := json.Unmarshal(payload, &cities); err == nil {
			return cities, nil
		}
	}

	cities, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(cities); err == nil {
		c.rdb.Set(ctx, listCacheKey, payload, c.ttl)
	}
	return cities, nil
}
