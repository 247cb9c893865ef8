// Package rediscache fronts the service catalog with Redis. The catalog changes rarely
// and is read on every availability query. Redis failures fall through to the wrapped
// catalog.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"salonbook/backend/internal/domain"
	"salonbook/backend/internal/store"
)

const (
	DefaultTTL = 5 * time.Minute

	listKey       = "salon:catalog:v1:all"
	serviceKeyFmt = "salon:catalog:v1:service:"
)

type CatalogCache struct {
	rdb   redis.UniversalClient
	inner store.ServiceCatalog
	ttl   time.Duration
	log   *slog.Logger
}

func NewCatalogCache(rdb redis.UniversalClient, inner store.ServiceCatalog, ttl time.Duration, log *slog.Logger) *CatalogCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &CatalogCache{
		rdb:   rdb,
		inner: inner,
		ttl:   ttl,
		log:   log.With(slog.String("component", "catalog_cache")),
	}
}

func (c *CatalogCache) ListServices(ctx context.Context) ([]domain.Service, error) {
	var cached []domain.Service
	if c.load(ctx, listKey, &cached) {
		return cached, nil
	}
	out, err := c.inner.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, listKey, out)
	return out, nil
}

func (c *CatalogCache) GetService(ctx context.Context, id uuid.UUID) (domain.Service, error) {
	key := serviceKeyFmt + id.String()
	var cached domain.Service
	if c.load(ctx, key, &cached) {
		return cached, nil
	}
	svc, err := c.inner.GetService(ctx, id)
	if err != nil {
		return domain.Service{}, err
	}
	c.store(ctx, key, svc)
	return svc, nil
}

// Invalidate drops every cached catalog entry. Call it after catalog writes.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	keys := []string{listKey}
	iter := c.rdb.Scan(ctx, 0, serviceKeyFmt+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *CatalogCache) load(ctx context.Context, key string, dst any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("catalog cache read failed", slog.String("key", key), slog.Any("err", err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.Warn("catalog cache entry corrupt", slog.String("key", key), slog.Any("err", err))
		return false
	}
	return true
}

func (c *CatalogCache) store(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("catalog cache write failed", slog.String("key", key), slog.Any("err", err))
	}
}

// ReadyCheck pings Redis. Used by /readyz.
func ReadyCheck(rdb redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
