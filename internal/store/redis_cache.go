package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-shortener-go/internal/shortener"
	"go.uber.org/zap"
)

// RedisCacheRepository wraps a Repository with Redis caching for reads.
// Mappings are immutable so cached entries never go stale; the TTL only
// bounds memory.
type RedisCacheRepository struct {
	store   shortener.Repository
	client  *redis.Client
	logger  *zap.Logger
	prefix     string
	hashPrefix string
	ttl        time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store shortener.Repository, client *redis.Client, ttl time.Duration, logger *zap.Logger,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:      store,
		client:     client,
		logger:     logger,
		prefix:     "url:",
		hashPrefix: "url_hash:",
		ttl:        ttl,
	}
}

// Insert stores a mapping in the underlying store and updates the cache.
func (r *RedisCacheRepository) Insert(ctx context.Context, mapping shortener.Mapping) (*shortener.Mapping, error) {
	stored, err := r.store.Insert(ctx, mapping)
	if err != nil {
		return nil, err
	}

	// Write-through
	r.cacheMapping(ctx, stored)

	return stored, nil
}

// FindByCode retrieves a mapping by its code, checking cache first.
func (r *RedisCacheRepository) FindByCode(ctx context.Context, code shortener.Code) (*shortener.Mapping, error) {
	if mapping, err := r.getFromCache(ctx, code); err == nil {
		return mapping, nil
	}

	mapping, err := r.store.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cacheMapping(ctx, mapping)

	return mapping, nil
}

// FindByURL retrieves a mapping by its URL hash, checking cache first.
func (r *RedisCacheRepository) FindByURL(ctx context.Context, hash shortener.URLHash) (*shortener.Mapping, error) {
	code, err := r.client.Get(ctx, r.hashPrefix+string(hash)).Result()
	if err == nil {
		if mapping, err := r.getFromCache(ctx, shortener.Code(code)); err == nil {
			return mapping, nil
		}
	}

	mapping, err := r.store.FindByURL(ctx, hash)
	if err != nil {
		return nil, err
	}

	r.cacheMapping(ctx, mapping)

	return mapping, nil
}

// List is not cached.
func (r *RedisCacheRepository) List(ctx context.Context, limit int) ([]*shortener.Mapping, error) {
	return r.store.List(ctx, limit)
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, code shortener.Code) (*shortener.Mapping, error) {
	fields, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		r.logger.Warn("cache read failed", zap.String("code", string(code)), zap.Error(err))
		return nil, err
	}

	return mappingFromHash(fields)
}

func (r *RedisCacheRepository) cacheMapping(ctx context.Context, mapping *shortener.Mapping) {
	pipe := r.client.Pipeline()
	key := r.prefix + string(mapping.Code)

	pipe.HSet(ctx, key, mappingFields(mapping))

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	// The hash index expires with the entry it points at.
	if mapping.URLHash != "" {
		pipe.Set(ctx, r.hashPrefix+string(mapping.URLHash), string(mapping.Code), r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Warn("cache write failed", zap.String("code", string(mapping.Code)), zap.Error(err))
	}
}

// Shutdown is a no-op for RedisCacheRepository (client managed externally).
func (r *RedisCacheRepository) Shutdown() error {
	return nil
}

// Compile-time check.
var _ shortener.Repository = (*RedisCacheRepository)(nil)
