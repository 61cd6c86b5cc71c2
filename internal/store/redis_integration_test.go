//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-shortener-go/internal/shortener"
	"github.com/serroba/url-shortener-go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func getRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: getRedisAddr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	return client
}

func TestRedisStoreIntegration(t *testing.T) {
	client := newRedisClient(t)
	ctx := context.Background()
	s := store.NewRedisStore(client)

	t.Run("insert and find by code", func(t *testing.T) {
		code := uniqueCode()
		defer client.Del(ctx, "mapping:"+string(code))

		created, err := s.Insert(ctx, shortener.Mapping{Code: code, OriginalURL: "https://example.com"})
		require.NoError(t, err)
		assert.Positive(t, created.ID)

		got, err := s.FindByCode(ctx, code)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "https://example.com", got.OriginalURL)
		assert.WithinDuration(t, created.CreatedAt, got.CreatedAt, time.Microsecond)
	})

	t.Run("duplicate code is reported", func(t *testing.T) {
		code := uniqueCode()
		defer client.Del(ctx, "mapping:"+string(code))

		_, err := s.Insert(ctx, shortener.Mapping{Code: code, OriginalURL: "https://old.com"})
		require.NoError(t, err)

		_, err = s.Insert(ctx, shortener.Mapping{Code: code, OriginalURL: "https://new.com"})
		require.ErrorIs(t, err, shortener.ErrDuplicateCode)

		got, _ := s.FindByCode(ctx, code)
		assert.Equal(t, "https://old.com", got.OriginalURL)
	})

	t.Run("url hash index", func(t *testing.T) {
		first, second := uniqueCode(), uniqueCode()
		defer client.Del(ctx, "mapping:"+string(first), "mapping:"+string(second))

		hash := shortener.HashURL("https://example.com/" + uuid.NewString())
		defer client.HDel(ctx, "mapping_hashes", string(hash))

		_, err := s.Insert(ctx, shortener.Mapping{Code: first, OriginalURL: "https://a.com", URLHash: hash})
		require.NoError(t, err)

		got, err := s.FindByURL(ctx, hash)
		require.NoError(t, err)
		assert.Equal(t, first, got.Code)

		_, err = s.Insert(ctx, shortener.Mapping{Code: second, OriginalURL: "https://a.com", URLHash: hash})
		assert.ErrorIs(t, err, shortener.ErrDuplicateURL)
	})

	t.Run("list includes newest mapping first", func(t *testing.T) {
		code := uniqueCode()
		defer client.Del(ctx, "mapping:"+string(code))

		_, err := s.Insert(ctx, shortener.Mapping{Code: code, OriginalURL: "https://example.com/list"})
		require.NoError(t, err)

		got, err := s.List(ctx, 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, code, got[0].Code)
	})

	t.Run("find non-existent returns ErrNotFound", func(t *testing.T) {
		_, err := s.FindByCode(ctx, "nonexistent")
		assert.ErrorIs(t, err, shortener.ErrNotFound)

		_, err = s.FindByURL(ctx, "nonexistenthash")
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})
}

func TestRedisCacheRepositoryIntegration(t *testing.T) {
	client := newRedisClient(t)
	ctx := context.Background()

	backing := store.NewMemoryStore()
	cache := store.NewRedisCacheRepository(backing, client, time.Minute, zap.NewNop())

	t.Run("insert writes through to the cache", func(t *testing.T) {
		code := uniqueCode()
		defer client.Del(ctx, "url:"+string(code))

		_, err := cache.Insert(ctx, shortener.Mapping{Code: code, OriginalURL: "https://example.com/cached"})
		require.NoError(t, err)

		fields, err := client.HGetAll(ctx, "url:"+string(code)).Result()
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/cached", fields["original_url"])

		ttl, err := client.TTL(ctx, "url:"+string(code)).Result()
		require.NoError(t, err)
		assert.Positive(t, ttl)
	})

	t.Run("cache hit does not need the backing store", func(t *testing.T) {
		code := uniqueCode()
		defer client.Del(ctx, "url:"+string(code))

		require.NoError(t, client.HSet(ctx, "url:"+string(code), map[string]any{
			"id":           42,
			"code":         string(code),
			"original_url": "https://only-in-cache.com",
			"url_hash":     "",
			"created_at":   time.Now().UnixNano(),
		}).Err())

		got, err := cache.FindByCode(ctx, code)
		require.NoError(t, err)
		assert.Equal(t, int64(42), got.ID)
		assert.Equal(t, "https://only-in-cache.com", got.OriginalURL)
	})

	t.Run("miss falls through and populates", func(t *testing.T) {
		code := uniqueCode()
		defer client.Del(ctx, "url:"+string(code))

		hash := shortener.HashURL("https://example.com/" + uuid.NewString())
		defer client.Del(ctx, "url_hash:"+string(hash))

		_, err := backing.Insert(ctx, shortener.Mapping{Code: code, OriginalURL: "https://backing.com", URLHash: hash})
		require.NoError(t, err)

		got, err := cache.FindByURL(ctx, hash)
		require.NoError(t, err)
		assert.Equal(t, code, got.Code)

		cached, err := client.Get(ctx, "url_hash:"+string(hash)).Result()
		require.NoError(t, err)
		assert.Equal(t, string(code), cached)
	})

	t.Run("hash index expires with its entry", func(t *testing.T) {
		code := uniqueCode()
		defer client.Del(ctx, "url:"+string(code))

		hash := shortener.HashURL("https://example.com/" + uuid.NewString())
		defer client.Del(ctx, "url_hash:"+string(hash))

		_, err := cache.Insert(ctx, shortener.Mapping{Code: code, OriginalURL: "https://example.com/ttl", URLHash: hash})
		require.NoError(t, err)

		ttl, err := client.TTL(ctx, "url_hash:"+string(hash)).Result()
		require.NoError(t, err)
		assert.Positive(t, ttl)
		assert.LessOrEqual(t, ttl, time.Minute)
	})

	t.Run("not found is not cached", func(t *testing.T) {
		_, err := cache.FindByCode(ctx, "absent1")

		assert.ErrorIs(t, err, shortener.ErrNotFound)
		assert.Zero(t, client.Exists(ctx, "url:absent1").Val())
	})
}
