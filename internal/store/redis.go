package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-shortener-go/internal/shortener"
)

const (
	scriptDuplicateCode = -1
	scriptDuplicateURL  = -2
)

// insertScript checks both unique keys, assigns an id and writes the
// mapping in one atomic step.
//
// KEYS: mapping hash, url hash index, id counter, listing zset.
// ARGV: code, original_url, url_hash, created_at.
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return -1
end
if ARGV[3] ~= '' and redis.call('HEXISTS', KEYS[2], ARGV[3]) == 1 then
	return -2
end
local id = redis.call('INCR', KEYS[3])
redis.call('HSET', KEYS[1], 'id', id, 'code', ARGV[1], 'original_url', ARGV[2], 'url_hash', ARGV[3], 'created_at', ARGV[4])
if ARGV[3] ~= '' then
	redis.call('HSET', KEYS[2], ARGV[3], ARGV[1])
end
redis.call('ZADD', KEYS[4], id, ARGV[1])
return id
`)

// RedisStore is a Redis implementation of shortener.Repository.
type RedisStore struct {
	client     *redis.Client
	prefix     string // "mapping:" for code -> mapping hash
	hashKey    string // url hash -> code
	counterKey string
	listKey    string // sorted set of codes scored by id
}

// NewRedisStore creates a new Redis-backed URL store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:     client,
		prefix:     "mapping:",
		hashKey:    "mapping_hashes",
		counterKey: "mapping_seq",
		listKey:    "mappings",
	}
}

func (r *RedisStore) Insert(ctx context.Context, mapping shortener.Mapping) (*shortener.Mapping, error) {
	if mapping.CreatedAt.IsZero() {
		mapping.CreatedAt = time.Now().UTC()
	}

	keys := []string{r.prefix + string(mapping.Code), r.hashKey, r.counterKey, r.listKey}

	id, err := insertScript.Run(ctx, r.client, keys,
		string(mapping.Code),
		mapping.OriginalURL,
		string(mapping.URLHash),
		mapping.CreatedAt.UnixNano(),
	).Int64()
	if err != nil {
		return nil, err
	}

	switch id {
	case scriptDuplicateCode:
		return nil, fmt.Errorf("code %q: %w", mapping.Code, shortener.ErrDuplicateCode)
	case scriptDuplicateURL:
		return nil, shortener.ErrDuplicateURL
	}

	mapping.ID = id

	return &mapping, nil
}

func (r *RedisStore) FindByCode(ctx context.Context, code shortener.Code) (*shortener.Mapping, error) {
	fields, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, err
	}

	return mappingFromHash(fields)
}

func (r *RedisStore) FindByURL(ctx context.Context, hash shortener.URLHash) (*shortener.Mapping, error) {
	code, err := r.client.HGet(ctx, r.hashKey, string(hash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return r.FindByCode(ctx, shortener.Code(code))
}

// List returns up to limit mappings, newest first.
func (r *RedisStore) List(ctx context.Context, limit int) ([]*shortener.Mapping, error) {
	if limit <= 0 {
		return []*shortener.Mapping{}, nil
	}

	codes, err := r.client.ZRevRange(ctx, r.listKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(codes))

	for i, code := range codes {
		cmds[i] = pipe.HGetAll(ctx, r.prefix+code)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	result := make([]*shortener.Mapping, 0, len(codes))

	for _, cmd := range cmds {
		mapping, err := mappingFromHash(cmd.Val())
		if errors.Is(err, shortener.ErrNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		result = append(result, mapping)
	}

	return result, nil
}

func mappingFields(mapping *shortener.Mapping) map[string]any {
	return map[string]any{
		"id":           mapping.ID,
		"code":         string(mapping.Code),
		"original_url": mapping.OriginalURL,
		"url_hash":     string(mapping.URLHash),
		"created_at":   mapping.CreatedAt.UnixNano(),
	}
}

func mappingFromHash(fields map[string]string) (*shortener.Mapping, error) {
	if len(fields) == 0 {
		return nil, shortener.ErrNotFound
	}

	id, err := strconv.ParseInt(fields["id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("mapping %q: bad id: %w", fields["code"], err)
	}

	var createdAt time.Time

	if nanos, err := strconv.ParseInt(fields["created_at"], 10, 64); err == nil {
		createdAt = time.Unix(0, nanos).UTC()
	}

	return &shortener.Mapping{
		ID:          id,
		Code:        shortener.Code(fields["code"]),
		OriginalURL: fields["original_url"],
		URLHash:     shortener.URLHash(fields["url_hash"]),
		CreatedAt:   createdAt,
	}, nil
}

// Compile-time check.
var _ shortener.Repository = (*RedisStore)(nil)
