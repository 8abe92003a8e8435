package redisfetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hyperpage/pagegen/linkcodec"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

// prefix string for all the Redis keys this cache uses
var redisDocPrefix string = "page/"

// Uses redis as a cache for fetched page documents.
//
// All link encoding is delegated to the wrapped codec; only Fetch is
// intercepted. Documents are stored as their JSON encoding, so numbers survive
// the round trip.
type Codec struct {
	linkcodec.Codec
	TTL    time.Duration
	Logger *slog.Logger

	docCache *cache.Cache
}

var _ linkcodec.Codec = (*Codec)(nil)

// Creates a new caching codec wrapper around an existing codec.
//
// `redisURL` contains all the redis connection config options. `ttl` is how
// long fetched documents stay cached. `lruSize` is the size of the in-process
// cache layered in front of redis; zero disables it.
func New(inner linkcodec.Codec, redisURL string, ttl time.Duration, lruSize int) (*Codec, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("could not configure redis document cache: %w", err)
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(context.TODO()).Result()
	if err != nil {
		return nil, fmt.Errorf("could not connect to redis document cache: %w", err)
	}
	return NewWithClient(inner, rdb, ttl, lruSize), nil
}

func NewWithClient(inner linkcodec.Codec, rdb *redis.Client, ttl time.Duration, lruSize int) *Codec {
	opts := &cache.Options{
		Redis: rdb,
	}
	if lruSize > 0 {
		opts.LocalCache = cache.NewTinyLFU(lruSize, ttl)
	}
	return &Codec{
		Codec:    inner,
		TTL:      ttl,
		Logger:   slog.Default().With("system", "redisfetch"),
		docCache: cache.New(opts),
	}
}

func (c *Codec) Fetch(ctx context.Context, category string, id int64) (map[string]any, error) {
	key := redisDocPrefix + c.Codec.Encode(category, id)

	var raw []byte
	err := c.docCache.Get(ctx, key, &raw)
	if err == nil {
		doc, err := decodeDocument(raw)
		if err == nil {
			documentCacheHits.Inc()
			return doc, nil
		}
		c.Logger.Warn("dropping unreadable cached document", "key", key, "err", err)
		_ = c.docCache.Delete(ctx, key)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		c.Logger.Error("document cache read failed", "key", key, "err", err)
	}
	documentCacheMisses.Inc()

	doc, err := c.Codec.Fetch(ctx, category, id)
	if err != nil {
		return nil, err
	}

	raw, err = json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding fetched document: %w", err)
	}
	err = c.docCache.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: raw,
		TTL:   c.TTL,
	})
	if err != nil {
		c.Logger.Error("document cache write failed", "key", key, "err", err)
	}
	return doc, nil
}

// Purge removes a single cached document, if present.
func (c *Codec) Purge(ctx context.Context, category string, id int64) error {
	err := c.docCache.Delete(ctx, redisDocPrefix+c.Codec.Encode(category, id))
	if err == nil || errors.Is(err, cache.ErrCacheMiss) {
		return nil
	}
	return err
}

func decodeDocument(raw []byte) (map[string]any, error) {
	var doc map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("cached document was null")
	}
	return doc, nil
}
