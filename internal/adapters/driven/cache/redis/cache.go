// Package redis implements the EmbeddingCache port on Redis.
//
// Vectors are stored as little-endian float32 blobs rather than JSON;
// a 1536-dimension embedding is 6KB as a blob against roughly four
// times that as a JSON array. Keys are derived by the caller (a digest
// of model name and chunk text), so identical text re-ingested later
// hits the cache instead of the embedding service.
package redis

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/docent-labs/docent/internal/core/domain"
	"github.com/docent-labs/docent/internal/core/ports/driven"
)

// keyPrefix namespaces cache entries so a shared Redis can hold other data.
const keyPrefix = "docent:emb:"

// Config holds Redis cache settings.
type Config struct {
	// Addr is the Redis host:port.
	Addr string
	// Password is optional.
	Password string
	// DB selects the logical database.
	DB int
	// TTL bounds entry lifetime. Defaults to domain.DefaultCacheTTL.
	TTL time.Duration
}

// Cache is a Redis-backed embedding cache.
type Cache struct {
	client *goredis.Client
	ttl    time.Duration
}

// Compile-time check that Cache implements the EmbeddingCache interface.
var _ driven.EmbeddingCache = (*Cache)(nil)

// New creates a Redis embedding cache. The connection is verified with
// a ping so a misconfigured cache surfaces at startup, not mid-ingest.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: redis address is required", domain.ErrInvalidInput)
	}
	if cfg.TTL <= 0 {
		cfg.TTL = domain.DefaultCacheTTL
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Cache{client: client, ttl: cfg.TTL}, nil
}

// Get returns the cached vector for a key, or domain.ErrNotFound on a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]float32, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}
	vector, err := bytesToFloat32Slice(data)
	if err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}
	return vector, nil
}

// Set stores a vector under a key with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: vector must not be empty", domain.ErrInvalidInput)
	}
	data := float32SliceToBytes(vector)
	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Close releases the client connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// float32SliceToBytes converts a []float32 to a little-endian byte slice.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
// A length that is not a multiple of four means the entry was not
// written by this cache and is rejected.
func bytesToFloat32Slice(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 4", len(data))
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats, nil
}
