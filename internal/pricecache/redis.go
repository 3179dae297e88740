package pricecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/product/pkg/response"
)

// RedisStore keeps the snapshot as one JSON string under key; SET replaces
// it atomically.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (r *RedisStore) Save(c context.Context, products []response.Product) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RedisStore Save").
		Str(log.KeyCacheKey, r.key).
		Logger()

	if products == nil {
		products = []response.Product{}
	}
	b, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed encoding products with error=%w", err)
	}

	logger = logger.With().Str(log.KeyProcess, "setting products in cache").Logger()
	logger.Trace().Msg("setting products in cache")
	if err := r.client.Set(c, r.key, b, 0).Err(); err != nil {
		return fmt.Errorf("failed setting products in cache with error=%w", err)
	}
	logger.Info().Msg("set products in cache")
	return nil
}

func (r *RedisStore) Load(c context.Context) ([]response.Product, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RedisStore Load").
		Str(log.KeyCacheKey, r.key).
		Logger()

	b, err := r.client.Get(c, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		logger.Info().Msg("products not found in cache")
		return nil, inErrors.ErrPriceCacheMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed getting products from cache with error=%w", err)
	}

	products := []response.Product{}
	if err := json.Unmarshal(b, &products); err != nil {
		return nil, fmt.Errorf("failed decoding products from cache with error=%w", err)
	}
	logger.Trace().Int(log.KeyProductCount, len(products)).Msg("loaded products from cache")
	return products, nil
}
