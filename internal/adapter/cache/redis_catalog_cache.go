package cache

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/usecase"
)

const (
	productKeyPrefix  = "product:"
	productListKey    = "products:all"
	categoryKeyPrefix = "products:category:"
)

// RedisCatalogCache invalidates every cached catalog view touched by a stock
// write: the single-product entry, the aggregate list, and each per-category
// list. Enumerating all categories trades efficiency for correctness at
// small catalog scale.
type RedisCatalogCache struct {
	rdb *redis.Client
}

func NewRedisCatalogCache(rdb *redis.Client) *RedisCatalogCache {
	return &RedisCatalogCache{rdb: rdb}
}

func (c *RedisCatalogCache) InvalidateProduct(ctx context.Context, productID string, categoryIDs []string) error {
	keys := make([]string, 0, len(categoryIDs)+2)
	keys = append(keys, productKeyPrefix+productID, productListKey)
	for _, cat := range categoryIDs {
		keys = append(keys, categoryKeyPrefix+cat)
	}
	return c.rdb.Del(ctx, keys...).Err()
}

var _ usecase.CatalogCache = (*RedisCatalogCache)(nil)
