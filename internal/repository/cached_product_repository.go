package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Raymond9734/storefront-backend/internal/cache"
	"github.com/Raymond9734/storefront-backend/internal/models"
	"github.com/Raymond9734/storefront-backend/internal/observability/metrics"
)

// cachedProductRepository serves FindByID from a cache and invalidates on
// writes. List queries always hit the database.
//
// generation counts invalidations in this process. A read that loaded from
// the database only fills the cache if no invalidation ran since it started,
// so a snapshot taken before a write or delete is never cached after it.
type cachedProductRepository struct {
	ProductRepository
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger

	mu         sync.Mutex
	generation uint64
}

// NewCachedProductRepository wraps next with a read-through cache
func NewCachedProductRepository(next ProductRepository, c cache.Cache, ttl time.Duration, logger *zap.Logger) ProductRepository {
	return &cachedProductRepository{
		ProductRepository: next,
		cache:             c,
		ttl:               ttl,
		logger:            logger,
	}
}

func productCacheKey(storeID, id string) string {
	return "product:" + storeID + ":" + id
}

// FindByID checks the cache before the wrapped repository
func (r *cachedProductRepository) FindByID(ctx context.Context, id, storeID string) (*models.Product, error) {
	key := productCacheKey(storeID, id)

	if data, ok := r.cache.Get(ctx, key); ok {
		var s models.ProductSnapshot
		if err := json.Unmarshal(data, &s); err == nil {
			metrics.ObserveCacheLookup(true)
			return models.RestoreProduct(s), nil
		}
		r.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
		r.cache.Delete(ctx, key)
	}
	metrics.ObserveCacheLookup(false)

	started := r.currentGeneration()
	product, err := r.ProductRepository.FindByID(ctx, id, storeID)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(product.Snapshot())
	if err != nil {
		return product, nil
	}

	r.mu.Lock()
	if r.generation == started {
		r.cache.Set(ctx, key, data, r.ttl)
	}
	r.mu.Unlock()
	return product, nil
}

// Update invalidates the cached entry whether or not the write succeeds
func (r *cachedProductRepository) Update(ctx context.Context, product *models.Product) error {
	defer r.invalidate(ctx, product)
	return r.ProductRepository.Update(ctx, product)
}

// SoftDelete invalidates the cached entry
func (r *cachedProductRepository) SoftDelete(ctx context.Context, product *models.Product) error {
	defer r.invalidate(ctx, product)
	return r.ProductRepository.SoftDelete(ctx, product)
}

func (r *cachedProductRepository) currentGeneration() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

func (r *cachedProductRepository) invalidate(ctx context.Context, product *models.Product) {
	r.mu.Lock()
	r.generation++
	r.mu.Unlock()
	r.cache.Delete(ctx, productCacheKey(product.TenantID(), product.ID()))
}
