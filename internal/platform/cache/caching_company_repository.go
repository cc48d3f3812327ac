// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"broker_backend/internal/feature/company/domain/entity"
	"broker_backend/internal/feature/company/usecase"
)

// CachingCompanyRepository decorates a CompanyRepository with Redis caching.
// It implements the decorator pattern, transparently adding caching without
// modifying the underlying repository. Single-company lookups are cached;
// filtered listings always go to the database.
type CachingCompanyRepository struct {
	inner     usecase.CompanyRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingCompanyRepository decorates a CompanyRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "companies".
func NewCachingCompanyRepository(rdb *redis.Client, ttl time.Duration, inner usecase.CompanyRepository, namespace string) *CachingCompanyRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "companies"
	}
	return &CachingCompanyRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

var _ usecase.CompanyRepository = (*CachingCompanyRepository)(nil)

// Create inserts a company through the underlying repository. New rows cannot
// be cached yet, so no invalidation is needed.
func (c *CachingCompanyRepository) Create(ctx context.Context, company *entity.Company) error {
	return c.inner.Create(ctx, company)
}

// FindByID retrieves a company, checking cache first then falling back to the database.
func (c *CachingCompanyRepository) FindByID(ctx context.Context, id uint) (*entity.Company, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := c.cacheKey(id)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.Company
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// List always queries the database. Filter combinations fan out too widely for
// the cache hit rate to be worth the invalidation complexity.
func (c *CachingCompanyRepository) List(ctx context.Context, f usecase.ListFilter) ([]entity.Company, error) {
	return c.inner.List(ctx, f)
}

// Update writes through to the database and invalidates the cached entry.
func (c *CachingCompanyRepository) Update(ctx context.Context, company *entity.Company) error {
	if err := c.inner.Update(ctx, company); err != nil {
		return err
	}
	return c.InvalidateCompany(ctx, company.ID)
}

// Patch writes through to the database and invalidates the cached entry.
func (c *CachingCompanyRepository) Patch(ctx context.Context, id uint, patch usecase.CompanyPatch) (*entity.Company, error) {
	out, err := c.inner.Patch(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if err := c.InvalidateCompany(ctx, id); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the company and invalidates the cached entry.
func (c *CachingCompanyRepository) Delete(ctx context.Context, id uint) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	return c.InvalidateCompany(ctx, id)
}

// InvalidateCompany removes a single company from the cache.
// It is a no-op when Redis is not configured.
func (c *CachingCompanyRepository) InvalidateCompany(ctx context.Context, id uint) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, c.cacheKey(id)).Err()
}

// InvalidateAll removes every cached company. Used after bulk repricing, when
// any cached price may be stale.
func (c *CachingCompanyRepository) InvalidateAll(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.deleteByPattern(ctx, c.namespace+":*")
}

// cacheKey generates the cache key for a single company.
func (c *CachingCompanyRepository) cacheKey(id uint) string {
	return fmt.Sprintf("%s:id:%d", c.namespace, id)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingCompanyRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}
