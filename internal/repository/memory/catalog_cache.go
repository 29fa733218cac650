package memory

import (
	"time"

	"branching-chat-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

const catalogKey = "model_catalog"

// CatalogCache keeps the model catalog in memory so the stream path does not
// hit the database for every model lookup.
type CatalogCache struct {
	cache *cache.Cache
}

func NewCatalogCache() *CatalogCache {
	// Catalog changes rarely; a 5 minute TTL with 10 minute purge is plenty.
	c := cache.New(5*time.Minute, 10*time.Minute)
	return &CatalogCache{
		cache: c,
	}
}

func (r *CatalogCache) Save(configs []*entity.ModelConfig) {
	r.cache.Set(catalogKey, configs, cache.DefaultExpiration)
}

func (r *CatalogCache) Get() ([]*entity.ModelConfig, bool) {
	if x, found := r.cache.Get(catalogKey); found {
		return x.([]*entity.ModelConfig), true
	}
	return nil, false
}

func (r *CatalogCache) Invalidate() {
	r.cache.Delete(catalogKey)
}
