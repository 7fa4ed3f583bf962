package cache

import (
	"context"
	"time"

	"github.com/sells-group/jobboard-cli/internal/model"
)

// PageStore is the slice of the run store that persists cached pages.
type PageStore interface {
	GetCachedPage(ctx context.Context, key string) ([]byte, error)
	SetCachedPage(ctx context.Context, key, url string, data []byte, ttl time.Duration) error
}

// StoreCache adapts a PageStore to PageCache.
type StoreCache struct {
	store PageStore
}

// NewStoreCache returns a PageCache that keeps pages in the database.
func NewStoreCache(s PageStore) *StoreCache {
	return &StoreCache{store: s}
}

// Get implements PageCache.
func (c *StoreCache) Get(ctx context.Context, key string) (*model.Page, error) {
	data, err := c.store.GetCachedPage(ctx, key)
	if err != nil || data == nil {
		return nil, err
	}
	return decodePage(data)
}

// Set implements PageCache.
func (c *StoreCache) Set(ctx context.Context, key string, page *model.Page, ttl time.Duration) error {
	if ttl <= 0 || page == nil {
		return nil
	}
	data, err := encodePage(page)
	if err != nil {
		return err
	}
	return c.store.SetCachedPage(ctx, key, page.Metadata.SourceURL, data, ttl)
}
