package repository

import (
	"context"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// CachedItemStore is a read-through wrapper around an ItemStore. Single-item
// reads go through the cache; every write invalidates the affected entry.
// Cache failures are logged and ignored, the store stays authoritative.
type CachedItemStore struct {
	store  domain.ItemStore
	cache  domain.ItemCache
	logger *zerolog.Logger
}

func NewCachedItemStore(store domain.ItemStore, cache domain.ItemCache, logger *zerolog.Logger) *CachedItemStore {
	return &CachedItemStore{store: store, cache: cache, logger: logger}
}

func (c *CachedItemStore) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	if item, ok, err := c.cache.Get(ctx, id); err == nil && ok {
		return item, nil
	} else if err != nil {
		c.logger.Warn().Err(err).Int64("item_id", id).Msg("item cache read error")
	}

	item, err := c.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, item); err != nil {
		c.logger.Warn().Err(err).Int64("item_id", id).Msg("item cache write error")
	}
	return item, nil
}

func (c *CachedItemStore) CreateItem(ctx context.Context, item *models.Item) error {
	return c.store.CreateItem(ctx, item)
}

func (c *CachedItemStore) UpdateItem(ctx context.Context, item *models.Item) error {
	if err := c.store.UpdateItem(ctx, item); err != nil {
		return err
	}
	c.invalidate(ctx, item.ID)
	return nil
}

func (c *CachedItemStore) DeleteItem(ctx context.Context, id int64) error {
	if err := c.store.DeleteItem(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// List reads bypass the cache; they are served by the store directly.

func (c *CachedItemStore) GetItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error) {
	return c.store.GetItemsByOwner(ctx, ownerID)
}

func (c *CachedItemStore) GetItemsByRequest(ctx context.Context, requestID int64) ([]*models.Item, error) {
	return c.store.GetItemsByRequest(ctx, requestID)
}

func (c *CachedItemStore) SearchItems(ctx context.Context, text string) ([]*models.Item, error) {
	return c.store.SearchItems(ctx, text)
}

func (c *CachedItemStore) invalidate(ctx context.Context, id int64) {
	if err := c.cache.Invalidate(ctx, id); err != nil {
		c.logger.Warn().Err(err).Int64("item_id", id).Msg("item cache invalidate error")
	}
}
