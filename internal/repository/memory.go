package repository

import (
	"context"
	"sync"
	"time"

	"shareit/internal/models"
)

// MemoryItemCache is the in-process fallback cache. Entries expire lazily on
// read.
type MemoryItemCache struct {
	items sync.Map
	ttl   time.Duration
}

type memoryEntry struct {
	item      *models.Item
	expiresAt time.Time
}

func NewMemoryItemCache(ttl time.Duration) *MemoryItemCache {
	return &MemoryItemCache{
		ttl: ttl,
	}
}

func (r *MemoryItemCache) Get(ctx context.Context, id int64) (*models.Item, bool, error) {
	val, ok := r.items.Load(id)
	if !ok {
		return nil, false, nil
	}
	entry := val.(*memoryEntry)
	if time.Now().After(entry.expiresAt) {
		r.items.Delete(id)
		return nil, false, nil
	}
	return entry.item, true, nil
}

func (r *MemoryItemCache) Set(ctx context.Context, item *models.Item) error {
	r.items.Store(item.ID, &memoryEntry{
		item:      item,
		expiresAt: time.Now().Add(r.ttl),
	})
	return nil
}

func (r *MemoryItemCache) Invalidate(ctx context.Context, id int64) error {
	r.items.Delete(id)
	return nil
}
