package repository

import (
	"context"
	"sync/atomic"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// FailoverItemCache serves from the primary cache until it errors, then
// degrades to the fallback and probes the primary once a minute.
type FailoverItemCache struct {
	primary   domain.ItemCache
	fallback  domain.ItemCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverItemCache(primary, fallback domain.ItemCache, logger *zerolog.Logger) *FailoverItemCache {
	return &FailoverItemCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverItemCache) Get(ctx context.Context, id int64) (*models.Item, bool, error) {
	if !r.isDown.Load() {
		item, ok, err := r.primary.Get(ctx, id)
		if err == nil {
			return item, ok, nil
		}
		r.logger.Error().Err(err).Msg("Primary item cache failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		item, ok, err := r.primary.Get(ctx, id)
		if err == nil {
			r.isDown.Store(false)
			return item, ok, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.Get(ctx, id)
}

func (r *FailoverItemCache) Set(ctx context.Context, item *models.Item) error {
	if !r.isDown.Load() {
		err := r.primary.Set(ctx, item)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary item cache failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.Set(ctx, item)
}

func (r *FailoverItemCache) Invalidate(ctx context.Context, id int64) error {
	if !r.isDown.Load() {
		err := r.primary.Invalidate(ctx, id)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary item cache failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.Invalidate(ctx, id)
}
