package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/forkful/forkful-backend/pkg/db/models"
	pkgerrors "github.com/forkful/forkful-backend/pkg/errors"
	"github.com/forkful/forkful-backend/pkg/logger"
	"github.com/google/uuid"
)

// cacheStore is the slice of the redis client the cache needs.
type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(parts ...string) string
}

// Cache is a read-through Redis cache over vendor menus. Staleness is bounded
// by the TTL; writers call Invalidate or Refresh explicitly after menu edits
// rather than relying on expiry alone.
type Cache struct {
	store cacheStore
	repo  Repository
	logg  *logger.Logger
	ttl   time.Duration
}

// NewCache wires the catalog cache.
func NewCache(store cacheStore, repo Repository, logg *logger.Logger, ttl time.Duration) (*Cache, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cache store required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Cache{store: store, repo: repo, logg: logg, ttl: ttl}, nil
}

// GetMenu returns the vendor menu, serving from Redis when possible. A cache
// read failure falls through to the database.
func (c *Cache) GetMenu(ctx context.Context, vendorID uuid.UUID) ([]models.MenuItem, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}

	key := c.menuKey(vendorID)
	cached, err := c.store.Get(ctx, key)
	if err == nil && cached != "" {
		var items []models.MenuItem
		if unmarshalErr := json.Unmarshal([]byte(cached), &items); unmarshalErr == nil {
			return items, nil
		}
		// Corrupt entry: drop it and reload from the store.
		_ = c.store.Del(ctx, key)
	}

	return c.Refresh(ctx, vendorID)
}

// Refresh reloads the vendor menu from the database and rewrites the cache.
func (c *Cache) Refresh(ctx context.Context, vendorID uuid.UUID) ([]models.MenuItem, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}

	items, err := c.repo.ListMenu(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor menu")
	}

	encoded, err := json.Marshal(items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode vendor menu")
	}
	if setErr := c.store.Set(ctx, c.menuKey(vendorID), string(encoded), c.ttl); setErr != nil {
		// The menu is still served; the next read pays the DB round trip.
		c.logg.Warn(c.logg.WithVendorID(ctx, vendorID.String()), "menu cache write failed")
	}
	return items, nil
}

// Invalidate removes the cached menu for the vendor.
func (c *Cache) Invalidate(ctx context.Context, vendorID uuid.UUID) error {
	if vendorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	if err := c.store.Del(ctx, c.menuKey(vendorID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalidate vendor menu")
	}
	return nil
}

func (c *Cache) menuKey(vendorID uuid.UUID) string {
	return c.store.CacheKey("menu", vendorID.String())
}
