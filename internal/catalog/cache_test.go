package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/forkful/forkful-backend/pkg/db/models"
	"github.com/forkful/forkful-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeStore struct {
	values map[string]string
	getErr error
	setErr error

	sets int
	dels int
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	value, ok := f.values[key]
	if !ok {
		return "", errors.New("redis: nil")
	}
	return value, nil
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	f.values[key] = value.(string)
	return nil
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	f.dels++
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeStore) CacheKey(parts ...string) string {
	return "fk:cache:" + strings.Join(parts, ":")
}

type fakeMenuRepo struct {
	items []models.MenuItem
	err   error
	calls int
}

func (f *fakeMenuRepo) ListMenu(ctx context.Context, vendorID uuid.UUID) ([]models.MenuItem, error) {
	f.calls++
	return f.items, f.err
}

func testCache(t *testing.T, store *fakeStore, repo *fakeMenuRepo) *Cache {
	t.Helper()
	cache, err := NewCache(store, repo, logger.New(logger.Options{ServiceName: "catalog-test"}), time.Minute)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	return cache
}

func menuFixture(vendorID uuid.UUID) []models.MenuItem {
	return []models.MenuItem{
		{
			ID:       uuid.New(),
			VendorID: vendorID,
			Name:     "pad thai",
			Category: "mains",
			Price:    decimal.RequireFromString("11.00"),
		},
	}
}

func TestGetMenuPopulatesCacheOnMiss(t *testing.T) {
	store := newFakeStore()
	vendorID := uuid.New()
	repo := &fakeMenuRepo{items: menuFixture(vendorID)}
	cache := testCache(t, store, repo)

	items, err := cache.GetMenu(context.Background(), vendorID)
	if err != nil {
		t.Fatalf("GetMenu: %v", err)
	}
	if len(items) != 1 || items[0].Name != "pad thai" {
		t.Fatalf("unexpected menu %v", items)
	}
	if repo.calls != 1 || store.sets != 1 {
		t.Fatalf("expected one db load and one cache write, got %d / %d", repo.calls, store.sets)
	}

	// second read must come from the cache
	if _, err := cache.GetMenu(context.Background(), vendorID); err != nil {
		t.Fatalf("GetMenu (cached): %v", err)
	}
	if repo.calls != 1 {
		t.Fatalf("expected cache hit, db was queried %d times", repo.calls)
	}
}

func TestGetMenuDropsCorruptEntries(t *testing.T) {
	store := newFakeStore()
	vendorID := uuid.New()
	repo := &fakeMenuRepo{items: menuFixture(vendorID)}
	cache := testCache(t, store, repo)

	store.values[store.CacheKey("menu", vendorID.String())] = "{not json"

	items, err := cache.GetMenu(context.Background(), vendorID)
	if err != nil {
		t.Fatalf("GetMenu: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected reloaded menu, got %v", items)
	}
	if store.dels == 0 {
		t.Fatal("corrupt cache entry should be deleted")
	}
}

func TestRefreshOverwritesCache(t *testing.T) {
	store := newFakeStore()
	vendorID := uuid.New()
	repo := &fakeMenuRepo{items: menuFixture(vendorID)}
	cache := testCache(t, store, repo)

	if _, err := cache.Refresh(context.Background(), vendorID); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	raw := store.values[store.CacheKey("menu", vendorID.String())]
	var cached []models.MenuItem
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		t.Fatalf("cached payload not json: %v", err)
	}
	if len(cached) != 1 {
		t.Fatalf("unexpected cached menu %v", cached)
	}
}

func TestRefreshSurvivesCacheWriteFailure(t *testing.T) {
	store := newFakeStore()
	store.setErr = errors.New("redis down")
	vendorID := uuid.New()
	repo := &fakeMenuRepo{items: menuFixture(vendorID)}
	cache := testCache(t, store, repo)

	items, err := cache.Refresh(context.Background(), vendorID)
	if err != nil {
		t.Fatalf("Refresh should tolerate cache write failure: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("menu should still be served, got %v", items)
	}
}

func TestInvalidateRemovesEntry(t *testing.T) {
	store := newFakeStore()
	vendorID := uuid.New()
	repo := &fakeMenuRepo{items: menuFixture(vendorID)}
	cache := testCache(t, store, repo)

	if _, err := cache.GetMenu(context.Background(), vendorID); err != nil {
		t.Fatalf("GetMenu: %v", err)
	}
	if err := cache.Invalidate(context.Background(), vendorID); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok := store.values[store.CacheKey("menu", vendorID.String())]; ok {
		t.Fatal("cache entry should be gone")
	}
}
