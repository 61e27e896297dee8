package catalog

import (
	"context"

	"github.com/forkful/forkful-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads vendor menus from the primary store.
type Repository interface {
	ListMenu(ctx context.Context, vendorID uuid.UUID) ([]models.MenuItem, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) ListMenu(ctx context.Context, vendorID uuid.UUID) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND available = ?", vendorID, true).
		Order("category ASC, name ASC").
		Find(&items).Error
	return items, err
}
