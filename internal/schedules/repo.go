package schedules

import (
	"context"
	"time"

	"github.com/forkful/forkful-backend/pkg/db/models"
	"github.com/forkful/forkful-backend/pkg/enums"
	"github.com/forkful/forkful-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes persistence helpers for scheduled orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.ScheduledOrder) error
	Get(ctx context.Context, id uuid.UUID) (*models.ScheduledOrder, error)
	ListByCustomer(ctx context.Context, params ListQuery) ([]models.ScheduledOrder, *pagination.Cursor, error)
	FindMenuItems(ctx context.Context, vendorID uuid.UUID, ids []uuid.UUID) ([]models.MenuItem, error)
	FindDue(ctx context.Context, windowStart, windowEnd time.Time, days enums.WeekdaySet) ([]models.ScheduledOrder, error)
	MarkQueued(ctx context.Context, ids []uuid.UUID, now time.Time) ([]uuid.UUID, error)
	Transition(ctx context.Context, id uuid.UUID, from []enums.ScheduleStatus, to enums.ScheduleStatus, now time.Time) (int64, error)
	UpdateDeliveryDays(ctx context.Context, id, customerID uuid.UUID, days enums.WeekdaySet) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a schedules repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// ListQuery is the repository-level filter for customer schedule listing.
type ListQuery struct {
	CustomerID uuid.UUID
	Limit      int
	Cursor     *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, order *models.ScheduledOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repositoryImpl) Get(ctx context.Context, id uuid.UUID) (*models.ScheduledOrder, error) {
	var order models.ScheduledOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) ListByCustomer(ctx context.Context, params ListQuery) ([]models.ScheduledOrder, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Model(&models.ScheduledOrder{}).
		Preload("Items").
		Where("customer_id = ?", params.CustomerID)
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var orders []models.ScheduledOrder
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, nil, err
	}

	if len(orders) > normalized {
		next := orders[normalized]
		orders = orders[:normalized]
		return orders, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return orders, nil, nil
}

func (r *repositoryImpl) FindMenuItems(ctx context.Context, vendorID uuid.UUID, ids []uuid.UUID) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND id IN ?", vendorID, ids).
		Find(&items).Error
	return items, err
}

// FindDue returns all scheduled orders falling inside the dispatch window:
// either pinned to a date within [windowStart, windowEnd) or recurring on the
// window's weekday. Only status=scheduled rows qualify; paused and cancelled
// orders carry their own status values and never match.
func (r *repositoryImpl) FindDue(ctx context.Context, windowStart, windowEnd time.Time, days enums.WeekdaySet) ([]models.ScheduledOrder, error) {
	var orders []models.ScheduledOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ?", enums.ScheduleStatusScheduled).
		Where(
			r.db.Where("delivery_date >= ? AND delivery_date < ?", windowStart, windowEnd).
				Or("delivery_date IS NULL AND (delivery_days & ?) <> 0", int(days)),
		).
		Order("created_at ASC, id ASC").
		Find(&orders).Error
	return orders, err
}

// MarkQueued flips the given orders to queued and returns the ids of the
// rows this call actually moved. The status guard keeps reruns idempotent:
// rows another run already queued, or that raced into pause or cancel
// between select and update, are skipped and absent from the result.
func (r *repositoryImpl) MarkQueued(ctx context.Context, ids []uuid.UUID, now time.Time) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var moved []models.ScheduledOrder
	result := r.db.WithContext(ctx).
		Model(&moved).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}}}).
		Where("id IN ? AND status = ?", ids, enums.ScheduleStatusScheduled).
		Updates(map[string]any{
			"status":    enums.ScheduleStatusQueued,
			"queued_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	queued := make([]uuid.UUID, 0, len(moved))
	for _, row := range moved {
		queued = append(queued, row.ID)
	}
	return queued, nil
}

// Transition performs a guarded status change and stamps the matching
// timestamp column. RowsAffected is zero when the row was not in a valid
// source status.
func (r *repositoryImpl) Transition(ctx context.Context, id uuid.UUID, from []enums.ScheduleStatus, to enums.ScheduleStatus, now time.Time) (int64, error) {
	updates := map[string]any{"status": to}
	switch to {
	case enums.ScheduleStatusQueued:
		updates["queued_at"] = now
	case enums.ScheduleStatusDispatched:
		updates["dispatched_at"] = now
	case enums.ScheduleStatusPaused:
		updates["paused_at"] = now
	case enums.ScheduleStatusCancelled:
		updates["cancelled_at"] = now
	case enums.ScheduleStatusScheduled:
		updates["paused_at"] = nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.ScheduledOrder{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) UpdateDeliveryDays(ctx context.Context, id, customerID uuid.UUID, days enums.WeekdaySet) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ScheduledOrder{}).
		Where("id = ? AND customer_id = ? AND delivery_date IS NULL AND status IN ?",
			id, customerID,
			[]enums.ScheduleStatus{enums.ScheduleStatusScheduled, enums.ScheduleStatusPaused}).
		UpdateColumn("delivery_days", int(days))
	return result.RowsAffected, result.Error
}
