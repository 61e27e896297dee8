package schedules

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/forkful/forkful-backend/pkg/db/models"
	"github.com/forkful/forkful-backend/pkg/enums"
)

func setupSchedulesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	scheduledOrders := `
CREATE TABLE IF NOT EXISTS scheduled_orders (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  vendor_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'scheduled',
  delivery_date DATETIME,
  delivery_days INTEGER NOT NULL DEFAULT 0,
  time_slot TEXT NOT NULL,
  delivery_address TEXT NOT NULL,
  note TEXT,
  total_cents INTEGER NOT NULL DEFAULT 0,
  queued_at DATETIME,
  dispatched_at DATETIME,
  paused_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	scheduledOrderItems := `
CREATE TABLE IF NOT EXISTS scheduled_order_items (
  id TEXT PRIMARY KEY,
  scheduled_order_id TEXT NOT NULL,
  menu_item_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(scheduledOrders).Error)
	require.NoError(t, db.Exec(scheduledOrderItems).Error)
	return db
}

func newScheduledOrder(t *testing.T, db *gorm.DB, status enums.ScheduleStatus, mutate func(*models.ScheduledOrder)) *models.ScheduledOrder {
	t.Helper()

	order := &models.ScheduledOrder{
		ID:              uuid.New(),
		CustomerID:      uuid.New(),
		VendorID:        uuid.New(),
		Status:          status,
		TimeSlot:        "18:00-19:00",
		DeliveryAddress: "12 Main St",
	}
	if mutate != nil {
		mutate(order)
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestFindDueMatchesDateAndWeekday(t *testing.T) {
	db := setupSchedulesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	windowStart := time.Date(2026, time.September, 3, 0, 0, 0, 0, time.UTC) // a Thursday
	windowEnd := windowStart.AddDate(0, 0, 1)
	dayMask := enums.WeekdaySet(0).With(windowStart.Weekday())

	inWindow := windowStart.Add(6 * time.Hour)
	pinned := newScheduledOrder(t, db, enums.ScheduleStatusScheduled, func(o *models.ScheduledOrder) {
		o.DeliveryDate = &inWindow
	})
	recurring := newScheduledOrder(t, db, enums.ScheduleStatusScheduled, func(o *models.ScheduledOrder) {
		o.DeliveryDays = dayMask
	})
	outOfWindow := windowEnd.Add(time.Hour)
	newScheduledOrder(t, db, enums.ScheduleStatusScheduled, func(o *models.ScheduledOrder) {
		o.DeliveryDate = &outOfWindow
	})
	newScheduledOrder(t, db, enums.ScheduleStatusPaused, func(o *models.ScheduledOrder) {
		o.DeliveryDays = dayMask
	})

	due, err := repo.FindDue(ctx, windowStart, windowEnd, dayMask)
	require.NoError(t, err)
	require.Len(t, due, 2)

	found := map[uuid.UUID]bool{}
	for _, order := range due {
		found[order.ID] = true
	}
	assert.True(t, found[pinned.ID])
	assert.True(t, found[recurring.ID])
}

func TestFindDueWindowBoundaries(t *testing.T) {
	db := setupSchedulesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	windowStart := time.Date(2026, time.September, 3, 0, 0, 0, 0, time.UTC)
	windowEnd := windowStart.AddDate(0, 0, 1)
	dayMask := enums.WeekdaySet(0).With(windowStart.Weekday())

	// the window is half-open: start is in, end belongs to the next day
	atStart := windowStart
	onBoundary := newScheduledOrder(t, db, enums.ScheduleStatusScheduled, func(o *models.ScheduledOrder) {
		o.DeliveryDate = &atStart
	})
	atEnd := windowEnd
	newScheduledOrder(t, db, enums.ScheduleStatusScheduled, func(o *models.ScheduledOrder) {
		o.DeliveryDate = &atEnd
	})

	due, err := repo.FindDue(ctx, windowStart, windowEnd, dayMask)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, onBoundary.ID, due[0].ID)
}

func TestMarkQueuedSkipsAlreadyQueuedRows(t *testing.T) {
	db := setupSchedulesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	scheduled := newScheduledOrder(t, db, enums.ScheduleStatusScheduled, nil)
	queued := newScheduledOrder(t, db, enums.ScheduleStatusQueued, nil)
	cancelled := newScheduledOrder(t, db, enums.ScheduleStatusCancelled, nil)

	moved, err := repo.MarkQueued(ctx, []uuid.UUID{scheduled.ID, queued.ID, cancelled.ID}, now)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{scheduled.ID}, moved)

	var reloaded models.ScheduledOrder
	require.NoError(t, db.Where("id = ?", scheduled.ID).First(&reloaded).Error)
	assert.Equal(t, enums.ScheduleStatusQueued, reloaded.Status)
	require.NotNil(t, reloaded.QueuedAt)
}

func TestMarkQueuedEmptyIDs(t *testing.T) {
	db := setupSchedulesTestDB(t)
	repo := NewRepository(db)

	moved, err := repo.MarkQueued(context.Background(), nil, time.Now().UTC())
	require.NoError(t, err)
	assert.Empty(t, moved)
}

func TestTransitionGuardsSourceStatus(t *testing.T) {
	db := setupSchedulesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	order := newScheduledOrder(t, db, enums.ScheduleStatusQueued, nil)

	affected, err := repo.Transition(ctx, order.ID,
		[]enums.ScheduleStatus{enums.ScheduleStatusScheduled},
		enums.ScheduleStatusPaused, now)
	require.NoError(t, err)
	assert.Zero(t, affected)

	affected, err = repo.Transition(ctx, order.ID,
		[]enums.ScheduleStatus{enums.ScheduleStatusQueued},
		enums.ScheduleStatusDispatched, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	var reloaded models.ScheduledOrder
	require.NoError(t, db.Where("id = ?", order.ID).First(&reloaded).Error)
	assert.Equal(t, enums.ScheduleStatusDispatched, reloaded.Status)
	require.NotNil(t, reloaded.DispatchedAt)
}

func TestUpdateDeliveryDaysRejectsPinnedOrders(t *testing.T) {
	db := setupSchedulesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	pinnedDate := time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC)
	pinned := newScheduledOrder(t, db, enums.ScheduleStatusScheduled, func(o *models.ScheduledOrder) {
		o.DeliveryDate = &pinnedDate
	})
	recurring := newScheduledOrder(t, db, enums.ScheduleStatusScheduled, func(o *models.ScheduledOrder) {
		o.DeliveryDays = enums.WeekdaySet(0).With(time.Monday)
	})

	days := enums.WeekdaySet(0).With(time.Friday)

	affected, err := repo.UpdateDeliveryDays(ctx, pinned.ID, pinned.CustomerID, days)
	require.NoError(t, err)
	assert.Zero(t, affected)

	affected, err = repo.UpdateDeliveryDays(ctx, recurring.ID, recurring.CustomerID, days)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}
