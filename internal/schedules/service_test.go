package schedules

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/forkful/forkful-backend/pkg/db/models"
	"github.com/forkful/forkful-backend/pkg/enums"
	pkgerrors "github.com/forkful/forkful-backend/pkg/errors"
	"github.com/forkful/forkful-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeRepo struct {
	menuItems []models.MenuItem
	orders    map[uuid.UUID]*models.ScheduledOrder

	created          *models.ScheduledOrder
	transitionResult int64
	transitionTo     enums.ScheduleStatus
	updateDaysResult int64
	lastDays         enums.WeekdaySet
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: map[uuid.UUID]*models.ScheduledOrder{}}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, order *models.ScheduledOrder) error {
	order.ID = uuid.New()
	f.created = order
	f.orders[order.ID] = order
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, id uuid.UUID) (*models.ScheduledOrder, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (f *fakeRepo) ListByCustomer(ctx context.Context, params ListQuery) ([]models.ScheduledOrder, *pagination.Cursor, error) {
	var rows []models.ScheduledOrder
	for _, order := range f.orders {
		if order.CustomerID == params.CustomerID {
			rows = append(rows, *order)
		}
	}
	return rows, nil, nil
}

func (f *fakeRepo) FindMenuItems(ctx context.Context, vendorID uuid.UUID, ids []uuid.UUID) ([]models.MenuItem, error) {
	var matched []models.MenuItem
	for _, item := range f.menuItems {
		if item.VendorID != vendorID {
			continue
		}
		for _, id := range ids {
			if item.ID == id {
				matched = append(matched, item)
			}
		}
	}
	return matched, nil
}

func (f *fakeRepo) FindDue(ctx context.Context, windowStart, windowEnd time.Time, days enums.WeekdaySet) ([]models.ScheduledOrder, error) {
	return nil, nil
}

func (f *fakeRepo) MarkQueued(ctx context.Context, ids []uuid.UUID, now time.Time) ([]uuid.UUID, error) {
	return nil, nil
}

func (f *fakeRepo) Transition(ctx context.Context, id uuid.UUID, from []enums.ScheduleStatus, to enums.ScheduleStatus, now time.Time) (int64, error) {
	f.transitionTo = to
	return f.transitionResult, nil
}

func (f *fakeRepo) UpdateDeliveryDays(ctx context.Context, id, customerID uuid.UUID, days enums.WeekdaySet) (int64, error) {
	f.lastDays = days
	return f.updateDaysResult, nil
}

func newMenuItem(vendorID uuid.UUID, price string, available bool) models.MenuItem {
	return models.MenuItem{
		ID:        uuid.New(),
		VendorID:  vendorID,
		Name:      "test item",
		Category:  "mains",
		Price:     decimal.RequireFromString(price),
		Available: available,
	}
}

func TestCreateComputesTotalFromMenuPrices(t *testing.T) {
	repo := newFakeRepo()
	vendorID := uuid.New()
	itemA := newMenuItem(vendorID, "12.50", true)
	itemB := newMenuItem(vendorID, "3.25", true)
	repo.menuItems = []models.MenuItem{itemA, itemB}

	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	order, err := svc.Create(context.Background(), CreateParams{
		CustomerID:      uuid.New(),
		VendorID:        vendorID,
		DeliveryDays:    []string{"monday", "thursday"},
		TimeSlot:        "12:00-13:00",
		DeliveryAddress: "1 Main St",
		Items: []CreateItemParams{
			{MenuItemID: itemA.ID, Quantity: 2},
			{MenuItemID: itemB.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 2 * 1250 + 1 * 325
	if order.TotalCents != 2825 {
		t.Fatalf("expected total 2825, got %d", order.TotalCents)
	}
	if order.Status != enums.ScheduleStatusScheduled {
		t.Fatalf("expected scheduled status, got %s", order.Status)
	}
	if !order.DeliveryDays.Has(time.Monday) || !order.DeliveryDays.Has(time.Thursday) {
		t.Fatalf("delivery days not stored: %s", order.DeliveryDays)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}
}

func TestCreateRejectsDateAndDaysTogether(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := NewService(repo)

	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), CreateParams{
		CustomerID:      uuid.New(),
		VendorID:        uuid.New(),
		DeliveryDate:    &date,
		DeliveryDays:    []string{"monday"},
		TimeSlot:        "12:00-13:00",
		DeliveryAddress: "1 Main St",
		Items:           []CreateItemParams{{MenuItemID: uuid.New(), Quantity: 1}},
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateRejectsUnknownMenuItem(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := NewService(repo)

	_, err := svc.Create(context.Background(), CreateParams{
		CustomerID:      uuid.New(),
		VendorID:        uuid.New(),
		DeliveryDays:    []string{"monday"},
		TimeSlot:        "12:00-13:00",
		DeliveryAddress: "1 Main St",
		Items:           []CreateItemParams{{MenuItemID: uuid.New(), Quantity: 1}},
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateRejectsUnavailableMenuItem(t *testing.T) {
	repo := newFakeRepo()
	vendorID := uuid.New()
	item := newMenuItem(vendorID, "9.99", false)
	repo.menuItems = []models.MenuItem{item}
	svc, _ := NewService(repo)

	_, err := svc.Create(context.Background(), CreateParams{
		CustomerID:      uuid.New(),
		VendorID:        vendorID,
		DeliveryDays:    []string{"friday"},
		TimeSlot:        "18:00-19:00",
		DeliveryAddress: "1 Main St",
		Items:           []CreateItemParams{{MenuItemID: item.ID, Quantity: 1}},
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestPauseOnlyFromScheduled(t *testing.T) {
	repo := newFakeRepo()
	customerID := uuid.New()
	order := &models.ScheduledOrder{
		ID:         uuid.New(),
		CustomerID: customerID,
		Status:     enums.ScheduleStatusQueued,
	}
	repo.orders[order.ID] = order
	repo.transitionResult = 0
	svc, _ := NewService(repo)

	err := svc.Pause(context.Background(), customerID, order.ID)
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestPauseAndResumeHappyPath(t *testing.T) {
	repo := newFakeRepo()
	customerID := uuid.New()
	order := &models.ScheduledOrder{
		ID:         uuid.New(),
		CustomerID: customerID,
		Status:     enums.ScheduleStatusScheduled,
	}
	repo.orders[order.ID] = order
	repo.transitionResult = 1
	svc, _ := NewService(repo)

	if err := svc.Pause(context.Background(), customerID, order.ID); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if repo.transitionTo != enums.ScheduleStatusPaused {
		t.Fatalf("expected paused transition, got %s", repo.transitionTo)
	}

	if err := svc.Resume(context.Background(), customerID, order.ID); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if repo.transitionTo != enums.ScheduleStatusScheduled {
		t.Fatalf("expected scheduled transition, got %s", repo.transitionTo)
	}
}

func TestCancelHidesOtherCustomersSchedules(t *testing.T) {
	repo := newFakeRepo()
	order := &models.ScheduledOrder{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		Status:     enums.ScheduleStatusScheduled,
	}
	repo.orders[order.ID] = order
	repo.transitionResult = 1
	svc, _ := NewService(repo)

	err := svc.Cancel(context.Background(), uuid.New(), order.ID)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestUpdateDaysRejectsInvalidNames(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := NewService(repo)

	_, err := svc.UpdateDays(context.Background(), UpdateDaysParams{
		CustomerID: uuid.New(),
		ScheduleID: uuid.New(),
		Days:       []string{"someday"},
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateDaysStoresBitmask(t *testing.T) {
	repo := newFakeRepo()
	customerID := uuid.New()
	order := &models.ScheduledOrder{
		ID:         uuid.New(),
		CustomerID: customerID,
		Status:     enums.ScheduleStatusScheduled,
	}
	repo.orders[order.ID] = order
	repo.updateDaysResult = 1
	svc, _ := NewService(repo)

	updated, err := svc.UpdateDays(context.Background(), UpdateDaysParams{
		CustomerID: customerID,
		ScheduleID: order.ID,
		Days:       []string{"tuesday", "saturday"},
	})
	if err != nil {
		t.Fatalf("UpdateDays: %v", err)
	}
	if updated == nil {
		t.Fatal("expected updated schedule")
	}
	if !repo.lastDays.Has(time.Tuesday) || !repo.lastDays.Has(time.Saturday) {
		t.Fatalf("bitmask not passed through: %s", repo.lastDays)
	}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code(), err)
	}
}
