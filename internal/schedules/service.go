package schedules

import (
	"context"
	"time"

	"github.com/forkful/forkful-backend/pkg/db/models"
	"github.com/forkful/forkful-backend/pkg/enums"
	pkgerrors "github.com/forkful/forkful-backend/pkg/errors"
	"github.com/forkful/forkful-backend/pkg/pagination"
	"github.com/google/uuid"
)

// Service defines customer-facing schedule lifecycle operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.ScheduledOrder, error)
	Get(ctx context.Context, customerID, scheduleID uuid.UUID) (*models.ScheduledOrder, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Pause(ctx context.Context, customerID, scheduleID uuid.UUID) error
	Resume(ctx context.Context, customerID, scheduleID uuid.UUID) error
	UpdateDays(ctx context.Context, params UpdateDaysParams) (*models.ScheduledOrder, error)
	Cancel(ctx context.Context, customerID, scheduleID uuid.UUID) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires schedules dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "schedules repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.ScheduledOrder, error) {
	if params.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if params.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	if params.TimeSlot == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "time slot required")
	}
	if params.DeliveryAddress == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address required")
	}
	if len(params.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}

	// A schedule targets a single date or a recurring weekday set, never both.
	if params.DeliveryDate != nil && len(params.DeliveryDays) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery date and delivery days are mutually exclusive")
	}
	if params.DeliveryDate == nil && len(params.DeliveryDays) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery date or delivery days required")
	}

	var days enums.WeekdaySet
	if len(params.DeliveryDays) > 0 {
		parsed, err := enums.WeekdaySetFromNames(params.DeliveryDays)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery days")
		}
		days = parsed
	}

	itemIDs := make([]uuid.UUID, 0, len(params.Items))
	quantities := make(map[uuid.UUID]int, len(params.Items))
	for _, item := range params.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if _, dup := quantities[item.MenuItemID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate menu item")
		}
		itemIDs = append(itemIDs, item.MenuItemID)
		quantities[item.MenuItemID] = item.Quantity
	}

	menuItems, err := s.repo.FindMenuItems(ctx, params.VendorID, itemIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu items")
	}
	if len(menuItems) != len(itemIDs) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown menu item for vendor")
	}

	var totalCents int64
	orderItems := make([]models.ScheduledOrderItem, 0, len(menuItems))
	for _, menuItem := range menuItems {
		if !menuItem.Available {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "menu item not available")
		}
		qty := quantities[menuItem.ID]
		unitCents := menuItem.PriceCents()
		totalCents += unitCents * int64(qty)
		orderItems = append(orderItems, models.ScheduledOrderItem{
			MenuItemID:     menuItem.ID,
			Quantity:       qty,
			UnitPriceCents: unitCents,
		})
	}

	order := &models.ScheduledOrder{
		CustomerID:      params.CustomerID,
		VendorID:        params.VendorID,
		Status:          enums.ScheduleStatusScheduled,
		DeliveryDate:    params.DeliveryDate,
		DeliveryDays:    days,
		TimeSlot:        params.TimeSlot,
		DeliveryAddress: params.DeliveryAddress,
		Note:            params.Note,
		TotalCents:      totalCents,
		Items:           orderItems,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create scheduled order")
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, customerID, scheduleID uuid.UUID) (*models.ScheduledOrder, error) {
	order, err := s.ownedSchedule(ctx, customerID, scheduleID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}

	query := ListQuery{
		CustomerID: params.CustomerID,
		Limit:      params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListByCustomer(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list schedules")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) Pause(ctx context.Context, customerID, scheduleID uuid.UUID) error {
	return s.transitionOwned(ctx, customerID, scheduleID,
		[]enums.ScheduleStatus{enums.ScheduleStatusScheduled},
		enums.ScheduleStatusPaused,
		"only scheduled orders can be paused")
}

func (s *service) Resume(ctx context.Context, customerID, scheduleID uuid.UUID) error {
	return s.transitionOwned(ctx, customerID, scheduleID,
		[]enums.ScheduleStatus{enums.ScheduleStatusPaused},
		enums.ScheduleStatusScheduled,
		"only paused orders can be resumed")
}

func (s *service) Cancel(ctx context.Context, customerID, scheduleID uuid.UUID) error {
	return s.transitionOwned(ctx, customerID, scheduleID,
		[]enums.ScheduleStatus{
			enums.ScheduleStatusScheduled,
			enums.ScheduleStatusPaused,
			enums.ScheduleStatusQueued,
		},
		enums.ScheduleStatusCancelled,
		"order can no longer be cancelled")
}

func (s *service) UpdateDays(ctx context.Context, params UpdateDaysParams) (*models.ScheduledOrder, error) {
	if params.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if params.ScheduleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "schedule id required")
	}
	if len(params.Days) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one delivery day required")
	}

	days, err := enums.WeekdaySetFromNames(params.Days)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery days")
	}

	affected, err := s.repo.UpdateDeliveryDays(ctx, params.ScheduleID, params.CustomerID, days)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery days")
	}
	if affected == 0 {
		// Either not found, not owned, date-pinned, or already past queueing.
		if _, lookupErr := s.ownedSchedule(ctx, params.CustomerID, params.ScheduleID); lookupErr != nil {
			return nil, lookupErr
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "delivery days cannot be changed for this order")
	}
	return s.ownedSchedule(ctx, params.CustomerID, params.ScheduleID)
}

func (s *service) transitionOwned(ctx context.Context, customerID, scheduleID uuid.UUID, from []enums.ScheduleStatus, to enums.ScheduleStatus, conflictMsg string) error {
	if customerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if scheduleID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "schedule id required")
	}

	if _, err := s.ownedSchedule(ctx, customerID, scheduleID); err != nil {
		return err
	}

	affected, err := s.repo.Transition(ctx, scheduleID, from, to, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update schedule status")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, conflictMsg)
	}
	return nil
}

func (s *service) ownedSchedule(ctx context.Context, customerID, scheduleID uuid.UUID) (*models.ScheduledOrder, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if scheduleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "schedule id required")
	}

	order, err := s.repo.Get(ctx, scheduleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "schedule not found")
	}
	if order.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "schedule not found")
	}
	return order, nil
}
