package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/forkful/forkful-backend/internal/schedules"
	"github.com/forkful/forkful-backend/pkg/db/models"
	"github.com/forkful/forkful-backend/pkg/enums"
	pkgerrors "github.com/forkful/forkful-backend/pkg/errors"
	"github.com/forkful/forkful-backend/pkg/logger"
	"github.com/forkful/forkful-backend/pkg/metrics"
	"github.com/forkful/forkful-backend/pkg/outbox"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	defaultNotifyConcurrency = 8
	defaultNotifyTimeout     = 10 * time.Second
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Params wires the dispatch service dependencies.
type Params struct {
	Repo              schedules.Repository
	Tx                txRunner
	Outbox            eventEmitter
	Notifier          Notifier
	Logger            *logger.Logger
	Metrics           *metrics.DispatchMetrics
	Location          *time.Location
	NotifyConcurrency int
	NotifyTimeout     time.Duration
}

// Service runs the daily dispatch: queue tomorrow's orders, then tell vendors.
type Service struct {
	repo              schedules.Repository
	tx                txRunner
	outbox            eventEmitter
	notifier          Notifier
	logg              *logger.Logger
	metrics           *metrics.DispatchMetrics
	location          *time.Location
	notifyConcurrency int
	notifyTimeout     time.Duration
}

// Result summarizes one dispatch run.
type Result struct {
	RunID          uuid.UUID `json:"run_id"`
	WindowStart    time.Time `json:"window_start"`
	WindowEnd      time.Time `json:"window_end"`
	Due            int       `json:"due"`
	Queued         int64     `json:"queued"`
	Notified       int       `json:"notified"`
	NotifyFailures int       `json:"notify_failures"`
}

type runSummary struct {
	RunID       string `json:"run_id"`
	WindowStart string `json:"window_start"`
	WindowEnd   string `json:"window_end"`
	Queued      int64  `json:"queued"`
}

type queuedEventData struct {
	OrderID     string `json:"order_id"`
	VendorID    string `json:"vendor_id"`
	RunID       string `json:"run_id"`
	WindowStart string `json:"window_start"`
}

type dispatchedEventData struct {
	OrderID      string `json:"order_id"`
	VendorID     string `json:"vendor_id"`
	DispatchedAt string `json:"dispatched_at"`
}

// NewService validates and wires dispatch dependencies.
func NewService(params Params) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("schedules repository is required")
	}
	if params.Tx == nil {
		return nil, errors.New("transaction runner is required")
	}
	if params.Outbox == nil {
		return nil, errors.New("outbox emitter is required")
	}
	if params.Notifier == nil {
		return nil, errors.New("notifier is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}

	location := params.Location
	if location == nil {
		location = time.UTC
	}
	concurrency := params.NotifyConcurrency
	if concurrency <= 0 {
		concurrency = defaultNotifyConcurrency
	}
	timeout := params.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}

	return &Service{
		repo:              params.Repo,
		tx:                params.Tx,
		outbox:            params.Outbox,
		notifier:          params.Notifier,
		logg:              params.Logger,
		metrics:           params.Metrics,
		location:          location,
		notifyConcurrency: concurrency,
		notifyTimeout:     timeout,
	}, nil
}

// Window returns the dispatch window for a run at the given instant: the
// full calendar day after "now" in the service's timezone.
func (s *Service) Window(now time.Time) (time.Time, time.Time) {
	local := now.In(s.location)
	tomorrow := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location).
		AddDate(0, 0, 1)
	return tomorrow, tomorrow.AddDate(0, 0, 1)
}

// RunDailyDispatch queues every schedule due in tomorrow's window and then
// notifies the owning vendor once per order this run actually queued.
// Queueing happens inside one transaction so a store failure leaves nothing
// half-moved; notifications run after commit and their failures are logged,
// never escalated. Rows a concurrent run already queued, or that raced into
// pause or cancel, are absent from MarkQueued's result and get no event and
// no notification, so overlapping runs never double-notify a vendor.
func (s *Service) RunDailyDispatch(ctx context.Context, now time.Time) (*Result, error) {
	started := time.Now()
	runID := uuid.New()
	windowStart, windowEnd := s.Window(now)
	dayMask := enums.WeekdaySet(0).With(windowStart.Weekday())

	ctx = s.logg.WithFields(ctx, map[string]any{
		"run_id":       runID.String(),
		"window_start": windowStart.Format(time.RFC3339),
		"window_end":   windowEnd.Format(time.RFC3339),
	})

	var due []models.ScheduledOrder
	var queuedOrders []models.ScheduledOrder

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		orders, err := repo.FindDue(ctx, windowStart, windowEnd, dayMask)
		if err != nil {
			return err
		}
		due = orders
		queuedOrders = nil
		if len(orders) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(orders))
		for _, order := range orders {
			ids = append(ids, order.ID)
		}

		queuedIDs, err := repo.MarkQueued(ctx, ids, now.UTC())
		if err != nil {
			return err
		}

		queuedSet := make(map[uuid.UUID]struct{}, len(queuedIDs))
		for _, id := range queuedIDs {
			queuedSet[id] = struct{}{}
		}
		for _, order := range orders {
			if _, ok := queuedSet[order.ID]; ok {
				queuedOrders = append(queuedOrders, order)
			}
		}

		for _, order := range queuedOrders {
			event := outbox.DomainEvent{
				EventType:     enums.EventOrderQueued,
				AggregateType: enums.AggregateScheduledOrder,
				AggregateID:   order.ID,
				Version:       1,
				Data: queuedEventData{
					OrderID:     order.ID.String(),
					VendorID:    order.VendorID.String(),
					RunID:       runID.String(),
					WindowStart: windowStart.Format(time.RFC3339),
				},
			}
			if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
				return err
			}
		}

		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDispatchRun,
			AggregateType: enums.AggregateDispatchRun,
			AggregateID:   runID,
			Version:       1,
			Data: runSummary{
				RunID:       runID.String(),
				WindowStart: windowStart.Format(time.RFC3339),
				WindowEnd:   windowEnd.Format(time.RFC3339),
				Queued:      int64(len(queuedOrders)),
			},
		})
	})
	if err != nil {
		// Fail closed: nothing was queued, no vendor hears about this run.
		return nil, err
	}

	queued := int64(len(queuedOrders))
	if queued != int64(len(due)) {
		s.logg.Warn(s.logg.WithField(ctx, "skipped", int64(len(due))-queued),
			"some due orders were already queued by another run")
	}

	s.metrics.AddQueued(int(queued))

	notified, failures := s.notifyVendors(ctx, queuedOrders, windowStart)

	s.metrics.ObserveRun(time.Since(started))
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"due":             len(due),
		"queued":          queued,
		"notified":        notified,
		"notify_failures": failures,
	}), "dispatch run completed")

	return &Result{
		RunID:          runID,
		WindowStart:    windowStart,
		WindowEnd:      windowEnd,
		Due:            len(due),
		Queued:         queued,
		Notified:       notified,
		NotifyFailures: failures,
	}, nil
}

// AcceptOrder moves a queued order to dispatched on behalf of its vendor.
// The status change and the handoff event commit together.
func (s *Service) AcceptOrder(ctx context.Context, vendorID, orderID uuid.UUID) (*models.ScheduledOrder, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	now := time.Now().UTC()
	var accepted *models.ScheduledOrder

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.Get(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "scheduled order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load scheduled order")
		}
		if order.VendorID != vendorID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "scheduled order not found")
		}

		affected, err := repo.Transition(ctx, orderID,
			[]enums.ScheduleStatus{enums.ScheduleStatusQueued},
			enums.ScheduleStatusDispatched, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dispatch scheduled order")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not queued")
		}

		order.Status = enums.ScheduleStatusDispatched
		order.DispatchedAt = &now
		accepted = order

		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderDispatched,
			AggregateType: enums.AggregateScheduledOrder,
			AggregateID:   orderID,
			Version:       1,
			Data: dispatchedEventData{
				OrderID:      orderID.String(),
				VendorID:     vendorID.String(),
				DispatchedAt: now.Format(time.RFC3339),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":  orderID.String(),
		"vendor_id": vendorID.String(),
	}), "order dispatched by vendor")

	return accepted, nil
}

// notifyVendors fans the queued orders out to the notifier with bounded
// concurrency. Each call gets its own timeout; a failed call is counted and
// logged but never stops the others.
func (s *Service) notifyVendors(ctx context.Context, orders []models.ScheduledOrder, windowStart time.Time) (int, int) {
	if len(orders) == 0 {
		return 0, 0
	}

	var mu sync.Mutex
	notified := 0
	failures := 0

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.notifyConcurrency)

	for _, order := range orders {
		order := order
		group.Go(func() error {
			callCtx, cancel := context.WithTimeout(groupCtx, s.notifyTimeout)
			defer cancel()

			callStart := time.Now()
			err := s.notifier.NotifyQueued(callCtx, order, windowStart)
			s.metrics.ObserveNotify(time.Since(callStart))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures++
				s.metrics.IncNotifyFailure()
				fields := map[string]any{
					"order_id":  order.ID.String(),
					"vendor_id": order.VendorID.String(),
				}
				s.logg.Error(s.logg.WithFields(ctx, fields), "vendor notification failed", err)
				return nil
			}
			notified++
			s.metrics.IncNotifySuccess()
			return nil
		})
	}

	_ = group.Wait()
	return notified, failures
}
