package router

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/forkful/forkful-backend/internal/analytics/types"
	"github.com/forkful/forkful-backend/pkg/enums"
	"github.com/forkful/forkful-backend/pkg/logger"
	"github.com/google/uuid"
)

func newTestRouter(t *testing.T, writer Writer) *Router {
	t.Helper()
	r, err := NewRouter(writer, logger.New(logger.Options{ServiceName: "router-test"}), nil)
	if err != nil {
		t.Fatalf("construct router: %v", err)
	}
	return r
}

func queuedEnvelope(t *testing.T, orderID, vendorID, runID string) types.Envelope {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"order_id":     orderID,
		"vendor_id":    vendorID,
		"run_id":       runID,
		"window_start": "2026-09-02T00:00:00-04:00",
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return types.Envelope{
		EventID:       uuid.NewString(),
		EventType:     enums.EventOrderQueued,
		AggregateType: enums.AggregateScheduledOrder,
		AggregateID:   orderID,
		OccurredAt:    time.Date(2026, 9, 1, 3, 0, 0, 0, time.UTC),
		Payload:       data,
	}
}

func TestRouterOrderQueuedRow(t *testing.T) {
	writer := &fakeWriter{}
	r := newTestRouter(t, writer)

	orderID := uuid.NewString()
	vendorID := uuid.NewString()
	runID := uuid.NewString()
	env := queuedEnvelope(t, orderID, vendorID, runID)

	if err := r.Handle(context.Background(), env); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(writer.inserted) != 1 {
		t.Fatalf("expected 1 row, got %d", len(writer.inserted))
	}
	row := writer.inserted[0]
	if row.EventType != string(enums.EventOrderQueued) {
		t.Fatalf("unexpected event type %s", row.EventType)
	}
	if row.OrderID == nil || *row.OrderID != orderID {
		t.Fatal("order id missing from row")
	}
	if row.VendorID == nil || *row.VendorID != vendorID {
		t.Fatal("vendor id missing from row")
	}
	if row.RunID == nil || *row.RunID != runID {
		t.Fatal("run id missing from row")
	}
	if row.WindowStart == nil {
		t.Fatal("window start missing from row")
	}
	if !row.Payload.Valid {
		t.Fatal("payload json should be valid")
	}
}

func TestRouterRunCompletedRow(t *testing.T) {
	writer := &fakeWriter{}
	r := newTestRouter(t, writer)

	runID := uuid.NewString()
	data, _ := json.Marshal(map[string]any{
		"run_id":       runID,
		"window_start": "2026-09-02T00:00:00Z",
		"window_end":   "2026-09-03T00:00:00Z",
		"queued":       12,
	})
	env := types.Envelope{
		EventID:       uuid.NewString(),
		EventType:     enums.EventDispatchRun,
		AggregateType: enums.AggregateDispatchRun,
		AggregateID:   runID,
		OccurredAt:    time.Now().UTC(),
		Payload:       data,
	}

	if err := r.Handle(context.Background(), env); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(writer.inserted) != 1 {
		t.Fatalf("expected 1 row, got %d", len(writer.inserted))
	}
	row := writer.inserted[0]
	if row.QueuedCount == nil || *row.QueuedCount != 12 {
		t.Fatal("queued count missing from row")
	}
	if row.WindowEnd == nil {
		t.Fatal("window end missing from row")
	}
	if row.OrderID != nil {
		t.Fatal("run summary rows carry no order id")
	}
}

func TestRouterOrderDispatchedRow(t *testing.T) {
	writer := &fakeWriter{}
	r := newTestRouter(t, writer)

	orderID := uuid.NewString()
	data, _ := json.Marshal(map[string]any{
		"order_id":      orderID,
		"vendor_id":     uuid.NewString(),
		"dispatched_at": "2026-09-02T10:00:00Z",
	})
	env := types.Envelope{
		EventID:       uuid.NewString(),
		EventType:     enums.EventOrderDispatched,
		AggregateType: enums.AggregateScheduledOrder,
		AggregateID:   orderID,
		OccurredAt:    time.Now().UTC(),
		Payload:       data,
	}

	if err := r.Handle(context.Background(), env); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(writer.inserted) != 1 {
		t.Fatalf("expected 1 row, got %d", len(writer.inserted))
	}
	if writer.inserted[0].OrderID == nil || *writer.inserted[0].OrderID != orderID {
		t.Fatal("order id missing from row")
	}
}

func TestRouterUnsupportedEvent(t *testing.T) {
	writer := &fakeWriter{}
	r := newTestRouter(t, writer)

	env := types.Envelope{
		EventID:   uuid.NewString(),
		EventType: enums.OutboxEventType("dispatch.unknown"),
		Payload:   json.RawMessage(`{}`),
	}
	err := r.Handle(context.Background(), env)
	if !errors.Is(err, ErrUnsupportedEventType) {
		t.Fatalf("expected ErrUnsupportedEventType, got %v", err)
	}
}

func TestRouterEmptyPayload(t *testing.T) {
	writer := &fakeWriter{}
	r := newTestRouter(t, writer)

	env := queuedEnvelope(t, uuid.NewString(), uuid.NewString(), uuid.NewString())
	env.Payload = nil
	if err := r.Handle(context.Background(), env); err == nil {
		t.Fatal("expected error for empty payload")
	}
}
