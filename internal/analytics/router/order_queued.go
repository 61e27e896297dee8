package router

import (
	"context"
	"fmt"

	analyticspayloads "github.com/forkful/forkful-backend/internal/analytics/payloads"
	"github.com/forkful/forkful-backend/internal/analytics/types"
	analyticswriter "github.com/forkful/forkful-backend/internal/analytics/writer"
	"github.com/forkful/forkful-backend/pkg/logger"
)

type orderQueuedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newOrderQueuedHandler(writer Writer, logg *logger.Logger) Handler {
	return &orderQueuedHandler{writer: writer, logg: logg}
}

func (h *orderQueuedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*analyticspayloads.OrderQueuedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for order_queued")
	}

	fields := map[string]any{
		"event_type": envelope.EventType,
		"order_id":   event.OrderID,
		"vendor_id":  event.VendorID,
		"run_id":     event.RunID,
	}
	logCtx := h.logg.WithFields(ctx, fields)

	row, err := buildOrderQueuedRow(envelope, event)
	if err != nil {
		h.logg.Error(logCtx, "failed to build dispatch event row", err)
		return err
	}

	if err := h.writer.InsertDispatchEvent(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert dispatch event row", err)
		return err
	}

	h.logg.Info(logCtx, "order_queued handler inserted dispatch event row")
	return nil
}

func buildOrderQueuedRow(envelope types.Envelope, event *analyticspayloads.OrderQueuedEvent) (types.DispatchEventRow, error) {
	payloadJSON, err := analyticswriter.EncodeJSON(event)
	if err != nil {
		return types.DispatchEventRow{}, fmt.Errorf("encode payload json: %w", err)
	}

	return types.DispatchEventRow{
		EventID:       envelope.EventID,
		EventType:     string(envelope.EventType),
		AggregateType: string(envelope.AggregateType),
		AggregateID:   envelope.AggregateID,
		OccurredAt:    envelope.OccurredAt,
		RunID:         stringPtr(event.RunID),
		OrderID:       stringPtr(event.OrderID),
		VendorID:      stringPtr(event.VendorID),
		WindowStart:   timePtr(event.WindowStart),
		Payload:       payloadJSON,
	}, nil
}
