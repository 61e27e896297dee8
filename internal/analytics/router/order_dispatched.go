package router

import (
	"context"
	"fmt"

	analyticspayloads "github.com/forkful/forkful-backend/internal/analytics/payloads"
	"github.com/forkful/forkful-backend/internal/analytics/types"
	analyticswriter "github.com/forkful/forkful-backend/internal/analytics/writer"
	"github.com/forkful/forkful-backend/pkg/logger"
)

type orderDispatchedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newOrderDispatchedHandler(writer Writer, logg *logger.Logger) Handler {
	return &orderDispatchedHandler{writer: writer, logg: logg}
}

func (h *orderDispatchedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*analyticspayloads.OrderDispatchedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for order_dispatched")
	}

	fields := map[string]any{
		"event_type": envelope.EventType,
		"order_id":   event.OrderID,
		"vendor_id":  event.VendorID,
	}
	logCtx := h.logg.WithFields(ctx, fields)

	payloadJSON, err := analyticswriter.EncodeJSON(event)
	if err != nil {
		h.logg.Error(logCtx, "failed to encode dispatched payload", err)
		return err
	}

	row := types.DispatchEventRow{
		EventID:       envelope.EventID,
		EventType:     string(envelope.EventType),
		AggregateType: string(envelope.AggregateType),
		AggregateID:   envelope.AggregateID,
		OccurredAt:    envelope.OccurredAt,
		OrderID:       stringPtr(event.OrderID),
		VendorID:      stringPtr(event.VendorID),
		Payload:       payloadJSON,
	}

	if err := h.writer.InsertDispatchEvent(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert dispatch event row", err)
		return err
	}

	h.logg.Info(logCtx, "order_dispatched handler inserted dispatch event row")
	return nil
}
