package router

import (
	"context"
	"fmt"

	analyticspayloads "github.com/forkful/forkful-backend/internal/analytics/payloads"
	"github.com/forkful/forkful-backend/internal/analytics/types"
	analyticswriter "github.com/forkful/forkful-backend/internal/analytics/writer"
	"github.com/forkful/forkful-backend/pkg/logger"
)

type runCompletedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newRunCompletedHandler(writer Writer, logg *logger.Logger) Handler {
	return &runCompletedHandler{writer: writer, logg: logg}
}

func (h *runCompletedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*analyticspayloads.RunCompletedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for run_completed")
	}

	fields := map[string]any{
		"event_type": envelope.EventType,
		"run_id":     event.RunID,
		"queued":     event.Queued,
	}
	logCtx := h.logg.WithFields(ctx, fields)

	payloadJSON, err := analyticswriter.EncodeJSON(event)
	if err != nil {
		h.logg.Error(logCtx, "failed to encode run payload", err)
		return err
	}

	row := types.DispatchEventRow{
		EventID:       envelope.EventID,
		EventType:     string(envelope.EventType),
		AggregateType: string(envelope.AggregateType),
		AggregateID:   envelope.AggregateID,
		OccurredAt:    envelope.OccurredAt,
		RunID:         stringPtr(event.RunID),
		WindowStart:   timePtr(event.WindowStart),
		WindowEnd:     timePtr(event.WindowEnd),
		QueuedCount:   int64Ptr(event.Queued),
		Payload:       payloadJSON,
	}

	if err := h.writer.InsertDispatchEvent(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert dispatch event row", err)
		return err
	}

	h.logg.Info(logCtx, "run_completed handler inserted dispatch event row")
	return nil
}
