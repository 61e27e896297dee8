package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/forkful/forkful-backend/internal/dispatch"
	"github.com/forkful/forkful-backend/pkg/db/models"
	"github.com/forkful/forkful-backend/pkg/enums"
	"github.com/forkful/forkful-backend/pkg/logger"
	"github.com/forkful/forkful-backend/pkg/outbox/idempotency"
	"github.com/google/uuid"
)

const queuedOrderConsumer = "vendor-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer watches vendor events and turns queued orders into dashboard
// notifications.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a queued-order notification consumer.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("vendor subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	}
	logCtx := c.logg.WithFields(ctx, fields)

	if eventType != string(enums.NotificationTypeOrderQueued) {
		c.logg.Info(logCtx, "skipping unrelated event")
		return processResult{ack: true}
	}

	var payload dispatch.QueuedOrderMessage
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		c.logg.Error(logCtx, "failed to decode queued order payload", err)
		return processResult{ack: true}
	}

	orderID, err := uuid.Parse(payload.OrderID)
	if err != nil {
		c.logg.Error(logCtx, "invalid order id", err)
		return processResult{ack: true}
	}
	vendorID, err := uuid.Parse(payload.VendorID)
	if err != nil {
		c.logg.Error(logCtx, "invalid vendor id", err)
		return processResult{ack: true}
	}

	// Redeliveries and dispatch retries collapse to one notification per order.
	already, err := c.idempotency.CheckAndMarkProcessed(ctx, queuedOrderConsumer, orderID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "order already notified")
		return processResult{ack: true}
	}

	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"order_id":  payload.OrderID,
		"vendor_id": payload.VendorID,
	})

	if err := c.createNotification(ctx, vendorID, payload, msg.Data); err != nil {
		c.logg.Error(logCtx, "notification creation failed", err)
		_ = c.idempotency.Delete(ctx, queuedOrderConsumer, orderID)
		return processResult{nack: true}
	}

	c.logg.Info(logCtx, "vendor notified of queued order")
	return processResult{ack: true}
}

func (c *Consumer) createNotification(ctx context.Context, vendorID uuid.UUID, payload dispatch.QueuedOrderMessage, raw []byte) error {
	body := fmt.Sprintf(
		"A scheduled order is queued for delivery on %s (%s): %d item(s), total %d cents.",
		payload.DeliveryDay, payload.TimeSlot, payload.ItemCount, payload.TotalCents,
	)
	notification := &models.Notification{
		VendorID: vendorID,
		Type:     enums.NotificationTypeOrderQueued,
		Title:    "New order queued",
		Body:     body,
		Payload:  json.RawMessage(raw),
	}
	return c.repo.Create(ctx, notification)
}
