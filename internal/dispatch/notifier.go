package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/forkful/forkful-backend/pkg/db/models"
)

// Notifier delivers the "order queued" signal to the vendor channel.
type Notifier interface {
	NotifyQueued(ctx context.Context, order models.ScheduledOrder, windowStart time.Time) error
}

// QueuedOrderMessage is the wire payload published for each queued order.
type QueuedOrderMessage struct {
	OrderID         string `json:"order_id"`
	VendorID        string `json:"vendor_id"`
	CustomerID      string `json:"customer_id"`
	TimeSlot        string `json:"time_slot"`
	DeliveryAddress string `json:"delivery_address"`
	DeliveryDay     string `json:"delivery_day"`
	ItemCount       int    `json:"item_count"`
	TotalCents      int64  `json:"total_cents"`
	Note            string `json:"note,omitempty"`
}

type publisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

// PubSubNotifier publishes queued-order messages to the vendor events topic.
type PubSubNotifier struct {
	pub publisher
}

// NewPubSubNotifier wraps a Pub/Sub publisher handle.
func NewPubSubNotifier(pub *gcppubsub.Publisher) (*PubSubNotifier, error) {
	if pub == nil {
		return nil, errors.New("vendor publisher is required")
	}
	return &PubSubNotifier{pub: &gcpPublisher{Publisher: pub}}, nil
}

func (n *PubSubNotifier) NotifyQueued(ctx context.Context, order models.ScheduledOrder, windowStart time.Time) error {
	payload := QueuedOrderMessage{
		OrderID:         order.ID.String(),
		VendorID:        order.VendorID.String(),
		CustomerID:      order.CustomerID.String(),
		TimeSlot:        order.TimeSlot,
		DeliveryAddress: order.DeliveryAddress,
		DeliveryDay:     windowStart.Format("2006-01-02"),
		ItemCount:       len(order.Items),
		TotalCents:      order.TotalCents,
		Note:            order.Note,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := &gcppubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_type": "order_queued",
			"order_id":   payload.OrderID,
			"vendor_id":  payload.VendorID,
		},
	}

	result := n.pub.Publish(ctx, msg)
	if result == nil {
		return errors.New("publisher returned nil result")
	}
	_, err = result.Get(ctx)
	return err
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}
