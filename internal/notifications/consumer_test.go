package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/forkful/forkful-backend/internal/dispatch"
	"github.com/forkful/forkful-backend/pkg/db/models"
	"github.com/forkful/forkful-backend/pkg/logger"
	"github.com/forkful/forkful-backend/pkg/outbox/idempotency"
	"github.com/google/uuid"
)

type stubRepo struct {
	created []*models.Notification
	err     error
}

func (s *stubRepo) Create(ctx context.Context, notification *models.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, notification)
	return nil
}

type stubIdempotencyStore struct {
	keys map[string]bool
}

func newStubIdempotencyStore() *stubIdempotencyStore {
	return &stubIdempotencyStore{keys: map[string]bool{}}
}

func (s *stubIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	return "", nil
}

func (s *stubIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *stubIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "fk:idempotency:" + scope + ":" + id
}

func (s *stubIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.keys, key)
	}
	return nil
}

func buildQueuedMessage(t *testing.T, orderID, vendorID uuid.UUID) *pubsub.Message {
	t.Helper()
	payload := dispatch.QueuedOrderMessage{
		OrderID:         orderID.String(),
		VendorID:        vendorID.String(),
		CustomerID:      uuid.NewString(),
		TimeSlot:        "12:00-13:00",
		DeliveryAddress: "1 Main St",
		DeliveryDay:     "2026-09-01",
		ItemCount:       2,
		TotalCents:      2825,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_type": "order_queued",
			"order_id":   payload.OrderID,
			"vendor_id":  payload.VendorID,
		},
	}
}

func testConsumer(t *testing.T, repo *stubRepo) *Consumer {
	t.Helper()
	manager, err := idempotency.NewManager(newStubIdempotencyStore(), time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	consumer, err := NewConsumer(repo, &pubsub.Subscriber{}, manager, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}
	return consumer
}

func TestConsumerCreatesOneNotificationPerOrder(t *testing.T) {
	repo := &stubRepo{}
	consumer := testConsumer(t, repo)
	orderID := uuid.New()
	vendorID := uuid.New()
	msg := buildQueuedMessage(t, orderID, vendorID)

	result := consumer.process(context.Background(), msg)
	if !result.ack || result.nack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(repo.created))
	}
	if repo.created[0].VendorID != vendorID {
		t.Fatal("notification bound to wrong vendor")
	}

	// redelivery of the same order is acked without a second row
	result = consumer.process(context.Background(), buildQueuedMessage(t, orderID, vendorID))
	if !result.ack {
		t.Fatal("redelivery should be acked")
	}
	if len(repo.created) != 1 {
		t.Fatalf("redelivery must not create another notification, got %d", len(repo.created))
	}
}

func TestConsumerAcksUnrelatedEvents(t *testing.T) {
	repo := &stubRepo{}
	consumer := testConsumer(t, repo)

	msg := &pubsub.Message{
		Data:       []byte("{}"),
		Attributes: map[string]string{"event_type": "menu_updated"},
	}
	result := consumer.process(context.Background(), msg)
	if !result.ack {
		t.Fatal("unrelated events should be acked")
	}
	if len(repo.created) != 0 {
		t.Fatal("no notification expected")
	}
}

func TestConsumerAcksMalformedPayload(t *testing.T) {
	repo := &stubRepo{}
	consumer := testConsumer(t, repo)

	msg := &pubsub.Message{
		Data:       []byte("{not json"),
		Attributes: map[string]string{"event_type": "order_queued"},
	}
	result := consumer.process(context.Background(), msg)
	if !result.ack {
		t.Fatal("malformed payloads are poison; ack them")
	}
}

func TestConsumerNacksAndRetriesOnRepoFailure(t *testing.T) {
	repo := &stubRepo{err: errors.New("insert failed")}
	consumer := testConsumer(t, repo)
	orderID := uuid.New()

	result := consumer.process(context.Background(), buildQueuedMessage(t, orderID, uuid.New()))
	if !result.nack {
		t.Fatal("expected nack on repo failure")
	}

	// the idempotency marker must be cleared so the redelivery can succeed
	repo.err = nil
	result = consumer.process(context.Background(), buildQueuedMessage(t, orderID, uuid.New()))
	if !result.ack {
		t.Fatal("expected redelivery to succeed after repo recovers")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 notification after retry, got %d", len(repo.created))
	}
}
