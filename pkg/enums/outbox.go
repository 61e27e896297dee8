package enums

import "fmt"

// OutboxEventType names a domain event stored in outbox_events.
type OutboxEventType string

const (
	EventOrderQueued     OutboxEventType = "dispatch.order_queued"
	EventDispatchRun     OutboxEventType = "dispatch.run_completed"
	EventOrderDispatched OutboxEventType = "dispatch.order_dispatched"
)

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateScheduledOrder OutboxAggregateType = "scheduled_order"
	AggregateDispatchRun    OutboxAggregateType = "dispatch_run"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderQueued,
	EventDispatchRun,
	EventOrderDispatched,
}

var validOutboxAggregateTypes = []OutboxAggregateType{
	AggregateScheduledOrder,
	AggregateDispatchRun,
}

// ParseOutboxEventType converts raw strings into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

// ParseOutboxAggregateType converts raw strings into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validOutboxAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox aggregate type %q", value)
}
