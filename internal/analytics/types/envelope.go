package types

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/forkful/forkful-backend/pkg/enums"
)

// Envelope is the analytics view of a dispatch event as it arrives from
// Pub/Sub. EventID is the dedupe key.
type Envelope struct {
	EventID       string                    `json:"event_id"`
	EventType     enums.OutboxEventType     `json:"event_type"`
	AggregateType enums.OutboxAggregateType `json:"aggregate_type"`
	AggregateID   string                    `json:"aggregate_id"`
	OccurredAt    time.Time                 `json:"occurred_at"`
	Payload       json.RawMessage           `json:"payload"`
}

// PayloadMap decodes the raw payload into a map. Empty or absent payloads
// decode to an empty map rather than an error.
func (e Envelope) PayloadMap() (map[string]any, error) {
	trimmed := bytes.TrimSpace(e.Payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string]any{}, nil
	}
	out := map[string]any{}
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, err
	}
	return out, nil
}
