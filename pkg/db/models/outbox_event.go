package models

import (
	"encoding/json"
	"time"

	"github.com/forkful/forkful-backend/pkg/enums"
	"github.com/google/uuid"
)

// OutboxEvent is a pending domain event written in the same transaction as
// the state change it describes, then relayed to Pub/Sub by the publisher.
type OutboxEvent struct {
	ID uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`

	EventType     enums.OutboxEventType     `gorm:"column:event_type;type:varchar(60);not null" json:"event_type"`
	AggregateType enums.OutboxAggregateType `gorm:"column:aggregate_type;type:varchar(40);not null" json:"aggregate_type"`
	AggregateID   uuid.UUID                 `gorm:"column:aggregate_id;type:uuid;not null;index" json:"aggregate_id"`
	Payload       json.RawMessage           `gorm:"column:payload;type:jsonb;not null" json:"payload"`

	PublishedAt  *time.Time `gorm:"column:published_at;index" json:"published_at,omitempty"`
	AttemptCount int        `gorm:"column:attempt_count;not null;default:0" json:"attempt_count"`
	LastError    *string    `gorm:"column:last_error;type:text" json:"last_error,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}
