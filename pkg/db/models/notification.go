package models

import (
	"encoding/json"
	"time"

	"github.com/forkful/forkful-backend/pkg/enums"
	"github.com/google/uuid"
)

// Notification is an in-app message shown on the vendor dashboard.
type Notification struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	VendorID uuid.UUID `gorm:"column:vendor_id;type:uuid;not null;index" json:"vendor_id"`

	Type    enums.NotificationType `gorm:"column:type;type:varchar(40);not null" json:"type"`
	Title   string                 `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Body    string                 `gorm:"column:body;type:text;not null" json:"body"`
	Payload json.RawMessage        `gorm:"column:payload;type:jsonb" json:"payload,omitempty"`

	ReadAt *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
