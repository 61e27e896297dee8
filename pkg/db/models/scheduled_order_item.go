package models

import (
	"time"

	"github.com/google/uuid"
)

// ScheduledOrderItem is a line item on a scheduled order. Unit price is
// captured at creation time so later menu changes do not reprice the order.
type ScheduledOrderItem struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ScheduledOrderID uuid.UUID `gorm:"column:scheduled_order_id;type:uuid;not null;index" json:"scheduled_order_id"`
	MenuItemID       uuid.UUID `gorm:"column:menu_item_id;type:uuid;not null" json:"menu_item_id"`

	Quantity       int   `gorm:"column:quantity;not null;default:1" json:"quantity"`
	UnitPriceCents int64 `gorm:"column:unit_price_cents;not null" json:"unit_price_cents"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ScheduledOrderItem) TableName() string {
	return "scheduled_order_items"
}
