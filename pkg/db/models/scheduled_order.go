package models

import (
	"time"

	"github.com/forkful/forkful-backend/pkg/enums"
	"github.com/google/uuid"
)

// ScheduledOrder is a customer's standing or one-off order scheduled for a
// future delivery day. Recurrence is expressed either as a concrete
// DeliveryDate or as a DeliveryDays weekday bitmask (never both).
type ScheduledOrder struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CustomerID uuid.UUID `gorm:"column:customer_id;type:uuid;not null;index" json:"customer_id"`
	VendorID   uuid.UUID `gorm:"column:vendor_id;type:uuid;not null;index" json:"vendor_id"`

	Status enums.ScheduleStatus `gorm:"column:status;type:varchar(20);not null;default:'scheduled';index" json:"status"`

	// DeliveryDate pins the order to a single calendar day. Nil means the
	// order recurs per DeliveryDays instead.
	DeliveryDate *time.Time       `gorm:"column:delivery_date;type:date" json:"delivery_date,omitempty"`
	DeliveryDays enums.WeekdaySet `gorm:"column:delivery_days;not null;default:0" json:"delivery_days"`

	// TimeSlot is a vendor-facing label like "12:00-13:00". It is carried
	// through to vendor notifications untouched.
	TimeSlot string `gorm:"column:time_slot;type:varchar(32);not null" json:"time_slot"`

	DeliveryAddress string `gorm:"column:delivery_address;type:text;not null" json:"delivery_address"`
	Note            string `gorm:"column:note;type:text" json:"note,omitempty"`

	TotalCents int64 `gorm:"column:total_cents;not null;default:0" json:"total_cents"`

	Items []ScheduledOrderItem `gorm:"foreignKey:ScheduledOrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`

	QueuedAt     *time.Time `gorm:"column:queued_at" json:"queued_at,omitempty"`
	DispatchedAt *time.Time `gorm:"column:dispatched_at" json:"dispatched_at,omitempty"`
	PausedAt     *time.Time `gorm:"column:paused_at" json:"paused_at,omitempty"`
	CancelledAt  *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ScheduledOrder) TableName() string {
	return "scheduled_orders"
}

// IsRecurring reports whether the order repeats on a weekday set rather than
// targeting a single date.
func (s *ScheduledOrder) IsRecurring() bool {
	return s.DeliveryDate == nil
}
