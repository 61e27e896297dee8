package schedules

import (
	"time"

	"github.com/forkful/forkful-backend/pkg/db/models"
	"github.com/google/uuid"
)

// CreateItemParams is one requested line item on a new schedule.
type CreateItemParams struct {
	MenuItemID uuid.UUID
	Quantity   int
}

// CreateParams captures everything needed to create a scheduled order.
type CreateParams struct {
	CustomerID      uuid.UUID
	VendorID        uuid.UUID
	DeliveryDate    *time.Time
	DeliveryDays    []string
	TimeSlot        string
	DeliveryAddress string
	Note            string
	Items           []CreateItemParams
}

// ListParams configures customer-scoped schedule listing.
type ListParams struct {
	CustomerID uuid.UUID
	Limit      int
	Cursor     string
}

// ListResult wraps returned schedules and the cursor for the next page.
type ListResult struct {
	Items  []models.ScheduledOrder `json:"items"`
	Cursor string                  `json:"cursor"`
}

// UpdateDaysParams replaces the recurring weekday selection.
type UpdateDaysParams struct {
	CustomerID uuid.UUID
	ScheduleID uuid.UUID
	Days       []string
}
