package enums

import "fmt"

// ScheduleStatus tracks the lifecycle of a scheduled order.
type ScheduleStatus string

const (
	// ScheduleStatusScheduled is the initial state; the order is waiting
	// for its delivery day.
	ScheduleStatusScheduled ScheduleStatus = "scheduled"
	// ScheduleStatusQueued means the order was handed off for vendor
	// fulfillment by the dispatch run.
	ScheduleStatusQueued ScheduleStatus = "queued"
	// ScheduleStatusDispatched means the vendor accepted the queued order.
	ScheduleStatusDispatched ScheduleStatus = "dispatched"
	// ScheduleStatusPaused excludes the schedule from dispatch until resumed.
	ScheduleStatusPaused ScheduleStatus = "paused"
	// ScheduleStatusCancelled is terminal.
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
)

var validScheduleStatuses = []ScheduleStatus{
	ScheduleStatusScheduled,
	ScheduleStatusQueued,
	ScheduleStatusDispatched,
	ScheduleStatusPaused,
	ScheduleStatusCancelled,
}

// String implements fmt.Stringer.
func (s ScheduleStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ScheduleStatus.
func (s ScheduleStatus) IsValid() bool {
	for _, candidate := range validScheduleStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseScheduleStatus converts raw input into a ScheduleStatus.
func ParseScheduleStatus(value string) (ScheduleStatus, error) {
	for _, candidate := range validScheduleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid schedule status %q", value)
}
