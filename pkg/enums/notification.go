package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeOrderQueued        NotificationType = "order_queued"
	NotificationTypeOrderCancelled     NotificationType = "order_cancelled"
	NotificationTypeSystemAnnouncement NotificationType = "system_announcement"
)

var notificationTypes = map[NotificationType]struct{}{
	NotificationTypeOrderQueued:        {},
	NotificationTypeOrderCancelled:     {},
	NotificationTypeSystemAnnouncement: {},
}

// IsValid reports whether the value is a known notification type.
func (n NotificationType) IsValid() bool {
	_, ok := notificationTypes[n]
	return ok
}

// ParseNotificationType converts a raw string into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	candidate := NotificationType(value)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid notification type %q", value)
	}
	return candidate, nil
}
