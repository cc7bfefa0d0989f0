package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeOrderPlaced    NotificationType = "order_placed"
	NotificationTypeOrderConfirmed NotificationType = "order_confirmed"
	NotificationTypeOrderRejected  NotificationType = "order_rejected"
	NotificationTypeOrderShipped   NotificationType = "order_shipped"
	NotificationTypeOrderCanceled  NotificationType = "order_canceled"
	NotificationTypeStockAlert     NotificationType = "stock_alert"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOrderPlaced,
	NotificationTypeOrderConfirmed,
	NotificationTypeOrderRejected,
	NotificationTypeOrderShipped,
	NotificationTypeOrderCanceled,
	NotificationTypeStockAlert,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
