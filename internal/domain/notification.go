package domain

// NotificationAction describes which appointment change a notification reports
type NotificationAction string

const (
	ActionNew       NotificationAction = "new"
	ActionUpdated   NotificationAction = "updated"
	ActionCancelled NotificationAction = "cancelled"
)
