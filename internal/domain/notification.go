package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is the immutable record of one alert trigger
type Notification struct {
	ID        uuid.UUID
	AlertID   uuid.UUID
	Timestamp time.Time
	Message   string
}

func (n Notification) String() string {
	return n.Timestamp.Format(time.RFC3339) + " - " + n.Message
}

// NotificationListener receives notifications synchronously from Alert.Evaluate
type NotificationListener interface {
	OnNotification(n Notification, source *Alert) error
}

// ListenerFunc adapts a plain function to NotificationListener
type ListenerFunc func(n Notification, source *Alert) error

func (f ListenerFunc) OnNotification(n Notification, source *Alert) error {
	return f(n, source)
}
