package amqp

import (
	"encoding/json"
	"time"

	"github.com/gestiongastos/backend/internal/domain"
)

// NotificationMessage is the body published for every alert notification
type NotificationMessage struct {
	NotificationID string    `json:"notification_id"`
	AlertID        string    `json:"alert_id"`
	AlertName      string    `json:"alert_name"`
	OwnerID        string    `json:"owner_id"`
	Periodicity    string    `json:"periodicity"`
	Message        string    `json:"message"`
	Timestamp      time.Time `json:"timestamp"`
}

func NewNotificationMessage(n domain.Notification, source *domain.Alert) *NotificationMessage {
	return &NotificationMessage{
		NotificationID: n.ID.String(),
		AlertID:        source.ID.String(),
		AlertName:      source.Name,
		OwnerID:        source.OwnerID.String(),
		Periodicity:    string(source.Periodicity),
		Message:        n.Message,
		Timestamp:      n.Timestamp,
	}
}

func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
