package models

import (
	"time"

	"github.com/google/uuid"
)

// AlertCreatedEvent - событие в очереди рассылки. Сама рассылка берет данные
// из хранилища, событие лишь будит обработчик.
type AlertCreatedEvent struct {
	AlertID    uuid.UUID `json:"alert_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DeliveryReport - итог рассылки по одному сообщению
type DeliveryReport struct {
	AlertID   uuid.UUID `json:"alert_id"`
	Attempted int       `json:"attempted"`
	Delivered int       `json:"delivered"`
	Failed    int       `json:"failed"`
	Skipped   bool      `json:"skipped,omitempty"`
}
