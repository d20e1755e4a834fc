package models

import (
	"time"

	"github.com/google/uuid"
)

type ActionType string

const (
	ActionInvestigationStarted ActionType = "investigation_started"
	ActionSampleCollected      ActionType = "sample_collected"
	ActionTreatmentGiven       ActionType = "treatment_given"
	ActionResolved             ActionType = "resolved"
	ActionEscalated            ActionType = "escalated"
)

func (t ActionType) Valid() bool {
	switch t {
	case ActionInvestigationStarted, ActionSampleCollected, ActionTreatmentGiven, ActionResolved, ActionEscalated:
		return true
	}
	return false
}

const (
	MaxCommentLength           = 1000
	MaxActionDescriptionLength = 500
)

// Comment - запись в обсуждении сообщения, только добавляется
type Comment struct {
	ID        uuid.UUID `json:"id"`
	AlertID   uuid.UUID `json:"-"`
	Author    UserRef   `json:"user"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Action - действие ветеринара или администратора по сообщению, только добавляется
type Action struct {
	ID          uuid.UUID  `json:"id"`
	AlertID     uuid.UUID  `json:"-"`
	Type        ActionType `json:"type"`
	Description string     `json:"description,omitempty"`
	PerformedBy UserRef    `json:"performedBy"`
	PerformedAt time.Time  `json:"performedAt"`
}
