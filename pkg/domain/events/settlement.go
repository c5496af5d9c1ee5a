package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is implemented by everything published on the event bus.
type Event interface {
	Type() string
}

// Settled is published once a settlement operation has committed.
type Settled struct {
	EventID      uuid.UUID       `json:"event_id"`
	Kind         EventType       `json:"kind"`
	UserID       uuid.UUID       `json:"user_id"`
	SubjectID    uuid.UUID       `json:"subject_id"`
	Amount       decimal.Decimal `json:"amount"`
	Grams        decimal.Decimal `json:"grams"`
	Status       string          `json:"status,omitempty"`
	Spendable    decimal.Decimal `json:"spendable"`
	Withdrawable decimal.Decimal `json:"withdrawable"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

func (e Settled) Type() string { return e.Kind.String() }

// UserNotified carries a user-facing message to whatever delivers it.
type UserNotified struct {
	EventID    uuid.UUID `json:"event_id"`
	UserID     uuid.UUID `json:"user_id"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e UserNotified) Type() string { return EventTypeUserNotified.String() }
