package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/reimbursement-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventUserSuspensionChanged EventType = "user_suspension_changed"
)

// Actor identifies the caller that caused the event. UserID is zero when the
// caller is unknown.
type Actor struct {
	UserID int64       `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID int64     `json:"subject_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// NewEvent stamps a fresh id and the current UTC time.
func NewEvent(eventType EventType, subjectID int64, actor Actor, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	PurchaserID    int64   `json:"purchaser_id"`
	Amount         float64 `json:"amount"`
	AttachmentLink string  `json:"attachment_link"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	PurchaserID int64               `json:"purchaser_id"`
	OldStatus   domain.TicketStatus `json:"old_status"`
	NewStatus   domain.TicketStatus `json:"new_status"`
}

// UserSuspensionChangedPayload payload.
type UserSuspensionChangedPayload struct {
	Email     string `json:"email"`
	Suspended bool   `json:"suspended"`
}
