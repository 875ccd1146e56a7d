package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered    EventType = "user_registered"
	EventUserLoggedIn      EventType = "user_logged_in"
	EventLoginFailed       EventType = "login_failed"
	EventQuizStatusChanged EventType = "quiz_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh ID and the current time.
func NewEvent(eventType EventType, subjectID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// LoginFailedPayload payload.
type LoginFailedPayload struct {
	Phone    string `json:"phone"`
	Reason   string `json:"reason"`
	Failures int    `json:"failures,omitempty"`
}

// QuizStatusChangedPayload payload.
type QuizStatusChangedPayload struct {
	Completed bool `json:"completed"`
}
