package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "LEAVE_SUBMITTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used when reconstructing events
// from the wire; domain packages construct it through the helpers below.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event codes emitted by the backend.
const (
	TypeLeaveSubmitted    = "LEAVE_SUBMITTED"
	TypeLeaveStatusChange = "LEAVE_STATUS_CHANGED"
	TypeUserRegistered    = "USER_REGISTERED"
)

func NewLeaveSubmitted(requestID, studentID, leaveType string) Event {
	return BaseEvent{
		Type: TypeLeaveSubmitted,
		Data: map[string]interface{}{
			"entity_type": "leave_request",
			"entity_id":   requestID,
			"user_id":     studentID,
			"leave_type":  leaveType,
		},
		OccurredAt: time.Now(),
	}
}

func NewLeaveStatusChanged(requestID, studentID, leaveType, newStatus, actorID string) Event {
	return BaseEvent{
		Type: TypeLeaveStatusChange,
		Data: map[string]interface{}{
			"entity_type": "leave_request",
			"entity_id":   requestID,
			"user_id":     studentID,
			"leave_type":  leaveType,
			"new_status":  newStatus,
			"actor_id":    actorID,
		},
		OccurredAt: time.Now(),
	}
}

func NewUserRegistered(userID, email string) Event {
	return BaseEvent{
		Type: TypeUserRegistered,
		Data: map[string]interface{}{
			"user_id": userID,
			"email":   email,
		},
		OccurredAt: time.Now(),
	}
}
