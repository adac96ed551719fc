package event

import (
	"time"

	"github.com/Iron-Ham/sixhats/internal/hat"
)

// Event types published during an analysis session.
const (
	TypeSessionStarted   = "session.started"
	TypeHatTransition    = "hat.transition"
	TypeMessageRecorded  = "message.recorded"
	TypeSummaryPosted    = "summary.posted"
	TypeSessionError     = "session.error"
	TypeSessionCompleted = "session.completed"
)

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a "category.action" identifier.
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// SessionEvent is an Event scoped to one analysis session.
type SessionEvent interface {
	Event
	Session() string
}

type baseEvent struct {
	eventType string
	timestamp time.Time
	sessionID string
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }
func (e baseEvent) Session() string      { return e.sessionID }

func newBaseEvent(eventType, sessionID string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
		sessionID: sessionID,
	}
}

// SessionStartedEvent is emitted once, before the first hat speaks.
type SessionStartedEvent struct {
	baseEvent
	Topic string `json:"topic"`
}

// NewSessionStartedEvent creates a SessionStartedEvent.
func NewSessionStartedEvent(sessionID, topic string) SessionStartedEvent {
	return SessionStartedEvent{
		baseEvent: newBaseEvent(TypeSessionStarted, sessionID),
		Topic:     topic,
	}
}

// HatTransitionEvent is emitted when the traversal moves to the next hat.
type HatTransitionEvent struct {
	baseEvent
	Hat hat.ID `json:"hat"`
}

// NewHatTransitionEvent creates a HatTransitionEvent.
func NewHatTransitionEvent(sessionID string, id hat.ID) HatTransitionEvent {
	return HatTransitionEvent{
		baseEvent: newBaseEvent(TypeHatTransition, sessionID),
		Hat:       id,
	}
}

// MessageRecordedEvent carries a message right after it is recorded.
type MessageRecordedEvent struct {
	baseEvent
	Message hat.Message `json:"message"`
}

// NewMessageRecordedEvent creates a MessageRecordedEvent.
func NewMessageRecordedEvent(sessionID string, msg hat.Message) MessageRecordedEvent {
	return MessageRecordedEvent{
		baseEvent: newBaseEvent(TypeMessageRecorded, sessionID),
		Message:   msg,
	}
}

// SummaryPostedEvent carries the blue hat's summary of the discussion.
type SummaryPostedEvent struct {
	baseEvent
	Text string `json:"text"`
}

// NewSummaryPostedEvent creates a SummaryPostedEvent.
func NewSummaryPostedEvent(sessionID, text string) SummaryPostedEvent {
	return SummaryPostedEvent{
		baseEvent: newBaseEvent(TypeSummaryPosted, sessionID),
		Text:      text,
	}
}

// SessionErrorEvent reports the failure that ended a session early.
type SessionErrorEvent struct {
	baseEvent
	Error string `json:"error"`
}

// NewSessionErrorEvent creates a SessionErrorEvent.
func NewSessionErrorEvent(sessionID, text string) SessionErrorEvent {
	return SessionErrorEvent{
		baseEvent: newBaseEvent(TypeSessionError, sessionID),
		Error:     text,
	}
}

// SessionCompletedEvent carries the full ordered history once traversal ends,
// whether it finished or stopped on an error.
type SessionCompletedEvent struct {
	baseEvent
	History []hat.Message `json:"history"`
}

// NewSessionCompletedEvent creates a SessionCompletedEvent.
func NewSessionCompletedEvent(sessionID string, history []hat.Message) SessionCompletedEvent {
	return SessionCompletedEvent{
		baseEvent: newBaseEvent(TypeSessionCompleted, sessionID),
		History:   history,
	}
}
