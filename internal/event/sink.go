package event

import "github.com/Iron-Ham/sixhats/internal/hat"

// BusSink turns the orchestrator's presentation callbacks into events on a
// Bus, tagged with one session ID. Subscriber panics are contained by the
// Bus, so a broken renderer cannot disturb the analysis.
type BusSink struct {
	bus       *Bus
	sessionID string
}

// NewBusSink creates a sink that publishes onto bus for sessionID.
func NewBusSink(bus *Bus, sessionID string) *BusSink {
	return &BusSink{bus: bus, sessionID: sessionID}
}

// SessionID returns the session the sink publishes for.
func (s *BusSink) SessionID() string { return s.sessionID }

func (s *BusSink) OnHeader(topic string) {
	s.bus.Publish(NewSessionStartedEvent(s.sessionID, topic))
}

func (s *BusSink) OnHatTransition(id hat.ID) {
	s.bus.Publish(NewHatTransitionEvent(s.sessionID, id))
}

func (s *BusSink) OnMessage(msg hat.Message) {
	s.bus.Publish(NewMessageRecordedEvent(s.sessionID, msg))
}

func (s *BusSink) OnSummary(text string) {
	s.bus.Publish(NewSummaryPostedEvent(s.sessionID, text))
}

func (s *BusSink) OnError(text string) {
	s.bus.Publish(NewSessionErrorEvent(s.sessionID, text))
}

func (s *BusSink) OnFinalHistory(history []hat.Message) {
	s.bus.Publish(NewSessionCompletedEvent(s.sessionID, history))
}
