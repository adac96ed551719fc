package render

import (
	"github.com/Iron-Ham/sixhats/internal/dialogue"
	"github.com/Iron-Ham/sixhats/internal/event"
)

// Dispatch replays a bus event onto the matching sink callback. Events that
// are not session events are ignored.
func Dispatch(s dialogue.Sink, e event.Event) {
	switch ev := e.(type) {
	case event.SessionStartedEvent:
		s.OnHeader(ev.Topic)
	case event.HatTransitionEvent:
		s.OnHatTransition(ev.Hat)
	case event.MessageRecordedEvent:
		s.OnMessage(ev.Message)
	case event.SummaryPostedEvent:
		s.OnSummary(ev.Text)
	case event.SessionErrorEvent:
		s.OnError(ev.Error)
	case event.SessionCompletedEvent:
		s.OnFinalHistory(ev.History)
	}
}
