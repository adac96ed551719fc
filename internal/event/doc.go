// Package event provides a pub-sub event bus that decouples the dialogue
// orchestrator from the components that present its progress.
//
// The orchestrator reports through a presentation sink; [BusSink] implements
// that sink by publishing typed events. The console renderer, the terminal UI,
// the websocket stream, and the archive each subscribe independently.
//
// # Event Types
//
// Event types follow the pattern "category.action":
//   - session.started: [SessionStartedEvent], before the first hat
//   - hat.transition: [HatTransitionEvent], as each hat takes its turn
//   - message.recorded: [MessageRecordedEvent], after each message is stored
//   - summary.posted: [SummaryPostedEvent], blue hat summaries
//   - session.error: [SessionErrorEvent], the failure that ended a session
//   - session.completed: [SessionCompletedEvent], the final ordered history
//
// Every event carries the session ID via [SessionEvent].
//
// # Thread Safety
//
// [Bus] is safe for concurrent use. Handlers run synchronously on the
// publishing goroutine and are protected against panics: a panicking handler
// is logged and the remaining handlers still run.
//
// # Basic Usage
//
//	bus := event.NewBus()
//	bus.Subscribe(event.TypeMessageRecorded, func(e event.Event) {
//	    msg := e.(event.MessageRecordedEvent).Message
//	    fmt.Println(msg.ID, msg.Content)
//	})
//	sink := event.NewBusSink(bus, sessionID)
package event
