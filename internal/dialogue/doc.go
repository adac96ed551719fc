// Package dialogue runs Six Thinking Hats analysis sessions.
//
// An Orchestrator visits each hat of an ordered traversal, builds that hat's
// prompt, asks the completion service for a turn, and records the answer in a
// per-session hat.Registry. Two traversal modes exist:
//
//   - Batch mode: every hat sees only the topic. Messages never reply to one
//     another.
//   - Dialog mode: every hat also sees its own most recent messages, and each
//     new message replies to the chronologically last message of the session.
//
// Whenever the blue hat takes a turn after others have spoken, it first asks
// the completion service for a new focus built from the original topic and
// the last few messages. A failed re-focus is logged and the original topic
// is used instead. A failed main turn stops the traversal; the messages
// recorded so far are returned with status "error".
//
// # Usage
//
//	orch := dialogue.New(client, dialogue.WithLogger(logger))
//	res, err := orch.Analyze(ctx, dialogue.Request{
//		Topic:      "Should we move to a four-day week?",
//		Hats:       []string{"blue", "white", "red"},
//		DialogMode: true,
//		Sink:       event.NewBusSink(bus, sessionID),
//	})
//
// Analyze returns an error only for invalid input, before any completion is
// requested. Independent sessions may run concurrently; RunMany does so with
// a bounded worker group.
package dialogue
