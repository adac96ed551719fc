// Package testutil provides fakes shared by sixhats tests: a scripted
// completion client, deterministic clocks, and a sink that records every
// notification.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Iron-Ham/sixhats/internal/hat"
)

// Step is one scripted completion outcome.
type Step struct {
	Text string
	Err  error
}

// Reply scripts a successful completion.
func Reply(text string) Step {
	return Step{Text: text}
}

// Fail scripts a failed completion.
func Fail(err error) Step {
	return Step{Err: err}
}

// ScriptedClient answers completions from a fixed script, in call order.
// Once the script is exhausted it answers "reply <n>" where n is the
// zero-based call number. It records every prompt it receives.
type ScriptedClient struct {
	mu      sync.Mutex
	steps   []Step
	prompts []string
}

// NewScriptedClient creates a client that plays steps in order.
func NewScriptedClient(steps ...Step) *ScriptedClient {
	return &ScriptedClient{steps: steps}
}

// Complete implements completion.Client.
func (c *ScriptedClient) Complete(_ context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.prompts)
	c.prompts = append(c.prompts, prompt)
	if n < len(c.steps) {
		return c.steps[n].Text, c.steps[n].Err
	}
	return fmt.Sprintf("reply %d", n), nil
}

// Prompts returns a copy of the prompts received so far.
func (c *ScriptedClient) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.prompts))
	copy(out, c.prompts)
	return out
}

// Calls returns the number of completions requested.
func (c *ScriptedClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}

// SteppingClock returns a clock that starts at start and advances by step on
// every call.
func SteppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(step)
		return now
	}
}

// FrozenClock returns a clock that always reports t.
func FrozenClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// SinkCall is one notification captured by RecordingSink.
type SinkCall struct {
	Kind    string
	Text    string
	Hat     hat.ID
	Message hat.Message
	History []hat.Message
}

// RecordingSink records every notification it receives.
type RecordingSink struct {
	mu    sync.Mutex
	calls []SinkCall
}

func (s *RecordingSink) add(c SinkCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
}

func (s *RecordingSink) OnHeader(topic string) {
	s.add(SinkCall{Kind: "header", Text: topic})
}

func (s *RecordingSink) OnHatTransition(id hat.ID) {
	s.add(SinkCall{Kind: "transition", Hat: id})
}

func (s *RecordingSink) OnMessage(msg hat.Message) {
	s.add(SinkCall{Kind: "message", Hat: msg.Hat, Message: msg})
}

func (s *RecordingSink) OnSummary(text string) {
	s.add(SinkCall{Kind: "summary", Text: text})
}

func (s *RecordingSink) OnError(text string) {
	s.add(SinkCall{Kind: "error", Text: text})
}

func (s *RecordingSink) OnFinalHistory(history []hat.Message) {
	s.add(SinkCall{Kind: "final", History: history})
}

// Calls returns a copy of the recorded notifications.
func (s *RecordingSink) Calls() []SinkCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SinkCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// Kinds returns the kind of every recorded notification, in order.
func (s *RecordingSink) Kinds() []string {
	calls := s.Calls()
	kinds := make([]string, len(calls))
	for i, c := range calls {
		kinds[i] = c.Kind
	}
	return kinds
}
