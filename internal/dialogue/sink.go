package dialogue

import (
	"fmt"

	"github.com/Iron-Ham/sixhats/internal/hat"
	"github.com/Iron-Ham/sixhats/internal/logging"
)

// Sink receives the progress of a session as it happens. Implementations
// must not block for long: they run on the session goroutine between turns.
type Sink interface {
	OnHeader(topic string)
	OnHatTransition(id hat.ID)
	OnMessage(msg hat.Message)
	OnSummary(text string)
	OnError(text string)
	OnFinalHistory(history []hat.Message)
}

// NopSink discards every notification.
type NopSink struct{}

func (NopSink) OnHeader(string)              {}
func (NopSink) OnHatTransition(hat.ID)       {}
func (NopSink) OnMessage(hat.Message)        {}
func (NopSink) OnSummary(string)             {}
func (NopSink) OnError(string)               {}
func (NopSink) OnFinalHistory([]hat.Message) {}

// MultiSink forwards each notification to every sink in order.
type MultiSink []Sink

func (m MultiSink) OnHeader(topic string) {
	for _, s := range m {
		s.OnHeader(topic)
	}
}

func (m MultiSink) OnHatTransition(id hat.ID) {
	for _, s := range m {
		s.OnHatTransition(id)
	}
}

func (m MultiSink) OnMessage(msg hat.Message) {
	for _, s := range m {
		s.OnMessage(msg)
	}
}

func (m MultiSink) OnSummary(text string) {
	for _, s := range m {
		s.OnSummary(text)
	}
}

func (m MultiSink) OnError(text string) {
	for _, s := range m {
		s.OnError(text)
	}
}

func (m MultiSink) OnFinalHistory(history []hat.Message) {
	for _, s := range m {
		s.OnFinalHistory(history)
	}
}

// guardedSink recovers sink panics so that presentation failures never
// affect the analysis.
type guardedSink struct {
	sink   Sink
	logger *logging.Logger
}

func guard(s Sink, logger *logging.Logger) guardedSink {
	if s == nil {
		s = NopSink{}
	}
	return guardedSink{sink: s, logger: logger}
}

func (g guardedSink) call(callback string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("sink callback failed",
				"callback", callback,
				"panic", fmt.Sprint(r),
			)
		}
	}()
	fn()
}

func (g guardedSink) OnHeader(topic string) {
	g.call("header", func() { g.sink.OnHeader(topic) })
}

func (g guardedSink) OnHatTransition(id hat.ID) {
	g.call("hat_transition", func() { g.sink.OnHatTransition(id) })
}

func (g guardedSink) OnMessage(msg hat.Message) {
	g.call("message", func() { g.sink.OnMessage(msg) })
}

func (g guardedSink) OnSummary(text string) {
	g.call("summary", func() { g.sink.OnSummary(text) })
}

func (g guardedSink) OnError(text string) {
	g.call("error", func() { g.sink.OnError(text) })
}

func (g guardedSink) OnFinalHistory(history []hat.Message) {
	g.call("final_history", func() { g.sink.OnFinalHistory(history) })
}
