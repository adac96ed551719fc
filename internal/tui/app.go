// Package tui provides a live bubbletea view of a running session: one line
// per hat turn with a spinner on the hat that is thinking, the blue hat's
// latest summary, and any error. It is fed entirely from the event bus.
package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/sixhats/internal/dialogue"
	"github.com/Iron-Ham/sixhats/internal/event"
	"github.com/Iron-Ham/sixhats/internal/hat"
)

// RunFunc runs the session the view observes.
type RunFunc func(ctx context.Context) (*dialogue.Result, error)

// App wraps the bubbletea program
type App struct {
	bus       *event.Bus
	sessionID string
	topic     string
	order     []hat.ID
	opts      []tea.ProgramOption
}

// New creates a live view of session sessionID on bus.
func New(bus *event.Bus, sessionID, topic string, order []hat.ID, opts ...tea.ProgramOption) *App {
	return &App{
		bus:       bus,
		sessionID: sessionID,
		topic:     topic,
		order:     order,
		opts:      opts,
	}
}

// WithOutput renders the view to w instead of stdout.
func WithOutput(w io.Writer) tea.ProgramOption {
	return tea.WithOutput(w)
}

// Run starts the view, runs the session, and returns its outcome once the
// session ends. Pressing q cancels the session; the view stays until the
// session returns its partial result.
func (a *App) Run(ctx context.Context, run RunFunc) (*dialogue.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewModel(a.topic, a.order, cancel)
	program := tea.NewProgram(model, a.opts...)

	subID := a.bus.SubscribeAll(func(e event.Event) {
		if se, ok := e.(event.SessionEvent); ok && se.Session() != a.sessionID {
			return
		}
		program.Send(eventMsg{event: e})
	})
	defer a.bus.Unsubscribe(subID)

	go func() {
		res, err := run(ctx)
		program.Send(doneMsg{result: res, err: err})
	}()

	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return nil, fmt.Errorf("tui: unexpected model type %T", final)
	}
	return m.Result()
}
