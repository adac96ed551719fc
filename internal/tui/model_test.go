package tui

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/Iron-Ham/sixhats/internal/dialogue"
	"github.com/Iron-Ham/sixhats/internal/event"
	"github.com/Iron-Ham/sixhats/internal/hat"
	"github.com/Iron-Ham/sixhats/internal/testutil"
	"github.com/Iron-Ham/sixhats/internal/tui/styles"
)

func states(m Model) []string {
	out := make([]string, len(m.turns))
	for i, t := range m.turns {
		out[i] = t.state
	}
	return out
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModel_TracksTurns(t *testing.T) {
	m := NewModel("T", []hat.ID{hat.White, hat.Red, hat.White}, nil)

	m = send(m,
		eventMsg{event.NewSessionStartedEvent("s", "Remote work")},
		eventMsg{event.NewHatTransitionEvent("s", hat.White)},
	)
	want := []string{styles.TurnThinking, styles.TurnPending, styles.TurnPending}
	if diff := cmp.Diff(want, states(m)); diff != "" {
		t.Errorf("states mismatch (-want +got):\n%s", diff)
	}

	m = send(m,
		eventMsg{event.NewMessageRecordedEvent("s", hat.Message{ID: "white_0", Hat: hat.White, Content: "Facts."})},
		eventMsg{event.NewHatTransitionEvent("s", hat.Red)},
		eventMsg{event.NewMessageRecordedEvent("s", hat.Message{ID: "red_0", Hat: hat.Red, Content: "Uneasy."})},
		eventMsg{event.NewHatTransitionEvent("s", hat.White)},
	)
	want = []string{styles.TurnDone, styles.TurnDone, styles.TurnThinking}
	if diff := cmp.Diff(want, states(m)); diff != "" {
		t.Errorf("states mismatch (-want +got):\n%s", diff)
	}

	m = send(m, eventMsg{event.NewSessionErrorEvent("s", "service error: boom")})
	want = []string{styles.TurnDone, styles.TurnDone, styles.TurnFailed}
	if diff := cmp.Diff(want, states(m)); diff != "" {
		t.Errorf("states mismatch (-want +got):\n%s", diff)
	}

	view := m.View()
	for _, s := range []string{"Six Thinking Hats: Remote work", "WHITE", "Facts.", "Uneasy.", "Error: service error: boom"} {
		if !strings.Contains(view, s) {
			t.Errorf("view missing %q:\n%s", s, view)
		}
	}
}

func TestModel_Summary(t *testing.T) {
	m := NewModel("T", []hat.ID{hat.Blue}, nil)
	m = send(m, eventMsg{event.NewSummaryPostedEvent("s", "Focus on\ncost.")})
	if !strings.Contains(m.View(), "Summary: Focus on cost.") {
		t.Errorf("view missing summary:\n%s", m.View())
	}
}

func TestModel_KeysCancel(t *testing.T) {
	canceled := 0
	m := NewModel("T", []hat.ID{hat.White}, func() { canceled++ })

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if canceled != 1 {
		t.Errorf("cancel called %d times, want 1", canceled)
	}
	if cmd != nil {
		t.Error("view should wait for the session to return before quitting")
	}

	m = send(next.(Model), doneMsg{result: &dialogue.Result{Status: dialogue.StatusError}})
	res, err := m.Result()
	if err != nil || res.Status != dialogue.StatusError {
		t.Errorf("Result() = %+v, %v", res, err)
	}
	if !strings.Contains(m.View(), "done") {
		t.Errorf("view should show done:\n%s", m.View())
	}
}

func TestModel_WindowSize(t *testing.T) {
	m := send(NewModel("T", nil, nil), tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.width != 120 || m.height != 40 {
		t.Errorf("size = %dx%d, want 120x40", m.width, m.height)
	}
}

func TestApp_Run(t *testing.T) {
	bus := event.NewBus()
	orch := dialogue.New(testutil.NewScriptedClient())
	order := []hat.ID{hat.White, hat.Red}

	app := New(bus, "sess-tui", "T", order,
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
	)

	res, err := app.Run(context.Background(), func(ctx context.Context) (*dialogue.Result, error) {
		return orch.Analyze(ctx, dialogue.Request{
			SessionID:  "sess-tui",
			Topic:      "T",
			Hats:       hat.Strings(order),
			DialogMode: true,
			Sink:       event.NewBusSink(bus, "sess-tui"),
		})
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Status != dialogue.StatusSuccess || len(res.Conversation) != 2 {
		t.Errorf("unexpected result: %+v", res)
	}
	if bus.SubscriptionCount() != 0 {
		t.Errorf("subscription leaked: %d", bus.SubscriptionCount())
	}
}
