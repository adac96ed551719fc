package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/sixhats/internal/dialogue"
	"github.com/Iron-Ham/sixhats/internal/event"
	"github.com/Iron-Ham/sixhats/internal/hat"
	"github.com/Iron-Ham/sixhats/internal/tui/styles"
)

// eventMsg delivers a bus event to the model.
type eventMsg struct{ event event.Event }

// doneMsg reports that the session goroutine returned.
type doneMsg struct {
	result *dialogue.Result
	err    error
}

// turn is one slot of the traversal.
type turn struct {
	hat   hat.ID
	state string
	msg   *hat.Message
}

// Model is the bubbletea model of the live session view.
type Model struct {
	topic   string
	turns   []turn
	current int
	summary string
	errText string
	spinner spinner.Model
	width   int
	height  int
	done    bool
	result  *dialogue.Result
	err     error
	cancel  func()
}

// NewModel creates a model for a session over order.
func NewModel(topic string, order []hat.ID, cancel func()) Model {
	turns := make([]turn, len(order))
	for i, id := range order {
		turns[i] = turn{hat: id, state: styles.TurnPending}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Warning

	if cancel == nil {
		cancel = func() {}
	}
	return Model{
		topic:   topic,
		turns:   turns,
		current: -1,
		spinner: sp,
		width:   80,
		cancel:  cancel,
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles keys, window size, spinner ticks, and session events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancel()
			if m.done {
				return m, tea.Quit
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		m = m.apply(msg.event)

	case doneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

// apply folds one session event into the model.
func (m Model) apply(e event.Event) Model {
	switch ev := e.(type) {
	case event.SessionStartedEvent:
		m.topic = ev.Topic

	case event.HatTransitionEvent:
		m.current = m.nextSlot(ev.Hat)
		if m.current >= 0 {
			m.turns = cloneTurns(m.turns)
			m.turns[m.current].state = styles.TurnThinking
		}

	case event.MessageRecordedEvent:
		if m.current >= 0 && m.turns[m.current].hat == ev.Message.Hat {
			m.turns = cloneTurns(m.turns)
			msg := ev.Message
			m.turns[m.current].state = styles.TurnDone
			m.turns[m.current].msg = &msg
		}

	case event.SummaryPostedEvent:
		m.summary = ev.Text

	case event.SessionErrorEvent:
		m.errText = ev.Error
		if m.current >= 0 && m.turns[m.current].state == styles.TurnThinking {
			m.turns = cloneTurns(m.turns)
			m.turns[m.current].state = styles.TurnFailed
		}
	}
	return m
}

// nextSlot finds the first pending turn for id after the current one.
func (m Model) nextSlot(id hat.ID) int {
	for i := m.current + 1; i < len(m.turns); i++ {
		if m.turns[i].hat == id && m.turns[i].state == styles.TurnPending {
			return i
		}
	}
	return -1
}

// Result returns the session outcome once the model has finished.
func (m Model) Result() (*dialogue.Result, error) {
	return m.result, m.err
}

func cloneTurns(ts []turn) []turn {
	out := make([]turn, len(ts))
	copy(out, ts)
	return out
}
