// Package render prints a session to a terminal as it happens: a header
// panel, one panel per hat turn, the blue hat's summaries, errors, and a
// closing summary table. Console writes to the writer it is given, normally
// stderr, so that stdout stays free for the JSON result.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/sixhats/internal/event"
	"github.com/Iron-Ham/sixhats/internal/export"
	"github.com/Iron-Ham/sixhats/internal/hat"
	"github.com/Iron-Ham/sixhats/internal/logging"
	"github.com/Iron-Ham/sixhats/internal/tui/styles"
)

const defaultWidth = 80

// Console renders session notifications as lipgloss panels. It implements
// dialogue.Sink and is safe for concurrent use.
type Console struct {
	mu       sync.Mutex
	w        io.Writer
	width    int
	markdown bool
	preview  int
	personas hat.Personas
	logger   *logging.Logger
	md       *glamour.TermRenderer
}

// Option configures a Console.
type Option func(*Console)

// WithWidth sets the panel width. Zero or less keeps the default of 80.
func WithWidth(n int) Option {
	return func(c *Console) {
		if n > 0 {
			c.width = n
		}
	}
}

// WithMarkdown renders message bodies as markdown.
func WithMarkdown(enabled bool) Option {
	return func(c *Console) { c.markdown = enabled }
}

// WithPreview sets how many characters of each message the summary table
// shows.
func WithPreview(n int) Option {
	return func(c *Console) {
		if n > 0 {
			c.preview = n
		}
	}
}

// WithPersonas sets the persona table used for hat names.
func WithPersonas(p hat.Personas) Option {
	return func(c *Console) {
		if p != nil {
			c.personas = p
		}
	}
}

// WithLogger sets the logger used to report rendering failures.
func WithLogger(l *logging.Logger) Option {
	return func(c *Console) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer, opts ...Option) *Console {
	c := &Console{
		w:        w,
		width:    defaultWidth,
		preview:  export.DefaultPreview,
		personas: hat.DefaultPersonas(),
		logger:   logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnHeader prints the session header.
func (c *Console) OnHeader(topic string) {
	c.print(styles.HeaderBox.Width(c.width - 2).Render("Six Thinking Hats Analysis: " + topic))
}

// OnHatTransition announces the next hat.
func (c *Console) OnHatTransition(id hat.ID) {
	line := fmt.Sprintf("Switching to %s hat", styles.HatStyle(id).Render(c.hatName(id)))
	c.print("\n" + line)
}

// OnMessage prints one hat's turn.
func (c *Console) OnMessage(msg hat.Message) {
	var body strings.Builder
	if ref := msg.RespondsTo(); ref != "" {
		body.WriteString(styles.Subtitle.Render("Responding to: " + ref))
		body.WriteString("\n\n")
	}
	body.WriteString(c.renderBody(msg.Content))

	c.print(c.panel(
		styles.HatStyle(msg.Hat).Render(msg.Hat.Upper()+" Hat"),
		body.String(),
		styles.Muted.Render(msg.Timestamp.Format("15:04:05")),
		styles.HatColor(msg.Hat),
	))
}

// OnSummary prints the blue hat's running summary.
func (c *Console) OnSummary(text string) {
	c.print(c.panel(
		styles.HatStyle(hat.Blue).Render("Blue Hat Summary"),
		c.renderBody(text),
		"",
		styles.HatColor(hat.Blue),
	))
}

// OnError prints a failure panel.
func (c *Console) OnError(text string) {
	c.print(styles.ErrorBox.Width(c.width - 2).Render("Error: " + text))
}

// OnFinalHistory prints the dialogue summary table.
func (c *Console) OnFinalHistory(history []hat.Message) {
	if len(history) == 0 {
		return
	}
	c.print("\n" + styles.Title.Render("Dialogue Summary") + "\n" +
		export.SummaryTable(history, c.preview, export.ASCII))
}

// Attach subscribes the console to session events on bus. When sessionID is
// non-empty only that session's events are rendered. It returns the
// subscription ID for bus.Unsubscribe.
func (c *Console) Attach(bus *event.Bus, sessionID string) string {
	return bus.SubscribeAll(func(e event.Event) {
		if se, ok := e.(event.SessionEvent); ok && sessionID != "" && se.Session() != sessionID {
			return
		}
		Dispatch(c, e)
	})
}

func (c *Console) hatName(id hat.ID) string {
	if p, ok := c.personas.Get(id); ok {
		return fmt.Sprintf("%s (%s)", strings.ToUpper(id.String()[:1])+id.String()[1:], p.Name)
	}
	return id.String()
}

// panel draws a bordered box with title above and subtitle below the body.
func (c *Console) panel(title, body, subtitle string, border lipgloss.TerminalColor) string {
	content := title + "\n" + body
	if subtitle != "" {
		content += "\n" + lipgloss.PlaceHorizontal(c.width-4, lipgloss.Right, subtitle)
	}
	return styles.MessageBox.
		Width(c.width - 2).
		BorderForeground(border).
		Render(content)
}

func (c *Console) renderBody(text string) string {
	text = strings.TrimSpace(text)
	if !c.markdown || text == "" {
		return text
	}

	c.mu.Lock()
	if c.md == nil {
		md, err := glamour.NewTermRenderer(
			glamour.WithWordWrap(c.width-6),
			glamour.WithStandardStyle("dark"),
		)
		if err != nil {
			c.mu.Unlock()
			c.logger.Warn("markdown renderer unavailable", "error", err)
			return text
		}
		c.md = md
	}
	md := c.md
	c.mu.Unlock()

	out, err := md.Render(text)
	if err != nil {
		c.logger.Warn("markdown render failed", "error", err)
		return text
	}
	return strings.Trim(out, "\n")
}

func (c *Console) print(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintln(c.w, s); err != nil {
		c.logger.Debug("console write failed", "error", err)
	}
}
