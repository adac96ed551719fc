package dialogue

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/sixhats/internal/hat"
)

const (
	noDiscussion   = "(nothing yet)"
	guideDirective = "As the Blue hat, guide the discussion and maintain focus."
)

// FormatContext renders messages as "<HAT>: <content>" lines, oldest first.
func FormatContext(msgs []hat.Message) string {
	lines := make([]string, len(msgs))
	for i, m := range msgs {
		lines[i] = m.Hat.Upper() + ": " + m.Content
	}
	return strings.Join(lines, "\n")
}

// BuildPrompt assembles the main-turn prompt for one hat. In dialog mode the
// hat's recent messages are included, and the blue hat is told to steer.
func BuildPrompt(p hat.Persona, focus, window string, dialogMode bool) string {
	var sb strings.Builder
	sb.WriteString(p.Prompt)

	if dialogMode {
		if window == "" {
			window = noDiscussion
		}
		sb.WriteString("\n\nConsider the previous discussion:\n")
		sb.WriteString(window)
		if p.ID.IsProcessControl() {
			sb.WriteString("\n")
			sb.WriteString(guideDirective)
		}
	}

	sb.WriteString("\n\nTopic: ")
	sb.WriteString(focus)
	return sb.String()
}

// RefocusPrompt asks the blue hat for the next direction of the discussion.
// It always refers to the original topic, never to an earlier re-focus.
func RefocusPrompt(topic string, recent []hat.Message) string {
	return fmt.Sprintf(
		"As the Blue hat, analyze the recent discussion about '%s':\n%s\n\n"+
			"What should be the next focus of discussion? "+
			"Respond with a clear, concise direction in one or two sentences.",
		topic, FormatContext(recent),
	)
}
