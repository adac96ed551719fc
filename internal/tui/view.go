package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/sixhats/internal/tui/styles"
	"github.com/Iron-Ham/sixhats/internal/util"
)

// View renders the turn list, the latest summary, and any error.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render("Six Thinking Hats: " + m.topic))
	sb.WriteString("\n\n")

	for _, t := range m.turns {
		sb.WriteString(m.renderTurn(t))
		sb.WriteString("\n")
	}

	if m.summary != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.HatStyle("blue").Render("Summary: "))
		sb.WriteString(util.TruncateANSI(util.OneLine(m.summary), max(m.width-10, 10)))
		sb.WriteString("\n")
	}

	if m.errText != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.Error.Render("Error: " + m.errText))
		sb.WriteString("\n")
	}

	help := "q: cancel"
	if m.done {
		help = "done"
	}
	sb.WriteString(styles.HelpBar.Render(help))
	sb.WriteString("\n")
	return sb.String()
}

func (m Model) renderTurn(t turn) string {
	icon := styles.TurnIcon(t.state)
	if t.state == styles.TurnThinking {
		icon = m.spinner.View()
	}
	marker := lipgloss.NewStyle().Foreground(styles.TurnColor(t.state)).Render(icon)
	label := styles.HatStyle(t.hat).Render(fmt.Sprintf("%-6s", t.hat.Upper()))

	line := marker + " " + label
	switch {
	case t.msg != nil:
		room := max(m.width-lipgloss.Width(line)-3, 10)
		line += "  " + util.TruncateANSI(util.OneLine(t.msg.Content), room)
	case t.state == styles.TurnThinking:
		line += "  " + styles.Muted.Render("thinking...")
	}
	return line
}
