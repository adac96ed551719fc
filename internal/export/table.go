package export

import (
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Iron-Ham/sixhats/internal/hat"
	"github.com/Iron-Ham/sixhats/internal/util"
)

// TableMode selects how a table renders.
type TableMode int

const (
	ASCII    TableMode = iota // box-drawing terminal table
	Markdown                  // GitHub-flavoured Markdown table
)

// DefaultPreview is how many characters of a message the summary table shows.
const DefaultPreview = 50

// SummaryTable renders the dialogue summary: one row per message with its
// time, hat, a preview of the content, and the message it responds to.
func SummaryTable(conversation []hat.Message, preview int, mode TableMode) string {
	if preview <= 0 {
		preview = DefaultPreview
	}

	w := table.NewWriter()
	if mode == ASCII {
		w.SetStyle(table.StyleLight)
	}
	w.AppendHeader(table.Row{"Time", "Hat", "Message", "Response To"})
	for _, m := range conversation {
		responseTo := m.RespondsTo()
		if responseTo == "" {
			responseTo = "-"
		}
		w.AppendRow(table.Row{
			m.Timestamp.Format("15:04:05"),
			m.Hat.Upper(),
			util.Preview(m.Content, preview),
			responseTo,
		})
	}

	if mode == Markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}

// HatTable renders the persona table shown by "sixhats hats".
func HatTable(personas []hat.Persona, mode TableMode) string {
	w := table.NewWriter()
	if mode == ASCII {
		w.SetStyle(table.StyleLight)
	}
	w.AppendHeader(table.Row{"Hat", "Role", "Color"})
	for _, p := range personas {
		w.AppendRow(table.Row{string(p.ID), p.Name, p.Color})
	}
	if mode == Markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}
