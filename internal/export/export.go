// Package export writes session results as JSON, YAML, or Markdown.
//
// JSON is the stdout contract of the CLI: a dialog-mode session prints
// {"status", "conversation", "error"}; a successful batch-mode session prints
// {"<hat>": {"analysis", "hat_color"}}. YAML and Markdown carry the full
// Transcript, session metadata included.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/sixhats/internal/dialogue"
	"github.com/Iron-Ham/sixhats/internal/errors"
	"github.com/Iron-Ham/sixhats/internal/hat"
)

// Format names an output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatMarkdown}
}

// ParseFormat validates a format name. "md" is accepted for markdown.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "md" {
		f = FormatMarkdown
	}
	if !slices.Contains(Formats(), f) {
		return "", errors.NewInvalidInputError("unsupported output format").
			WithField("format").WithValue(s)
	}
	return f, nil
}

// Write renders res to w in format f.
func Write(w io.Writer, res *dialogue.Result, f Format) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, Payload(res))
	case FormatYAML:
		return WriteYAML(w, NewTranscript(res))
	case FormatMarkdown:
		_, err := io.WriteString(w, RenderMarkdown(NewTranscript(res)))
		return err
	default:
		return fmt.Errorf("export: unsupported format %q", f)
	}
}

// Payload returns the JSON value the CLI prints for res. Batch sessions that
// failed keep the dialog-mode shape so the error is visible.
func Payload(res *dialogue.Result) any {
	if !res.DialogMode && res.OK() {
		return dialogue.NewBatchView(res.Conversation, hat.DefaultPersonas())
	}
	if res.Conversation == nil {
		cp := *res
		cp.Conversation = []hat.Message{}
		return &cp
	}
	return res
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteYAML writes v as a YAML document.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// RenderMarkdown renders a transcript as a Markdown document.
func RenderMarkdown(t Transcript) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Six Thinking Hats Analysis: %s\n\n", t.Topic)
	mode := "batch"
	if t.DialogMode {
		mode = "dialog"
	}
	fmt.Fprintf(&sb, "- Session: `%s`\n", t.SessionID)
	fmt.Fprintf(&sb, "- Mode: %s\n", mode)
	fmt.Fprintf(&sb, "- Hats: %s\n", strings.Join(t.Order, ", "))
	fmt.Fprintf(&sb, "- Status: %s\n", t.Status)
	if t.Error != "" {
		fmt.Fprintf(&sb, "- Error: %s\n", t.Error)
	}
	sb.WriteString("\n")

	for _, m := range t.Conversation {
		name := m.Hat.Upper()
		if p, ok := hat.Lookup(m.Hat); ok {
			name = fmt.Sprintf("%s (%s)", name, p.Name)
		}
		fmt.Fprintf(&sb, "## %s Hat `%s`\n\n", name, m.ID)
		if ref := m.RespondsTo(); ref != "" {
			fmt.Fprintf(&sb, "_Responding to `%s` at %s_\n\n", ref, m.Timestamp.Format("15:04:05"))
		} else {
			fmt.Fprintf(&sb, "_%s_\n\n", m.Timestamp.Format("15:04:05"))
		}
		sb.WriteString(strings.TrimSpace(m.Content))
		sb.WriteString("\n\n")
	}

	if len(t.Conversation) > 0 {
		sb.WriteString("## Dialogue Summary\n\n")
		sb.WriteString(SummaryTable(t.Conversation, DefaultPreview, Markdown))
		sb.WriteString("\n")
	}
	return sb.String()
}
