package dialogue

import (
	"github.com/Iron-Ham/sixhats/internal/hat"
)

// Analysis is one hat's entry in a BatchView.
type Analysis struct {
	Analysis string `json:"analysis" yaml:"analysis"`
	HatColor string `json:"hat_color" yaml:"hat_color"`
}

// BatchView is the batch-mode payload: each hat's analysis keyed by hat.
type BatchView map[hat.ID]Analysis

// NewBatchView builds the batch payload from a conversation. When a hat
// spoke more than once, its last message wins.
func NewBatchView(conversation []hat.Message, personas hat.Personas) BatchView {
	view := make(BatchView, len(conversation))
	for _, m := range conversation {
		var color string
		if p, ok := personas.Get(m.Hat); ok {
			color = p.Color
		}
		view[m.Hat] = Analysis{Analysis: m.Content, HatColor: color}
	}
	return view
}
