package export

import (
	"time"

	"github.com/Iron-Ham/sixhats/internal/dialogue"
	"github.com/Iron-Ham/sixhats/internal/hat"
)

// Transcript is the self-describing form of a session, used by the YAML and
// Markdown exporters, the archive, and the web API.
type Transcript struct {
	SessionID    string          `json:"session_id" yaml:"session_id"`
	Topic        string          `json:"topic" yaml:"topic"`
	DialogMode   bool            `json:"dialog_mode" yaml:"dialog_mode"`
	Order        []string        `json:"order" yaml:"order"`
	Status       dialogue.Status `json:"status" yaml:"status"`
	Error        string          `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt    time.Time       `json:"started_at" yaml:"started_at"`
	FinishedAt   time.Time       `json:"finished_at" yaml:"finished_at"`
	Conversation []hat.Message   `json:"conversation" yaml:"conversation"`
}

// NewTranscript copies a result into a Transcript.
func NewTranscript(res *dialogue.Result) Transcript {
	conv := res.Conversation
	if conv == nil {
		conv = []hat.Message{}
	}
	return Transcript{
		SessionID:    res.SessionID,
		Topic:        res.Topic,
		DialogMode:   res.DialogMode,
		Order:        hat.Strings(res.Order),
		Status:       res.Status,
		Error:        res.Error,
		StartedAt:    res.StartedAt,
		FinishedAt:   res.FinishedAt,
		Conversation: conv,
	}
}

// Result converts the transcript back into a dialogue result.
func (t Transcript) Result() *dialogue.Result {
	order := make([]hat.ID, len(t.Order))
	for i, s := range t.Order {
		order[i] = hat.ID(s)
	}
	conv := t.Conversation
	if conv == nil {
		conv = []hat.Message{}
	}
	return &dialogue.Result{
		SessionID:    t.SessionID,
		Topic:        t.Topic,
		DialogMode:   t.DialogMode,
		Order:        order,
		StartedAt:    t.StartedAt,
		FinishedAt:   t.FinishedAt,
		Status:       t.Status,
		Conversation: conv,
		Error:        t.Error,
	}
}
