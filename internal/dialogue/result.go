package dialogue

import (
	"time"

	"github.com/Iron-Ham/sixhats/internal/hat"
)

// Status is the outcome of a session.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is what Analyze returns. Its JSON form is the dialog-mode payload:
// {"status", "conversation", "error"}. Session metadata is kept for the
// archive, exporters, and the web API but is not part of that payload.
type Result struct {
	SessionID  string    `json:"-" yaml:"-"`
	Topic      string    `json:"-" yaml:"-"`
	DialogMode bool      `json:"-" yaml:"-"`
	Order      []hat.ID  `json:"-" yaml:"-"`
	StartedAt  time.Time `json:"-" yaml:"-"`
	FinishedAt time.Time `json:"-" yaml:"-"`

	Status       Status        `json:"status" yaml:"status"`
	Conversation []hat.Message `json:"conversation" yaml:"conversation"`
	Error        string        `json:"error,omitempty" yaml:"error,omitempty"`

	// Err is the failure behind Error, for callers that classify it.
	Err error `json:"-" yaml:"-"`
}

// OK reports whether the session visited every hat.
func (r *Result) OK() bool {
	return r.Status == StatusSuccess
}

// Duration is the wall time of the session.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *Result) fail(err error) {
	r.Status = StatusError
	r.Error = err.Error()
	r.Err = err
}
