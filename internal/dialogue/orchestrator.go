package dialogue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/sixhats/internal/completion"
	"github.com/Iron-Ham/sixhats/internal/errors"
	"github.com/Iron-Ham/sixhats/internal/hat"
	"github.com/Iron-Ham/sixhats/internal/logging"
)

const (
	// DefaultContextWindow is how many of a hat's own messages it sees in
	// dialog mode.
	DefaultContextWindow = 3

	// refocusWindow is how many messages across all hats feed a re-focus.
	refocusWindow = 3
)

// Orchestrator drives analysis sessions against one completion client. It
// holds no per-session state and is safe for concurrent use.
type Orchestrator struct {
	client        completion.Client
	personas      hat.Personas
	logger        *logging.Logger
	contextWindow int
	now           func() time.Time
	newID         func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPersonas replaces the persona table used to build prompts.
func WithPersonas(p hat.Personas) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.personas = p
		}
	}
}

// WithLogger sets the logger. Sessions log through a child logger carrying
// the session ID.
func WithLogger(l *logging.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithContextWindow sets how many of its own messages a hat sees in dialog
// mode. Zero disables the window.
func WithContextWindow(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.contextWindow = n
		}
	}
}

// WithClock sets the time source used to stamp messages.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithSessionIDs sets the generator for session IDs not supplied by the
// caller.
func WithSessionIDs(gen func() string) Option {
	return func(o *Orchestrator) {
		if gen != nil {
			o.newID = gen
		}
	}
}

// New creates an Orchestrator that asks client for every turn.
func New(client completion.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:        client,
		personas:      hat.DefaultPersonas(),
		logger:        logging.NopLogger(),
		contextWindow: DefaultContextWindow,
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Personas returns the persona table prompts are built from.
func (o *Orchestrator) Personas() hat.Personas {
	return o.personas
}

// Request describes one analysis session.
type Request struct {
	// SessionID is optional; a UUID is generated when empty.
	SessionID string
	Topic     string
	// Hats is the traversal order. Repeats are allowed. Every entry must be
	// one of the six hat identifiers.
	Hats       []string
	DialogMode bool
	// Sink observes the session. Nil discards notifications.
	Sink Sink
}

// session is the state of one Analyze call.
type session struct {
	id         string
	topic      string
	focus      string
	dialogMode bool
	reg        *hat.Registry
	sink       guardedSink
	logger     *logging.Logger
}

// Analyze runs one session. It returns an error only when the request is
// invalid, in which case nothing is recorded and the sink is never called.
// Completion failures and cancellation end the traversal early and are
// reported through a Result with status "error" that keeps every message
// recorded before the failure.
func (o *Orchestrator) Analyze(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, errors.NewInvalidInputError("topic must not be empty").
			WithField("topic")
	}
	order, err := hat.ParseOrder(req.Hats)
	if err != nil {
		return nil, err
	}

	id := req.SessionID
	if id == "" {
		id = o.newID()
	}
	logger := o.logger.WithSession(id)

	s := &session{
		id:         id,
		topic:      req.Topic,
		focus:      req.Topic,
		dialogMode: req.DialogMode,
		reg:        hat.NewRegistry(hat.WithPersonas(o.personas), hat.WithClock(o.now)),
		sink:       guard(req.Sink, logger),
		logger:     logger,
	}

	res := &Result{
		SessionID:  id,
		Topic:      req.Topic,
		DialogMode: req.DialogMode,
		Order:      order,
		StartedAt:  o.now(),
		Status:     StatusSuccess,
	}

	logger.Info("session started",
		"topic", req.Topic,
		"order", hat.Strings(order),
		"dialog_mode", req.DialogMode,
	)
	s.sink.OnHeader(req.Topic)

	for _, h := range order {
		if err := o.turn(ctx, s, h); err != nil {
			res.fail(err)
			break
		}
	}

	res.Conversation = s.reg.AllHistory()
	res.FinishedAt = o.now()

	if !res.OK() {
		s.sink.OnError(res.Error)
	}
	s.sink.OnFinalHistory(res.Conversation)

	logger.Info("session finished",
		"status", string(res.Status),
		"messages", len(res.Conversation),
		"elapsed_ms", res.Duration().Milliseconds(),
	)
	return res, nil
}

// turn runs one hat's turn and records its message.
func (o *Orchestrator) turn(ctx context.Context, s *session, h hat.ID) error {
	logger := s.logger.WithHat(h.String())
	s.sink.OnHatTransition(h)

	persona, _ := o.personas.Get(h)

	var window string
	if s.dialogMode {
		window = FormatContext(s.reg.Recent(h, o.contextWindow))
	}

	if h.IsProcessControl() && s.reg.Len() > 0 {
		s.focus = o.refocus(ctx, s, logger)
	}

	if err := ctx.Err(); err != nil {
		logger.Warn("session canceled before turn", "error", err)
		return fmt.Errorf("%w: %w", errors.ErrCanceled, err)
	}

	start := time.Now()
	logger.Debug("turn started", "focus", s.focus)

	content, err := o.client.Complete(ctx, BuildPrompt(persona, s.focus, window, s.dialogMode))
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		err = asServiceError(err)
		logger.Error("turn failed", "error", err, "elapsed_ms", elapsed)
		return err
	}

	var responseTo string
	if s.dialogMode {
		if last, ok := s.reg.Last(); ok {
			responseTo = last.ID
		}
	}

	msg, err := s.reg.Record(h, content, responseTo)
	if err != nil {
		return err
	}
	logger.Info("message recorded",
		"message_id", msg.ID,
		"response_to", responseTo,
		"elapsed_ms", elapsed,
	)

	s.sink.OnMessage(msg)
	if h.IsProcessControl() && s.reg.Len() > 1 {
		s.sink.OnSummary(msg.Content)
	}
	return nil
}

// refocus asks the blue hat for a new focus. Any failure keeps the original
// topic.
func (o *Orchestrator) refocus(ctx context.Context, s *session, logger *logging.Logger) string {
	recent := s.reg.RecentAll(refocusWindow)
	text, err := o.client.Complete(ctx, RefocusPrompt(s.topic, recent))
	if err != nil {
		logger.Warn("refocus failed, using original topic", "error", err)
		return s.topic
	}
	text = strings.TrimSpace(text)
	if text == "" {
		logger.Warn("refocus returned no text, using original topic")
		return s.topic
	}
	logger.Debug("discussion refocused", "focus", text)
	return text
}

func asServiceError(err error) error {
	if errors.Is(err, errors.ErrService) {
		return err
	}
	return errors.NewServiceError("complete", err)
}
