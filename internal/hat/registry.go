package hat

import (
	"fmt"
	"slices"
	"time"

	"github.com/Iron-Ham/sixhats/internal/errors"
)

// NoSummary is returned by ProcessSummary before the blue hat has spoken.
const NoSummary = "No summary available yet."

// Message is one turn produced by one hat.
type Message struct {
	ID         string    `json:"id" yaml:"id"`
	Hat        ID        `json:"hat" yaml:"hat"`
	Content    string    `json:"content" yaml:"content"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	ResponseTo *string   `json:"response_to" yaml:"response_to"`
}

// RespondsTo returns the referenced message ID, or "" for a root message.
func (m Message) RespondsTo() string {
	if m.ResponseTo == nil {
		return ""
	}
	return *m.ResponseTo
}

// Hat is a persona together with the messages it has produced in a session.
type Hat struct {
	Persona
	History []Message
}

// entry pairs a message with its global insertion sequence so that equal
// timestamps keep recording order.
type entry struct {
	msg Message
	seq uint64
}

// Registry holds the per-hat message logs for a single session. Each hat's
// log is append-only and written only through Record. A Registry is not safe
// for concurrent writers; independent sessions must use independent
// registries.
type Registry struct {
	personas Personas
	logs     map[ID][]entry
	seq      uint64
	now      func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithPersonas sets the persona table the registry reports from Get.
func WithPersonas(p Personas) RegistryOption {
	return func(r *Registry) {
		if p != nil {
			r.personas = p
		}
	}
}

// WithClock sets the time source used to stamp recorded messages.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry creates an empty registry for one session.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		personas: DefaultPersonas(),
		logs:     make(map[ID][]entry, len(builtin)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the hat with a copy of its history.
func (r *Registry) Get(id ID) (Hat, error) {
	persona, ok := r.personas.Get(id)
	if !ok {
		return Hat{}, errors.NewNotFoundError("hat", string(id))
	}
	return Hat{Persona: persona, History: r.History(id)}, nil
}

// History returns a copy of the messages recorded by id, oldest first.
func (r *Registry) History(id ID) []Message {
	log := r.logs[id]
	out := make([]Message, len(log))
	for i, e := range log {
		out[i] = e.msg
	}
	return out
}

// Recent returns up to n of the most recent messages recorded by id, oldest
// first.
func (r *Registry) Recent(id ID, n int) []Message {
	return tail(r.History(id), n)
}

// RecentAll returns up to n of the most recent messages across all hats,
// oldest first.
func (r *Registry) RecentAll(n int) []Message {
	return tail(r.AllHistory(), n)
}

// LatestOf returns the most recent message recorded by id.
func (r *Registry) LatestOf(id ID) (Message, bool) {
	log := r.logs[id]
	if len(log) == 0 {
		return Message{}, false
	}
	return log[len(log)-1].msg, true
}

// Last returns the chronologically last message across all hats.
func (r *Registry) Last() (Message, bool) {
	all := r.AllHistory()
	if len(all) == 0 {
		return Message{}, false
	}
	return all[len(all)-1], true
}

// Len returns the number of messages recorded across all hats.
func (r *Registry) Len() int {
	return int(r.seq)
}

// AllHistory returns every recorded message sorted by timestamp ascending.
// Messages with equal timestamps keep the order in which they were recorded.
// The returned slice is a fresh copy.
func (r *Registry) AllHistory() []Message {
	entries := make([]entry, 0, r.seq)
	for _, log := range r.logs {
		entries = append(entries, log...)
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		if c := a.msg.Timestamp.Compare(b.msg.Timestamp); c != 0 {
			return c
		}
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})

	out := make([]Message, len(entries))
	for i, e := range entries {
		out[i] = e.msg
	}
	return out
}

// Record appends a message for id. The message ID is "<hat>_<n>" where n is
// the number of messages id had already recorded. responseTo, when non-empty,
// must name a message already in the registry.
func (r *Registry) Record(id ID, content, responseTo string) (Message, error) {
	if !id.Valid() {
		return Message{}, errors.NewInvalidHatError(string(id))
	}

	msg := Message{
		ID:        fmt.Sprintf("%s_%d", id, len(r.logs[id])),
		Hat:       id,
		Content:   content,
		Timestamp: r.now(),
	}
	if responseTo != "" {
		if !r.has(responseTo) {
			return Message{}, errors.NewNotFoundError("message", responseTo)
		}
		ref := responseTo
		msg.ResponseTo = &ref
	}

	r.logs[id] = append(r.logs[id], entry{msg: msg, seq: r.seq})
	r.seq++
	return msg, nil
}

// ProcessSummary returns the content of the blue hat's latest message, or
// NoSummary if it has not spoken.
func (r *Registry) ProcessSummary() string {
	if msg, ok := r.LatestOf(Blue); ok {
		return msg.Content
	}
	return NoSummary
}

func (r *Registry) has(messageID string) bool {
	for _, log := range r.logs {
		for _, e := range log {
			if e.msg.ID == messageID {
				return true
			}
		}
	}
	return false
}

func tail(msgs []Message, n int) []Message {
	if n <= 0 {
		return nil
	}
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return msgs
}
