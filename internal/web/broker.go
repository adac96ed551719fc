package web

import (
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/Iron-Ham/sixhats/internal/event"
)

// subscriberBuffer is how many envelopes a slow websocket client may lag
// behind before further envelopes are dropped for it.
const subscriberBuffer = 64

// Envelope is the wire form of one session event on the websocket stream.
type Envelope struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Time      time.Time   `json:"time"`
	Data      event.Event `json:"data"`
}

// NewEnvelope wraps e for the wire.
func NewEnvelope(e event.Event) Envelope {
	env := Envelope{
		Type: e.EventType(),
		Time: e.Timestamp(),
		Data: e,
	}
	if se, ok := e.(event.SessionEvent); ok {
		env.SessionID = se.Session()
	}
	return env
}

type subscriber struct {
	ch      chan Envelope
	session string
}

// Broker fans session events out to websocket clients.
type Broker struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[*subscriber]struct{})}
}

// Attach forwards every event published on bus to the broker and returns the
// bus subscription ID.
func (b *Broker) Attach(bus *event.Bus) string {
	return bus.SubscribeAll(func(e event.Event) {
		b.Publish(NewEnvelope(e))
	})
}

// Subscribe registers a subscriber. An empty session receives every session's
// events.
func (b *Broker) Subscribe(session string) *Subscription {
	sub := &subscriber{ch: make(chan Envelope, subscriberBuffer), session: session}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return &Subscription{broker: b, sub: sub}
}

// Publish delivers env to every matching subscriber without blocking.
func (b *Broker) Publish(env Envelope) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		if sub.session != "" && sub.session != env.SessionID {
			continue
		}
		select {
		case sub.ch <- env:
		default:
			// Drop if subscriber is slow.
		}
	}
}

// Len returns the number of live subscribers.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// ServeWS upgrades the connection and streams envelopes as JSON until the
// client goes away.
func (b *Broker) ServeWS(w http.ResponseWriter, r *http.Request, session string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "closing")

	sub := b.Subscribe(session)
	defer sub.Close()

	// Reading is only needed to notice the close handshake.
	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-sub.sub.ch:
			if err := wsjson.Write(ctx, conn, env); err != nil {
				return
			}
		}
	}
}

// Subscription is an active broker subscription.
type Subscription struct {
	broker *Broker
	sub    *subscriber
	once   sync.Once
}

// Chan exposes the envelope channel.
func (s *Subscription) Chan() <-chan Envelope {
	return s.sub.ch
}

// Close removes the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	if s == nil || s.broker == nil || s.sub == nil {
		return
	}
	s.once.Do(func() {
		s.broker.mu.Lock()
		delete(s.broker.subs, s.sub)
		s.broker.mu.Unlock()
		close(s.sub.ch)
	})
}
