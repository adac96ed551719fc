// Package internal contains integration tests that verify the packages work
// together: a session runs through the orchestrator, its events reach the
// console and other bus subscribers, and the archived result is served over
// HTTP after the run.
package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Iron-Ham/sixhats/internal/archive"
	"github.com/Iron-Ham/sixhats/internal/dialogue"
	"github.com/Iron-Ham/sixhats/internal/event"
	"github.com/Iron-Ham/sixhats/internal/export"
	"github.com/Iron-Ham/sixhats/internal/render"
	"github.com/Iron-Ham/sixhats/internal/testutil"
	"github.com/Iron-Ham/sixhats/internal/web"
)

var epoch = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

// TestSessionPipeline runs one session with every layer attached and checks
// each layer saw the same session.
func TestSessionPipeline(t *testing.T) {
	ctx := context.Background()

	client := testutil.NewScriptedClient(
		testutil.Reply("Turnover fell by a third in the pilot."),
		testutil.Reply("People feel trusted."),
	)
	orch := dialogue.New(client, dialogue.WithClock(testutil.SteppingClock(epoch, time.Second)))

	bus := event.NewBus()

	var (
		mu    sync.Mutex
		types []string
	)
	bus.SubscribeAll(func(e event.Event) {
		mu.Lock()
		types = append(types, e.EventType())
		mu.Unlock()
	})

	var console bytes.Buffer
	render.NewConsole(&console, render.WithWidth(100), render.WithMarkdown(false)).Attach(bus, "s1")

	res, err := orch.Analyze(ctx, dialogue.Request{
		SessionID:  "s1",
		Topic:      "Remote work",
		Hats:       []string{"white", "red"},
		DialogMode: true,
		Sink:       event.NewBusSink(bus, "s1"),
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !res.OK() {
		t.Fatalf("session failed: %s", res.Error)
	}

	wantTypes := []string{
		event.TypeSessionStarted,
		event.TypeHatTransition,
		event.TypeMessageRecorded,
		event.TypeHatTransition,
		event.TypeMessageRecorded,
		event.TypeSessionCompleted,
	}
	mu.Lock()
	if diff := cmp.Diff(wantTypes, types); diff != "" {
		t.Errorf("event sequence mismatch (-want +got):\n%s", diff)
	}
	mu.Unlock()

	out := console.String()
	for _, want := range []string{"Six Thinking Hats Analysis: Remote work", "People feel trusted.", "Dialogue Summary"} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q", want)
		}
	}

	store, err := archive.Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("archive.Open() error = %v", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Save(ctx, res); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// A fresh server knows nothing in memory and must answer from the archive.
	srv := web.NewServer(orch, event.NewBus(), web.WithArchive(store))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/s1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/sessions/s1 status = %d, body: %s", rec.Code, rec.Body)
	}

	var got export.Transcript
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode transcript: %v", err)
	}
	if diff := cmp.Diff(export.NewTranscript(res), got); diff != "" {
		t.Errorf("served transcript mismatch (-want +got):\n%s", diff)
	}
}

// TestEventBusIsolation checks that two sessions sharing a bus only reach
// the console attached to their own session.
func TestEventBusIsolation(t *testing.T) {
	ctx := context.Background()
	orch := dialogue.New(testutil.NewScriptedClient(), dialogue.WithClock(testutil.FrozenClock(epoch)))
	bus := event.NewBus()

	var first, second bytes.Buffer
	render.NewConsole(&first, render.WithMarkdown(false)).Attach(bus, "a")
	render.NewConsole(&second, render.WithMarkdown(false)).Attach(bus, "b")

	reqs := []dialogue.Request{
		{SessionID: "a", Topic: "Alpha topic", Hats: []string{"green"}, Sink: event.NewBusSink(bus, "a")},
		{SessionID: "b", Topic: "Beta topic", Hats: []string{"black"}, Sink: event.NewBusSink(bus, "b")},
	}
	if _, err := orch.RunMany(ctx, reqs, 2); err != nil {
		t.Fatalf("RunMany() error = %v", err)
	}

	if !strings.Contains(first.String(), "Alpha topic") || strings.Contains(first.String(), "Beta topic") {
		t.Errorf("console a saw the wrong sessions:\n%s", first.String())
	}
	if !strings.Contains(second.String(), "Beta topic") || strings.Contains(second.String(), "Alpha topic") {
		t.Errorf("console b saw the wrong sessions:\n%s", second.String())
	}
}
