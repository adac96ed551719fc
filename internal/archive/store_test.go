package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Iron-Ham/sixhats/internal/dialogue"
	"github.com/Iron-Ham/sixhats/internal/errors"
	"github.com/Iron-Ham/sixhats/internal/hat"
)

var epoch = time.Date(2024, 5, 1, 9, 30, 0, 123456789, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "sessions.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleResult(id string, started time.Time, status dialogue.Status) *dialogue.Result {
	ref := "white_0"
	res := &dialogue.Result{
		SessionID:  id,
		Topic:      "Topic " + id,
		DialogMode: true,
		Order:      []hat.ID{hat.White, hat.Red, hat.Black},
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
		Status:     status,
		Conversation: []hat.Message{
			{ID: "white_0", Hat: hat.White, Content: "Facts.", Timestamp: started.Add(time.Second)},
			{ID: "red_0", Hat: hat.Red, Content: "Feelings.", Timestamp: started.Add(2 * time.Second), ResponseTo: &ref},
		},
	}
	if status == dialogue.StatusError {
		res.Error = "service error: boom"
	}
	return res
}

func TestStore_SaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := sampleResult("a", epoch, dialogue.StatusError)
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_SaveReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := sampleResult("a", epoch, dialogue.StatusError)
	if err := s.Save(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := sampleResult("a", epoch, dialogue.StatusSuccess)
	second.Conversation = second.Conversation[:1]
	if err := s.Save(ctx, second); err != nil {
		t.Fatalf("second Save() error: %v", err)
	}

	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(second, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_SameMessageIDsAcrossSessions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if err := s.Save(ctx, sampleResult(id, epoch, dialogue.StatusSuccess)); err != nil {
			t.Fatalf("Save(%s) error: %v", id, err)
		}
	}
	for _, id := range []string{"a", "b"} {
		got, err := s.Get(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if len(got.Conversation) != 2 {
			t.Errorf("session %s has %d messages, want 2", id, len(got.Conversation))
		}
	}
}

func TestStore_NotFound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if _, err := s.Latest(ctx, false); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Latest() error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "missing"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListAndLatest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	saves := []*dialogue.Result{
		sampleResult("old", epoch, dialogue.StatusSuccess),
		sampleResult("mid", epoch.Add(time.Minute), dialogue.StatusSuccess),
		sampleResult("new", epoch.Add(2*time.Minute), dialogue.StatusError),
	}
	for _, r := range saves {
		if err := s.Save(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	var ids []string
	for _, sum := range list {
		ids = append(ids, sum.ID)
	}
	if diff := cmp.Diff([]string{"new", "mid", "old"}, ids); diff != "" {
		t.Errorf("List() order mismatch (-want +got):\n%s", diff)
	}
	if list[0].Messages != 2 || list[0].Status != dialogue.StatusError || !list[0].DialogMode {
		t.Errorf("unexpected summary: %+v", list[0])
	}

	limited, err := s.List(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Errorf("List(1) = %v, %v", limited, err)
	}

	latest, err := s.Latest(ctx, false)
	if err != nil || latest.SessionID != "new" {
		t.Errorf("Latest(false) = %v, %v", latest, err)
	}
	latestOK, err := s.Latest(ctx, true)
	if err != nil || latestOK.SessionID != "mid" {
		t.Errorf("Latest(true) = %v, %v", latestOK, err)
	}
}

func TestStore_Delete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, sampleResult("a", epoch, dialogue.StatusSuccess)); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Get() after delete error = %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("%d orphaned messages remain", count)
	}
}

func TestStore_RequiresSessionID(t *testing.T) {
	s := openTestStore(t)
	err := s.Save(context.Background(), &dialogue.Result{})
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Save() error = %v, want ErrInvalidInput", err)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(context.Background(), sampleResult("a", epoch, dialogue.StatusSuccess)); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer s.Close()
	if _, err := s.Get(context.Background(), "a"); err != nil {
		t.Errorf("Get() after reopen error: %v", err)
	}
}
