package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleLog = `{"time":"2024-05-01T10:00:02Z","level":"INFO","msg":"turn completed","session_id":"s1","hat":"white","elapsed_ms":120}
not json at all
{"time":"2024-05-01T10:00:01Z","level":"DEBUG","msg":"session started","session_id":"s1"}

{"time":"2024-05-01T10:00:03Z","level":"WARN","msg":"refocus failed, using original topic","session_id":"s1","hat":"blue"}
{"time":"2024-05-01T10:00:04Z","level":"ERROR","msg":"turn failed","session_id":"s2","hat":"red"}
`

func TestParseEntries(t *testing.T) {
	entries, err := ParseEntries(strings.NewReader(sampleLog))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4 (bad lines skipped)", len(entries))
	}
	if entries[0].Message != "session started" {
		t.Errorf("entries not sorted by time: first = %q", entries[0].Message)
	}
	white := entries[1]
	if white.Hat != "white" || white.SessionID != "s1" {
		t.Errorf("context fields not extracted: %+v", white)
	}
	if white.Attrs["elapsed_ms"] != float64(120) {
		t.Errorf("elapsed_ms attr = %v", white.Attrs["elapsed_ms"])
	}
	if _, ok := white.Attrs["msg"]; ok {
		t.Error("standard fields must not appear in Attrs")
	}
}

func TestFilter(t *testing.T) {
	entries, err := ParseEntries(strings.NewReader(sampleLog))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty", Filter{}, []string{"session started", "turn completed", "refocus failed, using original topic", "turn failed"}},
		{"level warn", Filter{Level: "warn"}, []string{"refocus failed, using original topic", "turn failed"}},
		{"session", Filter{SessionID: "s2"}, []string{"turn failed"}},
		{"hat", Filter{Hat: "blue"}, []string{"refocus failed, using original topic"}},
		{"since", Filter{Since: time.Date(2024, 5, 1, 10, 0, 3, 0, time.UTC)}, []string{"refocus failed, using original topic", "turn failed"}},
		{"contains", Filter{Contains: "turn"}, []string{"turn completed", "turn failed"}},
		{"combined", Filter{SessionID: "s1", Level: "INFO"}, []string{"turn completed", "refocus failed, using original topic"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, e := range tt.filter.Apply(entries) {
				got = append(got, e.Message)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadEntries(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadEntries(dir); err == nil {
		t.Error("expected error when no log file exists")
	}

	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(sampleLog), 0o644); err != nil {
		t.Fatal(err)
	}
	entries, err := ReadEntries(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		t.Errorf("got %d entries, want 4", len(entries))
	}
}

func TestWriteText(t *testing.T) {
	entries, err := ParseEntries(strings.NewReader(sampleLog))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteText(&buf, entries[1:2]); err != nil {
		t.Fatal(err)
	}
	want := `[2024-05-01 10:00:02.000] INFO  turn completed (session=s1, hat=white) {"elapsed_ms":120}` + "\n"
	if buf.String() != want {
		t.Errorf("WriteText() =\n%q\nwant\n%q", buf.String(), want)
	}
}
