package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/sixhats/internal/dialogue"
	"github.com/Iron-Ham/sixhats/internal/errors"
	"github.com/Iron-Ham/sixhats/internal/hat"
)

var ts = time.Date(2024, 5, 1, 9, 30, 15, 0, time.UTC)

func sampleResult(dialog bool) *dialogue.Result {
	ref := "white_0"
	conv := []hat.Message{
		{ID: "white_0", Hat: hat.White, Content: "Revenue grew 12% last year.", Timestamp: ts},
		{ID: "red_0", Hat: hat.Red, Content: "This feels rushed.", Timestamp: ts.Add(time.Second)},
	}
	if dialog {
		conv[1].ResponseTo = &ref
	}
	return &dialogue.Result{
		SessionID:    "sess-1",
		Topic:        "Expand to Europe",
		DialogMode:   dialog,
		Order:        []hat.ID{hat.White, hat.Red},
		StartedAt:    ts,
		FinishedAt:   ts.Add(2 * time.Second),
		Status:       dialogue.StatusSuccess,
		Conversation: conv,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"md", FormatMarkdown, false},
		{" markdown ", FormatMarkdown, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrInvalidInput) {
					t.Errorf("ParseFormat(%q) error = %v, want ErrInvalidInput", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestWrite_JSONDialog(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleResult(true), FormatJSON); err != nil {
		t.Fatal(err)
	}

	var got struct {
		Status       string `json:"status"`
		Conversation []struct {
			ID         string  `json:"id"`
			ResponseTo *string `json:"response_to"`
		} `json:"conversation"`
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if got.Status != "success" || len(got.Conversation) != 2 {
		t.Errorf("unexpected payload: %s", buf.String())
	}
	if got.Conversation[0].ResponseTo != nil || *got.Conversation[1].ResponseTo != "white_0" {
		t.Errorf("response_to not preserved: %s", buf.String())
	}
	if got.SessionID != "" {
		t.Errorf("session metadata leaked into the payload: %s", buf.String())
	}
	if strings.Contains(buf.String(), `"error"`) {
		t.Errorf("successful payload should omit error: %s", buf.String())
	}
}

func TestWrite_JSONBatch(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleResult(false), FormatJSON); err != nil {
		t.Fatal(err)
	}

	var got map[string]dialogue.Analysis
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	want := map[string]dialogue.Analysis{
		"white": {Analysis: "Revenue grew 12% last year.", HatColor: "#FFFFFF"},
		"red":   {Analysis: "This feels rushed.", HatColor: "#FF0000"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("batch payload mismatch (-want +got):\n%s", diff)
	}
}

func TestPayload_FailedBatchKeepsStatus(t *testing.T) {
	res := sampleResult(false)
	res.Status = dialogue.StatusError
	res.Error = "service error: boom"
	res.Conversation = nil

	var buf bytes.Buffer
	if err := WriteJSON(&buf, Payload(res)); err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"status\": \"error\",\n  \"conversation\": [],\n  \"error\": \"service error: boom\"\n}\n"
	if buf.String() != want {
		t.Errorf("payload =\n%s\nwant\n%s", buf.String(), want)
	}
	if res.Conversation != nil {
		t.Error("Payload should not modify the result")
	}
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleResult(true), FormatYAML); err != nil {
		t.Fatal(err)
	}

	var got Transcript
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid YAML: %v\n%s", err, buf.String())
	}
	want := NewTranscript(sampleResult(true))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("transcript round trip mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(buf.String(), "topic: Expand to Europe") {
		t.Errorf("yaml missing topic:\n%s", buf.String())
	}
}

func TestWrite_Markdown(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleResult(true), FormatMarkdown); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Six Thinking Hats Analysis: Expand to Europe",
		"- Mode: dialog",
		"- Hats: white, red",
		"## WHITE (Facts) Hat `white_0`",
		"_Responding to `white_0` at 09:30:16_",
		"Revenue grew 12% last year.",
		"## Dialogue Summary",
		"| Time",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestTranscript_ResultRoundTrip(t *testing.T) {
	res := sampleResult(true)
	back := NewTranscript(res).Result()
	if diff := cmp.Diff(res, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
