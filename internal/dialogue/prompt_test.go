package dialogue

import (
	"strings"
	"testing"

	"github.com/Iron-Ham/sixhats/internal/hat"
)

func TestFormatContext(t *testing.T) {
	tests := []struct {
		name string
		msgs []hat.Message
		want string
	}{
		{"empty", nil, ""},
		{"one", []hat.Message{{Hat: hat.White, Content: "Sales fell 4%."}}, "WHITE: Sales fell 4%."},
		{
			"several",
			[]hat.Message{
				{Hat: hat.Red, Content: "Worried."},
				{Hat: hat.Yellow, Content: "Cheaper rent."},
			},
			"RED: Worried.\nYELLOW: Cheaper rent.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatContext(tt.msgs); got != tt.want {
				t.Errorf("FormatContext() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	white, _ := hat.Lookup(hat.White)
	blue, _ := hat.Lookup(hat.Blue)

	tests := []struct {
		name       string
		persona    hat.Persona
		window     string
		dialogMode bool
		want       string
	}{
		{
			name:    "batch",
			persona: white,
			window:  "ignored",
			want:    white.Prompt + "\n\nTopic: F",
		},
		{
			name:       "dialog without history",
			persona:    white,
			dialogMode: true,
			want:       white.Prompt + "\n\nConsider the previous discussion:\n" + noDiscussion + "\n\nTopic: F",
		},
		{
			name:       "dialog with history",
			persona:    white,
			window:     "WHITE: a",
			dialogMode: true,
			want:       white.Prompt + "\n\nConsider the previous discussion:\nWHITE: a\n\nTopic: F",
		},
		{
			name:       "dialog blue",
			persona:    blue,
			window:     "BLUE: a",
			dialogMode: true,
			want:       blue.Prompt + "\n\nConsider the previous discussion:\nBLUE: a\n" + guideDirective + "\n\nTopic: F",
		},
		{
			name:    "batch blue",
			persona: blue,
			want:    blue.Prompt + "\n\nTopic: F",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildPrompt(tt.persona, "F", tt.window, tt.dialogMode); got != tt.want {
				t.Errorf("BuildPrompt() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestRefocusPrompt(t *testing.T) {
	got := RefocusPrompt("Hiring freeze", []hat.Message{
		{Hat: hat.Black, Content: "Risky."},
		{Hat: hat.Green, Content: "Contractors?"},
	})
	if !strings.HasPrefix(got, "As the Blue hat, analyze the recent discussion about 'Hiring freeze':\nBLACK: Risky.\nGREEN: Contractors?\n\n") {
		t.Errorf("unexpected prompt:\n%s", got)
	}
	if !strings.Contains(got, "What should be the next focus of discussion?") {
		t.Errorf("prompt should ask for the next focus:\n%s", got)
	}
}
