package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/sixhats/internal/hat"
)

func TestTurnColor(t *testing.T) {
	tests := []struct {
		state    string
		expected string
	}{
		{TurnPending, "#9CA3AF"},
		{TurnThinking, "#F59E0B"},
		{TurnDone, "#10B981"},
		{TurnFailed, "#F87171"},
		{"unknown", "#9CA3AF"},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			if got := TurnColor(tt.state); string(got) != tt.expected {
				t.Errorf("TurnColor(%q) = %q, want %q", tt.state, got, tt.expected)
			}
		})
	}
}

func TestTurnIcon(t *testing.T) {
	tests := []struct {
		state    string
		expected string
	}{
		{TurnPending, "○"},
		{TurnThinking, "●"},
		{TurnDone, "✓"},
		{TurnFailed, "✗"},
		{"unknown", "●"},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			if got := TurnIcon(tt.state); got != tt.expected {
				t.Errorf("TurnIcon(%q) = %q, want %q", tt.state, got, tt.expected)
			}
		})
	}
}

func TestHatColor(t *testing.T) {
	for _, id := range hat.DefaultOrder {
		if HatColor(id) == lipgloss.TerminalColor(MutedColor) {
			t.Errorf("HatColor(%q) fell back to muted", id)
		}
	}
	if HatColor(hat.ID("purple")) != lipgloss.TerminalColor(MutedColor) {
		t.Error("unknown hat should fall back to muted")
	}
}
