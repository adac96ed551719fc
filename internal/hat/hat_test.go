package hat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Iron-Ham/sixhats/internal/errors"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    ID
		wantErr bool
	}{
		{"blue", Blue, false},
		{"white", White, false},
		{"red", Red, false},
		{"black", Black, false},
		{"yellow", Yellow, false},
		{"green", Green, false},
		{"purple", "", true},
		{"Blue", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseID(tt.in)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrInvalidHat) {
					t.Fatalf("ParseID(%q) error = %v, want ErrInvalidHat", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseID(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseOrder(t *testing.T) {
	t.Run("repeats allowed", func(t *testing.T) {
		got, err := ParseOrder([]string{"blue", "white", "blue"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff([]ID{Blue, White, Blue}, got); diff != "" {
			t.Errorf("ParseOrder() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unknown hat reports position", func(t *testing.T) {
		_, err := ParseOrder([]string{"white", "purple"})
		var hatErr *errors.InvalidHatError
		if !errors.As(err, &hatErr) {
			t.Fatalf("expected InvalidHatError, got %v", err)
		}
		if hatErr.HatID != "purple" || hatErr.Position != 1 {
			t.Errorf("got HatID=%q Position=%d, want purple/1", hatErr.HatID, hatErr.Position)
		}
	})

	t.Run("empty order", func(t *testing.T) {
		got, err := ParseOrder(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected empty order, got %v", got)
		}
	})
}

func TestPersonaTable(t *testing.T) {
	wantColors := map[ID]string{
		Blue:   "#0000FF",
		White:  "#FFFFFF",
		Red:    "#FF0000",
		Black:  "#000000",
		Yellow: "#FFFF00",
		Green:  "#00FF00",
	}

	all := All()
	if len(all) != 6 {
		t.Fatalf("All() returned %d personas, want 6", len(all))
	}
	for i, p := range all {
		if p.ID != DefaultOrder[i] {
			t.Errorf("All()[%d].ID = %q, want %q", i, p.ID, DefaultOrder[i])
		}
		if p.Color != wantColors[p.ID] {
			t.Errorf("%s color = %q, want %q", p.ID, p.Color, wantColors[p.ID])
		}
		if p.Name == "" || p.Prompt == "" {
			t.Errorf("%s persona is missing name or prompt", p.ID)
		}
	}

	if !Blue.IsProcessControl() || White.IsProcessControl() {
		t.Error("only blue is the process-control hat")
	}
	if got := Black.Upper(); got != "BLACK" {
		t.Errorf("Upper() = %q, want BLACK", got)
	}
}

func TestDefaultPersonas_IsCopy(t *testing.T) {
	p := DefaultPersonas()
	blue := p[Blue]
	blue.Name = "changed"
	p[Blue] = blue

	if got, _ := Lookup(Blue); got.Name != "Process Control" {
		t.Errorf("mutating DefaultPersonas() leaked into the built-in table: %q", got.Name)
	}
}

func TestPersonas_WithPrompts(t *testing.T) {
	p, err := DefaultPersonas().WithPrompts(map[string]string{
		"black": "  Focus on operational risk.  ",
		"green": "   ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	black := p[Black]
	if black.Prompt != "Focus on operational risk." {
		t.Errorf("black prompt = %q", black.Prompt)
	}
	if black.Name != "Caution" || black.Color != "#000000" {
		t.Errorf("override changed name or color: %+v", black)
	}

	green, _ := Lookup(Green)
	if p[Green].Prompt != green.Prompt {
		t.Error("blank override should keep the default prompt")
	}

	if _, err := DefaultPersonas().WithPrompts(map[string]string{"purple": "x"}); !errors.Is(err, errors.ErrInvalidHat) {
		t.Errorf("expected ErrInvalidHat for unknown key, got %v", err)
	}
}

func TestLoadPersonas(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		p, err := LoadPersonas("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(p) != 6 {
			t.Errorf("got %d personas, want 6", len(p))
		}
	})

	t.Run("yaml overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "personas.yaml")
		content := "blue: |\n  Keep the group on the decision.\nred: Trust your gut.\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		p, err := LoadPersonas(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p[Blue].Prompt != "Keep the group on the decision." {
			t.Errorf("blue prompt = %q", p[Blue].Prompt)
		}
		if p[Red].Prompt != "Trust your gut." {
			t.Errorf("red prompt = %q", p[Red].Prompt)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "personas.yaml")
		if err := os.WriteFile(path, []byte("- just\n- a list\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadPersonas(path)
		if !errors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadPersonas(filepath.Join(t.TempDir(), "nope.yaml"))
		if err == nil || !strings.Contains(err.Error(), "read personas file") {
			t.Errorf("expected read error, got %v", err)
		}
	})
}
