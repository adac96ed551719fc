package hat

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/sixhats/internal/errors"
)

// Persona is the fixed description of a hat: its display name, the color used
// by renderers, and the instructional text that prefixes every prompt.
type Persona struct {
	ID     ID     `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Color  string `json:"color" yaml:"color"`
	Prompt string `json:"-" yaml:"-"`
}

// Personas maps each hat to its persona. A valid set always holds all six.
type Personas map[ID]Persona

var builtin = Personas{
	Blue: {
		ID:    Blue,
		Name:  "Process Control",
		Color: "#0000FF",
		Prompt: `You are the Blue hat, the process controller of this discussion.
- Define the objective and keep the group on it
- Observe what the other hats contribute and weigh it
- Ask specific hats for the input that is missing
- Summarize the insights so far and redirect when the discussion drifts
- Close with conclusions and next actions`,
	},
	White: {
		ID:    White,
		Name:  "Facts",
		Color: "#FFFFFF",
		Prompt: `You are the White hat. Work only with information.
- State known facts and data objectively
- Point out gaps in what is known
- Suggest how the missing data could be obtained
- Answer requests for factual clarity
- Leave out interpretation and opinion`,
	},
	Red: {
		ID:    Red,
		Name:  "Emotions",
		Color: "#FF0000",
		Prompt: `You are the Red hat. Speak from feeling and intuition.
- Give your immediate reactions
- Share hunches without needing to justify them
- Note how your feelings shift as the discussion moves
- React to the emotional side of what others have raised`,
	},
	Black: {
		ID:    Black,
		Name:  "Caution",
		Color: "#000000",
		Prompt: `You are the Black hat. Look for what could go wrong.
- Identify risks and weaknesses
- Call out logical flaws in proposals
- Name the specific concerns that need attention
- Temper optimism with careful analysis, and stay open to fixes`,
	},
	Yellow: {
		ID:    Yellow,
		Name:  "Benefits",
		Color: "#FFFF00",
		Prompt: `You are the Yellow hat. Look for value and opportunity.
- Identify benefits and upside
- Find what is worth keeping inside the concerns others raised
- Build on the positive points already made
- Stay realistic while you stay optimistic`,
	},
	Green: {
		ID:    Green,
		Name:  "Creativity",
		Color: "#00FF00",
		Prompt: `You are the Green hat. Generate new possibilities.
- Propose novel solutions and approaches
- Offer alternative perspectives on the problem
- Combine ideas already on the table in new ways
- Turn the challenges others raised into creative openings`,
	},
}

// DefaultPersonas returns a copy of the built-in persona table.
func DefaultPersonas() Personas {
	out := make(Personas, len(builtin))
	for id, p := range builtin {
		out[id] = p
	}
	return out
}

// Lookup returns the built-in persona for id.
func Lookup(id ID) (Persona, bool) {
	p, ok := builtin[id]
	return p, ok
}

// All returns the built-in personas in DefaultOrder.
func All() []Persona {
	out := make([]Persona, 0, len(DefaultOrder))
	for _, id := range DefaultOrder {
		out = append(out, builtin[id])
	}
	return out
}

// Get returns the persona for id from the set, falling back to the built-in
// table for hats the set does not carry.
func (p Personas) Get(id ID) (Persona, bool) {
	if persona, ok := p[id]; ok {
		return persona, true
	}
	return Lookup(id)
}

// WithPrompts returns a copy of p whose prompt text is replaced for every hat
// named in overrides. Names, colors, and IDs never change. Blank overrides
// are ignored.
func (p Personas) WithPrompts(overrides map[string]string) (Personas, error) {
	out := make(Personas, len(builtin))
	for id := range builtin {
		out[id], _ = p.Get(id)
	}
	for key, prompt := range overrides {
		id, err := ParseID(key)
		if err != nil {
			return nil, err
		}
		prompt = strings.TrimSpace(prompt)
		if prompt == "" {
			continue
		}
		persona := out[id]
		persona.Prompt = prompt
		out[id] = persona
	}
	return out, nil
}

// LoadPersonas reads a YAML file mapping hat identifiers to replacement
// prompt text and applies it on top of the built-in table. An empty path
// returns the defaults.
//
//	blue: |
//	  Keep the group on the decision at hand.
//	black: Focus on operational risk.
func LoadPersonas(path string) (Personas, error) {
	if path == "" {
		return DefaultPersonas(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read personas file: %w", err)
	}

	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, errors.NewInvalidInputError("personas file must map hat names to prompt text").
			WithField("personas_file").
			WithCause(err)
	}
	return DefaultPersonas().WithPrompts(overrides)
}
