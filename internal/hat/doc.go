// Package hat defines the six fixed thinking-hat personas and the per-session
// registry of the messages they produce.
//
// # Personas
//
// The six hats form a closed set. Each carries a display name, a color, and
// the instructional text used as a prompt prefix:
//
//   - blue: process control, steers and re-focuses the discussion
//   - white: facts and data
//   - red: feelings and intuition
//   - black: caution and risk
//   - yellow: benefits and opportunity
//   - green: creativity and alternatives
//
// Prompt text may be replaced per hat from a YAML file with LoadPersonas.
// Identifiers, names, and colors cannot be changed.
//
// # Registry
//
// A Registry owns one append-only log per hat for a single session. Message
// IDs are "<hat>_<n>", unique within a session only. AllHistory merges the
// logs by timestamp, breaking ties by recording order.
//
//	reg := hat.NewRegistry()
//	first, _ := reg.Record(hat.White, "Sales fell 4% last quarter.", "")
//	reg.Record(hat.Red, "That number worries me.", first.ID)
//	for _, m := range reg.AllHistory() {
//	    fmt.Println(m.ID, m.RespondsTo())
//	}
package hat
