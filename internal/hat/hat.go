package hat

import (
	"strings"

	"github.com/Iron-Ham/sixhats/internal/errors"
)

// ID identifies one of the six hats. The set is closed: the only valid
// values are the constants below.
type ID string

const (
	Blue   ID = "blue"
	White  ID = "white"
	Red    ID = "red"
	Black  ID = "black"
	Yellow ID = "yellow"
	Green  ID = "green"
)

// DefaultOrder is the traversal used when a caller does not supply one.
var DefaultOrder = []ID{Blue, White, Red, Black, Yellow, Green}

// Valid reports whether id is one of the six hats.
func (id ID) Valid() bool {
	_, ok := builtin[id]
	return ok
}

// IsProcessControl reports whether id is the blue hat, which steers the
// discussion and may re-focus the topic.
func (id ID) IsProcessControl() bool {
	return id == Blue
}

// String returns the identifier as a string.
func (id ID) String() string {
	return string(id)
}

// Upper returns the identifier in upper case, as used in context lines.
func (id ID) Upper() string {
	return strings.ToUpper(string(id))
}

// ParseID converts s to an ID. Matching is exact: "Blue" is not a hat.
func ParseID(s string) (ID, error) {
	id := ID(s)
	if !id.Valid() {
		return "", errors.NewInvalidHatError(s)
	}
	return id, nil
}

// ParseOrder converts a traversal order to IDs. The first unknown identifier
// fails the whole order; repeats are allowed.
func ParseOrder(ids []string) ([]ID, error) {
	order := make([]ID, 0, len(ids))
	for i, s := range ids {
		id := ID(s)
		if !id.Valid() {
			return nil, errors.NewInvalidHatError(s).WithPosition(i)
		}
		order = append(order, id)
	}
	return order, nil
}

// Strings converts an order back to plain strings.
func Strings(order []ID) []string {
	out := make([]string, len(order))
	for i, id := range order {
		out[i] = string(id)
	}
	return out
}
