// Package columnid defines the stable identifier assigned to a column when it
// is created. Display names may change through renames; identifiers never do.
package columnid

import (
	"encoding/json"
	"strings"
)

// ID is the rename-stable identity of a column within a table.
// The zero value is the empty token.
type ID struct {
	token string
}

// New wraps token as a column identifier.
func New(token string) ID {
	return ID{token: token}
}

// String returns the raw identifier token.
func (id ID) String() string {
	return id.token
}

// IsZero reports whether id is the empty token.
func (id ID) IsZero() bool {
	return id.token == ""
}

// Equal reports exact (case-sensitive) equality.
func (id ID) Equal(other ID) bool {
	return id.token == other.token
}

// EqualFold reports case-insensitive equality.
func (id ID) EqualFold(other ID) bool {
	return strings.EqualFold(id.token, other.token)
}

// Compare orders identifiers case-insensitively. Tokens that differ only by
// case are ordered by their exact bytes so the order stays total.
func Compare(a, b ID) int {
	if c := strings.Compare(strings.ToLower(a.token), strings.ToLower(b.token)); c != 0 {
		return c
	}
	return strings.Compare(a.token, b.token)
}

// CompareFold is the pure case-insensitive comparator: tokens that differ only
// by case compare equal.
func CompareFold(a, b ID) int {
	return strings.Compare(strings.ToLower(a.token), strings.ToLower(b.token))
}

// Less is Compare(a, b) < 0, for sort.Slice.
func Less(a, b ID) bool {
	return Compare(a, b) < 0
}

// FromStrings converts raw tokens to identifiers, preserving order.
func FromStrings(tokens []string) []ID {
	ids := make([]ID, len(tokens))
	for i, t := range tokens {
		ids[i] = New(t)
	}
	return ids
}

// Strings returns the raw tokens of ids, preserving order.
func Strings(ids []ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.token
	}
	return out
}

// MarshalJSON encodes the identifier as a bare JSON string.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.token)
}

// UnmarshalJSON decodes a bare JSON string.
func (id *ID) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &id.token)
}
