package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Key identifies a cached value. Elements are strings or parameter
// objects; two keys are equal when their JSON forms are equal.
type Key []any

// K builds a key.
func K(parts ...any) Key { return Key(parts) }

// serialize returns the key id and the JSON form of each element.
func (k Key) serialize() (string, []string, error) {
	parts := make([]string, len(k))
	for i, el := range k {
		b, err := json.Marshal(el)
		if err != nil {
			return "", nil, fmt.Errorf("query key element %d: %w", i, err)
		}
		parts[i] = string(b)
	}
	return "[" + strings.Join(parts, ",") + "]", parts, nil
}

// String returns the serialised form, or a placeholder for unencodable keys.
func (k Key) String() string {
	id, _, err := k.serialize()
	if err != nil {
		return fmt.Sprintf("%v", []any(k))
	}
	return id
}

func hasPrefix(parts, prefix []string) bool {
	if len(prefix) > len(parts) {
		return false
	}
	for i := range prefix {
		if parts[i] != prefix[i] {
			return false
		}
	}
	return true
}
