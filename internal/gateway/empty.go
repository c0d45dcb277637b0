package gateway

import "strings"

// isEmptyValue reports whether an extracted value is vacuous: nil, an
// empty-after-trim string, a zero-length sequence, or a mapping whose every
// value is itself empty (a zero-key mapping counts). Numbers and booleans
// are never empty.
func isEmptyValue(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []interface{}:
		return len(x) == 0
	case map[string]interface{}:
		for _, elem := range x {
			if !isEmptyValue(elem) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
