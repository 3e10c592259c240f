package errors

import (
	"unicode"
	"unicode/utf8"
)

// maxElementIDLen bounds element IDs, which end up in DOT output and in
// the cache keys of debug views.
const maxElementIDLen = 256

// ValidateElementID checks the identifier of a voltage level, node, line
// or multi-terminal element. IDs start with a letter, digit or underscore
// and continue with letters, digits and "_.:#/-". Whitespace and control
// characters are rejected.
func ValidateElementID(id string) error {
	switch {
	case id == "":
		return New(ErrCodeInvalidInput, "element ID cannot be empty")
	case len(id) > maxElementIDLen:
		return New(ErrCodeInvalidInput, "element ID too long (max %d bytes)", maxElementIDLen)
	case !utf8.ValidString(id):
		return New(ErrCodeInvalidInput, "element ID is not valid UTF-8")
	}

	for i, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "element ID %q contains control characters", id)
		}
		if !idRune(r, i == 0) {
			return New(ErrCodeInvalidInput, "invalid element ID: %q", id).At(id)
		}
	}
	return nil
}

func idRune(r rune, first bool) bool {
	if r == '_' || r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
		return true
	}
	if first {
		return false
	}
	switch r {
	case '.', ':', '#', '/', '-':
		return true
	}
	return false
}
