package storage

import (
	"strings"
	"unicode"
)

const (
	// DefaultKey is the list auto-created for every user; it can never be deleted.
	DefaultKey = "default"
	// FallbackKey is returned when a name sanitizes down to nothing.
	FallbackKey = "untitled_list"

	// maxKeyLen bounds key length. Keys travel inside inline-button
	// callback data, which Telegram caps at 64 bytes including the
	// \f<unique>| framing.
	maxKeyLen = 48
)

// Windows device names cannot be used as file stems regardless of extension.
var reservedKeys = map[string]struct{}{
	"con": {}, "prn": {}, "aux": {}, "nul": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {},
	"com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {},
	"lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

// SanitizeKey derives a storage key from a user-supplied list name.
// The mapping is deterministic and idempotent; two names that sanitize
// to the same key address the same list.
func SanitizeKey(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_' || r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteByte('_')
		}
	}

	key := strings.Trim(b.String(), " ._-")
	key = strings.Join(strings.Fields(key), "_")
	key = strings.ToLower(key)

	// Only ASCII is left at this point, so byte slicing cannot split a rune.
	if len(key) > maxKeyLen {
		key = strings.TrimRight(key[:maxKeyLen], " ._-")
	}

	if key == "" {
		return FallbackKey
	}
	if _, reserved := reservedKeys[key]; reserved {
		return key + "_list"
	}
	return key
}
