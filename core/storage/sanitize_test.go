package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKey(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "groceries", "groceries"},
		{"lowercased", "Weekend BBQ", "weekend_bbq"},
		{"inner spaces collapse", "my   shopping   list", "my_shopping_list"},
		{"punctuation replaced", "mom&dad: food!", "mom_dad__food"},
		{"path separators neutered", "../../etc/passwd", "etc_passwd"},
		{"leading trailing junk trimmed", "  ..list-- ", "list"},
		{"unicode whitespace", "a b", "a_b"},
		{"cyrillic replaced", "продукты", "untitled_list"},
		{"empty", "", FallbackKey},
		{"only junk", " ._- ", FallbackKey},
		{"reserved device name", "CON", "con_list"},
		{"reserved with digit", "com1", "com1_list"},
		{"hyphen and underscore kept", "to-do_list", "to-do_list"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeKey(tc.raw))
		})
	}
}

// Keys ride inside inline-button callback data, which Telegram caps at
// 64 bytes, so overly long names must truncate deterministically.
func TestSanitizeKeyCapsLength(t *testing.T) {
	long := strings.Repeat("grocery stores ", 20)

	key := SanitizeKey(long)
	assert.LessOrEqual(t, len(key), 48)
	assert.Equal(t, key, SanitizeKey(key))

	// Truncation landing on a separator must not leave trailing junk.
	edge := strings.Repeat("abcde ", 8) + "x"
	keyEdge := SanitizeKey(edge)
	assert.LessOrEqual(t, len(keyEdge), 48)
	assert.False(t, strings.HasSuffix(keyEdge, "_"))
	assert.Equal(t, keyEdge, SanitizeKey(keyEdge))
}

// Sanitizing an already-sanitized key must be a no-op, otherwise a key
// read back from disk could address a different file than the one it
// was written to.
func TestSanitizeKeyIdempotent(t *testing.T) {
	raws := []string{
		"groceries", "Weekend BBQ", "mom&dad: food!", "../../etc/passwd",
		"", " ._- ", "CON", "lpt9", "a b", "продукты", "to-do_list",
	}
	for _, raw := range raws {
		once := SanitizeKey(raw)
		assert.Equal(t, once, SanitizeKey(once), "raw=%q", raw)
	}
}
