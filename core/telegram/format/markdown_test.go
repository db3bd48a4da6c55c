package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeMarkdownV1(t *testing.T) {
	out, err := EscapeMarkdown("a_b*c[d`e", MarkdownV1)
	require.NoError(t, err)
	assert.Equal(t, `a\_b\*c\[d\`+"`"+`e`, out)
}

func TestEscapeMarkdownV2(t *testing.T) {
	out, err := EscapeMarkdown("a.b-c!d", MarkdownV2)
	require.NoError(t, err)
	assert.Equal(t, `a\.b\-c\!d`, out)
}

func TestEscapeMarkdownUnsupported(t *testing.T) {
	_, err := EscapeMarkdown("x", 3)
	assert.Error(t, err)
}

func TestEscapeV1PlainTextUntouched(t *testing.T) {
	assert.Equal(t, "молоко 3 шт", EscapeV1("молоко 3 шт"))
}
