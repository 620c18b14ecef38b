package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownKeys(t *testing.T) {
	keys := []string{
		"global-filter",
		"skills-and-filename",
		"facts-filter",
		"bullets-content",
		"bullets-latex",
		"cover-letter",
	}
	for _, key := range keys {
		prompt, err := Get("converter.json", key)
		require.NoError(t, err, "key %s", key)
		assert.NotEmpty(t, prompt)
	}
}

func TestGet_MissingKey(t *testing.T) {
	_, err := Get("converter.json", "does-not-exist")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist")
}

func TestGet_MissingFile(t *testing.T) {
	_, err := Get("nope.json", "anything")
	assert.Error(t, err)
}

func TestFormat_ReplacesPlaceholders(t *testing.T) {
	out := Format("Hello {{.Name}}, welcome to {{.Company}}", map[string]string{
		"Name":    "Ada",
		"Company": "Initech",
	})
	assert.Equal(t, "Hello Ada, welcome to Initech", out)
}

func TestFormat_LeavesUnknownPlaceholders(t *testing.T) {
	out := Format("{{.Known}} and {{.Unknown}}", map[string]string{"Known": "yes"})
	assert.Equal(t, "yes and {{.Unknown}}", out)
}

func TestList_ReturnsAllKeys(t *testing.T) {
	keys, err := List("converter.json")
	require.NoError(t, err)
	assert.Contains(t, keys, "facts-filter")
	assert.Contains(t, keys, "bullets-content")
}

func TestMustGet_PanicsOnMissing(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("converter.json", "missing-key")
	})
}
