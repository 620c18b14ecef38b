package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestClassify_HTTPStatusCodes(t *testing.T) {
	tests := []struct {
		name  string
		code  int
		fatal bool
	}{
		{"bad request", 400, true},
		{"unauthorized", 401, true},
		{"forbidden", 403, true},
		{"not found", 404, true},
		{"rate limited", 429, false},
		{"server error", 500, false},
		{"bad gateway", 502, false},
		{"unavailable", 503, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &googleapi.Error{Code: tt.code, Message: tt.name}
			provErr := Classify(err)
			assert.Equal(t, tt.fatal, provErr.Fatal)
			assert.ErrorIs(t, provErr, err)
		})
	}
}

func TestClassify_UnknownErrorIsTransient(t *testing.T) {
	provErr := Classify(errors.New("connection reset by peer"))
	assert.False(t, provErr.Fatal)
}

func TestClassify_PassesThroughProviderError(t *testing.T) {
	original := &ProviderError{Message: "already classified", Fatal: true}
	assert.Same(t, original, Classify(original))
}

func TestProviderError_Message(t *testing.T) {
	err := &ProviderError{Message: "boom", Cause: errors.New("root")}
	assert.Contains(t, err.Error(), "transient")
	assert.Contains(t, err.Error(), "boom")

	fatal := &ProviderError{Message: "denied", Fatal: true}
	assert.Contains(t, fatal.Error(), "fatal")
	assert.Nil(t, fatal.Unwrap())
}

func TestCleanCodeBlock(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "hello", "hello"},
		{"json fence", "```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"latex fence", "```latex\n\\item Built X\n```", "\\item Built X"},
		{"bare fence", "```\n\\item Led Y\n```", "\\item Led Y"},
		{"fence with brace on first line", "```\n{\"b\":2}```", "{\"b\":2}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanCodeBlock(tt.in))
		})
	}
}
