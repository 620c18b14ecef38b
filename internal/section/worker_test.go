package section

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/types"
)

// fakeInvoker routes each call to a response based on which template it
// received, mirroring the worker's three sequential sub-steps.
type fakeInvoker struct {
	filterOut  string
	filterErr  error
	contentOut string
	contentErr error
	markupOut  string
	markupErr  error
	calls      []string
}

func (f *fakeInvoker) Invoke(_ context.Context, template string, _ map[string]string, _ llm.ModelTier) (string, error) {
	switch template {
	case "filter":
		f.calls = append(f.calls, "filter")
		return f.filterOut, f.filterErr
	case "content":
		f.calls = append(f.calls, "content")
		return f.contentOut, f.contentErr
	case "markup":
		f.calls = append(f.calls, "markup")
		return f.markupOut, f.markupErr
	}
	return "", nil
}

func testTemplates() Templates {
	return Templates{FactsFilter: "filter", Content: "content", Markup: "markup"}
}

func testSection() types.ExperienceSection {
	return types.ExperienceSection{
		ID:     "edge",
		Header: "Edge Platform | Senior Engineer",
		Marker: "%%EDGE_BULLETS_BLOCK%%",
		Facts:  []string{"Cut p99 latency by 40%", "Migrated 200 services"},
	}
}

func TestProcess_Success(t *testing.T) {
	inv := &fakeInvoker{
		filterOut:  "Cut p99 latency by 40%",
		contentOut: "Built X\nLed Y",
		markupOut:  "\\begin{itemize}\n\\item Built X\n\\item Led Y\n\\end{itemize}",
	}
	w := NewWorker(inv, testTemplates())

	result := w.Process(context.Background(), testSection(), "job text", "Initech", "Engineer")
	require.Equal(t, types.SectionOK, result.Status)
	assert.Equal(t, []string{"Cut p99 latency by 40%"}, result.FilteredFacts)
	assert.Equal(t, []string{"Built X", "Led Y"}, result.Bullets)
	assert.Contains(t, result.Fragment, "    \\item Built X")
	assert.Equal(t, []string{"filter", "content", "markup"}, inv.calls)
}

func TestProcess_EmptyFilterShortCircuits(t *testing.T) {
	inv := &fakeInvoker{filterOut: "NONE"}
	w := NewWorker(inv, testTemplates())

	result := w.Process(context.Background(), testSection(), "job text", "Initech", "Engineer")
	assert.Equal(t, types.SectionSkipped, result.Status)
	assert.Empty(t, result.Bullets)
	// Neither content nor markup steps may run for a skipped section.
	assert.Equal(t, []string{"filter"}, inv.calls)
}

func TestProcess_FilterFailureMarksSectionFailed(t *testing.T) {
	inv := &fakeInvoker{filterErr: &llm.ProviderError{Message: "exhausted retries"}}
	w := NewWorker(inv, testTemplates())

	result := w.Process(context.Background(), testSection(), "job text", "Initech", "Engineer")
	assert.Equal(t, types.SectionFailed, result.Status)
	assert.Contains(t, result.FailReason, "facts filter failed")
}

func TestProcess_ContentFailureMarksSectionFailed(t *testing.T) {
	inv := &fakeInvoker{
		filterOut:  "relevant fact",
		contentErr: &llm.ProviderError{Message: "exhausted retries"},
	}
	w := NewWorker(inv, testTemplates())

	result := w.Process(context.Background(), testSection(), "job text", "Initech", "Engineer")
	assert.Equal(t, types.SectionFailed, result.Status)
	assert.Contains(t, result.FailReason, "bullet drafting failed")
}

func TestProcess_MarkupFailureFallsBackToPlainWrap(t *testing.T) {
	inv := &fakeInvoker{
		filterOut:  "relevant fact",
		contentOut: "Built X",
		markupErr:  &llm.ProviderError{Message: "exhausted retries"},
	}
	w := NewWorker(inv, testTemplates())

	result := w.Process(context.Background(), testSection(), "job text", "Initech", "Engineer")
	require.Equal(t, types.SectionOK, result.Status)
	assert.Contains(t, result.Fragment, "\\begin{itemize}")
	assert.Contains(t, result.Fragment, "\\item Built X")
}

func TestProcess_StripsCodeFenceFromMarkup(t *testing.T) {
	inv := &fakeInvoker{
		filterOut:  "relevant fact",
		contentOut: "Built X",
		markupOut:  "```latex\n\\begin{itemize}\n\\item Built X\n\\end{itemize}\n```",
	}
	w := NewWorker(inv, testTemplates())

	result := w.Process(context.Background(), testSection(), "job text", "Initech", "Engineer")
	require.Equal(t, types.SectionOK, result.Status)
	assert.NotContains(t, result.Fragment, "```")
}

func TestCleanBulletLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain lines", "Built X\nLed Y", []string{"Built X", "Led Y"}},
		{"dashes and stars", "- Built X\n* Led Y\n• Shipped Z", []string{"Built X", "Led Y", "Shipped Z"}},
		{"numbered", "1. Built X\n2) Led Y", []string{"Built X", "Led Y"}},
		{"blank lines dropped", "Built X\n\n\nLed Y\n", []string{"Built X", "Led Y"}},
		{"capped at four", "a\nb\nc\nd\ne\nf", []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanBulletLines(tt.in))
		})
	}
}

func TestIndentFragment(t *testing.T) {
	out := IndentFragment("\\begin{itemize}\n  \\item a\n\n\\end{itemize}")
	for _, line := range strings.Split(out, "\n") {
		assert.True(t, strings.HasPrefix(line, "    "), "line %q not indented", line)
	}
}

func TestSnippet_CutsOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", jdSnippetLimit) // 2 bytes per rune
	out := snippet(long)
	assert.LessOrEqual(t, len(out), jdSnippetLimit)
	assert.True(t, utf8.ValidString(out))

	short := "short description"
	assert.Equal(t, short, snippet(short))
}
