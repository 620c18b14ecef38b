package rendering

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/types"
)

const testTemplate = `\documentclass{article}
\begin{document}
%%%SKILLS_BLOCK%%%
\section{Edge}
%%A%%
\section{Whisper}
%%B%%
\end{document}`

func twoSections() []types.ExperienceSection {
	return []types.ExperienceSection{
		{ID: "a", Header: "Edge", Marker: "%%A%%"},
		{ID: "b", Header: "Whisper", Marker: "%%B%%"},
	}
}

func okResult(id, fragment string) *types.SectionResult {
	return &types.SectionResult{SectionID: id, Status: types.SectionOK, Fragment: fragment}
}

func TestAssemble_SubstitutesMarkers(t *testing.T) {
	results := map[string]*types.SectionResult{
		"a": okResult("a", "\\begin{itemize}\n\\item Built X\n\\end{itemize}"),
		"b": okResult("b", "\\begin{itemize}\n\\item Led Y\n\\end{itemize}"),
	}

	out, err := Assemble(testTemplate, "\\textbf{Skills:} Go", twoSections(), results)
	require.NoError(t, err)
	assert.Contains(t, out, "\\item Built X")
	assert.Contains(t, out, "\\item Led Y")
	assert.Contains(t, out, "\\textbf{Skills:} Go")
	assert.NotContains(t, out, "%%A%%")
	assert.NotContains(t, out, "%%B%%")
	assert.NotContains(t, out, SkillsPlaceholder)
}

func TestAssemble_RemovesMarkerForSkippedSection(t *testing.T) {
	results := map[string]*types.SectionResult{
		"a": okResult("a", "\\item Built X"),
		"b": {SectionID: "b", Status: types.SectionSkipped},
	}

	out, err := Assemble(testTemplate, "skills", twoSections(), results)
	require.NoError(t, err)
	assert.NotContains(t, out, "%%B%%")
	assert.Contains(t, out, removedBlockComment)
}

func TestAssemble_RemovesMarkerForFailedSection(t *testing.T) {
	results := map[string]*types.SectionResult{
		"a": {SectionID: "a", Status: types.SectionFailed, FailReason: "provider down"},
		"b": okResult("b", "\\item Led Y"),
	}

	out, err := Assemble(testTemplate, "skills", twoSections(), results)
	require.NoError(t, err)
	assert.NotContains(t, out, "%%A%%")
	assert.Contains(t, out, "\\item Led Y")
}

func TestAssemble_MissingMarkerFailsBeforeSubstitution(t *testing.T) {
	templateWithoutB := `\documentclass{article}
%%%SKILLS_BLOCK%%%
%%A%%`

	_, err := Assemble(templateWithoutB, "skills", twoSections(), map[string]*types.SectionResult{
		"a": okResult("a", "\\item Built X"),
		"b": okResult("b", "\\item Led Y"),
	})
	require.Error(t, err)
	var mismatch *TemplateMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "%%B%%", mismatch.Marker)
	assert.Equal(t, "b", mismatch.SectionID)
}

func TestAssemble_MissingSkillsPlaceholder(t *testing.T) {
	_, err := Assemble("%%A%%\n%%B%%", "skills", twoSections(), nil)
	var mismatch *TemplateMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, SkillsPlaceholder, mismatch.Marker)
}

func TestAssemble_Idempotent(t *testing.T) {
	results := map[string]*types.SectionResult{
		"a": okResult("a", "\\item Built X"),
		"b": {SectionID: "b", Status: types.SectionSkipped},
	}

	first, err := Assemble(testTemplate, "skills", twoSections(), results)
	require.NoError(t, err)
	second, err := Assemble(testTemplate, "skills", twoSections(), results)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCleanupAuxFiles(t *testing.T) {
	dir := t.TempDir()
	files := []string{"resume.pdf", "resume.tex", "resume.aux", "resume.log", "resume.synctex.gz"}
	for _, name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	CleanupAuxFiles(dir, map[string]bool{"resume.pdf": true, "resume.tex": true})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var remaining []string
	for _, e := range entries {
		remaining = append(remaining, e.Name())
	}
	assert.ElementsMatch(t, []string{"resume.pdf", "resume.tex"}, remaining)
}
