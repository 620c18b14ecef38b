package rendering

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

// SkillsPlaceholder is the template token replaced by the generated
// skills block.
const SkillsPlaceholder = "%%%SKILLS_BLOCK%%%"

// removedBlockComment replaces the marker of a section that produced no
// usable content, so the template line stays syntactically valid LaTeX.
const removedBlockComment = "% (no content generated for this section)"

// Assemble performs literal marker substitution: each configured section's
// marker is replaced by that section's fragment, or by a removal comment
// when the section was skipped or failed. Every configured marker (and the
// skills placeholder) must be present in the template before any
// substitution happens — a missing marker is a TemplateMismatchError and
// no compile is attempted. Assembly is deterministic: the same template
// and results always yield byte-identical output.
func Assemble(template, skillsBlock string, sections []types.ExperienceSection, results map[string]*types.SectionResult) (string, error) {
	if !strings.Contains(template, SkillsPlaceholder) {
		return "", &TemplateMismatchError{Marker: SkillsPlaceholder}
	}
	for _, sec := range sections {
		if !strings.Contains(template, sec.Marker) {
			return "", &TemplateMismatchError{Marker: sec.Marker, SectionID: sec.ID}
		}
	}

	out := strings.ReplaceAll(template, SkillsPlaceholder, skillsBlock)
	for _, sec := range sections {
		res := results[sec.ID]
		if res.Usable() {
			out = strings.ReplaceAll(out, sec.Marker, res.Fragment)
		} else {
			out = strings.ReplaceAll(out, sec.Marker, removedBlockComment)
		}
	}
	return out, nil
}
