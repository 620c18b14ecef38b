package section

import "strings"

// CleanBulletLines normalizes raw model output into bullet strings:
// non-empty lines with list markers and numbering stripped, capped at
// MaxBullets. Models sometimes number output despite instructions.
func CleanBulletLines(content string) []string {
	var bullets []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = stripListMarker(line)
		if line == "" {
			continue
		}
		bullets = append(bullets, line)
		if len(bullets) == MaxBullets {
			break
		}
	}
	return bullets
}

func stripListMarker(line string) string {
	for _, prefix := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	// Numbered forms: "1. text", "2) text"
	if len(line) >= 3 && line[0] >= '0' && line[0] <= '9' {
		rest := line[1:]
		if strings.HasPrefix(rest, ". ") || strings.HasPrefix(rest, ") ") {
			return strings.TrimSpace(rest[2:])
		}
	}
	return line
}

// IndentFragment indents every non-empty line of a LaTeX fragment for
// insertion at the template marker's position.
func IndentFragment(fragment string) string {
	var lines []string
	for _, line := range strings.Split(fragment, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, "    "+line)
		}
	}
	return strings.Join(lines, "\n")
}
