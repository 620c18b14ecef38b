package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const namingResponse = `===== Skills Section =====
\textbf{Languages:} Go, Python \\
\textbf{Infrastructure:} Kubernetes, Postgres \\
===== Resume Filename =====
Edgeworks_PlatformEngineer_2025.pdf`

func TestParseNamingOutput(t *testing.T) {
	skills, filename, err := parseNamingOutput(namingResponse)
	require.NoError(t, err)
	assert.Contains(t, skills, "\\textbf{Languages:} Go, Python")
	assert.Contains(t, skills, "Kubernetes")
	assert.Equal(t, "Edgeworks_PlatformEngineer_2025", filename)
}

func TestParseNamingOutput_TrailingProse(t *testing.T) {
	out := namingResponse + "\nLet me know if you need changes."
	_, filename, err := parseNamingOutput(out)
	require.NoError(t, err)
	assert.Equal(t, "Edgeworks_PlatformEngineer_2025", filename)
}

func TestParseNamingOutput_MissingDelimiters(t *testing.T) {
	cases := map[string]string{
		"no delimiters":  "just some skills",
		"skills only":    "===== Skills Section =====\n\\textbf{Go}",
		"reversed order": "===== Resume Filename =====\nA.pdf\n===== Skills Section =====\nskills",
	}
	for name, out := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := parseNamingOutput(out)
			assert.Error(t, err)
		})
	}
}

func TestParseNamingOutput_EmptyParts(t *testing.T) {
	_, _, err := parseNamingOutput("===== Skills Section =====\n\n===== Resume Filename =====\nA.pdf")
	assert.Error(t, err)

	_, _, err = parseNamingOutput("===== Skills Section =====\nskills\n===== Resume Filename =====\n")
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Edgeworks_PlatformEngineer_2025.pdf", "Edgeworks_PlatformEngineer_2025"},
		{"Acme Corp Resume.tex", "Acme_Corp_Resume"},
		{"weird/..\\name!.pdf", "weirdname"},
		{"___", "Resume"},
		{"", "Resume"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sanitizeFilename(tc.in), "input %q", tc.in)
	}
}

func TestBuildResumeName_PrependsCandidate(t *testing.T) {
	assert.Equal(t, "Ada_Lovelace_Edgeworks_SRE_2025",
		buildResumeName("Ada Lovelace", "Edgeworks_SRE_2025"))
	assert.Equal(t, "Edgeworks_SRE_2025", buildResumeName("", "Edgeworks_SRE_2025"))
}

func TestTargetInfoFromFilename(t *testing.T) {
	company, role := targetInfoFromFilename("Edgeworks_PlatformEngineer_2025")
	assert.Equal(t, "Edgeworks", company)
	assert.Equal(t, "Platform Engineer", role)

	company, role = targetInfoFromFilename("AcmeCorp_Senior_Backend_Engineer")
	assert.Equal(t, "Acme Corp", company)
	assert.Equal(t, "Senior Backend Engineer", role)

	company, role = targetInfoFromFilename("Edgeworks")
	assert.Equal(t, "Edgeworks", company)
	assert.Empty(t, role)
}
