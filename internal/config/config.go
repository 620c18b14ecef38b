// Package config provides configuration loading and validation for the
// tailoring pipeline.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

//go:embed config_schema.json
var configSchema string

// SectionConfig declares one experience section: where its marker sits in
// the template and which file holds its fact corpus.
type SectionConfig struct {
	ID        string `json:"id"`
	Header    string `json:"header"`
	Marker    string `json:"marker"`
	FactsFile string `json:"facts_file"`
}

// ModelConfig overrides the default model per tier.
type ModelConfig struct {
	Lite     string `json:"lite,omitempty"`
	Standard string `json:"standard,omitempty"`
	Advanced string `json:"advanced,omitempty"`
}

// Config is the candidate's tailoring configuration, loaded from a JSON
// file. Relative paths inside the file resolve against the file's own
// directory.
type Config struct {
	CandidateName  string          `json:"candidate_name"`
	Template       string          `json:"template"`
	OutputDir      string          `json:"output_dir,omitempty"`
	SkillsFile     string          `json:"skills_file,omitempty"`
	BackgroundFile string          `json:"background_file,omitempty"`
	APIKey         string          `json:"api_key,omitempty"`
	DatabaseURL    string          `json:"database_url,omitempty"`
	Models         ModelConfig     `json:"models,omitempty"`
	Sections       []SectionConfig `json:"sections"`

	// Directory of the config file, for resolving relative paths.
	baseDir string
}

// Load reads a configuration file, checks its shape against the embedded
// JSON Schema, and applies cross-field validation.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := schemas.ValidateJSONString(configSchema, string(data)); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	cfg.baseDir = filepath.Dir(path)

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks constraints the schema cannot express: marker and id
// uniqueness, and that referenced files exist.
func (c *Config) Validate() error {
	seenIDs := make(map[string]bool)
	seenMarkers := make(map[string]bool)
	for _, sec := range c.Sections {
		if seenIDs[sec.ID] {
			return fmt.Errorf("config error: duplicate section id %q", sec.ID)
		}
		if seenMarkers[sec.Marker] {
			return fmt.Errorf("config error: duplicate marker %q", sec.Marker)
		}
		seenIDs[sec.ID] = true
		seenMarkers[sec.Marker] = true

		if _, err := os.Stat(c.resolve(sec.FactsFile)); err != nil {
			return fmt.Errorf("config error: facts file for section %q not found: %s", sec.ID, sec.FactsFile)
		}
	}

	if _, err := os.Stat(c.resolve(c.Template)); err != nil {
		return fmt.Errorf("config error: template file not found: %s", c.Template)
	}
	return nil
}

// TemplatePath returns the resolved path of the LaTeX template.
func (c *Config) TemplatePath() string {
	return c.resolve(c.Template)
}

// OutputPath returns the resolved output directory.
func (c *Config) OutputPath() string {
	return c.resolve(c.OutputDir)
}

// LoadSections reads each section's fact corpus from disk. Facts are one
// per line; blank lines and lines starting with # are ignored.
func (c *Config) LoadSections() ([]types.ExperienceSection, error) {
	sections := make([]types.ExperienceSection, 0, len(c.Sections))
	for _, sec := range c.Sections {
		facts, err := readLines(c.resolve(sec.FactsFile))
		if err != nil {
			return nil, fmt.Errorf("failed to load facts for section %q: %w", sec.ID, err)
		}
		sections = append(sections, types.ExperienceSection{
			ID:     sec.ID,
			Header: sec.Header,
			Marker: sec.Marker,
			Facts:  facts,
		})
	}
	return sections, nil
}

// LoadSkills reads the candidate's skills inventory. Returns an empty
// string when no skills file is configured.
func (c *Config) LoadSkills() (string, error) {
	return c.readOptional(c.SkillsFile)
}

// LoadBackground reads the candidate's background notes used for cover
// letters. Returns an empty string when no background file is configured.
func (c *Config) LoadBackground() (string, error) {
	return c.readOptional(c.BackgroundFile)
}

func (c *Config) readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.resolve(path))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.baseDir == "" {
		return path
	}
	return filepath.Join(c.baseDir, path)
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}
