// Package prompts loads externalized LLM prompt templates. Templates live
// in JSON files (key -> prompt text) embedded at compile time, and use
// {{.Var}} placeholders filled at call time. The pipeline never parses or
// validates the prompt prose itself; it is opaque configuration.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

var (
	cache   = make(map[string]map[string]string)
	cacheMu sync.RWMutex
)

// Get retrieves a prompt by filename (e.g. "converter.json") and key.
func Get(filename, key string) (string, error) {
	templates, err := loadFile(filename)
	if err != nil {
		return "", err
	}

	tmpl, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return tmpl, nil
}

// MustGet retrieves a prompt, panicking if the file or key is missing.
// Use for prompts required at initialization time.
func MustGet(filename, key string) string {
	tmpl, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return tmpl
}

// Format replaces {{.Key}} placeholders in template with values from vars.
// Placeholders with no matching key are left untouched.
func Format(template string, vars map[string]string) string {
	result := template
	for key, value := range vars {
		result = strings.ReplaceAll(result, fmt.Sprintf("{{.%s}}", key), value)
	}
	return result
}

// List returns the prompt keys available in a file.
func List(filename string) ([]string, error) {
	templates, err := loadFile(filename)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(templates))
	for key := range templates {
		keys = append(keys, key)
	}
	return keys, nil
}

func loadFile(filename string) (map[string]string, error) {
	cacheMu.RLock()
	if templates, ok := cache[filename]; ok {
		cacheMu.RUnlock()
		return templates, nil
	}
	cacheMu.RUnlock()

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	var templates map[string]string
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	cacheMu.Lock()
	cache[filename] = templates
	cacheMu.Unlock()

	return templates, nil
}
