package policy

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and parsing of the content-policy file.
type Loader struct {
	filePath string
}

// NewLoader creates a new policy loader.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the policy file, returning the normalized denylist
// (lowercased, trimmed, deduplicated, blanks dropped).
func (l *Loader) Load() ([]string, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var config FileConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse policy yaml: %w", err)
	}

	terms := normalizeTerms(config.Denylist)
	if len(terms) == 0 {
		return nil, fmt.Errorf("policy file contains no usable denylist terms")
	}

	return terms, nil
}

func normalizeTerms(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	terms := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		terms = append(terms, t)
	}
	return terms
}
