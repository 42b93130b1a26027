package domain

import (
	"strings"
	"sync"
)

// defaultDenylist is used when no policy file is configured.
var defaultDenylist = []string{
	"viagra",
	"casino bonus",
	"crypto giveaway",
	"free followers",
}

// ContentPolicy holds the denylist of forbidden substrings. Matching is
// case-insensitive. The term set can be swapped at runtime by the policy
// reloader; reads take a shared lock so in-flight checks see a consistent set.
type ContentPolicy struct {
	mu    sync.RWMutex
	terms []string
}

// NewContentPolicy builds a policy from terms. Terms are lowercased and
// blank entries dropped. Passing nil installs the built-in default denylist.
func NewContentPolicy(terms []string) *ContentPolicy {
	if terms == nil {
		terms = defaultDenylist
	}
	p := &ContentPolicy{}
	p.Replace(terms)
	return p
}

// Replace swaps the active term set.
func (p *ContentPolicy) Replace(terms []string) {
	normalized := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			normalized = append(normalized, t)
		}
	}
	p.mu.Lock()
	p.terms = normalized
	p.mu.Unlock()
}

// Check returns the first denylisted term found in content, or "" if clean.
func (p *ContentPolicy) Check(content string) string {
	lowered := strings.ToLower(content)

	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, term := range p.terms {
		if strings.Contains(lowered, term) {
			return term
		}
	}
	return ""
}

// Size returns the number of active terms.
func (p *ContentPolicy) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.terms)
}
