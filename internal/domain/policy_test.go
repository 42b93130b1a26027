package domain

import "testing"

func TestContentPolicyCheck(t *testing.T) {
	p := NewContentPolicy([]string{"spamword", "Free Money"})

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"clean content", "just a quiet thought", ""},
		{"exact term", "spamword", "spamword"},
		{"term inside content", "this contains spamword somewhere", "spamword"},
		{"match is case-insensitive", "SPAMWORD!!!", "spamword"},
		{"multi-word term normalized to lowercase", "get FREE MONEY now", "free money"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Check(tt.content); got != tt.want {
				t.Errorf("Check(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestContentPolicyReplace(t *testing.T) {
	p := NewContentPolicy([]string{"old-term"})

	if got := p.Check("has old-term inside"); got == "" {
		t.Fatal("Check() missed the initial term")
	}

	p.Replace([]string{"new-term", "  ", ""})

	if got := p.Check("has old-term inside"); got != "" {
		t.Errorf("Check() = %q after Replace, old term should be gone", got)
	}
	if got := p.Check("has new-term inside"); got != "new-term" {
		t.Errorf("Check() = %q, want %q", got, "new-term")
	}
	if p.Size() != 1 {
		t.Errorf("Size() = %d, want 1 (blank terms dropped)", p.Size())
	}
}

func TestContentPolicyDefaultDenylist(t *testing.T) {
	p := NewContentPolicy(nil)
	if p.Size() == 0 {
		t.Fatal("NewContentPolicy(nil) should install the built-in denylist")
	}
}
