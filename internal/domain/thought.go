package domain

import "time"

// Thought is a single journal entry. All fields are immutable after
// creation; there is no edit or delete path.
type Thought struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Content   string    `json:"content"`
	IsPublic  bool      `json:"isPublic"`
	Mood      *Mood     `json:"mood"`
	AuthorID  string    `json:"authorId,omitempty"`
}

// ThoughtQuery is the storage-level view of a listing request.
// Results are always ordered by creation time descending.
type ThoughtQuery struct {
	PublicOnly bool
	AuthorID   string // when set, restrict to this author instead of the public feed
	Mood       MoodFilter
	Limit      int // 0 = no limit
}
