package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ThoughtStore is the persistence port the service writes and reads through.
type ThoughtStore interface {
	InsertThought(ctx context.Context, t *Thought) error
	ListThoughts(ctx context.Context, q ThoughtQuery) ([]*Thought, error)
}

// CreateThought is the validated shape of a submission.
type CreateThought struct {
	Content  string
	IsPublic bool
	Mood     *string // nil or "" means no mood
	AuthorID string  // "" for anonymous submissions
}

// ListThoughts describes a listing request before scope resolution.
type ListThoughts struct {
	Scope    string // "all" (default) or "me"
	Mood     string // raw mood query parameter
	AuthorID string // resolved caller identity, "" if anonymous
}

const (
	ScopeAll = "all"
	ScopeMe  = "me"
)

// ThoughtService implements submission and listing on top of a ThoughtStore
// and a ContentPolicy. Rate limiting happens upstream in the HTTP layer.
type ThoughtService struct {
	store    ThoughtStore
	policy   *ContentPolicy
	maxItems int
	now      func() time.Time
}

// NewThoughtService wires a service. maxItems caps listing results
// (0 = unlimited). now defaults to time.Now and exists for tests.
func NewThoughtService(store ThoughtStore, policy *ContentPolicy, maxItems int, now func() time.Time) *ThoughtService {
	if now == nil {
		now = time.Now
	}
	return &ThoughtService{
		store:    store,
		policy:   policy,
		maxItems: maxItems,
		now:      now,
	}
}

// Create validates and persists a new thought. Validation order: content
// presence, mood vocabulary, denylist. The id and timestamp are assigned
// here, never taken from the caller.
func (s *ThoughtService) Create(ctx context.Context, in CreateThought) (*Thought, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	var mood *Mood
	if in.Mood != nil && *in.Mood != "" {
		if !IsKnownMood(*in.Mood) {
			return nil, ErrUnknownMood
		}
		m := Mood(*in.Mood)
		mood = &m
	}

	if term := s.policy.Check(content); term != "" {
		return nil, &ContentPolicyError{Term: term}
	}

	t := &Thought{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC(),
		Content:   content,
		IsPublic:  in.IsPublic,
		Mood:      mood,
		AuthorID:  in.AuthorID,
	}

	if err := s.store.InsertThought(ctx, t); err != nil {
		return nil, &StorageError{Op: "insert", Err: err}
	}
	return t, nil
}

// List returns a filtered, newest-first view of thoughts.
// scope=me requires a resolved identity and returns the caller's entries
// regardless of visibility; anything else yields the public feed.
func (s *ThoughtService) List(ctx context.Context, in ListThoughts) ([]*Thought, error) {
	q := ThoughtQuery{
		Mood:  ParseMoodFilter(in.Mood),
		Limit: s.maxItems,
	}

	switch in.Scope {
	case ScopeMe:
		if in.AuthorID == "" {
			return nil, ErrIdentityRequired
		}
		q.AuthorID = in.AuthorID
	default:
		q.PublicOnly = true
	}

	thoughts, err := s.store.ListThoughts(ctx, q)
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	if thoughts == nil {
		thoughts = []*Thought{}
	}
	return thoughts, nil
}
