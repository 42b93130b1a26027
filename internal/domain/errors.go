package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyContent is returned when a submission has no content after trimming.
var ErrEmptyContent = errors.New("thought content cannot be empty")

// ErrUnknownMood is returned when a submission carries a mood outside the
// recognized vocabulary.
var ErrUnknownMood = errors.New("unrecognized mood")

// ErrIdentityRequired is returned when a listing asks for scope=me without
// a resolvable caller identity.
var ErrIdentityRequired = errors.New("identity required for scope=me")

// ContentPolicyError is returned when a submission matches the denylist.
// The offending term is not echoed back to the caller.
type ContentPolicyError struct {
	Term string
}

func (e *ContentPolicyError) Error() string {
	return "content violates the posting policy"
}

// IsValidationError reports whether err should surface as a 400 to the caller.
func IsValidationError(err error) bool {
	var pe *ContentPolicyError
	return errors.Is(err, ErrEmptyContent) ||
		errors.Is(err, ErrUnknownMood) ||
		errors.As(err, &pe)
}

// StorageError wraps a persistence failure so handlers can map it to a 500
// while keeping the underlying message.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
