package assessment

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// ValidationError carries all completeness violations found before a
// submission. It never reaches the network.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// CollaboratorError wraps a fetch or submit failure from the scoring
// backend. These are retryable; the session stays in its pre-failure
// phase.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
