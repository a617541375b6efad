// Package selection validates a client's chosen asset categories for
// portfolio construction.
package selection

import "fmt"

// MaxItems is the hard cap on categories in a single portfolio.
const MaxItems = 10

// Validation error messages, surfaced verbatim to clients.
const (
	ErrMsgEmpty      = "Please select at least one asset category for your portfolio"
	ErrMsgTooMany    = "Maximum 10 asset categories allowed in portfolio"
	ErrMsgDuplicates = "Duplicate asset categories found in selection"
)

// Result holds the outcome of validating a selection.
type Result struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Validate checks a selection against the portfolio rules.
// Rules are evaluated in order and each appends at most one error.
func Validate(items []string) Result {
	var errors []string

	if len(items) == 0 {
		errors = append(errors, ErrMsgEmpty)
	}
	if len(items) > MaxItems {
		errors = append(errors, ErrMsgTooMany)
	}
	if hasDuplicates(items) {
		errors = append(errors, ErrMsgDuplicates)
	}

	return Result{
		IsValid: len(errors) == 0,
		Errors:  errors,
	}
}

func hasDuplicates(items []string) bool {
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if seen[item] {
			return true
		}
		seen[item] = true
	}
	return false
}

// ToggleError reports why a toggle was rejected.
type ToggleError struct {
	Item   string
	Reason string
}

func (e *ToggleError) Error() string {
	return fmt.Sprintf("cannot toggle %q: %s", e.Item, e.Reason)
}

// AttemptToggle adds item to the selection if absent, removes it if
// present. Returns the new selection, or an error when the resulting
// selection would violate the rules. The input slice is never mutated.
func AttemptToggle(items []string, item string) ([]string, error) {
	// Removal first: removing can only shrink the set.
	for i, existing := range items {
		if existing == item {
			next := make([]string, 0, len(items)-1)
			next = append(next, items[:i]...)
			next = append(next, items[i+1:]...)
			return next, nil
		}
	}

	if len(items)+1 > MaxItems {
		return nil, &ToggleError{Item: item, Reason: ErrMsgTooMany}
	}

	next := make([]string, 0, len(items)+1)
	next = append(next, items...)
	next = append(next, item)
	return next, nil
}
