// Package answers holds the per-questionnaire answer collection and its
// completeness validation.
package answers

import (
	"fmt"
	"sort"
)

// Unset marks a question that has not been answered yet.
const Unset = -1

// Answer records the chosen option for one question.
type Answer struct {
	QuestionIndex int `json:"questionIndex"`
	AnswerIndex   int `json:"answerIndex"`
}

// Set is an answer collection for a single questionnaire.
// The zero value is an empty set; use Initialize for a pre-sized one.
type Set []Answer

// Initialize returns a Set with one unset entry per question.
func Initialize(questionCount int) Set {
	set := make(Set, questionCount)
	for i := range set {
		set[i] = Answer{QuestionIndex: i, AnswerIndex: Unset}
	}
	return set
}

// SetAnswer upserts the answer for a question and returns a new Set.
// The receiver is never mutated.
func (s Set) SetAnswer(questionIndex, answerIndex int) Set {
	next := make(Set, len(s))
	copy(next, s)

	for i := range next {
		if next[i].QuestionIndex == questionIndex {
			next[i].AnswerIndex = answerIndex
			return next
		}
	}

	return append(next, Answer{QuestionIndex: questionIndex, AnswerIndex: answerIndex})
}

// IsAnswered reports whether a question has a recorded answer.
func (s Set) IsAnswered(questionIndex int) bool {
	for _, a := range s {
		if a.QuestionIndex == questionIndex {
			return a.AnswerIndex != Unset
		}
	}
	return false
}

// AnsweredCount returns how many questions have recorded answers.
func (s Set) AnsweredCount() int {
	count := 0
	for _, a := range s {
		if a.AnswerIndex != Unset {
			count++
		}
	}
	return count
}

// Normalized returns a copy sorted by question index, the order the
// scoring backend expects.
func (s Set) Normalized() Set {
	next := make(Set, len(s))
	copy(next, s)
	sort.Slice(next, func(i, j int) bool {
		return next[i].QuestionIndex < next[j].QuestionIndex
	})
	return next
}

// ValidationResult holds the outcome of a completeness check.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// ValidateComplete checks that the set is ready for submission.
// All violations are collected, not just the first.
func (s Set) ValidateComplete(expectedCount int) ValidationResult {
	var errors []string

	if len(s) != expectedCount {
		errors = append(errors, fmt.Sprintf("Expected %d answers, but received %d", expectedCount, len(s)))
	}

	seen := make(map[int]bool, len(s))
	duplicates := false
	for pos, a := range s {
		if a.QuestionIndex < 0 || a.QuestionIndex >= expectedCount {
			errors = append(errors, fmt.Sprintf("Invalid question index %d at position %d", a.QuestionIndex, pos))
		}
		if a.AnswerIndex < 0 {
			errors = append(errors, fmt.Sprintf("Invalid answer index %d at position %d", a.AnswerIndex, pos))
		}
		if seen[a.QuestionIndex] {
			duplicates = true
		}
		seen[a.QuestionIndex] = true
	}
	if duplicates {
		errors = append(errors, "Duplicate question indices found")
	}

	return ValidationResult{
		IsValid: len(errors) == 0,
		Errors:  errors,
	}
}
