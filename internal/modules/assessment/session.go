// Package assessment drives a client's risk assessment: questionnaire
// loading, question navigation, the optional income step, score
// submission, and restart.
package assessment

import (
	"errors"
	"math"
	"time"

	"github.com/aristath/advisor/internal/clients/robo"
	"github.com/aristath/advisor/internal/modules/answers"
	"github.com/aristath/advisor/internal/modules/income"
)

// Phase is one stage of the assessment flow.
type Phase string

const (
	PhaseLoading   Phase = "loading"
	PhaseTolerance Phase = "tolerance"
	PhaseCapacity  Phase = "capacity"
	PhaseIncome    Phase = "income"
	PhaseResults   Phase = "results"
)

// Navigation and transition errors.
var (
	// ErrUnanswered blocks Next while the current question has no
	// recorded answer.
	ErrUnanswered = errors.New("current question must be answered before advancing")

	// ErrNotInQuestionPhase rejects answer recording outside the
	// tolerance/capacity phases.
	ErrNotInQuestionPhase = errors.New("no question is active in the current phase")

	// ErrStillLoading rejects navigation before questionnaires arrive.
	ErrStillLoading = errors.New("questionnaires are still loading")
)

// Effect tells the session owner what follow-up a transition requires.
type Effect int

const (
	// EffectNone means the transition is complete.
	EffectNone Effect = iota
	// EffectSubmit means both answer sets must be submitted for
	// scoring; the session stays in its pre-submit phase until the
	// results arrive.
	EffectSubmit
)

// Session is the full assessment state for one client.
// Sessions are values; every transition returns a new Session and
// leaves the receiver untouched.
type Session struct {
	ID         string `json:"sessionId"`
	Generation int    `json:"generation"`

	Phase           Phase `json:"phase"`
	CurrentQuestion int   `json:"currentQuestion"`

	Tolerance *robo.Questionnaire `json:"tolerance,omitempty"`
	Capacity  *robo.Questionnaire `json:"capacity,omitempty"`

	ToleranceAnswers answers.Set `json:"toleranceAnswers"`
	CapacityAnswers  answers.Set `json:"capacityAnswers"`

	IncomeEnabled  bool   `json:"incomeEnabled"`
	AnnualIncome   int64  `json:"annualIncome"`
	IncomeEstimate string `json:"incomeEstimate,omitempty"`

	ToleranceScore *robo.ScoreResult `json:"toleranceScore,omitempty"`
	CapacityScore  *robo.ScoreResult `json:"capacityScore,omitempty"`

	// LastError is the retryable fetch/submit failure message, empty
	// when the last operation succeeded.
	LastError string `json:"lastError,omitempty"`

	LastActivity time.Time `json:"-"`

	defaultIncome int64
}

// NewSession returns a fresh session in the Loading phase.
func NewSession(id string, incomeEnabled bool, defaultIncome int64) Session {
	return Session{
		ID:            id,
		Generation:    1,
		Phase:         PhaseLoading,
		IncomeEnabled: incomeEnabled,
		AnnualIncome:  defaultIncome,
		defaultIncome: defaultIncome,
		LastActivity:  time.Now(),
	}
}

// WithQuestionnaires installs the fetched questionnaires and enters the
// Tolerance phase. Answer sets are initialized to unset.
func (s Session) WithQuestionnaires(pair *robo.QuestionnairePair) Session {
	s.Tolerance = pair.Tolerance
	s.Capacity = pair.Capacity
	s.ToleranceAnswers = answers.Initialize(len(pair.Tolerance.Questions))
	s.CapacityAnswers = answers.Initialize(len(pair.Capacity.Questions))
	s.Phase = PhaseTolerance
	s.CurrentQuestion = 0
	s.LastError = ""
	return s
}

// WithFailure records a retryable collaborator failure without any
// other state change.
func (s Session) WithFailure(message string) Session {
	s.LastError = message
	return s
}

// WithResults installs both score results and enters Results.
func (s Session) WithResults(pair *robo.ScorePair) Session {
	s.ToleranceScore = pair.Tolerance
	s.CapacityScore = pair.Capacity
	s.Phase = PhaseResults
	s.CurrentQuestion = 0
	s.LastError = ""
	return s
}

// WithIncome records the client's annual income and the derived
// investment range estimate.
func (s Session) WithIncome(annualIncome int64) Session {
	s.AnnualIncome = annualIncome
	s.IncomeEstimate = income.Estimate(annualIncome)
	return s
}

// Restarted clears all answers, income, results, and errors, bumps the
// generation, and re-enters Loading. In-flight operations tagged with
// the old generation must be discarded by the owner.
func (s Session) Restarted() Session {
	next := NewSession(s.ID, s.IncomeEnabled, s.defaultIncome)
	next.Generation = s.Generation + 1
	return next
}

// SelectAnswer records the chosen option for the current question of
// the active phase.
func (s Session) SelectAnswer(answerIndex int) (Session, error) {
	switch s.Phase {
	case PhaseTolerance:
		s.ToleranceAnswers = s.ToleranceAnswers.SetAnswer(s.CurrentQuestion, answerIndex)
	case PhaseCapacity:
		s.CapacityAnswers = s.CapacityAnswers.SetAnswer(s.CurrentQuestion, answerIndex)
	case PhaseLoading:
		return s, ErrStillLoading
	default:
		return s, ErrNotInQuestionPhase
	}
	return s, nil
}

// activeSet returns the active phase's answer set and question count.
func (s Session) activeSet() (answers.Set, int) {
	switch s.Phase {
	case PhaseTolerance:
		return s.ToleranceAnswers, len(s.Tolerance.Questions)
	case PhaseCapacity:
		return s.CapacityAnswers, len(s.Capacity.Questions)
	default:
		return nil, 0
	}
}

// Next advances one question, crossing into the next phase at the last
// question. Advancing past an unanswered question is never allowed.
// At the end of the flow Next returns EffectSubmit: the session stays
// in its pre-submit phase until the owner applies the score results.
func (s Session) Next() (Session, Effect, error) {
	switch s.Phase {
	case PhaseLoading:
		return s, EffectNone, ErrStillLoading
	case PhaseResults:
		return s, EffectNone, ErrNotInQuestionPhase
	case PhaseIncome:
		// Income always has a value, so there is no answered gate.
		return s, EffectSubmit, nil
	}

	set, count := s.activeSet()
	if !set.IsAnswered(s.CurrentQuestion) {
		return s, EffectNone, ErrUnanswered
	}

	if s.CurrentQuestion < count-1 {
		s.CurrentQuestion++
		return s, EffectNone, nil
	}

	// Last question of the phase.
	switch s.Phase {
	case PhaseTolerance:
		s.Phase = PhaseCapacity
		s.CurrentQuestion = 0
		return s, EffectNone, nil
	case PhaseCapacity:
		if s.IncomeEnabled {
			s.Phase = PhaseIncome
			s.CurrentQuestion = 0
			if s.IncomeEstimate == "" {
				s = s.WithIncome(s.AnnualIncome)
			}
			return s, EffectNone, nil
		}
		return s, EffectSubmit, nil
	}

	return s, EffectNone, nil
}

// Previous steps one question back, crossing into the prior phase at
// index 0. At the very first question it is a no-op.
func (s Session) Previous() (Session, error) {
	switch s.Phase {
	case PhaseLoading:
		return s, ErrStillLoading
	case PhaseResults:
		return s, ErrNotInQuestionPhase
	case PhaseIncome:
		s.Phase = PhaseCapacity
		s.CurrentQuestion = len(s.Capacity.Questions) - 1
		return s, nil
	}

	if s.CurrentQuestion > 0 {
		s.CurrentQuestion--
		return s, nil
	}

	if s.Phase == PhaseCapacity {
		s.Phase = PhaseTolerance
		s.CurrentQuestion = len(s.Tolerance.Questions) - 1
	}
	// Already at the first tolerance question: no-op.
	return s, nil
}

// ValidateForSubmit runs the completeness validation on both answer
// sets. All violations from both sets are collected.
func (s Session) ValidateForSubmit() []string {
	var errs []string

	tol := s.ToleranceAnswers.ValidateComplete(len(s.Tolerance.Questions))
	errs = append(errs, tol.Errors...)

	capRes := s.CapacityAnswers.ValidateComplete(len(s.Capacity.Questions))
	errs = append(errs, capRes.Errors...)

	return errs
}

// ScoreRequests builds the normalized submission payloads.
func (s Session) ScoreRequests() (tolerance, capacity robo.ScoreRequest) {
	for _, a := range s.ToleranceAnswers.Normalized() {
		tolerance.Answers = append(tolerance.Answers, robo.SubmittedAnswer{
			QuestionIndex: a.QuestionIndex,
			AnswerIndex:   a.AnswerIndex,
		})
	}
	for _, a := range s.CapacityAnswers.Normalized() {
		capacity.Answers = append(capacity.Answers, robo.SubmittedAnswer{
			QuestionIndex: a.QuestionIndex,
			AnswerIndex:   a.AnswerIndex,
		})
	}
	return tolerance, capacity
}

// RecommendedBucket is the risk bucket pre-selected on the results
// step: the tolerance score's bucket when the backend provides one,
// Moderate otherwise.
func (s Session) RecommendedBucket() string {
	if s.ToleranceScore != nil && s.ToleranceScore.Bucket != "" {
		return s.ToleranceScore.Bucket
	}
	return "Moderate"
}

// Progress reports flow completion as a percentage. One unit per
// question plus, when enabled, one unit for the income step.
func (s Session) Progress() int {
	if s.Tolerance == nil || s.Capacity == nil {
		return 0
	}

	total := len(s.Tolerance.Questions) + len(s.Capacity.Questions)
	if s.IncomeEnabled {
		total++
	}
	if total == 0 {
		return 0
	}

	var done int
	switch s.Phase {
	case PhaseTolerance:
		done = s.CurrentQuestion
	case PhaseCapacity:
		done = len(s.Tolerance.Questions) + s.CurrentQuestion
	case PhaseIncome:
		done = len(s.Tolerance.Questions) + len(s.Capacity.Questions)
	case PhaseResults:
		done = total
	}

	return int(math.Round(100 * float64(done) / float64(total)))
}
