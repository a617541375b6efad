// Package events provides event management functionality.
package events

// EventType represents different event types
type EventType string

const (
	QuestionnairesLoaded EventType = "QUESTIONNAIRES_LOADED"
	QuestionnairesFailed EventType = "QUESTIONNAIRES_FAILED"
	AnswerRecorded       EventType = "ANSWER_RECORDED"
	PhaseChanged         EventType = "PHASE_CHANGED"
	ScoresReady          EventType = "SCORES_READY"
	ScoringFailed        EventType = "SCORING_FAILED"
	PortfolioBuilt       EventType = "PORTFOLIO_BUILT"
	SessionRestarted     EventType = "SESSION_RESTARTED"
	SessionExpired       EventType = "SESSION_EXPIRED"
	ErrorOccurred        EventType = "ERROR_OCCURRED"
)

// AllTypes lists every event type the stream endpoint can subscribe to.
var AllTypes = []EventType{
	QuestionnairesLoaded,
	QuestionnairesFailed,
	AnswerRecorded,
	PhaseChanged,
	ScoresReady,
	ScoringFailed,
	PortfolioBuilt,
	SessionRestarted,
	SessionExpired,
	ErrorOccurred,
}
