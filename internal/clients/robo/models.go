package robo

import "encoding/json"

// Kind selects one of the two questionnaires.
type Kind string

const (
	KindTolerance Kind = "tolerance"
	KindCapacity  Kind = "capacity"
)

// AnswerOption is a single selectable answer for a question.
type AnswerOption struct {
	AnswerText string `json:"answerText"`
}

// Question is one questionnaire entry.
type Question struct {
	QuestionText string         `json:"questionText"`
	Answers      []AnswerOption `json:"answers"`
}

// Questionnaire is the question set for one kind.
type Questionnaire struct {
	Type      string     `json:"type"`
	Questions []Question `json:"questions"`
}

// SubmittedAnswer pairs a question with the chosen option.
type SubmittedAnswer struct {
	QuestionIndex int `json:"questionIndex"`
	AnswerIndex   int `json:"answerIndex"`
}

// ScoreRequest is the submission payload for one questionnaire.
type ScoreRequest struct {
	Answers []SubmittedAnswer `json:"answers"`
}

// QuestionScore is the per-question breakdown in a score response.
type QuestionScore struct {
	QuestionText string  `json:"questionText"`
	Score        float64 `json:"score"`
}

// ScoreResult is the scoring backend's response for one questionnaire.
// Bucket is only populated by income-aware backend deployments.
type ScoreResult struct {
	TotalScore        float64         `json:"totalScore"`
	PerQuestionScores []QuestionScore `json:"perQuestionScores"`
	Category          string          `json:"category"`
	Bucket            string          `json:"bucket,omitempty"`
}

// BuildRequest asks the backend to construct a portfolio.
// Tickers is a space-joined ticker string, e.g. "SPY BND GLD".
type BuildRequest struct {
	RiskBucketCategory string `json:"riskBucketCategory"`
	Tickers            string `json:"tickers"`
}

// Allocation is one position in a built portfolio.
type Allocation struct {
	Ticker     string  `json:"ticker"`
	Percentage float64 `json:"percentage"`
}

// Portfolio is the backend's optimized allocation for a build request.
// RiskBucket is numeric in current backends but was a string in older
// ones, so it is decoded leniently.
type Portfolio struct {
	Name           string       `json:"name"`
	RiskBucket     json.Number  `json:"riskBucket"`
	ExpectedReturn float64      `json:"expectedReturn"`
	ExpectedRisk   float64      `json:"expectedRisk"`
	Allocations    []Allocation `json:"allocations"`
}

// QuestionnairePair holds both questionnaires fetched together.
type QuestionnairePair struct {
	Tolerance *Questionnaire
	Capacity  *Questionnaire
}

// ScorePair holds both score results submitted together.
type ScorePair struct {
	Tolerance *ScoreResult
	Capacity  *ScoreResult
}
