package assessment

import (
	"testing"

	"github.com/aristath/advisor/internal/clients/robo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questionnaire(kind string, count int) *robo.Questionnaire {
	q := &robo.Questionnaire{Type: kind}
	for i := 0; i < count; i++ {
		q.Questions = append(q.Questions, robo.Question{
			QuestionText: kind,
			Answers:      []robo.AnswerOption{{AnswerText: "a"}, {AnswerText: "b"}, {AnswerText: "c"}},
		})
	}
	return q
}

func loadedSession(t *testing.T, tolCount, capCount int, incomeEnabled bool) Session {
	t.Helper()

	s := NewSession("test", incomeEnabled, 0)
	return s.WithQuestionnaires(&robo.QuestionnairePair{
		Tolerance: questionnaire("tolerance", tolCount),
		Capacity:  questionnaire("capacity", capCount),
	})
}

// answerAndNext answers the current question and advances.
func answerAndNext(t *testing.T, s Session) Session {
	t.Helper()

	s, err := s.SelectAnswer(0)
	require.NoError(t, err)
	s, effect, err := s.Next()
	require.NoError(t, err)
	require.Equal(t, EffectNone, effect)
	return s
}

func TestNewSessionStartsLoading(t *testing.T) {
	s := NewSession("abc", true, 50000)
	assert.Equal(t, PhaseLoading, s.Phase)
	assert.Equal(t, 1, s.Generation)
	assert.Equal(t, int64(50000), s.AnnualIncome)
	assert.Equal(t, 0, s.Progress())
}

func TestLoadingBlocksNavigation(t *testing.T) {
	s := NewSession("abc", false, 0)

	_, _, err := s.Next()
	assert.ErrorIs(t, err, ErrStillLoading)

	_, err = s.Previous()
	assert.ErrorIs(t, err, ErrStillLoading)

	_, err = s.SelectAnswer(0)
	assert.ErrorIs(t, err, ErrStillLoading)
}

func TestWithQuestionnairesEntersTolerance(t *testing.T) {
	s := loadedSession(t, 5, 4, false)

	assert.Equal(t, PhaseTolerance, s.Phase)
	assert.Equal(t, 0, s.CurrentQuestion)
	assert.Len(t, s.ToleranceAnswers, 5)
	assert.Len(t, s.CapacityAnswers, 4)
	assert.False(t, s.ToleranceAnswers.IsAnswered(0))
}

func TestNextBlockedOnUnansweredQuestion(t *testing.T) {
	s := loadedSession(t, 5, 4, false)

	next, effect, err := s.Next()
	assert.ErrorIs(t, err, ErrUnanswered)
	assert.Equal(t, EffectNone, effect)
	assert.Equal(t, PhaseTolerance, next.Phase)
	assert.Equal(t, 0, next.CurrentQuestion)
}

func TestNextAdvancesWithinPhase(t *testing.T) {
	s := loadedSession(t, 5, 4, false)

	s = answerAndNext(t, s)
	assert.Equal(t, PhaseTolerance, s.Phase)
	assert.Equal(t, 1, s.CurrentQuestion)
}

func TestNextCrossesIntoCapacity(t *testing.T) {
	s := loadedSession(t, 2, 4, false)

	s = answerAndNext(t, s)
	s = answerAndNext(t, s)

	assert.Equal(t, PhaseCapacity, s.Phase)
	assert.Equal(t, 0, s.CurrentQuestion)
}

func TestNextAtLastCapacityQuestionRequestsSubmit(t *testing.T) {
	s := loadedSession(t, 1, 1, false)
	s = answerAndNext(t, s)

	s, err := s.SelectAnswer(2)
	require.NoError(t, err)

	next, effect, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, EffectSubmit, effect)
	assert.Equal(t, PhaseCapacity, next.Phase, "session stays pre-submit until results arrive")
}

func TestNextEntersIncomePhaseWhenEnabled(t *testing.T) {
	s := loadedSession(t, 1, 1, true)
	s = answerAndNext(t, s)

	s, err := s.SelectAnswer(0)
	require.NoError(t, err)

	s, effect, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, EffectNone, effect)
	assert.Equal(t, PhaseIncome, s.Phase)
	assert.NotEmpty(t, s.IncomeEstimate)

	// Income has no unanswered gate; Next submits.
	_, effect, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, EffectSubmit, effect)
}

func TestPreviousWithinAndAcrossPhases(t *testing.T) {
	s := loadedSession(t, 2, 2, false)
	s = answerAndNext(t, s)
	s = answerAndNext(t, s)
	require.Equal(t, PhaseCapacity, s.Phase)

	// Back across the phase boundary to the last tolerance question.
	s, err := s.Previous()
	require.NoError(t, err)
	assert.Equal(t, PhaseTolerance, s.Phase)
	assert.Equal(t, 1, s.CurrentQuestion)

	s, err = s.Previous()
	require.NoError(t, err)
	assert.Equal(t, 0, s.CurrentQuestion)

	// First question of the first phase: no-op.
	s, err = s.Previous()
	require.NoError(t, err)
	assert.Equal(t, PhaseTolerance, s.Phase)
	assert.Equal(t, 0, s.CurrentQuestion)
}

func TestPreviousFromIncomeReturnsToCapacity(t *testing.T) {
	s := loadedSession(t, 1, 3, true)
	s = answerAndNext(t, s)
	for i := 0; i < 3; i++ {
		s = answerAndNext(t, s)
	}
	require.Equal(t, PhaseIncome, s.Phase)

	s, err := s.Previous()
	require.NoError(t, err)
	assert.Equal(t, PhaseCapacity, s.Phase)
	assert.Equal(t, 2, s.CurrentQuestion)
}

func TestWithResultsEntersResults(t *testing.T) {
	s := loadedSession(t, 1, 1, false)

	s = s.WithResults(&robo.ScorePair{
		Tolerance: &robo.ScoreResult{TotalScore: 12, Category: "Medium", Bucket: "Growth"},
		Capacity:  &robo.ScoreResult{TotalScore: 8, Category: "Low"},
	})

	assert.Equal(t, PhaseResults, s.Phase)
	assert.Equal(t, 100, s.Progress())
	assert.Equal(t, "Growth", s.RecommendedBucket())
}

func TestRecommendedBucketDefaultsToModerate(t *testing.T) {
	s := loadedSession(t, 1, 1, false)
	assert.Equal(t, "Moderate", s.RecommendedBucket())

	s = s.WithResults(&robo.ScorePair{
		Tolerance: &robo.ScoreResult{TotalScore: 5, Category: "Low"},
		Capacity:  &robo.ScoreResult{TotalScore: 5, Category: "Low"},
	})
	assert.Equal(t, "Moderate", s.RecommendedBucket())
}

func TestRestartedClearsStateAndBumpsGeneration(t *testing.T) {
	s := loadedSession(t, 2, 2, true)
	s = answerAndNext(t, s)
	s = s.WithIncome(80000)

	restarted := s.Restarted()

	assert.Equal(t, PhaseLoading, restarted.Phase)
	assert.Equal(t, s.Generation+1, restarted.Generation)
	assert.Nil(t, restarted.Tolerance)
	assert.Empty(t, restarted.ToleranceAnswers)
	assert.Equal(t, int64(0), restarted.AnnualIncome)
	assert.Empty(t, restarted.IncomeEstimate)
	assert.Nil(t, restarted.ToleranceScore)
	assert.Equal(t, s.ID, restarted.ID)
}

func TestValidateForSubmit(t *testing.T) {
	s := loadedSession(t, 2, 1, false)

	messages := s.ValidateForSubmit()
	assert.Len(t, messages, 3, "each unanswered question is a violation")

	s, _ = s.SelectAnswer(0)
	s, _, _ = s.Next()
	s, _ = s.SelectAnswer(1)
	s, _, _ = s.Next()
	s, _ = s.SelectAnswer(2)

	assert.Empty(t, s.ValidateForSubmit())
}

func TestScoreRequestsAreNormalized(t *testing.T) {
	s := loadedSession(t, 2, 1, false)
	s, _ = s.SelectAnswer(1)
	s, _, _ = s.Next()
	s, _ = s.SelectAnswer(0)
	s, _, _ = s.Next()
	s, _ = s.SelectAnswer(2)

	tolerance, capacity := s.ScoreRequests()
	require.Len(t, tolerance.Answers, 2)
	assert.Equal(t, robo.SubmittedAnswer{QuestionIndex: 0, AnswerIndex: 1}, tolerance.Answers[0])
	assert.Equal(t, robo.SubmittedAnswer{QuestionIndex: 1, AnswerIndex: 0}, tolerance.Answers[1])
	require.Len(t, capacity.Answers, 1)
	assert.Equal(t, robo.SubmittedAnswer{QuestionIndex: 0, AnswerIndex: 2}, capacity.Answers[0])
}

func TestProgress(t *testing.T) {
	// 5 tolerance + 4 capacity, no income: 9 units.
	s := loadedSession(t, 5, 4, false)
	assert.Equal(t, 0, s.Progress())

	s = answerAndNext(t, s)
	assert.Equal(t, 11, s.Progress()) // round(100*1/9)

	for i := 0; i < 4; i++ {
		s = answerAndNext(t, s)
	}
	require.Equal(t, PhaseCapacity, s.Phase)
	assert.Equal(t, 56, s.Progress()) // round(100*5/9)

	// 1+1 with income: 3 units, income phase = 2 done.
	si := loadedSession(t, 1, 1, true)
	si = answerAndNext(t, si)
	si = answerAndNext(t, si)
	require.Equal(t, PhaseIncome, si.Phase)
	assert.Equal(t, 67, si.Progress()) // round(100*2/3)
}

func TestSelectAnswerDoesNotMutateReceiver(t *testing.T) {
	s := loadedSession(t, 2, 1, false)

	next, err := s.SelectAnswer(1)
	require.NoError(t, err)
	assert.True(t, next.ToleranceAnswers.IsAnswered(0))
	assert.False(t, s.ToleranceAnswers.IsAnswered(0))
}
