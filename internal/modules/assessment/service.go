package assessment

import (
	"context"
	"sync"
	"time"

	"github.com/aristath/advisor/internal/clients/robo"
	"github.com/aristath/advisor/internal/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// QuestionSource is the scoring backend surface the service needs.
type QuestionSource interface {
	GetAllQuestions(ctx context.Context) (*robo.QuestionnairePair, error)
	SubmitAllAnswers(ctx context.Context, tolerance, capacity robo.ScoreRequest) (*robo.ScorePair, error)
}

// Options configures new sessions.
type Options struct {
	IncomeStep    bool
	DefaultIncome int64
}

// Service owns all live assessment sessions and applies transitions.
// Sessions are values; the service serializes mutations behind one
// mutex and tags async completions with the session generation so a
// restart discards late-arriving results.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]Session

	source QuestionSource
	bus    *events.Bus
	log    zerolog.Logger
	opts   Options
}

// NewService creates the assessment service.
func NewService(source QuestionSource, bus *events.Bus, opts Options, log zerolog.Logger) *Service {
	return &Service{
		sessions: make(map[string]Session),
		source:   source,
		bus:      bus,
		log:      log.With().Str("service", "assessment").Logger(),
		opts:     opts,
	}
}

// Create starts a new session and kicks off the questionnaire fetch in
// the background. The session is returned immediately in the Loading
// phase.
func (s *Service) Create(incomeEnabled bool) Session {
	session := NewSession(uuid.NewString(), incomeEnabled, s.opts.DefaultIncome)

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.log.Info().Str("session_id", session.ID).Bool("income", incomeEnabled).Msg("Session created")

	go s.fetchQuestionnaires(session.ID, session.Generation)

	return session
}

// CreateDefault starts a session with the configured income-step
// setting.
func (s *Service) CreateDefault() Session {
	return s.Create(s.opts.IncomeStep)
}

// fetchQuestionnaires loads both questionnaires and applies them to the
// session, unless the session has been restarted or removed since the
// fetch was issued.
func (s *Service) fetchQuestionnaires(id string, generation int) {
	pair, err := s.source.GetAllQuestions(context.Background())

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok || session.Generation != generation {
		s.log.Debug().
			Str("session_id", id).
			Int("generation", generation).
			Msg("Discarding stale questionnaire fetch")
		return
	}

	if err != nil {
		session = session.WithFailure(err.Error())
		s.sessions[id] = session
		s.log.Warn().Err(err).Str("session_id", id).Msg("Questionnaire fetch failed")
		s.bus.EmitTyped("assessment", &events.QuestionnairesFailedData{
			SessionID: id,
			Error:     err.Error(),
		})
		return
	}

	session = session.WithQuestionnaires(pair)
	session.LastActivity = time.Now()
	s.sessions[id] = session

	s.bus.EmitTyped("assessment", &events.QuestionnairesLoadedData{
		SessionID:      id,
		Generation:     generation,
		ToleranceCount: len(pair.Tolerance.Questions),
		CapacityCount:  len(pair.Capacity.Questions),
	})
	s.emitPhaseChange(id, PhaseLoading, session)
}

func (s *Service) emitPhaseChange(id string, oldPhase Phase, session Session) {
	s.bus.EmitTyped("assessment", &events.PhaseChangedData{
		SessionID: id,
		OldPhase:  string(oldPhase),
		NewPhase:  string(session.Phase),
		Progress:  session.Progress(),
	})
}

// Get returns a snapshot of a session.
func (s *Service) Get(id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return session, nil
}

// RecommendedBucket returns the risk bucket the session's scores point to.
func (s *Service) RecommendedBucket(id string) (string, error) {
	session, err := s.Get(id)
	if err != nil {
		return "", err
	}
	return session.RecommendedBucket(), nil
}

// Answer records the chosen option for the session's current question.
func (s *Service) Answer(id string, answerIndex int) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}

	next, err := session.SelectAnswer(answerIndex)
	if err != nil {
		return session, err
	}

	next.LastActivity = time.Now()
	s.sessions[id] = next

	s.bus.EmitTyped("assessment", &events.AnswerRecordedData{
		SessionID:     id,
		Phase:         string(next.Phase),
		QuestionIndex: next.CurrentQuestion,
		AnswerIndex:   answerIndex,
	})

	return next, nil
}

// Next advances the session. At the end of the flow it validates both
// answer sets and submits them for scoring; the session moves to
// Results only when both submissions succeed.
func (s *Service) Next(ctx context.Context, id string) (Session, error) {
	s.mu.Lock()

	session, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return Session{}, ErrSessionNotFound
	}

	next, effect, err := session.Next()
	if err != nil {
		s.mu.Unlock()
		return session, err
	}

	if effect == EffectNone {
		next.LastActivity = time.Now()
		s.sessions[id] = next
		if next.Phase != session.Phase {
			s.emitPhaseChange(id, session.Phase, next)
		}
		s.mu.Unlock()
		return next, nil
	}

	s.mu.Unlock()
	return s.submit(ctx, id)
}

// Previous steps the session back one question.
func (s *Service) Previous(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}

	next, err := session.Previous()
	if err != nil {
		return session, err
	}

	next.LastActivity = time.Now()
	s.sessions[id] = next
	if next.Phase != session.Phase {
		s.emitPhaseChange(id, session.Phase, next)
	}

	return next, nil
}

// submit validates both answer sets and scores them concurrently.
// A partial success is a whole failure: state is committed only when
// both results arrive, and only if the session generation is unchanged.
func (s *Service) submit(ctx context.Context, id string) (Session, error) {
	s.mu.Lock()

	session, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return Session{}, ErrSessionNotFound
	}

	if messages := session.ValidateForSubmit(); len(messages) > 0 {
		s.mu.Unlock()
		return session, &ValidationError{Messages: messages}
	}

	generation := session.Generation
	tolerance, capacity := session.ScoreRequests()
	s.mu.Unlock()

	pair, submitErr := s.source.SubmitAllAnswers(ctx, tolerance, capacity)

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok = s.sessions[id]
	if !ok || session.Generation != generation {
		s.log.Debug().Str("session_id", id).Msg("Discarding stale score submission")
		if !ok {
			return Session{}, ErrSessionNotFound
		}
		return session, nil
	}

	if submitErr != nil {
		session = session.WithFailure(submitErr.Error())
		s.sessions[id] = session
		s.log.Warn().Err(submitErr).Str("session_id", id).Msg("Score submission failed")
		s.bus.EmitTyped("assessment", &events.ScoringFailedData{
			SessionID: id,
			Error:     submitErr.Error(),
		})
		return session, &CollaboratorError{Op: "score submission", Err: submitErr}
	}

	oldPhase := session.Phase
	session = session.WithResults(pair)
	session.LastActivity = time.Now()
	s.sessions[id] = session

	s.bus.EmitTyped("assessment", &events.ScoresReadyData{
		SessionID:        id,
		ToleranceBucket:  session.RecommendedBucket(),
		CapacityCategory: pair.Capacity.Category,
	})
	s.emitPhaseChange(id, oldPhase, session)

	return session, nil
}

// SetIncome records the client's annual income and returns the session
// with the recomputed investment range estimate.
func (s *Service) SetIncome(id string, annualIncome int64) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}

	next := session.WithIncome(annualIncome)
	next.LastActivity = time.Now()
	s.sessions[id] = next

	return next, nil
}

// Restart resets the session and re-triggers the questionnaire fetch.
// The generation bump ensures any in-flight fetch or submission for
// the old run is discarded on arrival.
func (s *Service) Restart(id string) (Session, error) {
	s.mu.Lock()

	session, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return Session{}, ErrSessionNotFound
	}

	next := session.Restarted()
	s.sessions[id] = next
	s.mu.Unlock()

	s.log.Info().Str("session_id", id).Int("generation", next.Generation).Msg("Session restarted")
	s.bus.EmitTyped("assessment", &events.SessionRestartedData{
		SessionID:  id,
		Generation: next.Generation,
	})

	go s.fetchQuestionnaires(id, next.Generation)

	return next, nil
}

// Retry re-issues the failed operation for a session: the questionnaire
// fetch when still Loading, the score submission otherwise. No other
// state is mutated.
func (s *Service) Retry(ctx context.Context, id string) (Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return Session{}, ErrSessionNotFound
	}

	if session.Phase == PhaseLoading {
		go s.fetchQuestionnaires(id, session.Generation)
		return session, nil
	}

	return s.submit(ctx, id)
}

// Count returns the number of live sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ExpireIdle removes sessions idle for longer than ttl.
// Returns the number of sessions removed.
func (s *Service) ExpireIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	s.mu.Lock()
	var expired []Session
	for id, session := range s.sessions {
		if session.LastActivity.Before(cutoff) {
			expired = append(expired, session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, session := range expired {
		s.log.Info().Str("session_id", session.ID).Msg("Session expired")
		s.bus.EmitTyped("assessment", &events.SessionExpiredData{
			SessionID: session.ID,
			IdleFor:   time.Since(session.LastActivity).Round(time.Second).String(),
		})
	}

	return len(expired)
}
