package events

import (
	"encoding/json"
)

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// QuestionnairesLoadedData contains data for QuestionnairesLoaded events
type QuestionnairesLoadedData struct {
	SessionID      string `json:"session_id"`
	Generation     int    `json:"generation"`
	ToleranceCount int    `json:"tolerance_count"`
	CapacityCount  int    `json:"capacity_count"`
}

// EventType returns the event type for QuestionnairesLoadedData
func (d *QuestionnairesLoadedData) EventType() EventType {
	return QuestionnairesLoaded
}

// QuestionnairesFailedData contains data for QuestionnairesFailed events
type QuestionnairesFailedData struct {
	SessionID string `json:"session_id"`
	Error     string `json:"error"`
}

// EventType returns the event type for QuestionnairesFailedData
func (d *QuestionnairesFailedData) EventType() EventType {
	return QuestionnairesFailed
}

// AnswerRecordedData contains data for AnswerRecorded events
type AnswerRecordedData struct {
	SessionID     string `json:"session_id"`
	Phase         string `json:"phase"`
	QuestionIndex int    `json:"question_index"`
	AnswerIndex   int    `json:"answer_index"`
}

// EventType returns the event type for AnswerRecordedData
func (d *AnswerRecordedData) EventType() EventType {
	return AnswerRecorded
}

// PhaseChangedData contains data for PhaseChanged events
type PhaseChangedData struct {
	SessionID string `json:"session_id"`
	OldPhase  string `json:"old_phase"`
	NewPhase  string `json:"new_phase"`
	Progress  int    `json:"progress"`
}

// EventType returns the event type for PhaseChangedData
func (d *PhaseChangedData) EventType() EventType {
	return PhaseChanged
}

// ScoresReadyData contains data for ScoresReady events
type ScoresReadyData struct {
	SessionID        string `json:"session_id"`
	ToleranceBucket  string `json:"tolerance_bucket"`
	CapacityCategory string `json:"capacity_category"`
}

// EventType returns the event type for ScoresReadyData
func (d *ScoresReadyData) EventType() EventType {
	return ScoresReady
}

// ScoringFailedData contains data for ScoringFailed events
type ScoringFailedData struct {
	SessionID string `json:"session_id"`
	Error     string `json:"error"`
}

// EventType returns the event type for ScoringFailedData
func (d *ScoringFailedData) EventType() EventType {
	return ScoringFailed
}

// PortfolioBuiltData contains data for PortfolioBuilt events
type PortfolioBuiltData struct {
	Name           string  `json:"name"`
	RiskBucket     string  `json:"risk_bucket"`
	Categories     int     `json:"categories"`
	ExpectedReturn float64 `json:"expected_return"`
}

// EventType returns the event type for PortfolioBuiltData
func (d *PortfolioBuiltData) EventType() EventType {
	return PortfolioBuilt
}

// SessionRestartedData contains data for SessionRestarted events
type SessionRestartedData struct {
	SessionID  string `json:"session_id"`
	Generation int    `json:"generation"`
}

// EventType returns the event type for SessionRestartedData
func (d *SessionRestartedData) EventType() EventType {
	return SessionRestarted
}

// SessionExpiredData contains data for SessionExpired events
type SessionExpiredData struct {
	SessionID string `json:"session_id"`
	IdleFor   string `json:"idle_for"`
}

// EventType returns the event type for SessionExpiredData
func (d *SessionExpiredData) EventType() EventType {
	return SessionExpired
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}

// convertMapToStruct converts a map[string]interface{} to a struct
func convertMapToStruct(m map[string]interface{}, v interface{}) error {
	jsonBytes, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonBytes, v)
}

// GetTypedData attempts to convert the Data map to typed EventData
// Returns the typed data if conversion is successful, nil otherwise
func (e *Event) GetTypedData() EventData {
	if e.Data == nil {
		return nil
	}

	switch e.Type {
	case QuestionnairesLoaded:
		var data QuestionnairesLoadedData
		if err := convertMapToStruct(e.Data, &data); err == nil {
			return &data
		}
	case QuestionnairesFailed:
		var data QuestionnairesFailedData
		if err := convertMapToStruct(e.Data, &data); err == nil {
			return &data
		}
	case AnswerRecorded:
		var data AnswerRecordedData
		if err := convertMapToStruct(e.Data, &data); err == nil {
			return &data
		}
	case PhaseChanged:
		var data PhaseChangedData
		if err := convertMapToStruct(e.Data, &data); err == nil {
			return &data
		}
	case ScoresReady:
		var data ScoresReadyData
		if err := convertMapToStruct(e.Data, &data); err == nil {
			return &data
		}
	case ScoringFailed:
		var data ScoringFailedData
		if err := convertMapToStruct(e.Data, &data); err == nil {
			return &data
		}
	case PortfolioBuilt:
		var data PortfolioBuiltData
		if err := convertMapToStruct(e.Data, &data); err == nil {
			return &data
		}
	case SessionRestarted:
		var data SessionRestartedData
		if err := convertMapToStruct(e.Data, &data); err == nil {
			return &data
		}
	case SessionExpired:
		var data SessionExpiredData
		if err := convertMapToStruct(e.Data, &data); err == nil {
			return &data
		}
	case ErrorOccurred:
		var data ErrorEventData
		if err := convertMapToStruct(e.Data, &data); err == nil {
			return &data
		}
	}

	return nil
}
