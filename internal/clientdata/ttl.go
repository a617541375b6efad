package clientdata

import "time"

// TTL constants for different data types.
// Questionnaires change rarely, symbol search results drift with listings.
const (
	TTLQuestionnaire = 24 * time.Hour
	TTLSymbolSearch  = 1 * time.Hour
)
