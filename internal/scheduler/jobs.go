package scheduler

import (
	"time"

	"github.com/aristath/advisor/internal/clientdata"
	"github.com/rs/zerolog"
)

// SessionExpirer removes idle sessions. Implemented by the assessment
// service.
type SessionExpirer interface {
	ExpireIdle(ttl time.Duration) int
}

// CacheCleanupJob purges expired entries from all client data caches.
type CacheCleanupJob struct {
	repo *clientdata.Repository
	log  zerolog.Logger
}

// NewCacheCleanupJob creates the cache cleanup job.
func NewCacheCleanupJob(repo *clientdata.Repository, log zerolog.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		repo: repo,
		log:  log.With().Str("job", "cache_cleanup").Logger(),
	}
}

// Name returns the job name.
func (j *CacheCleanupJob) Name() string { return "cache_cleanup" }

// Run deletes all expired cache rows.
func (j *CacheCleanupJob) Run() error {
	results, err := j.repo.DeleteAllExpired()
	if err != nil {
		return err
	}

	total := int64(0)
	for _, n := range results {
		total += n
	}
	if total > 0 {
		j.log.Info().Int64("deleted", total).Msg("Purged expired cache entries")
	}
	return nil
}

// SessionExpiryJob removes assessment sessions that have been idle
// longer than the configured TTL.
type SessionExpiryJob struct {
	sessions SessionExpirer
	ttl      time.Duration
	log      zerolog.Logger
}

// NewSessionExpiryJob creates the session expiry job.
func NewSessionExpiryJob(sessions SessionExpirer, ttl time.Duration, log zerolog.Logger) *SessionExpiryJob {
	return &SessionExpiryJob{
		sessions: sessions,
		ttl:      ttl,
		log:      log.With().Str("job", "session_expiry").Logger(),
	}
}

// Name returns the job name.
func (j *SessionExpiryJob) Name() string { return "session_expiry" }

// Run expires idle sessions.
func (j *SessionExpiryJob) Run() error {
	if expired := j.sessions.ExpireIdle(j.ttl); expired > 0 {
		j.log.Info().Int("expired", expired).Msg("Expired idle sessions")
	}
	return nil
}
