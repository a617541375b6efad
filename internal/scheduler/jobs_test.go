package scheduler

import (
	"database/sql"
	"testing"
	"time"

	"github.com/aristath/advisor/internal/clientdata"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type stubExpirer struct {
	gotTTL  time.Duration
	expired int
}

func (s *stubExpirer) ExpireIdle(ttl time.Duration) int {
	s.gotTTL = ttl
	return s.expired
}

func TestCacheCleanupJob(t *testing.T) {
	db, err := sql.Open("sqlite", "file:scheduler_test?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, clientdata.EnsureSchema(db))

	repo := clientdata.NewRepository(db)
	require.NoError(t, repo.Store("robo_questions", "tolerance", "stale", -time.Minute))
	require.NoError(t, repo.Store("robo_questions", "capacity", "fresh", time.Hour))

	job := NewCacheCleanupJob(repo, zerolog.Nop())
	assert.Equal(t, "cache_cleanup", job.Name())
	require.NoError(t, job.Run())

	count, err := repo.Count("robo_questions")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSessionExpiryJob(t *testing.T) {
	expirer := &stubExpirer{expired: 3}
	job := NewSessionExpiryJob(expirer, 45*time.Minute, zerolog.Nop())

	assert.Equal(t, "session_expiry", job.Name())
	require.NoError(t, job.Run())
	assert.Equal(t, 45*time.Minute, expirer.gotTTL)
}
