package clientdata

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", "file:clientdata_test?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, EnsureSchema(db))

	for _, table := range AllTables {
		_, err := db.Exec("DELETE FROM " + table)
		require.NoError(t, err)
	}

	return db
}

func TestStoreAndGetIfFresh(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	payload := map[string]string{"hello": "world"}
	err := repo.Store("robo_questions", "tolerance", payload, time.Hour)
	require.NoError(t, err)

	data, err := repo.GetIfFresh("robo_questions", "tolerance")
	require.NoError(t, err)
	require.NotNil(t, data)

	var got map[string]string
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "world", got["hello"])
}

func TestGetIfFreshMissingKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	data, err := repo.GetIfFresh("robo_questions", "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestGetIfFreshExpired(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	err := repo.Store("finnhub_search", "apple", []string{"AAPL"}, -time.Minute)
	require.NoError(t, err)

	data, err := repo.GetIfFresh("finnhub_search", "apple")
	require.NoError(t, err)
	assert.Nil(t, data, "expired data should not be returned as fresh")

	// Stale data is still retrievable via Get for fallback scenarios.
	stale, err := repo.Get("finnhub_search", "apple")
	require.NoError(t, err)
	assert.NotNil(t, stale)
}

func TestStoreUpsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.Store("robo_questions", "capacity", "first", time.Hour))
	require.NoError(t, repo.Store("robo_questions", "capacity", "second", time.Hour))

	data, err := repo.GetIfFresh("robo_questions", "capacity")
	require.NoError(t, err)

	var got string
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "second", got)

	count, err := repo.Count("robo_questions")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.Store("robo_questions", "tolerance", "data", time.Hour))
	require.NoError(t, repo.Delete("robo_questions", "tolerance"))

	data, err := repo.Get("robo_questions", "tolerance")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestDeleteExpired(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.Store("finnhub_search", "fresh", "a", time.Hour))
	require.NoError(t, repo.Store("finnhub_search", "stale1", "b", -time.Minute))
	require.NoError(t, repo.Store("finnhub_search", "stale2", "c", -time.Hour))

	deleted, err := repo.DeleteExpired("finnhub_search")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	data, err := repo.GetIfFresh("finnhub_search", "fresh")
	require.NoError(t, err)
	assert.NotNil(t, data)
}

func TestDeleteAllExpired(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.Store("robo_questions", "old", "x", -time.Minute))
	require.NoError(t, repo.Store("finnhub_search", "old", "y", -time.Minute))

	results, err := repo.DeleteAllExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), results["robo_questions"])
	assert.Equal(t, int64(1), results["finnhub_search"])
}

func TestInvalidTableName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	err := repo.Store("users; DROP TABLE robo_questions", "key", "data", time.Hour)
	assert.Error(t, err)

	_, err = repo.GetIfFresh("bogus", "key")
	assert.Error(t, err)

	_, err = repo.DeleteExpired("bogus")
	assert.Error(t, err)
}
