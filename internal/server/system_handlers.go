package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/advisor/internal/clientdata"
	"github.com/aristath/advisor/internal/database"
)

// SessionCounter exposes the number of live assessment sessions.
type SessionCounter interface {
	Count() int
}

// SystemHandlers provides system monitoring endpoints
type SystemHandlers struct {
	log       zerolog.Logger
	cacheDB   *database.DB
	cacheRepo *clientdata.Repository
	sessions  SessionCounter
	startTime time.Time
}

// NewSystemHandlers creates system monitoring handlers
func NewSystemHandlers(log zerolog.Logger, cacheDB *database.DB, cacheRepo *clientdata.Repository, sessions SessionCounter) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		cacheDB:   cacheDB,
		cacheRepo: cacheRepo,
		sessions:  sessions,
		startTime: time.Now(),
	}
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"timestamp":  time.Now().Format(time.RFC3339),
		"uptime":     time.Since(h.startTime).Round(time.Second).String(),
		"goroutines": runtime.NumGoroutine(),
	}

	if h.sessions != nil {
		status["active_sessions"] = h.sessions.Count()
	}

	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU usage")
	} else if len(cpuPercent) > 0 {
		status["cpu_percent"] = cpuPercent[0]
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory usage")
	} else {
		status["memory"] = map[string]interface{}{
			"total":        humanize.IBytes(memStat.Total),
			"used":         humanize.IBytes(memStat.Used),
			"used_percent": memStat.UsedPercent,
		}
	}

	writeJSON(h.log, w, http.StatusOK, status)
}

// HandleDatabaseStats handles GET /api/system/database/stats
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.cacheDB.GetStats()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get database stats")
		http.Error(w, "Failed to get database stats", http.StatusInternalServerError)
		return
	}

	tables := make(map[string]interface{}, len(clientdata.AllTables))
	for _, table := range clientdata.AllTables {
		count, err := h.cacheRepo.Count(table)
		if err != nil {
			h.log.Warn().Err(err).Str("table", table).Msg("Failed to count cache entries")
			continue
		}
		tables[table] = count
	}

	writeJSON(h.log, w, http.StatusOK, map[string]interface{}{
		"name":       h.cacheDB.Name(),
		"size":       humanize.IBytes(uint64(stats.SizeBytes)),
		"size_bytes": stats.SizeBytes,
		"wal_bytes":  stats.WALSizeBytes,
		"page_count": stats.PageCount,
		"page_size":  stats.PageSize,
		"tables":     tables,
	})
}
