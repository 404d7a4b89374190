// Package server provides the HTTP server and routing for the screener.
package server

import (
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// handleHealth reports service, database and host health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	httpStatus := http.StatusOK

	databases := map[string]string{}
	checkDB := func(name string, ping func() error) {
		if err := ping(); err != nil {
			databases[name] = "error: " + err.Error()
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		} else {
			databases[name] = "ok"
		}
	}
	checkDB(s.screenerDB.Name(), s.screenerDB.Conn().Ping)
	checkDB(s.weightsDB.Name(), s.weightsDB.Conn().Ping)

	system := map[string]interface{}{}
	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		system["cpu_percent"] = cpuPercent[0]
	}
	if memStat, err := mem.VirtualMemory(); err == nil {
		system["memory_percent"] = memStat.UsedPercent
		system["memory_used_mb"] = memStat.Used / 1024 / 1024
	}

	stocks, err := s.universeRepo.StockCount(r.Context())
	if err != nil {
		s.log.Warn().Err(err).Msg("Stock count unavailable for health report")
	}

	s.writeJSON(w, httpStatus, map[string]interface{}{
		"status":         status,
		"service":        "jongga-screener",
		"uptime_seconds": int64(time.Since(s.startupTime).Seconds()),
		"databases":      databases,
		"system":         system,
		"universe_size":  stocks,
	})
}
