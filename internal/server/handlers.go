// Package server provides the HTTP server and routing for the screener.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"jongga-screener/internal/domain"
)

const dateLayout = "2006-01-02"

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes a JSON error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// handleLatestRun returns the most recent screening run.
func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.scoreRepo.LatestRun(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load latest run")
		s.writeError(w, http.StatusInternalServerError, "failed to load latest run")
		return
	}
	if run == nil {
		s.writeError(w, http.StatusNotFound, "no screening runs yet")
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

// handleRunByDate returns the run for a specific screen date.
func (s *Server) handleRunByDate(w http.ResponseWriter, r *http.Request) {
	dateStr := chi.URLParam(r, "date")
	screenDate, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	run, err := s.scoreRepo.GetRun(r.Context(), screenDate)
	if err != nil {
		s.log.Error().Err(err).Str("date", dateStr).Msg("Failed to load run")
		s.writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	if run == nil {
		s.writeError(w, http.StatusNotFound, "no run for "+dateStr)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

// handleTriggerScreening runs a screen on demand. Body is optional:
// {"date": "YYYY-MM-DD"} screens a past date from stored bars.
func (s *Server) handleTriggerScreening(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	screenDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		var err error
		if screenDate, err = time.Parse(dateLayout, req.Date); err != nil {
			s.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}

	candidates, err := s.universeRepo.Candidates(r.Context(), screenDate)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to build candidates")
		s.writeError(w, http.StatusInternalServerError, "failed to build candidates")
		return
	}
	if len(candidates) == 0 {
		s.writeError(w, http.StatusUnprocessableEntity, "no bars stored for "+screenDate.Format(dateLayout))
		return
	}

	run, err := s.screenerSvc.Run(r.Context(), screenDate, candidates)
	if err != nil {
		s.log.Error().Err(err).Msg("Screening run failed")
		s.writeError(w, http.StatusInternalServerError, "screening run failed")
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

// handleWeights returns the active weight set.
func (s *Server) handleWeights(w http.ResponseWriter, r *http.Request) {
	weights, err := s.weightRepo.Active(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load weights")
		s.writeError(w, http.StatusInternalServerError, "failed to load weights")
		return
	}
	s.writeJSON(w, http.StatusOK, weights)
}

// handleWeightHistory returns recent weight adjustments, newest first.
func (s *Server) handleWeightHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	history, err := s.weightRepo.History(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load weight history")
		s.writeError(w, http.StatusInternalServerError, "failed to load weight history")
		return
	}
	if history == nil {
		history = []domain.WeightChange{}
	}
	s.writeJSON(w, http.StatusOK, history)
}

// handleTriggerLearning runs the learning cycle on demand.
func (s *Server) handleTriggerLearning(w http.ResponseWriter, r *http.Request) {
	result, err := s.learningSvc.RunDaily(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Learning run failed")
		s.writeError(w, http.StatusInternalServerError, "learning run failed")
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handlePerformance summarizes realized next-day outcomes.
func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	windowDays := 0
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			windowDays = n
		}
	}

	summary, err := s.learningSvc.Performance(r.Context(), windowDays)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to summarize performance")
		s.writeError(w, http.StatusInternalServerError, "failed to summarize performance")
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

// handleUpsertStocks ingests the stock list from the market-data feed.
func (s *Server) handleUpsertStocks(w http.ResponseWriter, r *http.Request) {
	var stocks []domain.Stock
	if err := json.NewDecoder(r.Body).Decode(&stocks); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid stock list payload")
		return
	}
	if err := s.universeRepo.UpsertStocks(r.Context(), stocks); err != nil {
		s.log.Error().Err(err).Msg("Failed to upsert stocks")
		s.writeError(w, http.StatusInternalServerError, "failed to upsert stocks")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"upserted": len(stocks)})
}

// handleUpsertBars ingests daily bars from the market-data feed.
func (s *Server) handleUpsertBars(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string            `json:"code"`
		Bars []domain.DailyBar `json:"bars"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		s.writeError(w, http.StatusBadRequest, "invalid bars payload")
		return
	}
	if err := s.universeRepo.UpsertBars(r.Context(), req.Code, req.Bars); err != nil {
		s.log.Error().Err(err).Str("code", req.Code).Msg("Failed to upsert bars")
		s.writeError(w, http.StatusInternalServerError, "failed to upsert bars")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"upserted": len(req.Bars)})
}
