package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"ReviewPulse/internal/domain"
)

// ReportLoader supplies the precomputed reports served by the API.
type ReportLoader interface {
	LoadReports(ctx context.Context) ([]domain.RestaurantReport, error)
}

// Snapshot is the in-memory report index, replaced wholesale on Reload.
type Snapshot struct {
	loader ReportLoader

	mu      sync.RWMutex
	reports map[int64]domain.RestaurantReport
}

// NewSnapshot builds an empty snapshot; call Reload before serving.
func NewSnapshot(loader ReportLoader) *Snapshot {
	return &Snapshot{loader: loader, reports: map[int64]domain.RestaurantReport{}}
}

// Reload reads every report from the loader and swaps the index.
func (s *Snapshot) Reload(ctx context.Context) (int, error) {
	reports, err := s.loader.LoadReports(ctx)
	if err != nil {
		return 0, fmt.Errorf("load reports: %w", err)
	}
	index := make(map[int64]domain.RestaurantReport, len(reports))
	for _, r := range reports {
		index[r.RestaurantID] = r
	}

	s.mu.Lock()
	s.reports = index
	s.mu.Unlock()
	return len(index), nil
}

// Get looks up a report by restaurant id.
func (s *Snapshot) Get(id int64) (domain.RestaurantReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	return r, ok
}

// Len reports how many restaurants are served.
func (s *Snapshot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}

type reportHandler struct {
	snapshot *Snapshot
}

// GetReport handles GET /analyze/{id}.
func (h *reportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	report, ok := h.snapshot.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Restaurant not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *reportHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "restaurants": h.snapshot.Len()})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
