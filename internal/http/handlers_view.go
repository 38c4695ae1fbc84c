package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gitSambhal/milky-way-grocery-app/internal/core"
	"github.com/gitSambhal/milky-way-grocery-app/internal/export"
)

type statsView struct {
	Year          int        `json:"year"`
	Month         int        `json:"month"`
	Period        core.Stats `json:"period"`
	GlobalBalance float64    `json:"globalBalance"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			month = m
		}
	}
	if month < 1 || month > 12 {
		writeError(w, http.StatusUnprocessableEntity, "month must be 1-12")
		return
	}

	l := s.store.Load(r.Context())
	// The global balance is always the whole ledger, never the shown month.
	writeJSON(w, http.StatusOK, statsView{
		Year:          year,
		Month:         month,
		Period:        core.Aggregate(l, core.MonthScope{Year: year, Month: month}),
		GlobalBalance: core.Aggregate(l, core.AllTime()).Balance,
	})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.store.Settings(r.Context()))
	case http.MethodPut:
		var body core.Settings
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		saved, err := s.store.SaveSettings(r.Context(), body)
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to save settings", "error", err)
			writeError(w, http.StatusInternalServerError, "save failed")
			return
		}
		writeJSON(w, http.StatusOK, saved)
	default:
		methodNotAllowed(w, "GET, PUT")
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	csv := export.CSV(s.store.Load(r.Context()))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csv))
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	// Snapshot first: the analyzer reads the ledger once and never holds
	// it up while the remote call runs.
	l := s.store.Load(r.Context())
	settings := s.store.Settings(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), s.insightTimeout)
	defer cancel()

	summary := s.analyzer.Analyze(ctx, l, settings)
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}
