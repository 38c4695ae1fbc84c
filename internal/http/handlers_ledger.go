package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gitSambhal/milky-way-grocery-app/internal/core"
)

// recordPayload is the JSON body of a single-record upsert. The date in
// the URL wins over any date in the body.
type recordPayload struct {
	Quantity      float64 `json:"quantity"`
	PricePerUnit  float64 `json:"pricePerUnit"`
	PaymentAmount float64 `json:"paymentAmount"`
	Notes         string  `json:"notes"`
}

// recordView is a record as rendered to clients, cost and status included.
type recordView struct {
	Date          string  `json:"date"`
	Quantity      float64 `json:"quantity"`
	PricePerUnit  float64 `json:"pricePerUnit"`
	PaymentAmount float64 `json:"paymentAmount"`
	Notes         string  `json:"notes,omitempty"`
	Cost          float64 `json:"cost"`
	IsPaid        bool    `json:"isPaid"`
	Status        string  `json:"status"`
}

func toView(r core.Record) recordView {
	rec := r.Reconciled()
	return recordView{
		Date:          r.Date,
		Quantity:      r.Quantity,
		PricePerUnit:  r.PricePerUnit,
		PaymentAmount: r.PaymentAmount,
		Notes:         r.Notes,
		Cost:          rec.Cost,
		IsPaid:        rec.IsPaid,
		Status:        string(rec.Status),
	}
}

func ledgerViews(l core.Ledger) []recordView {
	out := make([]recordView, 0, len(l))
	for _, r := range l.Sorted() {
		out = append(out, toView(r))
	}
	return out
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	writeJSON(w, http.StatusOK, ledgerViews(s.store.Load(r.Context())))
}

func (s *Server) handleRecordByDate(w http.ResponseWriter, r *http.Request) {
	dateKey := strings.TrimPrefix(r.URL.Path, "/api/records/")
	if _, err := core.ParseDateKey(dateKey); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.upsertRecord(w, r, dateKey)
	case http.MethodDelete:
		l, err := s.store.DeleteOne(r.Context(), dateKey)
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to delete record", "date", dateKey, "error", err)
			writeError(w, http.StatusInternalServerError, "delete failed")
			return
		}
		writeJSON(w, http.StatusOK, ledgerViews(l))
	default:
		methodNotAllowed(w, "PUT, DELETE")
	}
}

func (s *Server) upsertRecord(w http.ResponseWriter, r *http.Request, dateKey string) {
	var body recordPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Quantity < 0 || body.PricePerUnit < 0 || body.PaymentAmount < 0 {
		writeError(w, http.StatusUnprocessableEntity, "quantity, price and payment must be non-negative")
		return
	}

	rec := core.Record{
		Date:          dateKey,
		Quantity:      body.Quantity,
		PricePerUnit:  body.PricePerUnit,
		PaymentAmount: body.PaymentAmount,
		Notes:         body.Notes,
	}

	l, err := s.store.UpsertOne(r.Context(), rec)
	if err != nil {
		if errors.Is(err, core.ErrInvalidDate) {
			writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to upsert record", "date", dateKey, "error", err)
		writeError(w, http.StatusInternalServerError, "save failed")
		return
	}

	// A record reduced to nothing is deleted rather than stored.
	if rec.IsEmpty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, ledgerViews(l))
}

type fillPayload struct {
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
	Quantity     float64 `json:"quantity"`
	PricePerUnit float64 `json:"pricePerUnit"`
}

func (s *Server) handleRangeFill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var body fillPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Quantity < 0 || body.PricePerUnit < 0 {
		writeError(w, http.StatusUnprocessableEntity, "quantity and price must be non-negative")
		return
	}

	l, err := s.store.BulkFill(r.Context(), body.StartDate, body.EndDate, body.Quantity, body.PricePerUnit)
	if err != nil {
		if errors.Is(err, core.ErrInvalidDate) {
			writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
			return
		}
		slog.ErrorContext(r.Context(), "Bulk fill failed", "start", body.StartDate, "end", body.EndDate, "error", err)
		writeError(w, http.StatusInternalServerError, "bulk fill failed")
		return
	}
	writeJSON(w, http.StatusOK, ledgerViews(l))
}

type settlePayload struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (s *Server) handleRangeSettle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var body settlePayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	l, err := s.store.BulkSettle(r.Context(), body.StartDate, body.EndDate)
	if err != nil {
		if errors.Is(err, core.ErrInvalidDate) {
			writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
			return
		}
		slog.ErrorContext(r.Context(), "Bulk settle failed", "start", body.StartDate, "end", body.EndDate, "error", err)
		writeError(w, http.StatusInternalServerError, "bulk settle failed")
		return
	}
	writeJSON(w, http.StatusOK, ledgerViews(l))
}
