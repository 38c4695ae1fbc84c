// Package ledger implements the reconciliation engine: the durable
// date-keyed record collection, its bulk mutations, and the settings slot.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gitSambhal/milky-way-grocery-app/internal/core"
	"github.com/gitSambhal/milky-way-grocery-app/internal/storage"
)

// Blob keys carried over from the original data files so existing ledgers
// load unchanged.
const (
	recordsKey  = "milkyway_data_v1"
	settingsKey = "milkyway_settings_v1"
)

// Store owns the persisted record collection. Every mutating operation
// computes the full new collection in memory and then performs a single
// Put, so the persisted blob is never left half-written. The mutex
// serializes the read-modify-write cycle across handlers.
type Store struct {
	mu    sync.Mutex
	blobs storage.Blobs
}

func NewStore(blobs storage.Blobs) *Store {
	return &Store{blobs: blobs}
}

// storedRecord is the wire form of a record. PaymentAmount is a pointer
// so that legacy blobs written before the field existed can be told apart
// from an explicit zero and back-filled from the isPaid flag.
type storedRecord struct {
	Date          string   `json:"date"`
	Quantity      float64  `json:"quantity"`
	PricePerUnit  float64  `json:"pricePerUnit"`
	IsPaid        bool     `json:"isPaid"`
	PaymentAmount *float64 `json:"paymentAmount,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

// Load returns the persisted ledger. It fails soft: a missing, unreadable
// or corrupt blob yields an empty ledger and a warning, never an error.
// The legacy-isPaid migration it applies is idempotent.
func (s *Store) Load(ctx context.Context) core.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) core.Ledger {
	l := core.Ledger{}

	raw, err := s.blobs.Get(ctx, recordsKey)
	if err == storage.ErrNotFound {
		return l
	}
	if err != nil {
		slog.WarnContext(ctx, "Ledger blob unreadable, starting empty", "error", err)
		return l
	}

	var stored []storedRecord
	if err := json.Unmarshal(raw, &stored); err != nil {
		slog.WarnContext(ctx, "Ledger blob corrupt, starting empty", "error", err)
		return l
	}

	for _, sr := range stored {
		if _, err := core.ParseDateKey(sr.Date); err != nil {
			slog.WarnContext(ctx, "Skipping malformed record", "date", sr.Date)
			continue
		}
		r := core.Record{
			Date:         sr.Date,
			Quantity:     sr.Quantity,
			PricePerUnit: sr.PricePerUnit,
			Notes:        sr.Notes,
			IsPaid:       sr.IsPaid,
		}
		if sr.PaymentAmount != nil {
			r.PaymentAmount = *sr.PaymentAmount
		} else if sr.IsPaid {
			// Records written before paymentAmount existed: a paid record
			// is assumed settled at exactly its cost.
			r.PaymentAmount = r.Cost()
		}
		l[r.Date] = r
	}
	return l
}

func (s *Store) persist(ctx context.Context, l core.Ledger) error {
	stored := make([]storedRecord, 0, len(l))
	for _, r := range l.Sorted() {
		payment := r.PaymentAmount
		stored = append(stored, storedRecord{
			Date:          r.Date,
			Quantity:      r.Quantity,
			PricePerUnit:  r.PricePerUnit,
			IsPaid:        r.IsPaid,
			PaymentAmount: &payment,
			Notes:         r.Notes,
		})
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	if err := s.blobs.Put(ctx, recordsKey, raw); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

// UpsertOne inserts or fully replaces the record at its date key and
// persists the whole collection. A record reduced to zero quantity and
// zero payment is removed instead of stored: such a record is not
// meaningfully distinct from no record at all.
func (s *Store) UpsertOne(ctx context.Context, rec core.Record) (core.Ledger, error) {
	if _, err := core.ParseDateKey(rec.Date); err != nil {
		return nil, err
	}
	if rec.IsEmpty() {
		return s.DeleteOne(ctx, rec.Date)
	}
	rec.IsPaid = rec.Reconciled().IsPaid

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.load(ctx).Clone()
	next[rec.Date] = rec
	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Record upserted",
		"date", rec.Date,
		"quantity", rec.Quantity,
		"price_per_unit", rec.PricePerUnit,
		"payment_amount", rec.PaymentAmount)
	return next, nil
}

// UpsertMany merges the given records into the collection by date key
// (last write wins per date) and persists once.
func (s *Store) UpsertMany(ctx context.Context, recs []core.Record) (core.Ledger, error) {
	for _, r := range recs {
		if _, err := core.ParseDateKey(r.Date); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.load(ctx).Clone()
	for _, r := range recs {
		r.IsPaid = r.Reconciled().IsPaid
		next[r.Date] = r
	}
	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Records merged", "count", len(recs), "total", len(next))
	return next, nil
}

// DeleteOne removes the record at the given key. Absent keys are a no-op.
func (s *Store) DeleteOne(ctx context.Context, dateKey string) (core.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.load(ctx).Clone()
	if _, ok := next[dateKey]; !ok {
		return next, nil
	}
	delete(next, dateKey)
	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Record deleted", "date", dateKey)
	return next, nil
}

// MarkPaid settles every record whose key is in the set: paymentAmount
// becomes the record's cost and the paid snapshot is set. Keys with no
// record are silently skipped; records outside the set are untouched.
func (s *Store) MarkPaid(ctx context.Context, dateKeys []string) (core.Ledger, error) {
	keys := make(map[string]struct{}, len(dateKeys))
	for _, k := range dateKeys {
		keys[k] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.load(ctx).Clone()
	settled := 0
	for k := range keys {
		r, ok := next[k]
		if !ok {
			continue
		}
		r.PaymentAmount = r.Cost()
		r.IsPaid = true
		next[k] = r
		settled++
	}
	if settled == 0 {
		return next, nil
	}
	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Records marked paid", "requested", len(keys), "settled", settled)
	return next, nil
}

// Settings returns the persisted settings, falling back to the defaults
// when the slot is missing or unreadable.
func (s *Store) Settings(ctx context.Context) core.Settings {
	raw, err := s.blobs.Get(ctx, settingsKey)
	if err != nil {
		if err != storage.ErrNotFound {
			slog.WarnContext(ctx, "Settings blob unreadable, using defaults", "error", err)
		}
		return core.DefaultSettings()
	}

	var cfg core.Settings
	if err := json.Unmarshal(raw, &cfg); err != nil {
		slog.WarnContext(ctx, "Settings blob corrupt, using defaults", "error", err)
		return core.DefaultSettings()
	}
	return cfg.Normalized()
}

// SaveSettings persists the settings slot.
func (s *Store) SaveSettings(ctx context.Context, cfg core.Settings) (core.Settings, error) {
	cfg = cfg.Normalized()
	raw, err := json.Marshal(cfg)
	if err != nil {
		return cfg, fmt.Errorf("marshal settings: %w", err)
	}
	if err := s.blobs.Put(ctx, settingsKey, raw); err != nil {
		return cfg, fmt.Errorf("persist settings: %w", err)
	}

	slog.InfoContext(ctx, "Settings saved",
		"default_price", cfg.DefaultPrice,
		"currency", cfg.CurrencySymbol,
		"unit", cfg.UnitLabel)
	return cfg, nil
}
