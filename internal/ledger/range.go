package ledger

import (
	"context"
	"log/slog"

	"github.com/gitSambhal/milky-way-grocery-app/internal/core"
)

// BulkFill writes a record with the given quantity and price for every
// calendar date in the inclusive range. Quantity and price are overwritten
// unconditionally for every date in range; an existing payment at a date
// is carried forward and the paid snapshot recomputed against the new
// cost, so re-filling a month with a new price never erases recorded
// payments. A start after the end is an empty no-op, not an error.
func (s *Store) BulkFill(ctx context.Context, startDate, endDate string, quantity, pricePerUnit float64) (core.Ledger, error) {
	start, err := core.ParseDateKey(startDate)
	if err != nil {
		return nil, err
	}
	end, err := core.ParseDateKey(endDate)
	if err != nil {
		return nil, err
	}
	if start.After(end) {
		slog.InfoContext(ctx, "Fill range empty, nothing to do", "start", startDate, "end", endDate)
		return s.Load(ctx), nil
	}

	current := s.Load(ctx)

	var recs []core.Record
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := core.DateKey(day)
		carried := 0.0
		if existing, ok := current[key]; ok {
			carried = existing.PaymentAmount
		}
		// A zero-quantity fill over a date with no payment would create a
		// record indistinguishable from no record; don't persist those.
		if quantity == 0 && carried == 0 {
			continue
		}
		recs = append(recs, core.Record{
			Date:          key,
			Quantity:      quantity,
			PricePerUnit:  pricePerUnit,
			PaymentAmount: carried,
		})
	}

	slog.InfoContext(ctx, "Bulk fill",
		"start", startDate,
		"end", endDate,
		"days", len(recs),
		"quantity", quantity,
		"price_per_unit", pricePerUnit)
	return s.UpsertMany(ctx, recs)
}

// BulkSettle marks every existing record in the inclusive range as fully
// paid. Dates in range with no record are not created. A payment-only
// record caught by the range has its payment set to its cost, which is
// zero; that zeroing is long-standing observable behavior and is kept.
func (s *Store) BulkSettle(ctx context.Context, startDate, endDate string) (core.Ledger, error) {
	start, err := core.ParseDateKey(startDate)
	if err != nil {
		return nil, err
	}
	end, err := core.ParseDateKey(endDate)
	if err != nil {
		return nil, err
	}
	if start.After(end) {
		slog.InfoContext(ctx, "Settle range empty, nothing to do", "start", startDate, "end", endDate)
		return s.Load(ctx), nil
	}

	current := s.Load(ctx)

	var keys []string
	for key := range current {
		if key >= startDate && key <= endDate {
			keys = append(keys, key)
		}
	}

	slog.InfoContext(ctx, "Bulk settle", "start", startDate, "end", endDate, "records", len(keys))
	return s.MarkPaid(ctx, keys)
}
