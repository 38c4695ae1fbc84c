package ledger

import (
	"context"
	"reflect"
	"testing"

	"github.com/gitSambhal/milky-way-grocery-app/internal/core"
)

func TestBulkFillCreatesInclusiveRange(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	l, err := s.BulkFill(ctx, "2024-03-01", "2024-03-03", 1, 50)
	if err != nil {
		t.Fatalf("bulk fill: %v", err)
	}
	if len(l) != 3 {
		t.Fatalf("expected 3 records, got %d", len(l))
	}
	for _, key := range []string{"2024-03-01", "2024-03-02", "2024-03-03"} {
		r, ok := l[key]
		if !ok {
			t.Fatalf("missing record for %s", key)
		}
		if r.Cost() != 50 || r.PaymentAmount != 0 {
			t.Fatalf("record %s: cost=%v payment=%v", key, r.Cost(), r.PaymentAmount)
		}
	}
}

func TestBulkFillSpansMonthBoundary(t *testing.T) {
	s, _ := newTestStore()
	l, err := s.BulkFill(context.Background(), "2024-02-28", "2024-03-01", 1, 50)
	if err != nil {
		t.Fatalf("bulk fill: %v", err)
	}
	// 2024 is a leap year: Feb 28, Feb 29, Mar 1.
	if len(l) != 3 {
		t.Fatalf("expected 3 records across the boundary, got %d", len(l))
	}
	if _, ok := l["2024-02-29"]; !ok {
		t.Fatalf("leap day missing from fill")
	}
}

func TestBulkFillPreservesExistingPayments(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	if _, err := s.BulkFill(ctx, "2024-03-01", "2024-03-03", 1, 50); err != nil {
		t.Fatalf("first fill: %v", err)
	}
	if _, err := s.UpsertOne(ctx, core.Record{Date: "2024-03-02", Quantity: 1, PricePerUnit: 50, PaymentAmount: 50}); err != nil {
		t.Fatalf("record payment: %v", err)
	}

	// Re-fill the same range with a higher price.
	l, err := s.BulkFill(ctx, "2024-03-01", "2024-03-03", 1, 60)
	if err != nil {
		t.Fatalf("second fill: %v", err)
	}

	r := l["2024-03-02"]
	if r.PaymentAmount != 50 {
		t.Fatalf("payment lost by re-fill: %v", r.PaymentAmount)
	}
	if r.PricePerUnit != 60 {
		t.Fatalf("price not overwritten: %v", r.PricePerUnit)
	}
	// 50 against the new cost of 60 is no longer a full payment.
	if r.IsPaid {
		t.Fatalf("paid snapshot not recomputed against new cost")
	}
}

func TestBulkFillInvertedRangeIsNoop(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	l, err := s.BulkFill(ctx, "2024-03-10", "2024-03-01", 1, 50)
	if err != nil {
		t.Fatalf("inverted range must not error: %v", err)
	}
	if len(l) != 0 {
		t.Fatalf("inverted range created %d records", len(l))
	}
}

func TestBulkFillZeroQuantitySkipsEmptyDays(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	if _, err := s.UpsertOne(ctx, core.Record{Date: "2024-03-02", Quantity: 0, PaymentAmount: 75}); err != nil {
		t.Fatalf("seed payment-only: %v", err)
	}
	l, err := s.BulkFill(ctx, "2024-03-01", "2024-03-03", 0, 50)
	if err != nil {
		t.Fatalf("zero-quantity fill: %v", err)
	}
	// Only the date carrying a payment survives; the others would be
	// zero/zero records, which never persist.
	if len(l) != 1 {
		t.Fatalf("expected 1 record, got %d", len(l))
	}
	if got := l["2024-03-02"].PaymentAmount; got != 75 {
		t.Fatalf("carried payment=%v want 75", got)
	}
}

func TestBulkFillRejectsBadDates(t *testing.T) {
	s, _ := newTestStore()
	if _, err := s.BulkFill(context.Background(), "March 1st", "2024-03-03", 1, 50); err == nil {
		t.Fatalf("expected error for malformed start date")
	}
}

func TestBulkSettleSettlesExistingOnly(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	if _, err := s.BulkFill(ctx, "2024-03-01", "2024-03-03", 1, 50); err != nil {
		t.Fatalf("fill: %v", err)
	}
	l, err := s.BulkSettle(ctx, "2024-03-01", "2024-03-10")
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if len(l) != 3 {
		t.Fatalf("settle must not create records, got %d", len(l))
	}
	for key, r := range l {
		if r.PaymentAmount != 50 || !r.IsPaid {
			t.Fatalf("record %s not settled: %+v", key, r)
		}
	}
}

func TestBulkSettleEmptyRangeLeavesLedgerUnchanged(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	before, err := s.UpsertOne(ctx, core.Record{Date: "2024-03-01", Quantity: 2, PricePerUnit: 60})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	after, err := s.BulkSettle(ctx, "2024-06-01", "2024-06-30")
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("settling an empty range changed the ledger: %+v vs %+v", before, after)
	}
}

// A payment-only record caught by a settle range gets its payment reset to
// its cost, and the cost of a zero-quantity record is zero. This wipes the
// standalone payment. The behavior is kept for compatibility with existing
// data; this test pins it so a silent "fix" is caught.
func TestBulkSettleZeroesPaymentOnlyRecords(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	if _, err := s.UpsertOne(ctx, core.Record{Date: "2024-03-05", Quantity: 0, PaymentAmount: 200}); err != nil {
		t.Fatalf("seed payment-only: %v", err)
	}
	l, err := s.BulkSettle(ctx, "2024-03-01", "2024-03-31")
	if err != nil {
		t.Fatalf("settle: %v", err)
	}

	r, ok := l["2024-03-05"]
	if !ok {
		t.Fatalf("payment-only record disappeared")
	}
	if r.PaymentAmount != 0 {
		t.Fatalf("payment-only record amount=%v, expected zeroed", r.PaymentAmount)
	}
}

func TestFillThenSettleEndToEnd(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	l, err := s.BulkFill(ctx, "2024-03-01", "2024-03-03", 1, 50)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if len(l) != 3 {
		t.Fatalf("expected 3 records, got %d", len(l))
	}

	l, err = s.BulkSettle(ctx, "2024-03-01", "2024-03-03")
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	st := core.Aggregate(l, core.MonthScope{Year: 2024, Month: 3})
	if st.TotalCost != 150 || st.TotalPaid != 150 || st.Balance != 0 {
		t.Fatalf("unexpected stats after settle: %+v", st)
	}
}

func TestUpsertAggregateScenario(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	l, err := s.UpsertOne(ctx, core.Record{Date: "2024-03-01", Quantity: 2, PricePerUnit: 60})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	st := core.Aggregate(l, core.MonthScope{Year: 2024, Month: 3})
	want := core.Stats{TotalQuantity: 2, TotalCost: 120, TotalPaid: 0, Balance: 120}
	if st != want {
		t.Fatalf("stats=%+v want %+v", st, want)
	}

	l, err = s.UpsertOne(ctx, core.Record{Date: "2024-03-01", Quantity: 2, PricePerUnit: 60, PaymentAmount: 120})
	if err != nil {
		t.Fatalf("upsert payment: %v", err)
	}
	st = core.Aggregate(l, core.MonthScope{Year: 2024, Month: 3})
	if st.Balance != 0 {
		t.Fatalf("balance=%v want 0", st.Balance)
	}
	if !l["2024-03-01"].IsPaid {
		t.Fatalf("record should be paid after full payment")
	}
}
