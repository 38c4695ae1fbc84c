package core

import (
	"errors"
	"sort"
	"time"
)

// PaymentEpsilon absorbs floating-point drift when comparing a payment
// against a cost built from repeated multiplications. A payment within
// one tenth of a currency unit of the cost counts as full.
const PaymentEpsilon = 0.1

// DateLayout is the canonical record key format. Lexical order of keys
// equals chronological order, which the store and exporter rely on.
const DateLayout = "2006-01-02"

type PaymentStatus string

const (
	StatusEmpty         PaymentStatus = "empty"
	StatusPaymentOnly   PaymentStatus = "payment_only"
	StatusPaidInFull    PaymentStatus = "paid_in_full"
	StatusPartiallyPaid PaymentStatus = "partially_paid"
	StatusUnpaid        PaymentStatus = "unpaid"
)

type (
	// Record is one day's ledger entry. The date string is the identity:
	// there is never more than one record per calendar day.
	Record struct {
		Date          string
		Quantity      float64
		PricePerUnit  float64
		PaymentAmount float64
		Notes         string
		// IsPaid is a stored snapshot for display; Reconcile is the
		// source of truth and re-derives it from the other fields.
		IsPaid bool
	}

	// Ledger maps a date key to its record.
	Ledger map[string]Record

	// Reconciliation is the derived state of a record.
	Reconciliation struct {
		Cost   float64
		IsPaid bool
		Status PaymentStatus
	}
)

var ErrInvalidDate = errors.New("invalid date key")

// ParseDateKey validates a YYYY-MM-DD key and returns its day.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(DateLayout, key)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// DateKey formats a day as a ledger key.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// Cost returns quantity times unit price for this record.
func (r Record) Cost() float64 {
	return r.Quantity * r.PricePerUnit
}

// Reconciled computes the record's derived state.
func (r Record) Reconciled() Reconciliation {
	return Reconcile(r.Quantity, r.PricePerUnit, r.PaymentAmount)
}

// IsEmpty reports whether the record carries no quantity and no payment.
// Such records are indistinguishable from "no record" and must not persist.
func (r Record) IsEmpty() bool {
	return r.Quantity == 0 && r.PaymentAmount == 0
}

// Reconcile derives cost and paid-status from a record's raw fields.
// Negative inputs are clamped to zero; the UI never submits them but the
// reconciler does not trust its callers. Pure function, no errors.
func Reconcile(quantity, pricePerUnit, paymentAmount float64) Reconciliation {
	quantity = clampNonNegative(quantity)
	pricePerUnit = clampNonNegative(pricePerUnit)
	paymentAmount = clampNonNegative(paymentAmount)

	cost := quantity * pricePerUnit
	rec := Reconciliation{Cost: cost}

	switch {
	case quantity == 0 && paymentAmount == 0:
		rec.Status = StatusEmpty
	case quantity == 0:
		rec.Status = StatusPaymentOnly
	case paymentAmount >= cost-PaymentEpsilon:
		rec.Status = StatusPaidInFull
		rec.IsPaid = true
	case paymentAmount > 0:
		rec.Status = StatusPartiallyPaid
	default:
		rec.Status = StatusUnpaid
	}
	return rec
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Sorted returns the records in chronological order.
func (l Ledger) Sorted() []Record {
	out := make([]Record, 0, len(l))
	for _, r := range l {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Clone returns an independent copy of the ledger. Mutating operations
// work on a clone so the caller's view is never changed in place.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}
