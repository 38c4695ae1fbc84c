package core

// Stats is the fold of a scoped record subset. Balance is signed:
// positive means the household owes, negative means credit.
type Stats struct {
	TotalQuantity    float64 `json:"totalQuantity"`
	TotalCost        float64 `json:"totalCost"`
	TotalPaid        float64 `json:"totalPaid"`
	Balance          float64 `json:"balance"`
	PaymentOnlyCount int     `json:"paymentOnlyCount"`
}

// Scope selects which records take part in an aggregation.
type Scope interface {
	Includes(dateKey string) bool
}

// MonthScope keeps records of a single calendar month.
type MonthScope struct {
	Year  int
	Month int // 1-12
}

func (m MonthScope) Includes(dateKey string) bool {
	t, err := ParseDateKey(dateKey)
	if err != nil {
		return false
	}
	return t.Year() == m.Year && int(t.Month()) == m.Month
}

// allTime matches every record regardless of date.
type allTime struct{}

func (allTime) Includes(string) bool { return true }

// AllTime returns the unscoped, whole-ledger scope. The global balance is
// always computed with it, independent of whatever month is on screen.
func AllTime() Scope { return allTime{} }

// Aggregate folds the scoped subset of the ledger into period statistics.
func Aggregate(l Ledger, scope Scope) Stats {
	var st Stats
	for key, r := range l {
		if !scope.Includes(key) {
			continue
		}
		cost := r.Cost()
		st.TotalQuantity += r.Quantity
		st.TotalCost += cost
		st.TotalPaid += r.PaymentAmount
		st.Balance += cost - r.PaymentAmount
		if r.Reconciled().Status == StatusPaymentOnly {
			st.PaymentOnlyCount++
		}
	}
	return st
}
