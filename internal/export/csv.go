// Package export serializes the full ledger to the tabular text format
// handed to the file-download collaborator.
package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gitSambhal/milky-way-grocery-app/internal/core"
)

// Header is the fixed CSV header row.
const Header = "Date,Quantity,Price/Unit,Total Cost,Amount Paid,Notes"

// CSV renders every record, sorted ascending by date, as comma-separated
// rows. Quantity and price keep their natural precision; cost and amount
// paid always carry two decimals. Notes are double-quoted with internal
// quotes doubled, and only when non-empty, so the output is byte-stable
// for a given ledger.
func CSV(l core.Ledger) string {
	records := l.Sorted()

	var b strings.Builder
	b.WriteString(Header)
	for _, r := range records {
		b.WriteByte('\n')
		b.WriteString(row(r))
	}
	return b.String()
}

func row(r core.Record) string {
	fields := []string{
		r.Date,
		strconv.FormatFloat(r.Quantity, 'f', -1, 64),
		strconv.FormatFloat(r.PricePerUnit, 'f', -1, 64),
		fmt.Sprintf("%.2f", r.Cost()),
		fmt.Sprintf("%.2f", r.PaymentAmount),
		quoteNotes(r.Notes),
	}
	return strings.Join(fields, ",")
}

func quoteNotes(notes string) string {
	if notes == "" {
		return ""
	}
	return `"` + strings.ReplaceAll(notes, `"`, `""`) + `"`
}

// Filename builds the download name for an export taken at the given time,
// e.g. milkyway_export_20240301.csv.
func Filename(now time.Time) string {
	return "milkyway_export_" + now.Format("20060102") + ".csv"
}
