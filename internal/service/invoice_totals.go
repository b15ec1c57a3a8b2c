package service

import (
	"time"

	"invoicer/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals are the amounts derived from a stored invoice. None of them is persisted.
type Totals struct {
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	Total       decimal.Decimal
	Paid        decimal.Decimal
	Collected   decimal.Decimal
	Outstanding decimal.Decimal
}

// ComputeTotals derives subtotal, tax, total, collected and outstanding.
// Negative inputs count as zero, so Collected never exceeds Total and
// Outstanding is never negative.
func ComputeTotals(inv model.Invoice) Totals {
	subtotal := decimal.Zero
	for _, item := range inv.Items {
		subtotal = subtotal.Add(nonNegative(item.Qty).Mul(nonNegative(item.Rate)))
	}

	tax := nonNegative(inv.Tax)
	taxAmount := subtotal.Mul(tax).Div(hundred)
	if inv.TaxType == model.TaxTypeFixed {
		taxAmount = tax
	}

	total := subtotal.Add(taxAmount).Add(nonNegative(inv.Shipping)).Sub(nonNegative(inv.Discount))
	total = decimal.Max(decimal.Zero, total)

	paid := nonNegative(inv.PaidAmount)
	collected := decimal.Min(paid, total)

	return Totals{
		Subtotal:    subtotal,
		TaxAmount:   taxAmount,
		Total:       total,
		Paid:        paid,
		Collected:   collected,
		Outstanding: decimal.Max(decimal.Zero, total.Sub(collected)),
	}
}

// IsPaid reports whether the recorded payment covers the total.
func (t Totals) IsPaid() bool {
	return t.Paid.GreaterThanOrEqual(t.Total)
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Accepted issue/due date layouts. Layouts without a zone are read as UTC.
var invoiceDateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
}

// ParseInvoiceDate parses a stored issue or due date. ok is false for empty
// or unparseable input.
func ParseInvoiceDate(s string) (t time.Time, ok bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range invoiceDateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// roundedInt rounds a monetary sum half away from zero to whole units.
func roundedInt(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
