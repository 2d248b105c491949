// Package billing computes invoice totals and VAT breakdowns. All math is
// exact decimal arithmetic; rounding to two decimals happens only when a
// value is formatted for display or storage.
package billing

import (
	"github.com/mkalvans/invoicebot/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// VATEntry is the accumulated VAT amount for one distinct rate.
type VATEntry struct {
	Rate   int
	Amount decimal.Decimal
}

// Totals is the result of ComputeTotals. Breakdown contains one entry per
// distinct rate > 0, ordered by first appearance among the lines. Total
// includes VAT from every line, zero-rated lines contributing zero.
type Totals struct {
	Subtotal  decimal.Decimal
	VATTotal  decimal.Decimal
	Total     decimal.Decimal
	Breakdown []VATEntry
}

// ComputeTotals derives subtotal, per-rate VAT and grand total from the
// committed lines. It re-derives everything from quantity, unit price and
// VAT rate; stored line totals are never trusted. Pure and deterministic:
// the same lines always produce the same Totals.
func ComputeTotals(lines []domain.LineItem) Totals {
	subtotal := decimal.Zero
	vatByRate := make(map[int]decimal.Decimal)
	var rateOrder []int

	for _, line := range lines {
		lineSubtotal := line.Quantity.Mul(line.UnitPrice)
		subtotal = subtotal.Add(lineSubtotal)

		vat := LineVAT(line)
		if _, seen := vatByRate[line.VATRate]; !seen {
			rateOrder = append(rateOrder, line.VATRate)
		}
		vatByRate[line.VATRate] = vatByRate[line.VATRate].Add(vat)
	}

	vatTotal := decimal.Zero
	var breakdown []VATEntry
	for _, rate := range rateOrder {
		vatTotal = vatTotal.Add(vatByRate[rate])
		if rate > 0 {
			breakdown = append(breakdown, VATEntry{Rate: rate, Amount: vatByRate[rate]})
		}
	}

	return Totals{
		Subtotal:  subtotal,
		VATTotal:  vatTotal,
		Total:     subtotal.Add(vatTotal),
		Breakdown: breakdown,
	}
}

// RateVAT returns the accumulated VAT per distinct rate present among the
// lines, zero rates included, ordered by first appearance. The rendered
// document prints one tax row per entry; chat summaries use
// Totals.Breakdown, which drops zero rates.
func RateVAT(lines []domain.LineItem) []VATEntry {
	vatByRate := make(map[int]decimal.Decimal)
	var rateOrder []int
	for _, line := range lines {
		if _, seen := vatByRate[line.VATRate]; !seen {
			rateOrder = append(rateOrder, line.VATRate)
		}
		vatByRate[line.VATRate] = vatByRate[line.VATRate].Add(LineVAT(line))
	}

	entries := make([]VATEntry, 0, len(rateOrder))
	for _, rate := range rateOrder {
		entries = append(entries, VATEntry{Rate: rate, Amount: vatByRate[rate]})
	}
	return entries
}

// LineSubtotal is the VAT-exclusive amount of one line.
func LineSubtotal(line domain.LineItem) decimal.Decimal {
	return line.Quantity.Mul(line.UnitPrice)
}

// LineVAT is the VAT amount of one line.
func LineVAT(line domain.LineItem) decimal.Decimal {
	return LineSubtotal(line).Mul(decimal.NewFromInt(int64(line.VATRate))).Div(hundred)
}

// LineTotal is the VAT-inclusive amount of one line, computed when the line
// is committed to the draft.
func LineTotal(line domain.LineItem) decimal.Decimal {
	return LineSubtotal(line).Add(LineVAT(line))
}
