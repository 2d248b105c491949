package billing

import (
	"testing"

	"github.com/mkalvans/invoicebot/internal/domain"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func line(desc, qty, price string, rate int) domain.LineItem {
	return domain.LineItem{
		Description: desc,
		Quantity:    dec(qty),
		UnitPrice:   dec(price),
		VATRate:     rate,
	}
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name         string
		lines        []domain.LineItem
		wantSubtotal string
		wantVAT      string
		wantTotal    string
	}{
		{
			name:         "single line with vat",
			lines:        []domain.LineItem{line("consulting", "2", "100", 20)},
			wantSubtotal: "200",
			wantVAT:      "40",
			wantTotal:    "240",
		},
		{
			name:         "zero rated line",
			lines:        []domain.LineItem{line("export", "1", "500", 0)},
			wantSubtotal: "500",
			wantVAT:      "0",
			wantTotal:    "500",
		},
		{
			name: "mixed rates",
			lines: []domain.LineItem{
				line("a", "1", "100", 21),
				line("b", "1", "100", 9),
				line("c", "1", "100", 0),
			},
			wantSubtotal: "300",
			wantVAT:      "30",
			wantTotal:    "330",
		},
		{
			name:         "fractional quantity",
			lines:        []domain.LineItem{line("hours", "2.5", "80", 20)},
			wantSubtotal: "200",
			wantVAT:      "40",
			wantTotal:    "240",
		},
		{
			name:         "empty",
			lines:        nil,
			wantSubtotal: "0",
			wantVAT:      "0",
			wantTotal:    "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.lines)
			if !got.Subtotal.Equal(dec(tt.wantSubtotal)) {
				t.Errorf("Subtotal = %s, want %s", got.Subtotal, tt.wantSubtotal)
			}
			if !got.VATTotal.Equal(dec(tt.wantVAT)) {
				t.Errorf("VATTotal = %s, want %s", got.VATTotal, tt.wantVAT)
			}
			if !got.Total.Equal(dec(tt.wantTotal)) {
				t.Errorf("Total = %s, want %s", got.Total, tt.wantTotal)
			}
		})
	}
}

func TestComputeTotalsBreakdownOrder(t *testing.T) {
	lines := []domain.LineItem{
		line("a", "1", "100", 9),
		line("b", "1", "100", 21),
		line("c", "1", "50", 9),
	}

	got := ComputeTotals(lines)
	if len(got.Breakdown) != 2 {
		t.Fatalf("breakdown has %d entries, want 2", len(got.Breakdown))
	}
	if got.Breakdown[0].Rate != 9 || got.Breakdown[1].Rate != 21 {
		t.Errorf("breakdown order = [%d, %d], want [9, 21]", got.Breakdown[0].Rate, got.Breakdown[1].Rate)
	}
	if !got.Breakdown[0].Amount.Equal(dec("13.5")) {
		t.Errorf("9%% amount = %s, want 13.5", got.Breakdown[0].Amount)
	}
}

func TestComputeTotalsExcludesZeroRateFromBreakdown(t *testing.T) {
	lines := []domain.LineItem{
		line("a", "1", "100", 0),
		line("b", "1", "100", 20),
	}

	got := ComputeTotals(lines)
	if len(got.Breakdown) != 1 {
		t.Fatalf("breakdown has %d entries, want 1", len(got.Breakdown))
	}
	if got.Breakdown[0].Rate != 20 {
		t.Errorf("breakdown rate = %d, want 20", got.Breakdown[0].Rate)
	}
}

func TestRateVATIncludesZeroRate(t *testing.T) {
	lines := []domain.LineItem{
		line("a", "1", "100", 0),
		line("b", "1", "100", 20),
		line("c", "2", "50", 0),
	}

	got := RateVAT(lines)
	if len(got) != 2 {
		t.Fatalf("RateVAT has %d entries, want 2", len(got))
	}
	if got[0].Rate != 0 || got[1].Rate != 20 {
		t.Errorf("rate order = [%d, %d], want [0, 20]", got[0].Rate, got[1].Rate)
	}
	if !got[0].Amount.Equal(dec("0")) {
		t.Errorf("0%% amount = %s, want 0", got[0].Amount)
	}
	if !got[1].Amount.Equal(dec("20")) {
		t.Errorf("20%% amount = %s, want 20", got[1].Amount)
	}
}

func TestRateVATFirstAppearanceOrder(t *testing.T) {
	lines := []domain.LineItem{
		line("a", "1", "100", 21),
		line("b", "1", "100", 0),
		line("c", "1", "100", 9),
		line("d", "1", "100", 21),
	}

	got := RateVAT(lines)
	if len(got) != 3 {
		t.Fatalf("RateVAT has %d entries, want 3", len(got))
	}
	want := []int{21, 0, 9}
	for i, entry := range got {
		if entry.Rate != want[i] {
			t.Errorf("entry %d rate = %d, want %d", i, entry.Rate, want[i])
		}
	}
	if !got[0].Amount.Equal(dec("42")) {
		t.Errorf("21%% amount = %s, want 42", got[0].Amount)
	}
}

func TestComputeTotalsIgnoresStoredLineTotal(t *testing.T) {
	l := line("drifted", "1", "100", 20)
	l.LineTotal = dec("9999")

	got := ComputeTotals([]domain.LineItem{l})
	if !got.Total.Equal(dec("120")) {
		t.Errorf("Total = %s, want 120", got.Total)
	}
}

func TestComputeTotalsDeterministic(t *testing.T) {
	lines := []domain.LineItem{
		line("a", "3", "33.33", 21),
		line("b", "1.5", "100", 9),
	}

	first := ComputeTotals(lines)
	for i := 0; i < 10; i++ {
		again := ComputeTotals(lines)
		if !again.Total.Equal(first.Total) || !again.Subtotal.Equal(first.Subtotal) {
			t.Fatalf("run %d differs: %s vs %s", i, again.Total, first.Total)
		}
	}
}

func TestLineTotal(t *testing.T) {
	l := line("x", "2", "50", 20)
	if got := LineTotal(l); !got.Equal(dec("120")) {
		t.Errorf("LineTotal = %s, want 120", got)
	}
	if got := LineSubtotal(l); !got.Equal(dec("100")) {
		t.Errorf("LineSubtotal = %s, want 100", got)
	}
	if got := LineVAT(l); !got.Equal(dec("20")) {
		t.Errorf("LineVAT = %s, want 20", got)
	}
}
