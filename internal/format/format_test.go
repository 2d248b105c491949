package format

import (
	"testing"
	"time"

	"github.com/mkalvans/invoicebot/internal/domain"
	"github.com/shopspring/decimal"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"100", "€100.00"},
		{"99.5", "€99.50"},
		{"0", "€0.00"},
		{"1234.567", "€1234.57"},
	}

	for _, tt := range tests {
		d, _ := decimal.NewFromString(tt.in)
		if got := Currency(d); got != tt.want {
			t.Errorf("Currency(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDate(t *testing.T) {
	d := time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC)
	if got := Date(d); got != "07.03.2025" {
		t.Errorf("Date = %q, want 07.03.2025", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 30); got != "short" {
		t.Errorf("Truncate(short) = %q", got)
	}
	long := "a very long client name that will not fit on a button"
	got := Truncate(long, 20)
	if len([]rune(got)) != 20 {
		t.Errorf("Truncate length = %d, want 20", len([]rune(got)))
	}
	if got[len(got)-3:] != "..." {
		t.Errorf("Truncate = %q, want ellipsis suffix", got)
	}
}

func TestClientLabel(t *testing.T) {
	withCountry := &domain.Client{Name: "ACME", Country: "Latvia"}
	if got := ClientLabel(withCountry); got != "ACME (Latvia)" {
		t.Errorf("ClientLabel = %q", got)
	}
	bare := &domain.Client{Name: "ACME"}
	if got := ClientLabel(bare); got != "ACME" {
		t.Errorf("ClientLabel = %q", got)
	}
}

func TestProductLabel(t *testing.T) {
	price := decimal.NewFromInt(150)
	withPrice := &domain.Product{Name: "Consulting", DefaultPrice: &price}
	if got := ProductLabel(withPrice); got != "Consulting - €150.00" {
		t.Errorf("ProductLabel = %q", got)
	}
	bare := &domain.Product{Name: "Consulting"}
	if got := ProductLabel(bare); got != "Consulting" {
		t.Errorf("ProductLabel = %q", got)
	}
}

func TestOrNotSet(t *testing.T) {
	if got := OrNotSet(""); got != "Not set" {
		t.Errorf("OrNotSet(empty) = %q", got)
	}
	if got := OrNotSet("x"); got != "x" {
		t.Errorf("OrNotSet(x) = %q", got)
	}
}
