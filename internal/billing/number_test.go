package billing

import "testing"

func TestFormatInvoiceNumber(t *testing.T) {
	tests := []struct {
		year int
		seq  int64
		want string
	}{
		{2025, 1, "2025001"},
		{2025, 42, "2025042"},
		{2025, 999, "2025999"},
		{2025, 1000, "20251000"},
		{2026, 1, "2026001"},
	}

	for _, tt := range tests {
		if got := FormatInvoiceNumber(tt.year, tt.seq); got != tt.want {
			t.Errorf("FormatInvoiceNumber(%d, %d) = %s, want %s", tt.year, tt.seq, got, tt.want)
		}
	}
}
