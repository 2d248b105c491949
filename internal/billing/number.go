package billing

import "fmt"

// FormatInvoiceNumber builds the {year}{sequence} invoice number, the
// sequence zero-padded to three digits: 2025001, 2025002, ...
// The sequence itself comes from an atomic per-year counter in the database
// so concurrent finalizations can never collide.
func FormatInvoiceNumber(year int, seq int64) string {
	return fmt.Sprintf("%d%03d", year, seq)
}
