package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a saved product/service used to pre-fill invoice lines.
// DefaultPrice and DefaultVATRate are nil when not set.
type Product struct {
	ID             int64
	UserID         int64
	Name           string
	Description    string
	DefaultPrice   *decimal.Decimal
	DefaultVATRate *int
	CreatedAt      time.Time
}
