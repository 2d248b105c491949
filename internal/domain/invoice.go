package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a single invoice position. LineTotal is VAT-inclusive and is
// derived once when the line is committed; totals are always re-derived from
// Quantity, UnitPrice and VATRate so a stale LineTotal can never drift them.
type LineItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	VATRate     int
	LineTotal   decimal.Decimal
}

// Invoice is a finalized, persisted invoice. It is immutable once created
// except for PDFPath, which is set after the document is uploaded.
type Invoice struct {
	ID            int64
	UserID        int64
	ClientID      int64
	InvoiceNumber string
	IssueDate     time.Time
	DueDate       time.Time
	Subtotal      decimal.Decimal
	VATTotal      decimal.Decimal
	TotalAmount   decimal.Decimal
	PDFPath       string
	CreatedAt     time.Time
}

// InvoiceLine is a persisted LineItem belonging to one invoice.
type InvoiceLine struct {
	ID        int64
	InvoiceID int64
	LineItem
}

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment records a Telegram Stars charge for PDF generation or regeneration.
type Payment struct {
	ID                      int64
	UserID                  int64
	InvoiceID               int64
	TelegramPaymentChargeID string
	ProviderPaymentChargeID string
	Amount                  int
	Currency                string
	Payload                 string
	Status                  PaymentStatus
	Refunded                bool
	RefundDate              *time.Time
	CreatedAt               time.Time
}
