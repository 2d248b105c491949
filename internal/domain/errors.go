package domain

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrClientNotFound   = errors.New("client not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrEmptyInvoice     = errors.New("invoice has no line items")
	ErrCompanyNotSetUp  = errors.New("company profile not set up")
	ErrAlreadyRefunded  = errors.New("payment already refunded")
	ErrRefundWindowOver = errors.New("refund window expired")
)
