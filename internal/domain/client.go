package domain

import "time"

// Client is a billing counterparty owned by one user. Only the name is
// required; absent optional fields are empty strings and are omitted
// entirely from rendered documents.
type Client struct {
	ID           int64
	UserID       int64
	Name         string
	AddressLine1 string
	AddressLine2 string
	Country      string
	RegNumber    string
	VATNumber    string
	CreatedAt    time.Time
}
