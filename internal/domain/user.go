package domain

import "time"

// User is a bot user together with the company profile collected by /setup.
// Profile fields are empty strings until the setup wizard completes.
type User struct {
	ID         int64
	TelegramID int64

	CompanyName string
	RegNumber   string
	VATNumber   string
	Address     string
	City        string
	ZipCode     string
	Phone       string
	Email       string
	BankName    string
	IBAN        string
	SWIFT       string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCompany reports whether the setup wizard has been completed.
func (u *User) HasCompany() bool {
	return u.CompanyName != ""
}
