// Package validate holds the field validators used by the conversational
// wizards. Validators never coerce: invalid input is rejected and the caller
// re-prompts for the same field.
package validate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[+]?[\d\s\-()]+$`)
	ibanRe  = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]{4}[0-9]{7}[A-Z0-9]{0,16}$`)
	digitRe = regexp.MustCompile(`\d`)
)

// Sanitize trims whitespace and strips angle brackets from user input.
func Sanitize(input string) string {
	s := strings.TrimSpace(input)
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	return s
}

// IsSkip reports whether the input is the reserved "skip" literal.
func IsSkip(input string) bool {
	return strings.EqualFold(strings.TrimSpace(input), "skip")
}

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

func Email(email string) bool {
	return emailRe.MatchString(email)
}

func Phone(phone string) bool {
	if !phoneRe.MatchString(phone) {
		return false
	}
	return len(digitRe.FindAllString(phone, -1)) >= 7
}

// IBAN validates the normalized form (spaces stripped, upper case).
func IBAN(iban string) bool {
	return ibanRe.MatchString(NormalizeIBAN(iban))
}

// NormalizeIBAN strips spaces and upper-cases for storage.
func NormalizeIBAN(iban string) string {
	return strings.ToUpper(strings.ReplaceAll(iban, " ", ""))
}

// PositiveDecimal parses a strictly positive decimal, e.g. a quantity.
func PositiveDecimal(value string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// NonNegativeDecimal parses a decimal >= 0, e.g. a unit price.
func NonNegativeDecimal(value string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// VATRate parses an integer percentage in [0,100].
func VATRate(value string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 || n > 100 {
		return 0, false
	}
	return n, true
}
