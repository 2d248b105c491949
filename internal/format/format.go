// Package format renders money, dates and keyboard labels for chat messages.
// PDF rendering has its own formatting rules and does not use this package's
// currency symbol.
package format

import (
	"fmt"
	"time"

	"github.com/mkalvans/invoicebot/internal/domain"
	"github.com/shopspring/decimal"
)

// Currency renders an amount with the euro sign and exactly two decimals.
func Currency(amount decimal.Decimal) string {
	return "€" + amount.StringFixed(2)
}

// Date renders DD.MM.YYYY, the bot's single fixed locale.
func Date(t time.Time) string {
	return t.Format("02.01.2006")
}

// Percent renders an integer VAT rate.
func Percent(rate int) string {
	return fmt.Sprintf("%d%%", rate)
}

// Truncate shortens text to maxLen runes, appending an ellipsis.
func Truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen-3]) + "..."
}

// ClientLabel renders a client for keyboard buttons: "Name (Country)".
func ClientLabel(c *domain.Client) string {
	if c.Country != "" {
		return fmt.Sprintf("%s (%s)", c.Name, c.Country)
	}
	return c.Name
}

// ProductLabel renders a product for keyboard buttons: "Name - €price".
func ProductLabel(p *domain.Product) string {
	if p.DefaultPrice != nil {
		return fmt.Sprintf("%s - %s", p.Name, Currency(*p.DefaultPrice))
	}
	return p.Name
}

// OrNotSet substitutes the chat-message placeholder for empty profile fields.
// Rendered documents omit empty fields instead; this is for messages only.
func OrNotSet(value string) string {
	if value == "" {
		return "Not set"
	}
	return value
}
