package config

import "time"

const (
	// Payment terms applied to every issued invoice
	DueDateDays = 30

	// Invoice currency (single fixed locale)
	Currency = "EUR"

	// Conversation lifecycle: drafts idle longer than this are discarded,
	// including drafts stuck waiting for a payment that never arrived.
	ConversationTTL   = 24 * time.Hour
	ConversationSweep = 10 * time.Minute

	// Refund window for Stars payments
	RefundWindow = 24 * time.Hour

	// Listing limits
	RecentInvoicesLimit = 10

	// Inline keyboard label truncation
	KeyboardLabelLen = 30

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Rate limit (messages per minute per chat)
	RateLimitPerMinute = 20
)
