package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Logging returns middleware that records every handled update with its
// kind and handling time.
func Logging() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			start := time.Now()
			next(ctx, b, update)

			slog.Info("update handled",
				"update_id", update.ID,
				"kind", updateKind(update),
				"duration", time.Since(start),
			)
		}
	}
}

func updateKind(update *models.Update) string {
	switch {
	case update.PreCheckoutQuery != nil:
		return "pre_checkout_query"
	case update.Message != nil && update.Message.SuccessfulPayment != nil:
		return "successful_payment"
	case update.CallbackQuery != nil:
		return "callback_query"
	case update.Message != nil:
		return "message"
	default:
		return "other"
	}
}
