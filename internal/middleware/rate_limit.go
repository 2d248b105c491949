package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/mkalvans/invoicebot/internal/config"
)

type rateWindow struct {
	count   int
	resetAt time.Time
}

// RateLimit returns middleware that drops updates from chats exceeding the
// per-minute budget. Payment updates are never dropped; losing a
// SuccessfulPayment would strand a paid draft.
func RateLimit() bot.Middleware {
	var mu sync.Mutex
	windows := make(map[int64]*rateWindow)

	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if update.PreCheckoutQuery != nil || (update.Message != nil && update.Message.SuccessfulPayment != nil) {
				next(ctx, b, update)
				return
			}

			chatID := chatIDOf(update)
			if chatID == 0 {
				next(ctx, b, update)
				return
			}

			mu.Lock()
			w, ok := windows[chatID]
			now := time.Now()
			if !ok || now.After(w.resetAt) {
				w = &rateWindow{resetAt: now.Add(time.Minute)}
				windows[chatID] = w
			}
			w.count++
			over := w.count > config.RateLimitPerMinute
			mu.Unlock()

			if over {
				slog.Warn("rate limited", "chat_id", chatID)
				return
			}
			next(ctx, b, update)
		}
	}
}

func chatIDOf(update *models.Update) int64 {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil:
		return update.CallbackQuery.Message.Message.Chat.ID
	default:
		return 0
	}
}
