package middleware

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/mkalvans/invoicebot/internal/domain"
)

type ctxKey int

const userKey ctxKey = iota

// UserFinder resolves the sender to a stored user, creating one on first
// contact.
type UserFinder interface {
	FindOrCreate(ctx context.Context, telegramID int64) (*domain.User, error)
}

// UserLoader returns middleware that attaches the sender's user record to
// the context. Updates with no identifiable sender pass through without one.
func UserLoader(users UserFinder) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			telegramID := senderID(update)
			if telegramID == 0 {
				next(ctx, b, update)
				return
			}

			user, err := users.FindOrCreate(ctx, telegramID)
			if err != nil {
				slog.Error("load user", "telegram_id", telegramID, "error", err)
				next(ctx, b, update)
				return
			}

			next(ContextWithUser(ctx, user), b, update)
		}
	}
}

// ContextWithUser returns ctx carrying the user record, as UserLoader
// attaches it.
func ContextWithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the loaded user, or nil when loading failed or the
// update had no sender.
func UserFromContext(ctx context.Context) *domain.User {
	u, _ := ctx.Value(userKey).(*domain.User)
	return u
}

func senderID(update *models.Update) int64 {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID
	case update.PreCheckoutQuery != nil:
		return update.PreCheckoutQuery.From.ID
	default:
		return 0
	}
}
