// Package handler contains the Telegram update handlers: commands, the
// conversational wizards, the invoice builder and the Stars payment flow.
package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/mkalvans/invoicebot/internal/config"
	"github.com/mkalvans/invoicebot/internal/conversation"
	"github.com/mkalvans/invoicebot/internal/domain"
	"github.com/mkalvans/invoicebot/internal/middleware"
	"github.com/mkalvans/invoicebot/internal/repository"
	"github.com/mkalvans/invoicebot/internal/service"
	"github.com/mkalvans/invoicebot/internal/telegram"
)

// Deps carries everything the handlers need.
type Deps struct {
	Config   *config.Config
	Conv     *conversation.Store
	Queries  *repository.Queries
	Users    *service.UserService
	Invoices *service.InvoiceService
	Payments *service.PaymentService
	Ops      *telegram.OpsLogger
}

type Handler struct {
	deps Deps
}

func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// locked serializes handling per user so multi-step flows cannot interleave
// when Telegram delivers a user's updates concurrently.
func (h *Handler) locked(fn bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		user := middleware.UserFromContext(ctx)
		if user == nil {
			return
		}
		unlock := h.deps.Conv.LockUser(user.TelegramID)
		defer unlock()
		fn(ctx, b, update)
	}
}

// chatID extracts the chat to reply into.
func chatID(update *models.Update) int64 {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil:
		return update.CallbackQuery.Message.Message.Chat.ID
	default:
		return 0
	}
}

func (h *Handler) reply(ctx context.Context, b *bot.Bot, update *models.Update, text string) {
	telegram.SendText(ctx, b, chatID(update), text)
}

func (h *Handler) replyKb(ctx context.Context, b *bot.Bot, update *models.Update, text string, kb *models.InlineKeyboardMarkup) {
	telegram.SendTextWithKeyboard(ctx, b, chatID(update), text, kb)
}

func answerCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	_, _ = b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
	})
}

func (h *Handler) userOrNil(ctx context.Context) *domain.User {
	return middleware.UserFromContext(ctx)
}

// requireUser fetches the loaded user or tells the sender something went
// wrong. Handlers call it first.
func (h *Handler) requireUser(ctx context.Context, b *bot.Bot, update *models.Update) (*domain.User, bool) {
	user := middleware.UserFromContext(ctx)
	if user == nil {
		h.reply(ctx, b, update, "Something went wrong, please try again.")
		return nil, false
	}
	return user, true
}
