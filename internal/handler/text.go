package handler

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/mkalvans/invoicebot/internal/conversation"
)

// handleText feeds free text into whichever flow is active for the sender.
func (h *Handler) handleText(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	text := update.Message.Text
	if strings.HasPrefix(text, "/") {
		// Unknown command; registered commands never reach the default
		// handler.
		h.reply(ctx, b, update, "Unknown command. See /help.")
		return
	}

	state := h.deps.Conv.Get(user.TelegramID)
	if state == nil {
		h.reply(ctx, b, update, "I wasn't expecting that. Use /invoice to create an invoice or /help for all commands.")
		return
	}

	switch state.Flow {
	case conversation.FlowSetup:
		h.setupText(ctx, b, update, state, text)
	case conversation.FlowClient:
		h.clientText(ctx, b, update, state, text)
	case conversation.FlowProduct:
		h.productText(ctx, b, update, state, text)
	case conversation.FlowInvoice:
		h.invoiceText(ctx, b, update, state, text)
	}
}
