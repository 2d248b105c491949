package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Register wires commands and callback prefixes. Plain text and payment
// updates arrive through Route, the bot's default handler.
func (h *Handler) Register(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.locked(h.handleStart))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, h.locked(h.handleHelp))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, h.locked(h.handleCancel))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/profile", bot.MatchTypeExact, h.locked(h.handleProfile))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/setup", bot.MatchTypeExact, h.locked(h.handleSetup))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/clients", bot.MatchTypeExact, h.locked(h.handleClients))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/addclient", bot.MatchTypeExact, h.locked(h.handleAddClient))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/products", bot.MatchTypeExact, h.locked(h.handleProducts))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/addproduct", bot.MatchTypeExact, h.locked(h.handleAddProduct))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/invoice", bot.MatchTypePrefix, h.locked(h.handleInvoiceCommand))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/paysupport", bot.MatchTypeExact, h.locked(h.handlePaySupport))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/refund", bot.MatchTypeExact, h.locked(h.handleRefund))

	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "inv_", bot.MatchTypePrefix, h.locked(h.handleInvoiceCallback))
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "client_", bot.MatchTypePrefix, h.locked(h.handleClientCallback))
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "product_", bot.MatchTypePrefix, h.locked(h.handleProductCallback))
}

// Route is the default handler: payment updates and free text feeding the
// active conversation flow.
func (h *Handler) Route(ctx context.Context, b *bot.Bot, update *models.Update) {
	switch {
	case update.PreCheckoutQuery != nil:
		h.locked(h.handlePreCheckout)(ctx, b, update)
	case update.Message != nil && update.Message.SuccessfulPayment != nil:
		h.locked(h.handleSuccessfulPayment)(ctx, b, update)
	case update.Message != nil && update.Message.Text != "":
		h.locked(h.handleText)(ctx, b, update)
	}
}
