package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/mkalvans/invoicebot/internal/conversation"
	"github.com/mkalvans/invoicebot/internal/domain"
	"github.com/mkalvans/invoicebot/internal/service"
	"github.com/mkalvans/invoicebot/internal/telegram"
)

// handlePreCheckout approves or rejects the charge before Telegram takes the
// Stars. A draft payload must match a live awaiting-payment draft; a
// regenerate payload must name an invoice the payer owns.
func (h *Handler) handlePreCheckout(ctx context.Context, b *bot.Bot, update *models.Update) {
	query := update.PreCheckoutQuery
	user := h.userOrNil(ctx)

	ok, reason := h.checkPayload(ctx, user, query.InvoicePayload)
	params := &bot.AnswerPreCheckoutQueryParams{PreCheckoutQueryID: query.ID, OK: ok}
	if !ok {
		params.ErrorMessage = reason
	}
	if _, err := b.AnswerPreCheckoutQuery(ctx, params); err != nil && user != nil {
		h.deps.Ops.Error(ctx, user.ID, "answer pre-checkout", err)
	}
}

func (h *Handler) checkPayload(ctx context.Context, user *domain.User, payload string) (bool, string) {
	if user == nil {
		return false, "Please try again."
	}

	if service.ParseDraftPayload(payload) {
		state := h.deps.Conv.Get(user.TelegramID)
		if state == nil || state.Flow != conversation.FlowInvoice ||
			state.Step != conversation.StepInvoiceAwaitingPayment ||
			state.Invoice.PayloadToken != payload {
			return false, "This invoice draft has expired. Start again with /invoice."
		}
		return true, ""
	}

	if invoiceID, ok := service.ParseRegeneratePayload(payload); ok {
		if _, err := h.deps.Queries.GetInvoice(ctx, user.ID, invoiceID); err != nil {
			return false, "This invoice no longer exists."
		}
		return true, ""
	}

	return false, "Unknown payment. Please start again."
}

// handleSuccessfulPayment is the paid entry point: finalize the awaiting
// draft, or regenerate the named invoice, then deliver the document. A
// failure after the Stars were taken refunds them automatically.
func (h *Handler) handleSuccessfulPayment(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	payment := update.Message.SuccessfulPayment

	switch {
	case service.ParseDraftPayload(payment.InvoicePayload):
		h.finalizePaidDraft(ctx, b, update, user, payment)
	default:
		if invoiceID, ok := service.ParseRegeneratePayload(payment.InvoicePayload); ok {
			h.deliverRegenerated(ctx, b, update, user, payment, invoiceID)
		}
	}
}

func (h *Handler) finalizePaidDraft(ctx context.Context, b *bot.Bot, update *models.Update, user *domain.User, payment *models.SuccessfulPayment) {
	state := h.deps.Conv.Get(user.TelegramID)
	if state == nil || state.Flow != conversation.FlowInvoice || state.Invoice.PayloadToken != payment.InvoicePayload {
		h.refundCharge(ctx, b, user, payment)
		h.reply(ctx, b, update, "Your draft expired before the payment arrived. The Stars were refunded; start again with /invoice.")
		return
	}

	invoice, data, err := h.deps.Invoices.Finalize(ctx, user, state.Invoice)
	if err != nil {
		// Draft stays stored so the user can retry without re-entering it.
		state.Step = conversation.StepInvoiceReview
		h.deps.Conv.Set(user.TelegramID, state)
		h.deps.Ops.Error(ctx, user.ID, "finalize invoice", err)
		h.refundCharge(ctx, b, user, payment)
		h.reply(ctx, b, update, "Generating the invoice failed and your Stars were refunded. Your draft is still here, try paying again.")
		return
	}

	if err := h.deps.Payments.Record(ctx, user, invoice, payment.TelegramPaymentChargeID, payment.ProviderPaymentChargeID, payment.TotalAmount, payment.InvoicePayload); err != nil {
		h.deps.Ops.Error(ctx, user.ID, "record payment", err)
	}

	h.deps.Conv.Clear(user.TelegramID)
	h.deliverPDF(ctx, b, update, user, invoice, data)
}

func (h *Handler) deliverRegenerated(ctx context.Context, b *bot.Bot, update *models.Update, user *domain.User, payment *models.SuccessfulPayment, invoiceID int64) {
	invoice, data, err := h.deps.Invoices.Regenerate(ctx, user, invoiceID)
	if err != nil {
		h.deps.Ops.Error(ctx, user.ID, "regenerate invoice", err)
		h.refundCharge(ctx, b, user, payment)
		h.reply(ctx, b, update, "Regenerating the invoice failed and your Stars were refunded.")
		return
	}

	if err := h.deps.Payments.Record(ctx, user, invoice, payment.TelegramPaymentChargeID, payment.ProviderPaymentChargeID, payment.TotalAmount, payment.InvoicePayload); err != nil {
		h.deps.Ops.Error(ctx, user.ID, "record payment", err)
	}

	h.deliverPDF(ctx, b, update, user, invoice, data)
}

func (h *Handler) deliverPDF(ctx context.Context, b *bot.Bot, update *models.Update, user *domain.User, invoice *domain.Invoice, data []byte) {
	filename := fmt.Sprintf("invoice_%s.pdf", invoice.InvoiceNumber)
	caption := fmt.Sprintf("Invoice %s", invoice.InvoiceNumber)
	if err := telegram.SendDocument(ctx, b, chatID(update), filename, data, caption); err != nil {
		h.deps.Ops.Error(ctx, user.ID, "send invoice pdf", err)
		h.reply(ctx, b, update, "The invoice was created but sending the file failed. Use /invoice "+invoice.InvoiceNumber+" to download it.")
	}
}

// refundCharge returns the Stars after a post-payment failure. Best effort:
// if the refund itself fails, /paysupport is the fallback.
func (h *Handler) refundCharge(ctx context.Context, b *bot.Bot, user *domain.User, payment *models.SuccessfulPayment) {
	_, err := b.RefundStarPayment(ctx, &bot.RefundStarPaymentParams{
		UserID:                  user.TelegramID,
		TelegramPaymentChargeID: payment.TelegramPaymentChargeID,
	})
	if err != nil {
		h.deps.Ops.Error(ctx, user.ID, "auto refund", err)
	}
}

func (h *Handler) handleRefund(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	payment, err := h.deps.Payments.RefundLast(ctx, b, user)
	switch {
	case errors.Is(err, domain.ErrPaymentNotFound):
		h.reply(ctx, b, update, "No payments found.")
	case errors.Is(err, domain.ErrAlreadyRefunded):
		h.reply(ctx, b, update, "Your last payment was already refunded.")
	case errors.Is(err, domain.ErrRefundWindowOver):
		h.reply(ctx, b, update, "Refunds are only possible within 24 hours of payment. Contact /paysupport.")
	case err != nil:
		h.deps.Ops.Error(ctx, user.ID, "refund", err)
		h.reply(ctx, b, update, "The refund failed, please try again or contact /paysupport.")
	default:
		h.reply(ctx, b, update, fmt.Sprintf("Refunded %d Stars.", payment.Amount))
	}
}
