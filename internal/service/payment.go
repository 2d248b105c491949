package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/google/uuid"
	"github.com/mkalvans/invoicebot/internal/config"
	"github.com/mkalvans/invoicebot/internal/domain"
	"github.com/mkalvans/invoicebot/internal/repository"
	"github.com/mkalvans/invoicebot/internal/telegram"
)

// Invoice payload prefixes. A draft payload carries an opaque token minted
// when the Stars invoice is sent; a regenerate payload names the stored
// invoice directly.
const (
	payloadDraftPrefix      = "draft_"
	payloadRegeneratePrefix = "regenerate_"
)

// NewDraftPayload mints the payload tying a Stars invoice to the draft that
// requested it.
func NewDraftPayload() string {
	return payloadDraftPrefix + uuid.NewString()
}

// NewRegeneratePayload builds the payload for re-purchasing an existing
// invoice's document. The timestamp keeps repeated purchases distinct.
func NewRegeneratePayload(invoiceID int64) string {
	return fmt.Sprintf("%s%d_%d", payloadRegeneratePrefix, invoiceID, time.Now().Unix())
}

// ParseDraftPayload reports whether the payload belongs to a draft.
func ParseDraftPayload(payload string) bool {
	return strings.HasPrefix(payload, payloadDraftPrefix)
}

// ParseRegeneratePayload extracts the invoice id from a regenerate payload.
func ParseRegeneratePayload(payload string) (int64, bool) {
	rest, ok := strings.CutPrefix(payload, payloadRegeneratePrefix)
	if !ok {
		return 0, false
	}
	idStr, _, ok := strings.Cut(rest, "_")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

type PaymentService struct {
	queries *repository.Queries
	ops     *telegram.OpsLogger
}

func NewPaymentService(q *repository.Queries, ops *telegram.OpsLogger) *PaymentService {
	return &PaymentService{queries: q, ops: ops}
}

// Record stores a successful Stars charge against its invoice.
func (s *PaymentService) Record(ctx context.Context, user *domain.User, invoice *domain.Invoice, chargeID, providerChargeID string, amount int, payload string) error {
	_, err := s.queries.CreatePayment(ctx, &domain.Payment{
		UserID:                  user.ID,
		InvoiceID:               invoice.ID,
		TelegramPaymentChargeID: chargeID,
		ProviderPaymentChargeID: providerChargeID,
		Amount:                  amount,
		Currency:                "XTR",
		Payload:                 payload,
	})
	if err != nil {
		return err
	}
	s.ops.Payment(ctx, user.ID, invoice.InvoiceNumber, amount)
	return nil
}

// RefundLast refunds the user's most recent charge through Telegram and
// marks it locally. Refunds are allowed once per charge and only within the
// Stars refund window.
func (s *PaymentService) RefundLast(ctx context.Context, b *bot.Bot, user *domain.User) (*domain.Payment, error) {
	payment, err := s.queries.GetLastPayment(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if payment.Refunded {
		return nil, domain.ErrAlreadyRefunded
	}
	if time.Since(payment.CreatedAt) > config.RefundWindow {
		return nil, domain.ErrRefundWindowOver
	}

	ok, err := b.RefundStarPayment(ctx, &bot.RefundStarPaymentParams{
		UserID:                  user.TelegramID,
		TelegramPaymentChargeID: payment.TelegramPaymentChargeID,
	})
	if err != nil {
		return nil, fmt.Errorf("refund star payment: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("refund star payment: telegram declined")
	}

	if err := s.queries.MarkPaymentRefunded(ctx, payment.ID); err != nil {
		return nil, err
	}
	s.ops.Refund(ctx, user.ID, payment.TelegramPaymentChargeID)
	return payment, nil
}
