package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mkalvans/invoicebot/internal/domain"
)

const paymentColumns = `id, user_id, invoice_id, telegram_payment_charge_id,
	provider_payment_charge_id, amount, currency, payload, status,
	refunded, refund_date, created_at`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.ID, &p.UserID, &p.InvoiceID, &p.TelegramPaymentChargeID,
		&p.ProviderPaymentChargeID, &p.Amount, &p.Currency, &p.Payload,
		&p.Status, &p.Refunded, &p.RefundDate, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (q *Queries) CreatePayment(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO payments (user_id, invoice_id, telegram_payment_charge_id, provider_payment_charge_id, amount, currency, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+paymentColumns,
		p.UserID, p.InvoiceID, p.TelegramPaymentChargeID, p.ProviderPaymentChargeID,
		p.Amount, p.Currency, p.Payload,
	)
	created, err := scanPayment(row)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return created, nil
}

// GetLastPayment returns the user's most recent charge, refunded or not.
func (q *Queries) GetLastPayment(ctx context.Context, userID int64) (*domain.Payment, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`,
		userID)
	p, err := scanPayment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get last payment: %w", err)
	}
	return p, nil
}

func (q *Queries) GetPaymentByChargeID(ctx context.Context, chargeID string) (*domain.Payment, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE telegram_payment_charge_id = $1`,
		chargeID)
	p, err := scanPayment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment by charge id: %w", err)
	}
	return p, nil
}

func (q *Queries) MarkPaymentRefunded(ctx context.Context, paymentID int64) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE payments SET status = $2, refunded = TRUE, refund_date = now()
		WHERE id = $1`, paymentID, domain.PaymentStatusRefunded)
	if err != nil {
		return fmt.Errorf("mark payment refunded: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}
