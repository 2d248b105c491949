package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mkalvans/invoicebot/internal/domain"
)

const userColumns = `id, telegram_id, company_name, reg_number, vat_number,
	address, city, zip_code, phone, email, bank_name, iban, swift,
	created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.TelegramID, &u.CompanyName, &u.RegNumber, &u.VATNumber,
		&u.Address, &u.City, &u.ZipCode, &u.Phone, &u.Email,
		&u.BankName, &u.IBAN, &u.SWIFT,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (q *Queries) GetUserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}
	return u, nil
}

func (q *Queries) CreateUser(ctx context.Context, telegramID int64) (*domain.User, error) {
	row := q.db.QueryRow(ctx,
		`INSERT INTO users (telegram_id) VALUES ($1) RETURNING `+userColumns, telegramID)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// UpdateUserProfile overwrites the full company profile in one statement,
// as saved by the setup wizard.
func (q *Queries) UpdateUserProfile(ctx context.Context, u *domain.User) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE users SET
			company_name = $2, reg_number = $3, vat_number = $4,
			address = $5, city = $6, zip_code = $7,
			phone = $8, email = $9,
			bank_name = $10, iban = $11, swift = $12,
			updated_at = now()
		WHERE id = $1`,
		u.ID, u.CompanyName, u.RegNumber, u.VATNumber,
		u.Address, u.City, u.ZipCode,
		u.Phone, u.Email,
		u.BankName, u.IBAN, u.SWIFT,
	)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
