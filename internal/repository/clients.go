package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mkalvans/invoicebot/internal/domain"
)

const clientColumns = `id, user_id, name, address_line1, address_line2,
	country, reg_number, vat_number, created_at`

func scanClient(row pgx.Row) (*domain.Client, error) {
	var c domain.Client
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.AddressLine1, &c.AddressLine2,
		&c.Country, &c.RegNumber, &c.VATNumber, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (q *Queries) CreateClient(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO clients (user_id, name, address_line1, address_line2, country, reg_number, vat_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+clientColumns,
		c.UserID, c.Name, c.AddressLine1, c.AddressLine2, c.Country, c.RegNumber, c.VATNumber,
	)
	created, err := scanClient(row)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return created, nil
}

// GetClient looks the client up scoped to its owner; a client id belonging
// to another user behaves as not found.
func (q *Queries) GetClient(ctx context.Context, userID, clientID int64) (*domain.Client, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1 AND user_id = $2`,
		clientID, userID)
	c, err := scanClient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

func (q *Queries) ListClients(ctx context.Context, userID int64) ([]*domain.Client, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []*domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (q *Queries) UpdateClient(ctx context.Context, c *domain.Client) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE clients SET
			name = $3, address_line1 = $4, address_line2 = $5,
			country = $6, reg_number = $7, vat_number = $8
		WHERE id = $1 AND user_id = $2`,
		c.ID, c.UserID, c.Name, c.AddressLine1, c.AddressLine2,
		c.Country, c.RegNumber, c.VATNumber,
	)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (q *Queries) DeleteClient(ctx context.Context, userID, clientID int64) error {
	tag, err := q.db.Exec(ctx,
		`DELETE FROM clients WHERE id = $1 AND user_id = $2`, clientID, userID)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}
