package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mkalvans/invoicebot/internal/domain"
)

const productColumns = `id, user_id, name, description, default_price, default_vat_rate, created_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description,
		&p.DefaultPrice, &p.DefaultVATRate, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (q *Queries) CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO products (user_id, name, description, default_price, default_vat_rate)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+productColumns,
		p.UserID, p.Name, p.Description, p.DefaultPrice, p.DefaultVATRate,
	)
	created, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

func (q *Queries) GetProduct(ctx context.Context, userID, productID int64) (*domain.Product, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND user_id = $2`,
		productID, userID)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (q *Queries) ListProducts(ctx context.Context, userID int64) ([]*domain.Product, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (q *Queries) UpdateProduct(ctx context.Context, p *domain.Product) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE products SET
			name = $3, description = $4, default_price = $5, default_vat_rate = $6
		WHERE id = $1 AND user_id = $2`,
		p.ID, p.UserID, p.Name, p.Description, p.DefaultPrice, p.DefaultVATRate,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (q *Queries) DeleteProduct(ctx context.Context, userID, productID int64) error {
	tag, err := q.db.Exec(ctx,
		`DELETE FROM products WHERE id = $1 AND user_id = $2`, productID, userID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
