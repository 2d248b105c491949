package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mkalvans/invoicebot/internal/domain"
)

const invoiceColumns = `id, user_id, client_id, invoice_number, issue_date,
	due_date, subtotal, vat_total, total_amount, pdf_path, created_at`

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := row.Scan(
		&inv.ID, &inv.UserID, &inv.ClientID, &inv.InvoiceNumber,
		&inv.IssueDate, &inv.DueDate,
		&inv.Subtotal, &inv.VATTotal, &inv.TotalAmount,
		&inv.PDFPath, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// NextInvoiceSeq atomically advances and returns the per-year sequence.
// The upsert makes concurrent finalizations serialize on the counter row,
// so two invoices can never receive the same number.
func (q *Queries) NextInvoiceSeq(ctx context.Context, year int) (int64, error) {
	var seq int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO invoice_counters (year, last_value) VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_value = invoice_counters.last_value + 1
		RETURNING last_value`, year).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next invoice seq: %w", err)
	}
	return seq, nil
}

func (q *Queries) CreateInvoice(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO invoices (user_id, client_id, invoice_number, issue_date, due_date, subtotal, vat_total, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+invoiceColumns,
		inv.UserID, inv.ClientID, inv.InvoiceNumber, inv.IssueDate, inv.DueDate,
		inv.Subtotal, inv.VATTotal, inv.TotalAmount,
	)
	created, err := scanInvoice(row)
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	return created, nil
}

func (q *Queries) CreateInvoiceLine(ctx context.Context, invoiceID int64, line domain.LineItem) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO invoice_lines (invoice_id, description, quantity, unit_price, vat_rate, line_total)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		invoiceID, line.Description, line.Quantity, line.UnitPrice, line.VATRate, line.LineTotal,
	)
	if err != nil {
		return fmt.Errorf("create invoice line: %w", err)
	}
	return nil
}

func (q *Queries) GetInvoice(ctx context.Context, userID, invoiceID int64) (*domain.Invoice, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 AND user_id = $2`,
		invoiceID, userID)
	inv, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

func (q *Queries) GetInvoiceByNumber(ctx context.Context, userID int64, number string) (*domain.Invoice, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE invoice_number = $1 AND user_id = $2`,
		number, userID)
	inv, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice by number: %w", err)
	}
	return inv, nil
}

// InvoiceWithClient is one recent-invoices listing row: the invoice joined
// with its client's name.
type InvoiceWithClient struct {
	domain.Invoice
	ClientName string
}

func (q *Queries) ListRecentInvoices(ctx context.Context, userID int64, limit int) ([]*InvoiceWithClient, error) {
	rows, err := q.db.Query(ctx, `
		SELECT i.id, i.user_id, i.client_id, i.invoice_number, i.issue_date,
			i.due_date, i.subtotal, i.vat_total, i.total_amount, i.pdf_path, i.created_at,
			c.name
		FROM invoices i
		JOIN clients c ON c.id = i.client_id
		WHERE i.user_id = $1
		ORDER BY i.created_at DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*InvoiceWithClient
	for rows.Next() {
		var inv InvoiceWithClient
		err := rows.Scan(
			&inv.ID, &inv.UserID, &inv.ClientID, &inv.InvoiceNumber,
			&inv.IssueDate, &inv.DueDate,
			&inv.Subtotal, &inv.VATTotal, &inv.TotalAmount,
			&inv.PDFPath, &inv.CreatedAt,
			&inv.ClientName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, &inv)
	}
	return invoices, rows.Err()
}

func (q *Queries) ListInvoiceLines(ctx context.Context, invoiceID int64) ([]domain.InvoiceLine, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, invoice_id, description, quantity, unit_price, vat_rate, line_total
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY id`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.InvoiceLine
	for rows.Next() {
		var l domain.InvoiceLine
		err := rows.Scan(&l.ID, &l.InvoiceID, &l.Description, &l.Quantity, &l.UnitPrice, &l.VATRate, &l.LineTotal)
		if err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (q *Queries) UpdateInvoicePDFPath(ctx context.Context, invoiceID int64, pdfPath string) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE invoices SET pdf_path = $2 WHERE id = $1`, invoiceID, pdfPath)
	if err != nil {
		return fmt.Errorf("update invoice pdf path: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}
