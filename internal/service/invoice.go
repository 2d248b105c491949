package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkalvans/invoicebot/internal/billing"
	"github.com/mkalvans/invoicebot/internal/config"
	"github.com/mkalvans/invoicebot/internal/conversation"
	"github.com/mkalvans/invoicebot/internal/domain"
	"github.com/mkalvans/invoicebot/internal/pdf"
	"github.com/mkalvans/invoicebot/internal/repository"
	"github.com/mkalvans/invoicebot/internal/storage"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

type InvoiceService struct {
	pool     *pgxpool.Pool
	queries  *repository.Queries
	renderer *pdf.Renderer
	store    *storage.Storage
}

func NewInvoiceService(pool *pgxpool.Pool, q *repository.Queries, renderer *pdf.Renderer, store *storage.Storage) *InvoiceService {
	return &InvoiceService{pool: pool, queries: q, renderer: renderer, store: store}
}

// Finalize turns a paid draft into a numbered invoice with a rendered
// document. Numbering, row insertion and rendering all happen inside one
// transaction: if anything fails before commit the counter advance rolls
// back with it and the caller keeps the draft. The upload happens after
// commit and is soft; the document bytes are returned either way so the bot
// can deliver them from memory.
func (s *InvoiceService) Finalize(ctx context.Context, user *domain.User, draft *conversation.InvoiceDraft) (*domain.Invoice, []byte, error) {
	if len(draft.Lines) == 0 {
		return nil, nil, domain.ErrEmptyInvoice
	}
	if !user.HasCompany() {
		return nil, nil, domain.ErrCompanyNotSetUp
	}

	client, err := s.queries.GetClient(ctx, user.ID, draft.ClientID)
	if err != nil {
		return nil, nil, err
	}

	totals := billing.ComputeTotals(draft.Lines)
	issueDate := time.Now().Truncate(24 * time.Hour)
	dueDate := issueDate.AddDate(0, 0, config.DueDateDays)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin finalize tx: %w", err)
	}
	defer tx.Rollback(ctx)

	qtx := s.queries.WithTx(tx)

	seq, err := qtx.NextInvoiceSeq(ctx, issueDate.Year())
	if err != nil {
		return nil, nil, err
	}

	invoice, err := qtx.CreateInvoice(ctx, &domain.Invoice{
		UserID:        user.ID,
		ClientID:      client.ID,
		InvoiceNumber: billing.FormatInvoiceNumber(issueDate.Year(), seq),
		IssueDate:     issueDate,
		DueDate:       dueDate,
		Subtotal:      totals.Subtotal,
		VATTotal:      totals.VATTotal,
		TotalAmount:   totals.Total,
	})
	if err != nil {
		return nil, nil, err
	}

	for _, line := range draft.Lines {
		if err := qtx.CreateInvoiceLine(ctx, invoice.ID, line); err != nil {
			return nil, nil, err
		}
	}

	data, err := s.render(user, client, invoice, draft.Lines)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit finalize tx: %w", err)
	}

	s.uploadAndTrack(ctx, invoice, data)
	return invoice, data, nil
}

// Regenerate re-renders an existing invoice's document from its stored rows.
func (s *InvoiceService) Regenerate(ctx context.Context, user *domain.User, invoiceID int64) (*domain.Invoice, []byte, error) {
	invoice, err := s.queries.GetInvoice(ctx, user.ID, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	client, err := s.queries.GetClient(ctx, user.ID, invoice.ClientID)
	if err != nil {
		return nil, nil, err
	}
	stored, err := s.queries.ListInvoiceLines(ctx, invoice.ID)
	if err != nil {
		return nil, nil, err
	}

	lines := make([]domain.LineItem, len(stored))
	for i, l := range stored {
		lines[i] = l.LineItem
	}

	data, err := s.render(user, client, invoice, lines)
	if err != nil {
		return nil, nil, err
	}

	s.uploadAndTrack(ctx, invoice, data)
	return invoice, data, nil
}

// render produces and structurally validates the document.
func (s *InvoiceService) render(user *domain.User, client *domain.Client, invoice *domain.Invoice, lines []domain.LineItem) ([]byte, error) {
	data, err := s.renderer.Render(user, client, invoice, lines)
	if err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", invoice.InvoiceNumber, err)
	}
	if err := api.Validate(bytes.NewReader(data), model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("validate invoice %s: %w", invoice.InvoiceNumber, err)
	}
	return data, nil
}

// uploadAndTrack stores the document and records its object path. Failures
// are logged only; the invoice is already committed and the bytes are
// delivered from memory.
func (s *InvoiceService) uploadAndTrack(ctx context.Context, invoice *domain.Invoice, data []byte) {
	path, err := s.store.UploadPDF(ctx, invoice.UserID, invoice.InvoiceNumber, data)
	if err != nil {
		slog.Error("upload invoice pdf", "invoice", invoice.InvoiceNumber, "error", err)
		return
	}
	if err := s.queries.UpdateInvoicePDFPath(ctx, invoice.ID, path); err != nil {
		slog.Error("track invoice pdf path", "invoice", invoice.InvoiceNumber, "error", err)
		return
	}
	invoice.PDFPath = path
}
