package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mkalvans/invoicebot/internal/billing"
	"github.com/mkalvans/invoicebot/internal/config"
	"github.com/mkalvans/invoicebot/internal/conversation"
	"github.com/mkalvans/invoicebot/internal/domain"
	"github.com/mkalvans/invoicebot/internal/middleware"
	"github.com/mkalvans/invoicebot/internal/repository"
	"github.com/shopspring/decimal"
)

// fakeDB satisfies repository.DBTX with no rows behind it, enough for flows
// whose state lives in the conversation store.
type fakeDB struct{}

func (fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return emptyRows{}, nil
}

func (fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return errRow{}
}

type emptyRows struct{}

func (emptyRows) Close()                                       {}
func (emptyRows) Err() error                                   { return nil }
func (emptyRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (emptyRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (emptyRows) Next() bool                                   { return false }
func (emptyRows) Scan(dest ...any) error                       { return pgx.ErrNoRows }
func (emptyRows) Values() ([]any, error)                       { return nil, nil }
func (emptyRows) RawValues() [][]byte                          { return nil }
func (emptyRows) Conn() *pgx.Conn                              { return nil }

type errRow struct{}

func (errRow) Scan(dest ...any) error { return pgx.ErrNoRows }

// newTestBot points the bot client at a stub API server so handlers can send
// replies without a live transport.
func newTestBot(t *testing.T) *bot.Bot {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "answerCallbackQuery") {
			_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	t.Cleanup(srv.Close)

	b, err := bot.New("test-token", bot.WithServerURL(srv.URL), bot.WithSkipGetMe())
	if err != nil {
		t.Fatalf("bot.New: %v", err)
	}
	return b
}

const testTelegramID = int64(4242)

func newTestHandler() (*Handler, *conversation.Store) {
	conv := conversation.NewStore()
	h := New(Deps{
		Config:  &config.Config{StarsPrice: 25},
		Conv:    conv,
		Queries: repository.New(fakeDB{}),
	})
	return h, conv
}

func testCtx() context.Context {
	return middleware.ContextWithUser(context.Background(), &domain.User{
		ID:          1,
		TelegramID:  testTelegramID,
		CompanyName: "ACME Ltd.",
	})
}

func textUpdate(text string) *models.Update {
	return &models.Update{Message: &models.Message{
		Text: text,
		Chat: models.Chat{ID: testTelegramID},
		From: &models.User{ID: testTelegramID},
	}}
}

func callbackUpdate(data string) *models.Update {
	return &models.Update{CallbackQuery: &models.CallbackQuery{
		ID:   "q1",
		Data: data,
		From: models.User{ID: testTelegramID},
		Message: models.MaybeInaccessibleMessage{
			Message: &models.Message{Chat: models.Chat{ID: testTelegramID}},
		},
	}}
}

func committedLine() domain.LineItem {
	return domain.LineItem{
		Description: "Design work",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.NewFromInt(50),
		VATRate:     21,
		LineTotal:   decimal.RequireFromString("60.5"),
	}
}

func TestInvoiceBuilderCustomItemFlow(t *testing.T) {
	h, conv := newTestHandler()
	b := newTestBot(t)
	ctx := testCtx()

	conv.Set(testTelegramID, &conversation.State{
		Flow:    conversation.FlowInvoice,
		Step:    conversation.StepInvoiceChooseItem,
		Invoice: &conversation.InvoiceDraft{ClientID: 7},
	})

	h.handleInvoiceCallback(ctx, b, callbackUpdate("inv_custom"))
	if got := conv.Get(testTelegramID).Step; got != conversation.StepInvoiceDescription {
		t.Fatalf("after inv_custom step = %s, want %s", got, conversation.StepInvoiceDescription)
	}

	answers := []struct {
		input string
		want  conversation.Step
	}{
		{"Consulting services", conversation.StepInvoiceQuantity},
		{"2", conversation.StepInvoiceUnitPrice},
		{"100", conversation.StepInvoiceVATRate},
		{"20", conversation.StepInvoiceChooseItem},
	}
	for _, a := range answers {
		state := conv.Get(testTelegramID)
		h.invoiceText(ctx, b, textUpdate(a.input), state, a.input)
		if got := conv.Get(testTelegramID).Step; got != a.want {
			t.Fatalf("after %q step = %s, want %s", a.input, got, a.want)
		}
	}

	draft := conv.Get(testTelegramID).Invoice
	if len(draft.Lines) != 1 {
		t.Fatalf("draft has %d lines, want 1", len(draft.Lines))
	}
	if draft.Current != nil {
		t.Error("scratch line not cleared after commit")
	}

	h.handleInvoiceCallback(ctx, b, callbackUpdate("inv_review"))
	if got := conv.Get(testTelegramID).Step; got != conversation.StepInvoiceReview {
		t.Fatalf("after inv_review step = %s, want %s", got, conversation.StepInvoiceReview)
	}

	totals := billing.ComputeTotals(draft.Lines)
	if totals.Subtotal.StringFixed(2) != "200.00" {
		t.Errorf("Subtotal = %s, want 200.00", totals.Subtotal.StringFixed(2))
	}
	if totals.VATTotal.StringFixed(2) != "40.00" {
		t.Errorf("VATTotal = %s, want 40.00", totals.VATTotal.StringFixed(2))
	}
	if totals.Total.StringFixed(2) != "240.00" {
		t.Errorf("Total = %s, want 240.00", totals.Total.StringFixed(2))
	}
}

func TestReviewRequiresItems(t *testing.T) {
	h, conv := newTestHandler()
	b := newTestBot(t)
	ctx := testCtx()

	conv.Set(testTelegramID, &conversation.State{
		Flow:    conversation.FlowInvoice,
		Step:    conversation.StepInvoiceChooseItem,
		Invoice: &conversation.InvoiceDraft{ClientID: 7},
	})

	h.handleInvoiceCallback(ctx, b, callbackUpdate("inv_review"))
	if got := conv.Get(testTelegramID).Step; got != conversation.StepInvoiceChooseItem {
		t.Errorf("step = %s, want %s", got, conversation.StepInvoiceChooseItem)
	}
}

func TestReviewReachableAfterAddAnother(t *testing.T) {
	h, conv := newTestHandler()
	b := newTestBot(t)
	ctx := testCtx()

	conv.Set(testTelegramID, &conversation.State{
		Flow: conversation.FlowInvoice,
		Step: conversation.StepInvoiceReview,
		Invoice: &conversation.InvoiceDraft{
			ClientID: 7,
			Lines:    []domain.LineItem{committedLine()},
		},
	})

	h.handleInvoiceCallback(ctx, b, callbackUpdate("inv_add"))
	if got := conv.Get(testTelegramID).Step; got != conversation.StepInvoiceChooseItem {
		t.Fatalf("after inv_add step = %s, want %s", got, conversation.StepInvoiceChooseItem)
	}

	h.handleInvoiceCallback(ctx, b, callbackUpdate("inv_review"))
	state := conv.Get(testTelegramID)
	if state.Step != conversation.StepInvoiceReview {
		t.Fatalf("after inv_review step = %s, want %s", state.Step, conversation.StepInvoiceReview)
	}
	if len(state.Invoice.Lines) != 1 {
		t.Errorf("draft has %d lines, want 1", len(state.Invoice.Lines))
	}
}

func TestTextAtButtonStepKeepsState(t *testing.T) {
	tests := []struct {
		name string
		step conversation.Step
	}{
		{"select client", conversation.StepInvoiceSelectClient},
		{"choose item", conversation.StepInvoiceChooseItem},
		{"review", conversation.StepInvoiceReview},
		{"awaiting payment", conversation.StepInvoiceAwaitingPayment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, conv := newTestHandler()
			b := newTestBot(t)
			ctx := testCtx()

			conv.Set(testTelegramID, &conversation.State{
				Flow: conversation.FlowInvoice,
				Step: tt.step,
				Invoice: &conversation.InvoiceDraft{
					ClientID: 7,
					Lines:    []domain.LineItem{committedLine()},
				},
			})

			state := conv.Get(testTelegramID)
			h.invoiceText(ctx, b, textUpdate("stray text"), state, "stray text")

			after := conv.Get(testTelegramID)
			if after.Step != tt.step {
				t.Errorf("step = %s, want unchanged %s", after.Step, tt.step)
			}
			if after.Invoice.ClientID != 7 || len(after.Invoice.Lines) != 1 {
				t.Error("stray text mutated the draft")
			}
		})
	}
}

func TestInvalidAnswerKeepsStep(t *testing.T) {
	h, conv := newTestHandler()
	b := newTestBot(t)
	ctx := testCtx()

	conv.Set(testTelegramID, &conversation.State{
		Flow: conversation.FlowInvoice,
		Step: conversation.StepInvoiceQuantity,
		Invoice: &conversation.InvoiceDraft{
			ClientID: 7,
			Current:  &domain.LineItem{Description: "Consulting", VATRate: -1},
		},
	})

	state := conv.Get(testTelegramID)
	h.invoiceText(ctx, b, textUpdate("not a number"), state, "not a number")

	after := conv.Get(testTelegramID)
	if after.Step != conversation.StepInvoiceQuantity {
		t.Errorf("step = %s, want %s", after.Step, conversation.StepInvoiceQuantity)
	}
	if !after.Invoice.Current.Quantity.IsZero() {
		t.Errorf("quantity = %s, want untouched zero", after.Invoice.Current.Quantity)
	}
}

func TestCancelDiscardsDraft(t *testing.T) {
	h, conv := newTestHandler()
	b := newTestBot(t)
	ctx := testCtx()

	conv.Set(testTelegramID, &conversation.State{
		Flow: conversation.FlowInvoice,
		Step: conversation.StepInvoiceReview,
		Invoice: &conversation.InvoiceDraft{
			ClientID: 7,
			Lines:    []domain.LineItem{committedLine()},
		},
	})

	h.handleCancel(ctx, b, textUpdate("/cancel"))
	if conv.Get(testTelegramID) != nil {
		t.Fatal("state survived /cancel")
	}

	h.startInvoiceBuilder(ctx, b, textUpdate("/invoice"))
	state := conv.Get(testTelegramID)
	if state == nil {
		t.Fatal("no state after /invoice")
	}
	if state.Step != conversation.StepInvoiceSelectClient {
		t.Errorf("step = %s, want %s", state.Step, conversation.StepInvoiceSelectClient)
	}
	if state.Invoice.ClientID != 0 || len(state.Invoice.Lines) != 0 {
		t.Error("new draft carries data from the cancelled one")
	}
}
