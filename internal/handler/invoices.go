package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/mkalvans/invoicebot/internal/billing"
	"github.com/mkalvans/invoicebot/internal/config"
	"github.com/mkalvans/invoicebot/internal/conversation"
	"github.com/mkalvans/invoicebot/internal/domain"
	"github.com/mkalvans/invoicebot/internal/format"
	"github.com/mkalvans/invoicebot/internal/service"
	"github.com/mkalvans/invoicebot/internal/telegram"
	"github.com/mkalvans/invoicebot/internal/validate"
)

// handleInvoiceCommand dispatches /invoice, /invoices and /invoice <number>.
func (h *Handler) handleInvoiceCommand(ctx context.Context, b *bot.Bot, update *models.Update) {
	text := strings.TrimSpace(update.Message.Text)
	switch {
	case text == "/invoice":
		h.startInvoiceBuilder(ctx, b, update)
	case text == "/invoices":
		h.listInvoices(ctx, b, update)
	case strings.HasPrefix(text, "/invoice "):
		h.offerRegeneration(ctx, b, update, strings.TrimSpace(strings.TrimPrefix(text, "/invoice ")))
	}
}

func (h *Handler) startInvoiceBuilder(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	if !user.HasCompany() {
		h.reply(ctx, b, update, "Set up your company profile first with /setup.")
		return
	}

	h.deps.Conv.Set(user.TelegramID, &conversation.State{
		Flow:    conversation.FlowInvoice,
		Step:    conversation.StepInvoiceSelectClient,
		Invoice: &conversation.InvoiceDraft{},
	})
	h.promptClientChoice(ctx, b, update, user)
}

func (h *Handler) promptClientChoice(ctx context.Context, b *bot.Bot, update *models.Update, user *domain.User) {
	clients, err := h.deps.Queries.ListClients(ctx, user.ID)
	if err != nil {
		h.deps.Ops.Error(ctx, user.ID, "list clients", err)
		h.reply(ctx, b, update, "Could not load your clients, please try again.")
		return
	}

	buttons := make([]models.InlineKeyboardButton, 0, len(clients)+1)
	for _, c := range clients {
		buttons = append(buttons, telegram.Button(format.ClientLabel(c), fmt.Sprintf("inv_client_%d", c.ID)))
	}
	buttons = append(buttons, telegram.Button("➕ New client", "inv_client_new"))

	h.replyKb(ctx, b, update, "Who is this invoice for?", telegram.Rows(buttons...))
}

// promptItemChoice sends the item-source keyboard, prefixed with header so
// callers can fold a confirmation and the next prompt into one message.
func (h *Handler) promptItemChoice(ctx context.Context, b *bot.Bot, update *models.Update, user *domain.User, header string) {
	products, err := h.deps.Queries.ListProducts(ctx, user.ID)
	if err != nil {
		h.deps.Ops.Error(ctx, user.ID, "list products", err)
		h.reply(ctx, b, update, "Could not load your products, please try again.")
		return
	}

	buttons := make([]models.InlineKeyboardButton, 0, len(products)+2)
	for _, p := range products {
		buttons = append(buttons, telegram.Button(format.ProductLabel(p), fmt.Sprintf("inv_prod_%d", p.ID)))
	}
	buttons = append(buttons, telegram.Button("✍️ Custom item", "inv_custom"))
	buttons = append(buttons, telegram.Button("📋 Review invoice", "inv_review"))

	h.replyKb(ctx, b, update, header, telegram.Rows(buttons...))
}

func (h *Handler) handleInvoiceCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	answerCallback(ctx, b, update)
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	state := h.deps.Conv.Get(user.TelegramID)
	if state == nil || state.Flow != conversation.FlowInvoice {
		h.reply(ctx, b, update, "No invoice in progress. Start one with /invoice.")
		return
	}
	draft := state.Invoice
	data := update.CallbackQuery.Data

	switch {
	case data == "inv_client_new":
		h.startClientWizard(ctx, b, update, user, &conversation.ClientDraft{ResumeInvoice: draft})

	case strings.HasPrefix(data, "inv_client_"):
		if state.Step != conversation.StepInvoiceSelectClient {
			return
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "inv_client_"), 10, 64)
		if err != nil {
			return
		}
		if _, err := h.deps.Queries.GetClient(ctx, user.ID, id); err != nil {
			h.reply(ctx, b, update, "Client not found.")
			return
		}
		draft.ClientID = id
		state.Step = conversation.StepInvoiceChooseItem
		h.deps.Conv.Set(user.TelegramID, state)
		h.promptItemChoice(ctx, b, update, user, "Add an item:")

	case data == "inv_custom":
		if state.Step != conversation.StepInvoiceChooseItem {
			return
		}
		draft.Current = &domain.LineItem{VATRate: -1}
		state.Step = conversation.StepInvoiceDescription
		h.deps.Conv.Set(user.TelegramID, state)
		h.reply(ctx, b, update, "Describe the item:")

	case strings.HasPrefix(data, "inv_prod_"):
		if state.Step != conversation.StepInvoiceChooseItem {
			return
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "inv_prod_"), 10, 64)
		if err != nil {
			return
		}
		product, err := h.deps.Queries.GetProduct(ctx, user.ID, id)
		if err != nil {
			h.reply(ctx, b, update, "Product not found.")
			return
		}
		line := &domain.LineItem{Description: product.Name}
		if product.Description != "" {
			line.Description = product.Name + " - " + product.Description
		}
		if product.DefaultPrice != nil {
			line.UnitPrice = *product.DefaultPrice
		}
		if product.DefaultVATRate != nil {
			line.VATRate = *product.DefaultVATRate
		} else {
			line.VATRate = -1
		}
		draft.Current = line
		draft.CurrentFromProduct = product.DefaultPrice != nil
		state.Step = conversation.StepInvoiceQuantity
		h.deps.Conv.Set(user.TelegramID, state)
		h.reply(ctx, b, update, "Quantity?")

	case data == "inv_review":
		if state.Step != conversation.StepInvoiceChooseItem {
			return
		}
		if len(draft.Lines) == 0 {
			h.reply(ctx, b, update, "No items yet. Add at least one item first.")
			return
		}
		state.Step = conversation.StepInvoiceReview
		h.deps.Conv.Set(user.TelegramID, state)
		h.showReview(ctx, b, update, draft)

	case data == "inv_add":
		if state.Step != conversation.StepInvoiceReview {
			return
		}
		state.Step = conversation.StepInvoiceChooseItem
		h.deps.Conv.Set(user.TelegramID, state)
		h.promptItemChoice(ctx, b, update, user, "Add an item:")

	case data == "inv_pay":
		if state.Step != conversation.StepInvoiceReview {
			return
		}
		h.sendStarsInvoice(ctx, b, update, user, state)

	case data == "inv_cancel":
		h.deps.Conv.Clear(user.TelegramID)
		h.reply(ctx, b, update, "Invoice cancelled.")
	}
}

// invoiceText consumes typed answers for the line-item steps.
func (h *Handler) invoiceText(ctx context.Context, b *bot.Bot, update *models.Update, state *conversation.State, input string) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	draft := state.Invoice
	value := validate.Sanitize(input)

	switch state.Step {
	case conversation.StepInvoiceDescription:
		if !validate.Required(value) {
			h.reply(ctx, b, update, "Please describe the item.")
			return
		}
		draft.Current.Description = value
		state.Step = conversation.StepInvoiceQuantity
		h.deps.Conv.Set(user.TelegramID, state)
		h.reply(ctx, b, update, "Quantity?")

	case conversation.StepInvoiceQuantity:
		qty, valid := validate.PositiveDecimal(value)
		if !valid {
			h.reply(ctx, b, update, "Please send a positive number, e.g. 1 or 2.5.")
			return
		}
		draft.Current.Quantity = qty
		if draft.CurrentFromProduct {
			h.advancePastPrice(ctx, b, update, user, state)
			return
		}
		state.Step = conversation.StepInvoiceUnitPrice
		h.deps.Conv.Set(user.TelegramID, state)
		h.reply(ctx, b, update, "Unit price, e.g. 100 or 99.50?")

	case conversation.StepInvoiceUnitPrice:
		price, valid := validate.NonNegativeDecimal(value)
		if !valid {
			h.reply(ctx, b, update, "Please send a non-negative number, e.g. 100 or 99.50.")
			return
		}
		draft.Current.UnitPrice = price
		h.advancePastPrice(ctx, b, update, user, state)

	case conversation.StepInvoiceVATRate:
		rate, valid := validate.VATRate(value)
		if !valid {
			h.reply(ctx, b, update, "Please send a whole number between 0 and 100.")
			return
		}
		draft.Current.VATRate = rate
		h.commitLine(ctx, b, update, user, state)

	default:
		h.reissuePrompt(ctx, b, update, user, state)
	}
}

// reissuePrompt repeats the current prompt when the user types text at a
// step that expects a button press or a payment. The state is left alone.
func (h *Handler) reissuePrompt(ctx context.Context, b *bot.Bot, update *models.Update, user *domain.User, state *conversation.State) {
	switch state.Step {
	case conversation.StepInvoiceSelectClient:
		h.promptClientChoice(ctx, b, update, user)
	case conversation.StepInvoiceChooseItem:
		h.promptItemChoice(ctx, b, update, user, "Add an item:")
	case conversation.StepInvoiceReview:
		h.showReview(ctx, b, update, state.Invoice)
	case conversation.StepInvoiceAwaitingPayment:
		h.reply(ctx, b, update, "Waiting for your payment. Use /cancel to discard the draft.")
	}
}

// advancePastPrice moves to the VAT question unless the product default
// already answered it.
func (h *Handler) advancePastPrice(ctx context.Context, b *bot.Bot, update *models.Update, user *domain.User, state *conversation.State) {
	if state.Invoice.Current.VATRate >= 0 {
		h.commitLine(ctx, b, update, user, state)
		return
	}
	state.Step = conversation.StepInvoiceVATRate
	h.deps.Conv.Set(user.TelegramID, state)
	h.reply(ctx, b, update, "VAT rate in percent, 0-100?")
}

// commitLine appends the validated scratch line and hands the user back to
// the item-source keyboard, confirmation and next prompt in one message.
func (h *Handler) commitLine(ctx context.Context, b *bot.Bot, update *models.Update, user *domain.User, state *conversation.State) {
	draft := state.Invoice
	line := draft.CommitCurrent(billing.LineTotal(*draft.Current))
	draft.CurrentFromProduct = false

	state.Step = conversation.StepInvoiceChooseItem
	h.deps.Conv.Set(user.TelegramID, state)
	header := fmt.Sprintf("Added: %s = %s\n\nAdd another item or review the invoice:",
		line.Description, format.Currency(line.LineTotal))
	h.promptItemChoice(ctx, b, update, user, header)
}

// showReview prints the draft summary with re-derived totals and the action
// keyboard.
func (h *Handler) showReview(ctx context.Context, b *bot.Bot, update *models.Update, draft *conversation.InvoiceDraft) {
	totals := billing.ComputeTotals(draft.Lines)

	var sb strings.Builder
	sb.WriteString("Invoice draft:\n\n")
	for i, line := range draft.Lines {
		fmt.Fprintf(&sb, "%d. %s — %s × %s", i+1, line.Description, line.Quantity.String(), format.Currency(line.UnitPrice))
		if line.VATRate > 0 {
			fmt.Fprintf(&sb, " + VAT %s", format.Percent(line.VATRate))
		}
		fmt.Fprintf(&sb, " = %s\n", format.Currency(billing.LineTotal(line)))
	}
	fmt.Fprintf(&sb, "\nSubtotal: %s\n", format.Currency(totals.Subtotal))
	for _, entry := range totals.Breakdown {
		fmt.Fprintf(&sb, "VAT %s: %s\n", format.Percent(entry.Rate), format.Currency(entry.Amount))
	}
	fmt.Fprintf(&sb, "Total: %s", format.Currency(totals.Total))

	kb := telegram.Keyboard(
		telegram.Row(telegram.Button("➕ Add another item", "inv_add")),
		telegram.Row(telegram.Button(fmt.Sprintf("⭐ Pay %d Stars & get PDF", h.deps.Config.StarsPrice), "inv_pay")),
		telegram.Row(telegram.Button("❌ Cancel", "inv_cancel")),
	)
	h.replyKb(ctx, b, update, sb.String(), kb)
}

// sendStarsInvoice mints the draft payload and asks Telegram for payment.
// The draft stays in memory, now waiting for the charge to come back.
func (h *Handler) sendStarsInvoice(ctx context.Context, b *bot.Bot, update *models.Update, user *domain.User, state *conversation.State) {
	draft := state.Invoice
	if len(draft.Lines) == 0 {
		h.reply(ctx, b, update, "Add at least one item first.")
		return
	}

	draft.PayloadToken = service.NewDraftPayload()
	state.Step = conversation.StepInvoiceAwaitingPayment
	h.deps.Conv.Set(user.TelegramID, state)

	_, err := b.SendInvoice(ctx, &bot.SendInvoiceParams{
		ChatID:      chatID(update),
		Title:       "Invoice PDF",
		Description: "Generate and download your invoice as PDF",
		Payload:     draft.PayloadToken,
		Currency:    "XTR",
		Prices: []models.LabeledPrice{
			{Label: "Invoice PDF", Amount: h.deps.Config.StarsPrice},
		},
	})
	if err != nil {
		state.Step = conversation.StepInvoiceReview
		h.deps.Conv.Set(user.TelegramID, state)
		h.deps.Ops.Error(ctx, user.ID, "send stars invoice", err)
		h.reply(ctx, b, update, "Could not start the payment, please try again.")
	}
}

func (h *Handler) listInvoices(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	invoices, err := h.deps.Queries.ListRecentInvoices(ctx, user.ID, config.RecentInvoicesLimit)
	if err != nil {
		h.deps.Ops.Error(ctx, user.ID, "list invoices", err)
		h.reply(ctx, b, update, "Could not load your invoices, please try again.")
		return
	}
	if len(invoices) == 0 {
		h.reply(ctx, b, update, "No invoices yet. Create one with /invoice.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Recent invoices:\n\n")
	for _, inv := range invoices {
		fmt.Fprintf(&sb, "%s — %s — %s — %s\n",
			inv.InvoiceNumber, inv.ClientName, format.Date(inv.IssueDate), format.Currency(inv.TotalAmount))
	}
	sb.WriteString("\nUse /invoice <number> to download one again.")
	h.reply(ctx, b, update, sb.String())
}

// offerRegeneration sends a Stars invoice for re-downloading an already
// issued invoice's document.
func (h *Handler) offerRegeneration(ctx context.Context, b *bot.Bot, update *models.Update, number string) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	invoice, err := h.deps.Queries.GetInvoiceByNumber(ctx, user.ID, number)
	if err != nil {
		h.reply(ctx, b, update, fmt.Sprintf("Invoice %s not found. See /invoices for your recent invoices.", number))
		return
	}

	_, err = b.SendInvoice(ctx, &bot.SendInvoiceParams{
		ChatID:      chatID(update),
		Title:       fmt.Sprintf("Invoice %s PDF", invoice.InvoiceNumber),
		Description: "Regenerate and download this invoice as PDF",
		Payload:     service.NewRegeneratePayload(invoice.ID),
		Currency:    "XTR",
		Prices: []models.LabeledPrice{
			{Label: "Invoice PDF", Amount: h.deps.Config.StarsPrice},
		},
	})
	if err != nil {
		h.deps.Ops.Error(ctx, user.ID, "send regenerate invoice", err)
		h.reply(ctx, b, update, "Could not start the payment, please try again.")
	}
}
