package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/mkalvans/invoicebot/internal/conversation"
	"github.com/mkalvans/invoicebot/internal/domain"
	"github.com/mkalvans/invoicebot/internal/format"
	"github.com/mkalvans/invoicebot/internal/telegram"
	"github.com/mkalvans/invoicebot/internal/validate"
)

type clientField struct {
	step     conversation.Step
	prompt   string
	optional bool
	assign   func(*conversation.ClientDraft, string)
}

var clientFields = []clientField{
	{conversation.StepClientName, "Client name?", false,
		func(d *conversation.ClientDraft, v string) { d.Name = v }},
	{conversation.StepClientAddress1, "Address line 1? (or \"skip\")", true,
		func(d *conversation.ClientDraft, v string) { d.AddressLine1 = v }},
	{conversation.StepClientAddress2, "Address line 2? (or \"skip\")", true,
		func(d *conversation.ClientDraft, v string) { d.AddressLine2 = v }},
	{conversation.StepClientCountry, "Country? (or \"skip\")", true,
		func(d *conversation.ClientDraft, v string) { d.Country = v }},
	{conversation.StepClientReg, "Registration number? (or \"skip\")", true,
		func(d *conversation.ClientDraft, v string) { d.RegNumber = v }},
	{conversation.StepClientVAT, "VAT number? (or \"skip\")", true,
		func(d *conversation.ClientDraft, v string) { d.VATNumber = v }},
}

func clientFieldIndex(step conversation.Step) int {
	for i, f := range clientFields {
		if f.step == step {
			return i
		}
	}
	return -1
}

func (h *Handler) handleClients(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	clients, err := h.deps.Queries.ListClients(ctx, user.ID)
	if err != nil {
		h.deps.Ops.Error(ctx, user.ID, "list clients", err)
		h.reply(ctx, b, update, "Could not load your clients, please try again.")
		return
	}
	if len(clients) == 0 {
		h.reply(ctx, b, update, "You have no clients yet. Add one with /addclient.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Your clients:\n\n")
	rows := make([][]models.InlineKeyboardButton, 0, len(clients))
	for i, c := range clients {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, format.ClientLabel(c))
		rows = append(rows, telegram.Row(
			telegram.Button("✏️ "+c.Name, fmt.Sprintf("client_edit_%d", c.ID)),
			telegram.Button("🗑 Delete", fmt.Sprintf("client_del_%d", c.ID)),
		))
	}
	h.replyKb(ctx, b, update, sb.String(), telegram.Keyboard(rows...))
}

func (h *Handler) handleAddClient(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	h.startClientWizard(ctx, b, update, user, &conversation.ClientDraft{})
}

func (h *Handler) startClientWizard(ctx context.Context, b *bot.Bot, update *models.Update, user *domain.User, draft *conversation.ClientDraft) {
	h.deps.Conv.Set(user.TelegramID, &conversation.State{
		Flow:   conversation.FlowClient,
		Step:   clientFields[0].step,
		Client: draft,
	})
	intro := "Let's add a client."
	if draft.Editing {
		intro = "Editing client. Answer \"skip\" to keep the current value."
	}
	h.reply(ctx, b, update, intro+" You can /cancel at any time.\n\n"+clientFields[0].prompt)
}

func (h *Handler) handleClientCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	answerCallback(ctx, b, update)
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	data := update.CallbackQuery.Data

	switch {
	case strings.HasPrefix(data, "client_edit_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "client_edit_"), 10, 64)
		if err != nil {
			return
		}
		client, err := h.deps.Queries.GetClient(ctx, user.ID, id)
		if err != nil {
			h.reply(ctx, b, update, "Client not found.")
			return
		}
		h.startClientWizard(ctx, b, update, user, &conversation.ClientDraft{
			ClientID:     client.ID,
			Editing:      true,
			Name:         client.Name,
			AddressLine1: client.AddressLine1,
			AddressLine2: client.AddressLine2,
			Country:      client.Country,
			RegNumber:    client.RegNumber,
			VATNumber:    client.VATNumber,
		})

	case strings.HasPrefix(data, "client_delok_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "client_delok_"), 10, 64)
		if err != nil {
			return
		}
		if err := h.deps.Queries.DeleteClient(ctx, user.ID, id); err != nil {
			h.reply(ctx, b, update, "Could not delete this client. Clients with issued invoices cannot be removed.")
			return
		}
		h.reply(ctx, b, update, "Client deleted.")

	case strings.HasPrefix(data, "client_del_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "client_del_"), 10, 64)
		if err != nil {
			return
		}
		client, err := h.deps.Queries.GetClient(ctx, user.ID, id)
		if err != nil {
			h.reply(ctx, b, update, "Client not found.")
			return
		}
		kb := telegram.Keyboard(telegram.Row(
			telegram.Button("Yes, delete", fmt.Sprintf("client_delok_%d", id)),
			telegram.Button("Keep", "client_keep"),
		))
		h.replyKb(ctx, b, update, fmt.Sprintf("Delete client %s?", client.Name), kb)

	case data == "client_keep":
		h.reply(ctx, b, update, "Kept.")
	}
}

// clientText consumes one wizard answer; the final answer persists the
// client and, when the wizard was spawned from the invoice builder, resumes
// the suspended draft with the new client selected.
func (h *Handler) clientText(ctx context.Context, b *bot.Bot, update *models.Update, state *conversation.State, input string) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	idx := clientFieldIndex(state.Step)
	if idx < 0 {
		h.deps.Conv.Clear(user.TelegramID)
		return
	}
	field := clientFields[idx]

	skip := validate.IsSkip(input)
	if skip && !field.optional && !state.Client.Editing {
		h.reply(ctx, b, update, "This field is required. "+field.prompt)
		return
	}
	if !skip {
		value := validate.Sanitize(input)
		if !field.optional && !validate.Required(value) {
			h.reply(ctx, b, update, "This field is required. "+field.prompt)
			return
		}
		field.assign(state.Client, value)
	}

	if idx+1 < len(clientFields) {
		state.Step = clientFields[idx+1].step
		h.deps.Conv.Set(user.TelegramID, state)
		h.reply(ctx, b, update, clientFields[idx+1].prompt)
		return
	}

	h.finishClientWizard(ctx, b, update, user, state.Client)
}

func (h *Handler) finishClientWizard(ctx context.Context, b *bot.Bot, update *models.Update, user *domain.User, draft *conversation.ClientDraft) {
	client := &domain.Client{
		ID:           draft.ClientID,
		UserID:       user.ID,
		Name:         draft.Name,
		AddressLine1: draft.AddressLine1,
		AddressLine2: draft.AddressLine2,
		Country:      draft.Country,
		RegNumber:    draft.RegNumber,
		VATNumber:    draft.VATNumber,
	}

	if draft.Editing {
		if err := h.deps.Queries.UpdateClient(ctx, client); err != nil {
			h.deps.Ops.Error(ctx, user.ID, "update client", err)
			h.reply(ctx, b, update, "Could not save the client, please try again.")
			return
		}
	} else {
		created, err := h.deps.Queries.CreateClient(ctx, client)
		if err != nil {
			h.deps.Ops.Error(ctx, user.ID, "create client", err)
			h.reply(ctx, b, update, "Could not save the client, please try again.")
			return
		}
		client = created
	}

	if resume := draft.ResumeInvoice; resume != nil {
		resume.ClientID = client.ID
		h.deps.Conv.Set(user.TelegramID, &conversation.State{
			Flow:    conversation.FlowInvoice,
			Step:    conversation.StepInvoiceChooseItem,
			Invoice: resume,
		})
		h.promptItemChoice(ctx, b, update, user,
			fmt.Sprintf("Client %s saved. Add an item:", client.Name))
		return
	}

	h.deps.Conv.Clear(user.TelegramID)
	h.reply(ctx, b, update, fmt.Sprintf("Client %s saved.", client.Name))
}
