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

func (h *Handler) handleProducts(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	products, err := h.deps.Queries.ListProducts(ctx, user.ID)
	if err != nil {
		h.deps.Ops.Error(ctx, user.ID, "list products", err)
		h.reply(ctx, b, update, "Could not load your products, please try again.")
		return
	}
	if len(products) == 0 {
		h.reply(ctx, b, update, "You have no products yet. Add one with /addproduct.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Your products:\n\n")
	rows := make([][]models.InlineKeyboardButton, 0, len(products))
	for i, p := range products {
		fmt.Fprintf(&sb, "%d. %s", i+1, p.Name)
		if p.DefaultPrice != nil {
			fmt.Fprintf(&sb, " — %s", format.Currency(*p.DefaultPrice))
		}
		if p.DefaultVATRate != nil {
			fmt.Fprintf(&sb, ", VAT %s", format.Percent(*p.DefaultVATRate))
		}
		sb.WriteString("\n")
		rows = append(rows, telegram.Row(
			telegram.Button("✏️ "+p.Name, fmt.Sprintf("product_edit_%d", p.ID)),
			telegram.Button("🗑 Delete", fmt.Sprintf("product_del_%d", p.ID)),
		))
	}
	h.replyKb(ctx, b, update, sb.String(), telegram.Keyboard(rows...))
}

func (h *Handler) handleAddProduct(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	h.startProductWizard(ctx, b, update, user, &conversation.ProductDraft{})
}

func (h *Handler) startProductWizard(ctx context.Context, b *bot.Bot, update *models.Update, user *domain.User, draft *conversation.ProductDraft) {
	h.deps.Conv.Set(user.TelegramID, &conversation.State{
		Flow:    conversation.FlowProduct,
		Step:    conversation.StepProductName,
		Product: draft,
	})
	intro := "Let's add a product."
	if draft.Editing {
		intro = "Editing product. Answer \"skip\" to keep the current value."
	}
	h.reply(ctx, b, update, intro+" You can /cancel at any time.\n\nProduct name?")
}

func (h *Handler) handleProductCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	answerCallback(ctx, b, update)
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	data := update.CallbackQuery.Data

	switch {
	case strings.HasPrefix(data, "product_edit_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "product_edit_"), 10, 64)
		if err != nil {
			return
		}
		product, err := h.deps.Queries.GetProduct(ctx, user.ID, id)
		if err != nil {
			h.reply(ctx, b, update, "Product not found.")
			return
		}
		h.startProductWizard(ctx, b, update, user, &conversation.ProductDraft{
			ProductID:      product.ID,
			Editing:        true,
			Name:           product.Name,
			Description:    product.Description,
			DefaultPrice:   product.DefaultPrice,
			DefaultVATRate: product.DefaultVATRate,
		})

	case strings.HasPrefix(data, "product_delok_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "product_delok_"), 10, 64)
		if err != nil {
			return
		}
		if err := h.deps.Queries.DeleteProduct(ctx, user.ID, id); err != nil {
			h.reply(ctx, b, update, "Could not delete this product.")
			return
		}
		h.reply(ctx, b, update, "Product deleted.")

	case strings.HasPrefix(data, "product_del_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "product_del_"), 10, 64)
		if err != nil {
			return
		}
		product, err := h.deps.Queries.GetProduct(ctx, user.ID, id)
		if err != nil {
			h.reply(ctx, b, update, "Product not found.")
			return
		}
		kb := telegram.Keyboard(telegram.Row(
			telegram.Button("Yes, delete", fmt.Sprintf("product_delok_%d", id)),
			telegram.Button("Keep", "product_keep"),
		))
		h.replyKb(ctx, b, update, fmt.Sprintf("Delete product %s?", product.Name), kb)

	case data == "product_keep":
		h.reply(ctx, b, update, "Kept.")
	}
}

// productText advances the product wizard one answer at a time. Price and
// VAT rate are optional defaults; "skip" leaves them unset.
func (h *Handler) productText(ctx context.Context, b *bot.Bot, update *models.Update, state *conversation.State, input string) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	draft := state.Product
	skip := validate.IsSkip(input)
	value := validate.Sanitize(input)

	switch state.Step {
	case conversation.StepProductName:
		if skip && !draft.Editing || !skip && !validate.Required(value) {
			h.reply(ctx, b, update, "Product name is required.")
			return
		}
		if !skip {
			draft.Name = value
		}
		state.Step = conversation.StepProductDescription
		h.deps.Conv.Set(user.TelegramID, state)
		h.reply(ctx, b, update, "Description? (or \"skip\")")

	case conversation.StepProductDescription:
		if !skip {
			draft.Description = value
		}
		state.Step = conversation.StepProductPrice
		h.deps.Conv.Set(user.TelegramID, state)
		h.reply(ctx, b, update, "Default unit price, e.g. 100 or 99.50? (or \"skip\")")

	case conversation.StepProductPrice:
		if !skip {
			price, valid := validate.NonNegativeDecimal(value)
			if !valid {
				h.reply(ctx, b, update, "Please send a non-negative number, e.g. 100 or 99.50. (or \"skip\")")
				return
			}
			draft.DefaultPrice = &price
		}
		state.Step = conversation.StepProductVATRate
		h.deps.Conv.Set(user.TelegramID, state)
		h.reply(ctx, b, update, "Default VAT rate in percent, 0-100? (or \"skip\")")

	case conversation.StepProductVATRate:
		if !skip {
			rate, valid := validate.VATRate(value)
			if !valid {
				h.reply(ctx, b, update, "Please send a whole number between 0 and 100. (or \"skip\")")
				return
			}
			draft.DefaultVATRate = &rate
		}
		h.finishProductWizard(ctx, b, update, user, draft)
	}
}

func (h *Handler) finishProductWizard(ctx context.Context, b *bot.Bot, update *models.Update, user *domain.User, draft *conversation.ProductDraft) {
	product := &domain.Product{
		ID:             draft.ProductID,
		UserID:         user.ID,
		Name:           draft.Name,
		Description:    draft.Description,
		DefaultPrice:   draft.DefaultPrice,
		DefaultVATRate: draft.DefaultVATRate,
	}

	var err error
	if draft.Editing {
		err = h.deps.Queries.UpdateProduct(ctx, product)
	} else {
		_, err = h.deps.Queries.CreateProduct(ctx, product)
	}
	if err != nil {
		h.deps.Ops.Error(ctx, user.ID, "save product", err)
		h.reply(ctx, b, update, "Could not save the product, please try again.")
		return
	}

	h.deps.Conv.Clear(user.TelegramID)
	h.reply(ctx, b, update, fmt.Sprintf("Product %s saved.", product.Name))
}
